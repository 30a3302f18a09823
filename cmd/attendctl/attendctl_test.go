package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rangga11268/siakad-smp-sub000/internal/attendance"
	"github.com/Rangga11268/siakad-smp-sub000/internal/dto"
)

var roster = []attendance.Student{{ID: "A", Name: "Adi"}, {ID: "B", Name: "Budi"}, {ID: "C", Name: "Citra"}}

func TestParseAssignment(t *testing.T) {
	k, v, err := parseAssignment(" Budi = Sick ")
	require.NoError(t, err)
	assert.Equal(t, "Budi", k)
	assert.Equal(t, "Sick", v)

	k, v, err = parseAssignment("A=")
	require.NoError(t, err)
	assert.Equal(t, "A", k)
	assert.Empty(t, v)

	for _, raw := range []string{"Budi", "=Sick", ""} {
		_, _, err := parseAssignment(raw)
		assert.ErrorIs(t, err, errBadAssignment, raw)
	}
}

func TestResolveStudent(t *testing.T) {
	id, err := resolveStudent(roster, "B")
	require.NoError(t, err)
	assert.Equal(t, "B", id)

	id, err = resolveStudent(roster, "citra")
	require.NoError(t, err)
	assert.Equal(t, "C", id)

	_, err = resolveStudent(roster, "Dewi")
	assert.ErrorIs(t, err, errNoSuchStudent)

	twins := append([]attendance.Student{{ID: "A2", Name: "adi"}}, roster...)
	_, err = resolveStudent(twins, "Adi")
	assert.ErrorIs(t, err, errAmbiguousName)
}

func TestFindPeriod(t *testing.T) {
	periods := []attendance.Period{{ID: "P1"}, {ID: "P2"}}
	p, err := findPeriod(periods, "P2")
	require.NoError(t, err)
	assert.Equal(t, "P2", p.ID)

	_, err = findPeriod(periods, "P9")
	assert.ErrorIs(t, err, errPeriodNotListed)
}

func TestRenderView(t *testing.T) {
	v := attendance.View{
		Selection: attendance.Selection{ClassID: "7A", Date: "2025-08-04", Scope: attendance.ScopeDaily},
		Roster:    roster,
		Entries: attendance.Entries{
			"A": {Status: attendance.StatusPresent},
			"B": {Status: attendance.StatusSick, Note: "demam", Locked: true},
			"C": {},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, renderView(&buf, v))
	out := buf.String()

	assert.Contains(t, out, "class 7A  date 2025-08-04  daily")
	assert.Contains(t, out, "demam")
	assert.Contains(t, out, "(daily)")
	assert.Contains(t, out, "Present 1  Sick 1  Permission 0  Alpha 0  unset 1")
}

// ── end to end against a fake API ──

type fakeServer struct {
	mu    sync.Mutex
	saved []dto.BatchSaveRequest
}

func (f *fakeServer) start(t *testing.T) string {
	t.Helper()
	write := func(w http.ResponseWriter, data interface{}) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 0, "message": "success", "data": data})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/classes/7A/students", func(w http.ResponseWriter, _ *http.Request) {
		list := make([]dto.StudentResponse, 0, len(roster))
		for _, s := range roster {
			list = append(list, dto.StudentResponse{ID: s.ID, Name: s.Name, ClassID: "7A"})
		}
		write(w, map[string]interface{}{"list": list})
	})
	mux.HandleFunc("/api/v1/classes/7A/periods", func(w http.ResponseWriter, _ *http.Request) {
		write(w, map[string]interface{}{"list": []dto.PeriodResponse{
			{ID: "P1", ClassID: "7A", DayOfWeek: 1, StartTime: "07:00", EndTime: "07:40", SubjectID: "MTK"},
		}})
	})
	mux.HandleFunc("/api/v1/attendance/daily", func(w http.ResponseWriter, _ *http.Request) {
		write(w, map[string]interface{}{"list": []dto.AttendanceRecordResponse{
			{StudentID: "B", ClassID: "7A", Date: "2025-08-04", Scope: "daily", Status: "Sick"},
		}})
	})
	mux.HandleFunc("/api/v1/attendance/subject", func(w http.ResponseWriter, _ *http.Request) {
		write(w, map[string]interface{}{"list": []dto.AttendanceRecordResponse{}})
	})
	mux.HandleFunc("/api/v1/attendance/batch", func(w http.ResponseWriter, r *http.Request) {
		var req dto.BatchSaveRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.saved = append(f.saved, req)
		f.mu.Unlock()
		write(w, dto.BatchSaveResponse{Saved: len(req.Records)})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMark_SubjectScopeWithAutoAlpha(t *testing.T) {
	f := &fakeServer{}
	url := f.start(t)

	out, err := run(t, "--server", url, "mark",
		"--class", "7A", "--date", "2025-08-04", "--period", "P1",
		"--set", "adi=Present", "--auto-alpha")
	require.NoError(t, err)

	require.Len(t, f.saved, 1)
	got := map[string]string{}
	for _, r := range f.saved[0].Records {
		got[r.StudentID] = r.Status
	}
	assert.Equal(t, "subject", f.saved[0].Scope)
	assert.Equal(t, "P1", f.saved[0].PeriodID)
	assert.Equal(t, map[string]string{"A": "Present", "B": "Sick", "C": "Alpha"}, got)
	assert.Contains(t, out, "period MTK 07:00-07:40")
}

func TestMark_LockedStudentRejected(t *testing.T) {
	f := &fakeServer{}
	url := f.start(t)

	_, err := run(t, "--server", url, "mark",
		"--class", "7A", "--date", "2025-08-04", "--period", "P1",
		"--set", "Budi=Present")
	assert.ErrorIs(t, err, attendance.ErrEntryLocked)
	assert.Empty(t, f.saved)
}

func TestMark_DryRunDoesNotSave(t *testing.T) {
	f := &fakeServer{}
	url := f.start(t)

	out, err := run(t, "--server", url, "mark",
		"--class", "7A", "--date", "2025-08-04",
		"--set", "A=Present", "--note", "A=terlambat", "--dry-run")
	require.NoError(t, err)
	assert.Empty(t, f.saved)
	assert.True(t, strings.Contains(out, "terlambat"))
}

func TestShow_Daily(t *testing.T) {
	f := &fakeServer{}
	url := f.start(t)

	out, err := run(t, "--server", url, "show", "--class", "7A", "--date", "2025-08-04")
	require.NoError(t, err)
	assert.Contains(t, out, "Budi")
	assert.Contains(t, out, "Sick 1")
}
