package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var abc = []Student{{ID: "A", Name: "Adi"}, {ID: "B", Name: "Budi"}, {ID: "C", Name: "Citra"}}

func dailyRecord(studentID string, s Status, note string) Record {
	return Record{StudentID: studentID, ClassID: "7A", Date: "2025-08-04", Scope: ScopeDaily, Status: s, Note: note}
}

func subjectRecord(studentID string, s Status, note string) Record {
	return Record{StudentID: studentID, ClassID: "7A", Date: "2025-08-04", Scope: ScopeSubject, PeriodID: "P1", SubjectID: "MTK", Status: s, Note: note}
}

// ── DeriveDaily ──

func TestDeriveDaily(t *testing.T) {
	entries := DeriveDaily(abc, []Record{dailyRecord("A", StatusSick, "demam")})

	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Status: StatusSick, Note: "demam"}, entries["A"])
	assert.Equal(t, Entry{}, entries["B"])
	assert.Equal(t, Entry{}, entries["C"])
	for _, e := range entries {
		assert.False(t, e.Locked, "daily entries are never locked")
	}
}

func TestDeriveDaily_EmptyRoster(t *testing.T) {
	entries := DeriveDaily(nil, []Record{dailyRecord("A", StatusPresent, "")})
	assert.Empty(t, entries)
}

// ── DeriveSubject ──

func TestDeriveSubject_InheritsAbsentDailyStatus(t *testing.T) {
	for _, s := range []Status{StatusSick, StatusPermission, StatusAlpha} {
		t.Run(string(s), func(t *testing.T) {
			daily := DeriveDaily(abc, []Record{dailyRecord("A", s, "surat dokter")})
			entries := DeriveSubject(abc, daily, nil)

			assert.Equal(t, Entry{Status: s, Locked: true}, entries["A"], "note is not inherited")
		})
	}
}

func TestDeriveSubject_FreeChoiceWhenPresentOrMissing(t *testing.T) {
	daily := DeriveDaily(abc, []Record{dailyRecord("A", StatusPresent, "")})
	entries := DeriveSubject(abc, daily, nil)

	assert.Equal(t, Entry{}, entries["A"])
	assert.Equal(t, Entry{}, entries["B"], "no daily record behaves like Present")
}

func TestDeriveSubject_ExplicitOverrideWins(t *testing.T) {
	daily := DeriveDaily(abc, []Record{
		dailyRecord("A", StatusSick, ""),
		dailyRecord("B", StatusPresent, ""),
	})
	entries := DeriveSubject(abc, daily, []Record{
		subjectRecord("A", StatusPresent, "datang siang"),
		subjectRecord("B", StatusAlpha, "bolos"),
	})

	assert.Equal(t, Entry{Status: StatusPresent, Note: "datang siang"}, entries["A"])
	assert.Equal(t, Entry{Status: StatusAlpha, Note: "bolos"}, entries["B"])
}

func TestDeriveSubject_Scenario(t *testing.T) {
	daily := DeriveDaily(abc, []Record{
		dailyRecord("A", StatusPresent, ""),
		dailyRecord("B", StatusSick, ""),
	})
	entries := DeriveSubject(abc, daily, nil)

	assert.Equal(t, Entry{}, entries["A"])
	assert.Equal(t, Entry{Status: StatusSick, Locked: true}, entries["B"])
	assert.Equal(t, Entry{}, entries["C"])
}

// ── ApplyEdit ──

func TestApplyEdit(t *testing.T) {
	entries := Entries{"A": {}, "B": {Status: StatusSick, Locked: true}}

	out := ApplyEdit(entries, Edit{StudentID: "A", Field: FieldStatus, Value: "Present"})
	assert.Equal(t, StatusPresent, out["A"].Status)
	assert.Equal(t, StatusUnset, entries["A"].Status, "input must not be mutated")

	out = ApplyEdit(out, Edit{StudentID: "A", Field: FieldNote, Value: "terlambat"})
	assert.Equal(t, "terlambat", out["A"].Note)

	out = ApplyEdit(out, Edit{StudentID: "A", Field: FieldStatus, Value: ""})
	assert.Equal(t, StatusUnset, out["A"].Status, "empty value clears the status")
}

func TestApplyEdit_RejectedEdits(t *testing.T) {
	entries := Entries{"A": {}, "B": {Status: StatusSick, Locked: true}}

	cases := map[string]Edit{
		"locked status":   {StudentID: "B", Field: FieldStatus, Value: "Present"},
		"locked note":     {StudentID: "B", Field: FieldNote, Value: "izin pulang"},
		"unknown student": {StudentID: "Z", Field: FieldStatus, Value: "Present"},
		"invalid status":  {StudentID: "A", Field: FieldStatus, Value: "Late"},
	}
	for name, e := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, entries, ApplyEdit(entries, e))
		})
	}
}

// ── AutoFillAbsent ──

func TestAutoFillAbsent(t *testing.T) {
	entries := Entries{
		"A": {Status: StatusPresent},
		"B": {Status: StatusSick, Locked: true},
		"C": {},
	}

	once := AutoFillAbsent(entries)
	assert.Equal(t, StatusPresent, once["A"].Status)
	assert.Equal(t, Entry{Status: StatusSick, Locked: true}, once["B"])
	assert.Equal(t, StatusAlpha, once["C"].Status)
	assert.Equal(t, StatusUnset, entries["C"].Status, "input must not be mutated")

	assert.Equal(t, once, AutoFillAbsent(once), "auto-fill is idempotent")
}

// ── BuildSavePayload ──

func TestBuildSavePayload_Scenario(t *testing.T) {
	daily := DeriveDaily(abc, []Record{
		dailyRecord("A", StatusPresent, ""),
		dailyRecord("B", StatusSick, ""),
	})
	entries := DeriveSubject(abc, daily, nil)
	entries = ApplyEdit(entries, Edit{StudentID: "A", Field: FieldStatus, Value: "Present"})
	entries = AutoFillAbsent(entries)

	period := &Period{ID: "P1", ClassID: "7A", SubjectID: "MTK"}
	batch, err := BuildSavePayload(entries, Selection{ClassID: "7A", Date: "2025-08-04", Scope: ScopeSubject, Period: period})
	require.NoError(t, err)

	assert.Equal(t, "P1", batch.PeriodID)
	assert.Equal(t, "MTK", batch.SubjectID)
	require.Len(t, batch.Records, 3)
	got := map[string]Status{}
	for _, r := range batch.Records {
		got[r.StudentID] = r.Status
		assert.Equal(t, ScopeSubject, r.Scope)
		assert.Equal(t, "P1", r.PeriodID)
		assert.Equal(t, "MTK", r.SubjectID)
	}
	assert.Equal(t, map[string]Status{"A": StatusPresent, "B": StatusSick, "C": StatusAlpha}, got)
}

func TestBuildSavePayload_SkipsUnset(t *testing.T) {
	entries := Entries{"A": {Status: StatusPresent}, "B": {}}

	batch, err := BuildSavePayload(entries, Selection{ClassID: "7A", Date: "2025-08-04", Scope: ScopeDaily})
	require.NoError(t, err)
	require.Len(t, batch.Records, 1)
	assert.Equal(t, "A", batch.Records[0].StudentID)
	assert.Empty(t, batch.Records[0].PeriodID)
}

func TestBuildSavePayload_EmptySelection(t *testing.T) {
	_, err := BuildSavePayload(Entries{"A": {}, "B": {}}, Selection{ClassID: "7A", Date: "2025-08-04", Scope: ScopeDaily})
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestBuildSavePayload_NoPeriodSelected(t *testing.T) {
	for name, entries := range map[string]Entries{
		"with statuses": {"A": {Status: StatusPresent}},
		"empty":         {},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := BuildSavePayload(entries, Selection{ClassID: "7A", Date: "2025-08-04", Scope: ScopeSubject})
			assert.ErrorIs(t, err, ErrNoPeriodSelected)
		})
	}
}

// ── Status ──

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Permission")
	require.NoError(t, err)
	assert.Equal(t, StatusPermission, s)
	assert.Equal(t, "I", s.Code())

	_, err = ParseStatus("present")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestEntriesCount(t *testing.T) {
	counts := Entries{
		"A": {Status: StatusPresent},
		"B": {Status: StatusPresent},
		"C": {Status: StatusAlpha},
		"D": {},
	}.Count()

	assert.Equal(t, map[Status]int{StatusPresent: 2, StatusSick: 0, StatusPermission: 0, StatusAlpha: 1}, counts)
}
