package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Rangga11268/siakad-smp-sub000/internal/dto"
)

// ── test helpers ──

func setupTestExportService() (ExportService, *testRepos) {
	repo, tr := newTestRepos()
	return NewExportService(repo, zap.NewNop()), tr
}

// ── ExportAttendance ──

func TestExportService_ExportAttendance(t *testing.T) {
	svc, tr := setupTestExportService()
	seedDaily(tr, stuAdi, "Present", monday())
	seedDaily(tr, stuAdi, "Sick", monday().AddDate(0, 0, 1))
	seedDaily(tr, stuBudi, "Alpha", monday())

	buf, filename, err := svc.ExportAttendance(context.Background(), &dto.ExportAttendanceQuery{
		ClassID: class7A, From: "2025-08-04", To: "2025-08-05",
	})
	if err != nil {
		t.Fatalf("ExportAttendance should succeed: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") || !strings.Contains(filename, "7A") {
		t.Errorf("unexpected filename %q", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("output is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Rekap")
	if err != nil {
		t.Fatalf("missing Rekap sheet: %v", err)
	}
	// title + header + one row per student
	if len(rows) != 2+3 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}

	// header: No NISN Nama 04/08 05/08 H S I A %
	if rows[1][3] != "04/08" || rows[1][5] != "H" {
		t.Errorf("unexpected header %v", rows[1])
	}

	var adi []string
	for _, r := range rows[2:] {
		if len(r) > 2 && r[2] == "Adi" {
			adi = r
		}
	}
	if adi == nil {
		t.Fatal("Adi row missing")
	}
	if adi[3] != "H" || adi[4] != "S" {
		t.Errorf("unexpected day codes %v", adi)
	}
	if adi[5] != "1" || adi[6] != "1" || adi[9] != "50" {
		t.Errorf("unexpected totals %v", adi)
	}
}

func TestExportService_ExportAttendance_Errors(t *testing.T) {
	svc, _ := setupTestExportService()

	tests := []struct {
		name    string
		q       dto.ExportAttendanceQuery
		wantErr error
	}{
		{"unknown class", dto.ExportAttendanceQuery{ClassID: "nope", From: "2025-08-04", To: "2025-08-05"}, ErrClassNotFound},
		{"range too large", dto.ExportAttendanceQuery{ClassID: class7A, From: "2025-01-01", To: "2025-06-30"}, ErrExportRangeTooLarge},
		{"reversed range", dto.ExportAttendanceQuery{ClassID: class7A, From: "2025-08-05", To: "2025-08-04"}, ErrInvalidDateRange},
		{"missing bound", dto.ExportAttendanceQuery{ClassID: class7A, From: "2025-08-05"}, ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.ExportAttendance(context.Background(), &tt.q)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
