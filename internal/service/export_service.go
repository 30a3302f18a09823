package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rangga11268/siakad-smp-sub000/internal/attendance"
	"github.com/Rangga11268/siakad-smp-sub000/internal/dto"
	"github.com/Rangga11268/siakad-smp-sub000/internal/model"
	"github.com/Rangga11268/siakad-smp-sub000/internal/repository"
)

// ── export errors ──

var (
	ErrExportRangeTooLarge = errors.New("export range must not exceed 62 days")
	ErrExportGenerateFail  = errors.New("failed to generate Excel file")
)

const exportMaxDays = 62

// ExportService spreadsheet exports
type ExportService interface {
	// ExportAttendance daily attendance recap of a class as .xlsx
	ExportAttendance(ctx context.Context, q *dto.ExportAttendanceQuery) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportAttendance
// ═══════════════════════════════════════════════════════════
//
// Layout of sheet "Rekap":
//   - row 1: title (class and range)
//   - row 2: No | NISN | Nama | one column per date | H | S | I | A | % Hadir
//   - one row per roster student; cells hold status codes H/S/I/A, "-" when unrecorded

func (s *exportService) ExportAttendance(ctx context.Context, q *dto.ExportAttendanceQuery) (*bytes.Buffer, string, error) {
	if q.From == "" || q.To == "" {
		return nil, "", ErrInvalidDate
	}
	rng, err := parseRange(&dto.DateRangeQuery{From: q.From, To: q.To})
	if err != nil {
		return nil, "", err
	}
	from, to := *rng.From, *rng.To
	if int(to.Sub(from).Hours()/24)+1 > exportMaxDays {
		return nil, "", ErrExportRangeTooLarge
	}

	class, err := s.repo.Class.GetByID(ctx, q.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrClassNotFound
		}
		s.logger.Error("get class failed", zap.String("id", q.ClassID), zap.Error(err))
		return nil, "", err
	}
	students, err := s.repo.Student.ListByClass(ctx, q.ClassID)
	if err != nil {
		s.logger.Error("list roster failed", zap.String("class_id", q.ClassID), zap.Error(err))
		return nil, "", err
	}
	records, err := s.repo.Attendance.ListDailyRange(ctx, q.ClassID, rng)
	if err != nil {
		s.logger.Error("list attendance failed", zap.String("class_id", q.ClassID), zap.Error(err))
		return nil, "", err
	}

	// "student:date" → status
	index := make(map[string]attendance.Status, len(records))
	for i := range records {
		index[records[i].StudentID+":"+records[i].Date.Format(dateLayout)] = attendance.Status(records[i].Status)
	}

	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Rekap"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	summaryCol := 4 + len(dates) // first column after the date columns (1-based)
	lastCol := summaryCol + 4

	f.SetColWidth(sheet, "A", "A", 5)
	f.SetColWidth(sheet, "B", "B", 14)
	f.SetColWidth(sheet, "C", "C", 28)

	// title
	f.SetCellValue(sheet, "A1", fmt.Sprintf("Rekap Presensi %s (%s s.d. %s)", class.Name, q.From, q.To))
	f.MergeCell(sheet, "A1", cell(colName(lastCol-1), 1))
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	// header
	row := 2
	f.SetCellValue(sheet, cell("A", row), "No")
	f.SetCellValue(sheet, cell("B", row), "NISN")
	f.SetCellValue(sheet, cell("C", row), "Nama")
	for i, d := range dates {
		f.SetCellValue(sheet, cell(colName(3+i), row), d.Format("02/01"))
	}
	for i, h := range []string{"H", "S", "I", "A", "% Hadir"} {
		f.SetCellValue(sheet, cell(colName(summaryCol-1+i), row), h)
	}
	f.SetCellStyle(sheet, cell("A", row), cell(colName(lastCol-1), row), headerStyle)

	// body
	for n := range students {
		row++
		st := &students[n]
		f.SetCellValue(sheet, cell("A", row), n+1)
		f.SetCellValue(sheet, cell("B", row), st.NISN)
		f.SetCellValue(sheet, cell("C", row), st.DisplayName())

		var counts []model.StatusCount
		for i, d := range dates {
			status, ok := index[st.StudentID+":"+d.Format(dateLayout)]
			if !ok {
				f.SetCellValue(sheet, cell(colName(3+i), row), "-")
				continue
			}
			f.SetCellValue(sheet, cell(colName(3+i), row), status.Code())
			counts = append(counts, model.StatusCount{StudentID: st.StudentID, Status: string(status), Count: 1})
		}

		t := tally(counts)
		f.SetCellValue(sheet, cell(colName(summaryCol-1), row), t.Present)
		f.SetCellValue(sheet, cell(colName(summaryCol), row), t.Sick)
		f.SetCellValue(sheet, cell(colName(summaryCol+1), row), t.Permission)
		f.SetCellValue(sheet, cell(colName(summaryCol+2), row), t.Alpha)
		f.SetCellValue(sheet, cell(colName(summaryCol+3), row), t.PresenceRate.InexactFloat64())
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write Excel failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("rekap_presensi_%s_%s_%s.xlsx", class.Name, q.From, q.To)
	return buf, filename, nil
}

// ── helpers ──

// colName 0-based column index → letter
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
