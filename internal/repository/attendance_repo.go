package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rangga11268/siakad-smp-sub000/internal/model"
)

// DateRange inclusive bounds; a nil end is open
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// AttendanceRepository attendance record data access
type AttendanceRepository interface {
	ListDaily(ctx context.Context, classID string, date time.Time) ([]model.AttendanceRecord, error)
	ListSubject(ctx context.Context, classID string, date time.Time, periodID string) ([]model.AttendanceRecord, error)
	// GetDaily a student's daily record on date; gorm.ErrRecordNotFound when absent
	GetDaily(ctx context.Context, studentID string, date time.Time) (*model.AttendanceRecord, error)
	// UpsertBatch writes records in one transaction, overwriting existing rows
	// for the same key. All records must share one scope.
	UpsertBatch(ctx context.Context, records []model.AttendanceRecord) error
	// CountDaily daily status counts grouped by student; studentID "" means the whole class
	CountDaily(ctx context.Context, classID, studentID string, rng DateRange) ([]model.StatusCount, error)
	ListDailyRange(ctx context.Context, classID string, rng DateRange) ([]model.AttendanceRecord, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo creates an AttendanceRepository
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) ListDaily(ctx context.Context, classID string, date time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND date = ? AND period_id IS NULL", classID, date).
		Order("student_id ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListSubject(ctx context.Context, classID string, date time.Time, periodID string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND date = ? AND period_id = ?", classID, date, periodID).
		Order("student_id ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) GetDaily(ctx context.Context, studentID string, date time.Time) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND date = ? AND period_id IS NULL", studentID, date).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// upsert targets match the two partial unique indexes on attendance_records
var (
	dailyConflict = clause.OnConflict{
		Columns:     []clause.Column{{Name: "student_id"}, {Name: "class_id"}, {Name: "date"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "period_id IS NULL"}}},
		DoUpdates:   clause.AssignmentColumns([]string{"status", "note", "recorded_by", "updated_at"}),
	}
	subjectConflict = clause.OnConflict{
		Columns:     []clause.Column{{Name: "student_id"}, {Name: "class_id"}, {Name: "date"}, {Name: "period_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "period_id IS NOT NULL"}}},
		DoUpdates:   clause.AssignmentColumns([]string{"status", "note", "subject_id", "recorded_by", "updated_at"}),
	}
)

func (r *attendanceRepo) UpsertBatch(ctx context.Context, records []model.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	conflict := dailyConflict
	if records[0].PeriodID != nil {
		conflict = subjectConflict
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(conflict).Create(&records).Error
	})
}

func (r *attendanceRepo) CountDaily(ctx context.Context, classID, studentID string, rng DateRange) ([]model.StatusCount, error) {
	var counts []model.StatusCount
	db := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Select("student_id, status, COUNT(*) AS count").
		Where("period_id IS NULL")
	if classID != "" {
		db = db.Where("class_id = ?", classID)
	}
	if studentID != "" {
		db = db.Where("student_id = ?", studentID)
	}
	db = applyRange(db, rng)

	err := db.Group("student_id, status").Scan(&counts).Error
	return counts, err
}

func (r *attendanceRepo) ListDailyRange(ctx context.Context, classID string, rng DateRange) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	db := r.db.WithContext(ctx).
		Where("class_id = ? AND period_id IS NULL", classID)
	db = applyRange(db, rng)
	err := db.Order("date ASC, student_id ASC").Find(&records).Error
	return records, err
}

func applyRange(db *gorm.DB, rng DateRange) *gorm.DB {
	if rng.From != nil {
		db = db.Where("date >= ?", *rng.From)
	}
	if rng.To != nil {
		db = db.Where("date <= ?", *rng.To)
	}
	return db
}
