package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregate of every repository
type Repository struct {
	db *gorm.DB

	Class      ClassRepository
	Student    StudentRepository
	Subject    SubjectRepository
	Period     PeriodRepository
	Attendance AttendanceRepository
}

// NewRepository builds the aggregate
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Class:      NewClassRepo(db),
		Student:    NewStudentRepo(db),
		Subject:    NewSubjectRepo(db),
		Period:     NewPeriodRepo(db),
		Attendance: NewAttendanceRepo(db),
	}
}

// BeginTx starts a transaction. An aggregate assembled without a db (test
// doubles) returns a nil tx; callers guard Commit/Rollback with tx != nil.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx aggregate bound to tx; a nil tx returns r
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
