package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Rangga11268/siakad-smp-sub000/internal/model"
)

// StudentRepository student data access
type StudentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Student, error)
	ListByClass(ctx context.Context, classID string) ([]model.Student, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo creates a StudentRepository
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// ListByClass roster ordered by display name
func (r *studentRepo) ListByClass(ctx context.Context, classID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("COALESCE(NULLIF(full_name, ''), username) ASC, student_id ASC").
		Find(&students).Error
	return students, err
}
