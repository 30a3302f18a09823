package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Rangga11268/siakad-smp-sub000/internal/model"
)

// ClassRepository class data access
type ClassRepository interface {
	GetByID(ctx context.Context, id string) (*model.Class, error)
	List(ctx context.Context) ([]model.Class, error)
	CountStudents(ctx context.Context) (map[string]int64, error)
}

type classRepo struct {
	db *gorm.DB
}

// NewClassRepo creates a ClassRepository
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) GetByID(ctx context.Context, id string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Where("class_id = ?", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) List(ctx context.Context) ([]model.Class, error) {
	var classes []model.Class
	err := r.db.WithContext(ctx).
		Order("level ASC, name ASC").
		Find(&classes).Error
	return classes, err
}

// CountStudents class_id → enrolled student count
func (r *classRepo) CountStudents(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		ClassID string
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Select("class_id, COUNT(*) AS count").
		Group("class_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ClassID] = row.Count
	}
	return counts, nil
}
