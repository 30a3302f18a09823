package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Rangga11268/siakad-smp-sub000/internal/model"
)

// PeriodRepository timetable slot data access
type PeriodRepository interface {
	Create(ctx context.Context, period *model.Period) error
	BatchCreate(ctx context.Context, periods []model.Period) error
	GetByID(ctx context.Context, id string) (*model.Period, error)
	// ListByClass dayOfWeek 0 returns every day
	ListByClass(ctx context.Context, classID string, dayOfWeek int) ([]model.Period, error)
	Delete(ctx context.Context, id string) error
}

type periodRepo struct {
	db *gorm.DB
}

// NewPeriodRepo creates a PeriodRepository
func NewPeriodRepo(db *gorm.DB) PeriodRepository {
	return &periodRepo{db: db}
}

func (r *periodRepo) Create(ctx context.Context, period *model.Period) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *periodRepo) BatchCreate(ctx context.Context, periods []model.Period) error {
	if len(periods) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&periods).Error
}

func (r *periodRepo) GetByID(ctx context.Context, id string) (*model.Period, error) {
	var period model.Period
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Where("period_id = ?", id).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *periodRepo) ListByClass(ctx context.Context, classID string, dayOfWeek int) ([]model.Period, error) {
	var periods []model.Period
	db := r.db.WithContext(ctx).
		Preload("Subject").
		Where("class_id = ? AND is_active = ?", classID, true)
	if dayOfWeek > 0 {
		db = db.Where("day_of_week = ?", dayOfWeek)
	}
	err := db.Order("day_of_week ASC, start_time ASC").Find(&periods).Error
	return periods, err
}

func (r *periodRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("period_id = ?", id).
		Delete(&model.Period{}).Error
}
