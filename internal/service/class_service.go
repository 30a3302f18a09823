package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rangga11268/siakad-smp-sub000/internal/dto"
	"github.com/Rangga11268/siakad-smp-sub000/internal/model"
	"github.com/Rangga11268/siakad-smp-sub000/internal/repository"
	"github.com/Rangga11268/siakad-smp-sub000/pkg/metrics"
)

// ── class errors ──

var (
	ErrClassNotFound = errors.New("class not found")
)

// Cache JSON cache, implemented by pkg/redis.Client
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
}

// ClassService classes and rosters
type ClassService interface {
	List(ctx context.Context) ([]dto.ClassResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ClassResponse, error)
	Roster(ctx context.Context, classID string) ([]dto.StudentResponse, error)
}

type classService struct {
	repo     *repository.Repository
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewClassService creates a ClassService; a nil cache or zero ttl disables roster caching
func NewClassService(repo *repository.Repository, cache Cache, cacheTTL time.Duration, logger *zap.Logger) ClassService {
	return &classService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *classService) List(ctx context.Context) ([]dto.ClassResponse, error) {
	classes, err := s.repo.Class.List(ctx)
	if err != nil {
		s.logger.Error("list classes failed", zap.Error(err))
		return nil, err
	}
	counts, err := s.repo.Class.CountStudents(ctx)
	if err != nil {
		s.logger.Error("count students failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ClassResponse, 0, len(classes))
	for i := range classes {
		result = append(result, *toClassResponse(&classes[i], counts[classes[i].ClassID]))
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *classService) GetByID(ctx context.Context, id string) (*dto.ClassResponse, error) {
	class, err := s.getClass(ctx, id)
	if err != nil {
		return nil, err
	}
	students, err := s.Roster(ctx, id)
	if err != nil {
		return nil, err
	}
	return toClassResponse(class, int64(len(students))), nil
}

// ────────────────────── Roster ──────────────────────

func rosterCacheKey(classID string) string { return "roster:" + classID }

func (s *classService) Roster(ctx context.Context, classID string) ([]dto.StudentResponse, error) {
	if s.cacheEnabled() {
		var cached []dto.StudentResponse
		found, err := s.cache.GetJSON(ctx, rosterCacheKey(classID), &cached)
		switch {
		case err != nil:
			metrics.RosterCache.WithLabelValues("error").Inc()
			s.logger.Warn("roster cache read failed", zap.String("class_id", classID), zap.Error(err))
		case found:
			metrics.RosterCache.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.RosterCache.WithLabelValues("miss").Inc()
		}
	}

	if _, err := s.getClass(ctx, classID); err != nil {
		return nil, err
	}
	students, err := s.repo.Student.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("list roster failed", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, toStudentResponse(&students[i]))
	}

	if s.cacheEnabled() {
		if err := s.cache.SetJSON(ctx, rosterCacheKey(classID), result, s.cacheTTL); err != nil {
			s.logger.Warn("roster cache write failed", zap.String("class_id", classID), zap.Error(err))
		}
	}
	return result, nil
}

// ── helpers ──

func (s *classService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

func (s *classService) getClass(ctx context.Context, id string) (*model.Class, error) {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("get class failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return class, nil
}

func toClassResponse(c *model.Class, studentCount int64) *dto.ClassResponse {
	return &dto.ClassResponse{
		ID:                c.ClassID,
		Name:              c.Name,
		Level:             c.Level,
		Room:              c.Room,
		HomeroomTeacherID: c.HomeroomTeacherID,
		StudentCount:      studentCount,
	}
}

func toStudentResponse(st *model.Student) dto.StudentResponse {
	return dto.StudentResponse{
		ID:       st.StudentID,
		NISN:     st.NISN,
		Name:     st.DisplayName(),
		Username: st.Username,
		ClassID:  st.ClassID,
	}
}
