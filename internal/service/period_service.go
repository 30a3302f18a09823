package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rangga11268/siakad-smp-sub000/internal/dto"
	"github.com/Rangga11268/siakad-smp-sub000/internal/model"
	"github.com/Rangga11268/siakad-smp-sub000/internal/repository"
)

// ── period errors ──

var (
	ErrPeriodNotFound    = errors.New("period not found")
	ErrSubjectNotFound   = errors.New("subject not found")
	ErrPeriodTimeInvalid = errors.New("start_time and end_time must be HH:MM with start before end")
	ErrPeriodSlotTaken   = errors.New("class already has a period starting at this time")
	ErrInvalidICS        = errors.New("invalid iCalendar file")
)

// PeriodService class timetable (schedule provider)
type PeriodService interface {
	List(ctx context.Context, classID string, q *dto.ListPeriodsQuery) ([]dto.PeriodResponse, error)
	Create(ctx context.Context, classID string, req *dto.CreatePeriodRequest) (*dto.PeriodResponse, error)
	Delete(ctx context.Context, id string) error
	ImportICS(ctx context.Context, classID string, r io.Reader) (*dto.ImportPeriodsResponse, error)
}

type periodService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPeriodService creates a PeriodService
func NewPeriodService(repo *repository.Repository, logger *zap.Logger) PeriodService {
	return &periodService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

// List periods of a class; date wins over day_of_week, neither lists the whole week
func (s *periodService) List(ctx context.Context, classID string, q *dto.ListPeriodsQuery) ([]dto.PeriodResponse, error) {
	if err := s.ensureClass(ctx, classID); err != nil {
		return nil, err
	}

	day := 0
	if q != nil {
		day = q.DayOfWeek
		if q.Date != "" {
			date, err := parseDate(q.Date)
			if err != nil {
				return nil, err
			}
			day = goWeekdayToISO(date.Weekday())
		}
	}

	periods, err := s.repo.Period.ListByClass(ctx, classID, day)
	if err != nil {
		s.logger.Error("list periods failed", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.PeriodResponse, 0, len(periods))
	for i := range periods {
		result = append(result, toPeriodResponse(&periods[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *periodService) Create(ctx context.Context, classID string, req *dto.CreatePeriodRequest) (*dto.PeriodResponse, error) {
	start, end, err := normalizePeriodTimes(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if err := s.ensureClass(ctx, classID); err != nil {
		return nil, err
	}

	subject, err := s.repo.Subject.GetByID(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("get subject failed", zap.String("id", req.SubjectID), zap.Error(err))
		return nil, err
	}

	taken, err := s.takenSlots(ctx, s.repo, classID)
	if err != nil {
		return nil, err
	}
	if taken[slotKey(req.DayOfWeek, start)] {
		return nil, ErrPeriodSlotTaken
	}

	period := &model.Period{
		ClassID:   classID,
		DayOfWeek: req.DayOfWeek,
		StartTime: start,
		EndTime:   end,
		SubjectID: subject.SubjectID,
		TeacherID: req.TeacherID,
		IsActive:  true,
	}
	if err := s.repo.Period.Create(ctx, period); err != nil {
		s.logger.Error("create period failed", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}
	period.Subject = subject

	resp := toPeriodResponse(period)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *periodService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Period.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPeriodNotFound
		}
		s.logger.Error("get period failed", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Period.Delete(ctx, id); err != nil {
		s.logger.Error("delete period failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ImportICS ──────────────────────

// ImportICS creates one period per distinct VEVENT slot. SUMMARY is matched
// case-insensitively against subject code, then name. Unknown subjects and
// slots already taken are reported as skipped.
func (s *periodService) ImportICS(ctx context.Context, classID string, r io.Reader) (*dto.ImportPeriodsResponse, error) {
	if err := s.ensureClass(ctx, classID); err != nil {
		return nil, err
	}

	slots, err := ParseICSSlots(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidICS, err)
	}

	subjects, err := s.repo.Subject.List(ctx)
	if err != nil {
		s.logger.Error("list subjects failed", zap.Error(err))
		return nil, err
	}
	byCode := make(map[string]*model.Subject, len(subjects))
	byName := make(map[string]*model.Subject, len(subjects))
	for i := range subjects {
		byCode[strings.ToLower(subjects[i].Code)] = &subjects[i]
		byName[strings.ToLower(subjects[i].Name)] = &subjects[i]
	}

	// slot check and insert run in one transaction so a failed insert leaves
	// the timetable untouched
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("begin transaction failed", zap.Error(err))
		return nil, err
	}
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}
	txRepo := s.repo.WithTx(tx)

	taken, err := s.takenSlots(ctx, txRepo, classID)
	if err != nil {
		rollback()
		return nil, err
	}

	resp := &dto.ImportPeriodsResponse{
		Created: []dto.PeriodResponse{},
		Skipped: []dto.ImportSkip{},
	}
	var (
		periods []model.Period
		matched []*model.Subject
	)
	for _, slot := range slots {
		key := strings.ToLower(slot.Summary)
		subject, ok := byCode[key]
		if !ok {
			subject, ok = byName[key]
		}
		if !ok {
			resp.Skipped = append(resp.Skipped, dto.ImportSkip{Summary: slot.Summary, Reason: "unknown subject"})
			continue
		}
		if taken[slotKey(slot.DayOfWeek, slot.StartTime)] {
			resp.Skipped = append(resp.Skipped, dto.ImportSkip{
				Summary: slot.Summary,
				Reason:  fmt.Sprintf("slot day %d %s already taken", slot.DayOfWeek, slot.StartTime),
			})
			continue
		}
		taken[slotKey(slot.DayOfWeek, slot.StartTime)] = true

		periods = append(periods, model.Period{
			ClassID:   classID,
			DayOfWeek: slot.DayOfWeek,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			SubjectID: subject.SubjectID,
			IsActive:  true,
		})
		matched = append(matched, subject)
	}

	if err := txRepo.Period.BatchCreate(ctx, periods); err != nil {
		rollback()
		s.logger.Error("import periods failed", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}
	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("commit period import failed", zap.Error(err))
			return nil, err
		}
	}
	for i := range periods {
		periods[i].Subject = matched[i]
		resp.Created = append(resp.Created, toPeriodResponse(&periods[i]))
	}

	s.logger.Info("periods imported",
		zap.String("class_id", classID),
		zap.Int("created", len(resp.Created)),
		zap.Int("skipped", len(resp.Skipped)),
	)
	return resp, nil
}

// ── helpers ──

func (s *periodService) ensureClass(ctx context.Context, classID string) error {
	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		s.logger.Error("get class failed", zap.String("id", classID), zap.Error(err))
		return err
	}
	return nil
}

const clockLayout = "15:04"

// normalizePeriodTimes parses H:MM or HH:MM and returns zero-padded HH:MM,
// which keeps string order equal to time order in storage.
func normalizePeriodTimes(rawStart, rawEnd string) (string, string, error) {
	start, err := time.Parse(clockLayout, rawStart)
	if err != nil {
		return "", "", ErrPeriodTimeInvalid
	}
	end, err := time.Parse(clockLayout, rawEnd)
	if err != nil {
		return "", "", ErrPeriodTimeInvalid
	}
	if !start.Before(end) {
		return "", "", ErrPeriodTimeInvalid
	}
	return start.Format(clockLayout), end.Format(clockLayout), nil
}

func slotKey(day int, start string) string {
	return fmt.Sprintf("%d@%s", day, start)
}

func (s *periodService) takenSlots(ctx context.Context, repo *repository.Repository, classID string) (map[string]bool, error) {
	existing, err := repo.Period.ListByClass(ctx, classID, 0)
	if err != nil {
		s.logger.Error("list periods failed", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, p := range existing {
		taken[slotKey(p.DayOfWeek, p.StartTime)] = true
	}
	return taken, nil
}

func toPeriodResponse(p *model.Period) dto.PeriodResponse {
	resp := dto.PeriodResponse{
		ID:        p.PeriodID,
		ClassID:   p.ClassID,
		DayOfWeek: p.DayOfWeek,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
		SubjectID: p.SubjectID,
		TeacherID: p.TeacherID,
	}
	if p.Subject != nil {
		resp.SubjectCode = p.Subject.Code
		resp.SubjectName = p.Subject.Name
	}
	return resp
}
