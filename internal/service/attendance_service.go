package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rangga11268/siakad-smp-sub000/internal/attendance"
	"github.com/Rangga11268/siakad-smp-sub000/internal/dto"
	"github.com/Rangga11268/siakad-smp-sub000/internal/model"
	"github.com/Rangga11268/siakad-smp-sub000/internal/repository"
	pkgerrors "github.com/Rangga11268/siakad-smp-sub000/pkg/errors"
	"github.com/Rangga11268/siakad-smp-sub000/pkg/metrics"
)

// ── attendance errors ──

var (
	ErrInvalidDate         = errors.New("date must be YYYY-MM-DD")
	ErrInvalidDateRange    = errors.New("from must not be after to")
	ErrPeriodRequired      = errors.New("subject attendance requires period_id")
	ErrPeriodNotAllowed    = errors.New("period_id is only allowed for subject attendance")
	ErrPeriodNotInClass    = errors.New("period does not belong to the class")
	ErrStudentNotInClass   = errors.New("student does not belong to the class")
	ErrDuplicateStudent    = errors.New("student appears more than once in the batch")
	ErrInvalidStatus       = errors.New("invalid attendance status")
	ErrAttendanceBusy      = errors.New("attendance for this class is being saved, please retry")
	ErrStudentNotFound     = errors.New("student not found")
	ErrEmptyAttendanceList = errors.New("no attendance records to save")
)

const dateLayout = "2006-01-02"

// Locker serialises writers on a key, implemented by pkg/redis.Client
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}

// AttendanceService attendance persistence and recaps
type AttendanceService interface {
	Daily(ctx context.Context, q *dto.DailyRecordsQuery) ([]dto.AttendanceRecordResponse, error)
	Subject(ctx context.Context, q *dto.SubjectRecordsQuery) ([]dto.AttendanceRecordResponse, error)
	SaveBatch(ctx context.Context, req *dto.BatchSaveRequest) (*dto.BatchSaveResponse, error)
	Reconcile(ctx context.Context, q *dto.ReconcileQuery) (*dto.ReconcileResponse, error)
	StudentSummary(ctx context.Context, studentID string, q *dto.DateRangeQuery) (*dto.StudentSummaryResponse, error)
	ClassSummary(ctx context.Context, classID string, q *dto.DateRangeQuery) (*dto.ClassSummaryResponse, error)
}

type attendanceService struct {
	repo    *repository.Repository
	locker  Locker
	lockTTL time.Duration
	logger  *zap.Logger
}

// NewAttendanceService creates an AttendanceService; a nil locker saves without locking
func NewAttendanceService(repo *repository.Repository, locker Locker, lockTTL time.Duration, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, locker: locker, lockTTL: lockTTL, logger: logger}
}

// ────────────────────── Daily / Subject ──────────────────────

func (s *attendanceService) Daily(ctx context.Context, q *dto.DailyRecordsQuery) ([]dto.AttendanceRecordResponse, error) {
	date, err := parseDate(q.Date)
	if err != nil {
		return nil, err
	}
	if _, err := s.getClass(ctx, q.ClassID); err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance.ListDaily(ctx, q.ClassID, date)
	if err != nil {
		s.logger.Error("list daily attendance failed", zap.String("class_id", q.ClassID), zap.Error(err))
		return nil, err
	}
	return toRecordResponses(records), nil
}

func (s *attendanceService) Subject(ctx context.Context, q *dto.SubjectRecordsQuery) ([]dto.AttendanceRecordResponse, error) {
	date, err := parseDate(q.Date)
	if err != nil {
		return nil, err
	}
	if _, err := s.getClass(ctx, q.ClassID); err != nil {
		return nil, err
	}
	if _, err := s.getClassPeriod(ctx, q.ClassID, q.PeriodID); err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance.ListSubject(ctx, q.ClassID, date, q.PeriodID)
	if err != nil {
		s.logger.Error("list subject attendance failed",
			zap.String("class_id", q.ClassID), zap.String("period_id", q.PeriodID), zap.Error(err))
		return nil, err
	}
	return toRecordResponses(records), nil
}

// ────────────────────── SaveBatch ──────────────────────

func (s *attendanceService) SaveBatch(ctx context.Context, req *dto.BatchSaveRequest) (*dto.BatchSaveResponse, error) {
	records, batchKey, err := s.validateBatch(ctx, req)
	if err != nil {
		metrics.AttendanceBatchFailures.WithLabelValues("invalid").Inc()
		return nil, err
	}

	write := func(ctx context.Context) error {
		return s.repo.Attendance.UpsertBatch(ctx, records)
	}
	if s.locker != nil {
		err = s.locker.WithLock(ctx, "attendance:lock:"+batchKey, s.lockTTL, write)
	} else {
		err = write(ctx)
	}

	if errors.Is(err, pkgerrors.ErrLockNotObtained) {
		metrics.AttendanceBatchFailures.WithLabelValues("busy").Inc()
		return nil, ErrAttendanceBusy
	}
	if err != nil {
		metrics.AttendanceBatchFailures.WithLabelValues("storage").Inc()
		s.logger.Error("save attendance batch failed", zap.String("key", batchKey), zap.Error(err))
		return nil, err
	}

	metrics.AttendanceRecordsSaved.WithLabelValues(req.Scope).Add(float64(len(records)))
	s.logger.Info("attendance batch saved", zap.String("key", batchKey), zap.Int("records", len(records)))
	return &dto.BatchSaveResponse{Saved: len(records)}, nil
}

// validateBatch checks the batch against the class roster and schedule and
// returns the rows to upsert plus the key writers are serialised on.
func (s *attendanceService) validateBatch(ctx context.Context, req *dto.BatchSaveRequest) ([]model.AttendanceRecord, string, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, "", err
	}
	if len(req.Records) == 0 {
		return nil, "", ErrEmptyAttendanceList
	}
	if _, err := s.getClass(ctx, req.ClassID); err != nil {
		return nil, "", err
	}

	batch := attendance.Batch{ClassID: req.ClassID, Date: req.Date, Scope: attendance.Scope(req.Scope)}
	var periodID, subjectID *string
	switch batch.Scope {
	case attendance.ScopeSubject:
		if req.PeriodID == "" {
			return nil, "", ErrPeriodRequired
		}
		period, err := s.getClassPeriod(ctx, req.ClassID, req.PeriodID)
		if err != nil {
			return nil, "", err
		}
		periodID, subjectID = &period.PeriodID, &period.SubjectID
		batch.PeriodID, batch.SubjectID = period.PeriodID, period.SubjectID
	case attendance.ScopeDaily:
		if req.PeriodID != "" {
			return nil, "", ErrPeriodNotAllowed
		}
	default:
		return nil, "", fmt.Errorf("unknown scope %q", req.Scope)
	}

	students, err := s.repo.Student.ListByClass(ctx, req.ClassID)
	if err != nil {
		s.logger.Error("list roster failed", zap.String("class_id", req.ClassID), zap.Error(err))
		return nil, "", err
	}
	enrolled := make(map[string]bool, len(students))
	for _, st := range students {
		enrolled[st.StudentID] = true
	}

	seen := make(map[string]bool, len(req.Records))
	records := make([]model.AttendanceRecord, 0, len(req.Records))
	for _, in := range req.Records {
		if !enrolled[in.StudentID] {
			return nil, "", fmt.Errorf("%w: %s", ErrStudentNotInClass, in.StudentID)
		}
		if seen[in.StudentID] {
			return nil, "", fmt.Errorf("%w: %s", ErrDuplicateStudent, in.StudentID)
		}
		seen[in.StudentID] = true

		status, err := attendance.ParseStatus(in.Status)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
		}
		records = append(records, model.AttendanceRecord{
			StudentID: in.StudentID,
			ClassID:   req.ClassID,
			Date:      date,
			PeriodID:  periodID,
			SubjectID: subjectID,
			Status:    string(status),
			Note:      in.Note,
		})
	}

	return records, batch.Key(), nil
}

// ────────────────────── Reconcile ──────────────────────

func (s *attendanceService) Reconcile(ctx context.Context, q *dto.ReconcileQuery) (*dto.ReconcileResponse, error) {
	date, err := parseDate(q.Date)
	if err != nil {
		return nil, err
	}
	if _, err := s.getClass(ctx, q.ClassID); err != nil {
		return nil, err
	}

	students, err := s.repo.Student.ListByClass(ctx, q.ClassID)
	if err != nil {
		s.logger.Error("list roster failed", zap.String("class_id", q.ClassID), zap.Error(err))
		return nil, err
	}
	roster := make([]attendance.Student, 0, len(students))
	for i := range students {
		roster = append(roster, attendance.Student{ID: students[i].StudentID, Name: students[i].DisplayName()})
	}

	dailyRows, err := s.repo.Attendance.ListDaily(ctx, q.ClassID, date)
	if err != nil {
		s.logger.Error("list daily attendance failed", zap.String("class_id", q.ClassID), zap.Error(err))
		return nil, err
	}
	entries := attendance.DeriveDaily(roster, toEngineRecords(dailyRows))
	scope := attendance.ScopeDaily

	if q.PeriodID != "" {
		if _, err := s.getClassPeriod(ctx, q.ClassID, q.PeriodID); err != nil {
			return nil, err
		}
		subjectRows, err := s.repo.Attendance.ListSubject(ctx, q.ClassID, date, q.PeriodID)
		if err != nil {
			s.logger.Error("list subject attendance failed", zap.String("period_id", q.PeriodID), zap.Error(err))
			return nil, err
		}
		entries = attendance.DeriveSubject(roster, entries, toEngineRecords(subjectRows))
		scope = attendance.ScopeSubject
	}

	resp := &dto.ReconcileResponse{
		ClassID:  q.ClassID,
		Date:     q.Date,
		Scope:    string(scope),
		PeriodID: q.PeriodID,
		Entries:  make([]dto.ReconciledItem, 0, len(roster)),
		Counts:   make(map[string]int, len(attendance.Statuses)),
	}
	for _, st := range roster {
		e := entries[st.ID]
		resp.Entries = append(resp.Entries, dto.ReconciledItem{
			StudentID: st.ID,
			Name:      st.Name,
			Status:    string(e.Status),
			Note:      e.Note,
			Locked:    e.Locked,
		})
	}
	for status, n := range entries.Count() {
		resp.Counts[string(status)] = n
	}
	return resp, nil
}

// ────────────────────── Summaries ──────────────────────

func (s *attendanceService) StudentSummary(ctx context.Context, studentID string, q *dto.DateRangeQuery) (*dto.StudentSummaryResponse, error) {
	if q == nil {
		q = &dto.DateRangeQuery{}
	}
	rng, err := parseRange(q)
	if err != nil {
		return nil, err
	}

	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("get student failed", zap.String("id", studentID), zap.Error(err))
		return nil, err
	}

	counts, err := s.repo.Attendance.CountDaily(ctx, "", studentID, rng)
	if err != nil {
		s.logger.Error("count attendance failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	return &dto.StudentSummaryResponse{
		StudentID:   student.StudentID,
		Name:        student.DisplayName(),
		From:        q.From,
		To:          q.To,
		StatusTally: tally(counts),
	}, nil
}

func (s *attendanceService) ClassSummary(ctx context.Context, classID string, q *dto.DateRangeQuery) (*dto.ClassSummaryResponse, error) {
	if q == nil {
		q = &dto.DateRangeQuery{}
	}
	rng, err := parseRange(q)
	if err != nil {
		return nil, err
	}
	class, err := s.getClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	students, err := s.repo.Student.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("list roster failed", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}
	counts, err := s.repo.Attendance.CountDaily(ctx, classID, "", rng)
	if err != nil {
		s.logger.Error("count attendance failed", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	byStudent := make(map[string][]model.StatusCount, len(students))
	for _, c := range counts {
		byStudent[c.StudentID] = append(byStudent[c.StudentID], c)
	}

	resp := &dto.ClassSummaryResponse{
		ClassID:   class.ClassID,
		ClassName: class.Name,
		From:      q.From,
		To:        q.To,
		Students:  make([]dto.StudentSummaryResponse, 0, len(students)),
	}
	for i := range students {
		resp.Students = append(resp.Students, dto.StudentSummaryResponse{
			StudentID:   students[i].StudentID,
			Name:        students[i].DisplayName(),
			StatusTally: tally(byStudent[students[i].StudentID]),
		})
	}
	// class total counts only students still on the roster
	var all []model.StatusCount
	for i := range students {
		all = append(all, byStudent[students[i].StudentID]...)
	}
	resp.Total = tally(all)
	return resp, nil
}

// ── helpers ──

func (s *attendanceService) getClass(ctx context.Context, id string) (*model.Class, error) {
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

func (s *attendanceService) getClassPeriod(ctx context.Context, classID, periodID string) (*model.Period, error) {
	period, err := s.repo.Period.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("get period failed", zap.String("id", periodID), zap.Error(err))
		return nil, err
	}
	if period.ClassID != classID {
		return nil, ErrPeriodNotInClass
	}
	return period, nil
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func parseRange(q *dto.DateRangeQuery) (repository.DateRange, error) {
	var rng repository.DateRange
	if q == nil {
		return rng, nil
	}
	if q.From != "" {
		from, err := parseDate(q.From)
		if err != nil {
			return rng, err
		}
		rng.From = &from
	}
	if q.To != "" {
		to, err := parseDate(q.To)
		if err != nil {
			return rng, err
		}
		rng.To = &to
	}
	if rng.From != nil && rng.To != nil && rng.From.After(*rng.To) {
		return rng, ErrInvalidDateRange
	}
	return rng, nil
}

var hundred = decimal.NewFromInt(100)

// tally folds grouped counts; presence rate is present/total*100 rounded to 2 places
func tally(counts []model.StatusCount) dto.StatusTally {
	var t dto.StatusTally
	for _, c := range counts {
		n := int(c.Count)
		switch attendance.Status(c.Status) {
		case attendance.StatusPresent:
			t.Present += n
		case attendance.StatusSick:
			t.Sick += n
		case attendance.StatusPermission:
			t.Permission += n
		case attendance.StatusAlpha:
			t.Alpha += n
		default:
			continue
		}
		t.Total += n
	}
	if t.Total > 0 {
		t.PresenceRate = decimal.NewFromInt(int64(t.Present)).
			Div(decimal.NewFromInt(int64(t.Total))).
			Mul(hundred).
			Round(2)
	}
	return t
}

func scopeOf(r *model.AttendanceRecord) attendance.Scope {
	if r.PeriodID == nil {
		return attendance.ScopeDaily
	}
	return attendance.ScopeSubject
}

func toEngineRecords(rows []model.AttendanceRecord) []attendance.Record {
	out := make([]attendance.Record, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		out = append(out, attendance.Record{
			StudentID: r.StudentID,
			ClassID:   r.ClassID,
			Date:      r.Date.Format(dateLayout),
			Scope:     scopeOf(r),
			PeriodID:  deref(r.PeriodID),
			SubjectID: deref(r.SubjectID),
			Status:    attendance.Status(r.Status),
			Note:      r.Note,
		})
	}
	return out
}

func toRecordResponses(rows []model.AttendanceRecord) []dto.AttendanceRecordResponse {
	out := make([]dto.AttendanceRecordResponse, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		out = append(out, dto.AttendanceRecordResponse{
			ID:        r.AttendanceID,
			StudentID: r.StudentID,
			ClassID:   r.ClassID,
			Date:      r.Date.Format(dateLayout),
			Scope:     string(scopeOf(r)),
			PeriodID:  deref(r.PeriodID),
			SubjectID: deref(r.SubjectID),
			Status:    r.Status,
			Note:      r.Note,
		})
	}
	return out
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
