package service

import (
	"context"
	"errors"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rangga11268/siakad-smp-sub000/internal/attendance"
	"github.com/Rangga11268/siakad-smp-sub000/internal/dto"
	"github.com/Rangga11268/siakad-smp-sub000/internal/model"
	"github.com/Rangga11268/siakad-smp-sub000/internal/repository"
	pkgerrors "github.com/Rangga11268/siakad-smp-sub000/pkg/errors"
	"github.com/Rangga11268/siakad-smp-sub000/pkg/jwt"
	"github.com/Rangga11268/siakad-smp-sub000/pkg/metrics"
)

// ── check-in errors ──

var (
	ErrCheckinTokenInvalid = errors.New("check-in token is invalid")
	ErrCheckinTokenExpired = errors.New("check-in token has expired")
)

const (
	checkinNote = "QR check-in"
	qrSize      = 256
)

// CheckinService QR self check-in: a student shows a short-lived signed
// token, a scanner redeems it for today's daily Present record
type CheckinService interface {
	IssueToken(ctx context.Context, studentID string) (*dto.CheckinTokenResponse, error)
	QRCode(ctx context.Context, studentID string) ([]byte, error)
	Checkin(ctx context.Context, req *dto.CheckinRequest) (*dto.CheckinResponse, error)
}

type checkinService struct {
	repo    *repository.Repository
	tokens  *jwt.Manager
	locker  Locker
	lockTTL time.Duration
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
}

// NewCheckinService creates a CheckinService. "Today" is taken in loc; a nil
// locker writes without locking.
func NewCheckinService(
	repo *repository.Repository,
	tokens *jwt.Manager,
	locker Locker,
	lockTTL time.Duration,
	loc *time.Location,
	logger *zap.Logger,
) CheckinService {
	if loc == nil {
		loc = time.Local
	}
	return &checkinService{
		repo:    repo,
		tokens:  tokens,
		locker:  locker,
		lockTTL: lockTTL,
		loc:     loc,
		now:     time.Now,
		logger:  logger,
	}
}

func (s *checkinService) IssueToken(ctx context.Context, studentID string) (*dto.CheckinTokenResponse, error) {
	if _, err := s.getStudent(ctx, studentID); err != nil {
		return nil, err
	}

	token, expires, err := s.tokens.GenerateCheckinToken(studentID)
	if err != nil {
		s.logger.Error("sign check-in token failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return &dto.CheckinTokenResponse{StudentID: studentID, Token: token, ExpiresAt: expires}, nil
}

// QRCode PNG encoding of a freshly issued token
func (s *checkinService) QRCode(ctx context.Context, studentID string) ([]byte, error) {
	issued, err := s.IssueToken(ctx, studentID)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(issued.Token, qrcode.Medium, qrSize)
	if err != nil {
		s.logger.Error("encode check-in qr failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return png, nil
}

// Checkin redeems a token. An existing daily record for today wins: the scan
// then succeeds without overwriting it, so repeated scans are harmless.
func (s *checkinService) Checkin(ctx context.Context, req *dto.CheckinRequest) (*dto.CheckinResponse, error) {
	claims, err := s.tokens.ParseCheckinToken(req.Token)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrCheckinTokenExpired
	case err != nil:
		return nil, ErrCheckinTokenInvalid
	}

	student, err := s.getStudent(ctx, claims.StudentID)
	if err != nil {
		return nil, err
	}

	day := s.now().In(s.loc).Format(dateLayout)
	date, _ := time.Parse(dateLayout, day)
	resp := &dto.CheckinResponse{
		StudentID: student.StudentID,
		Name:      student.DisplayName(),
		ClassID:   student.ClassID,
		Date:      day,
		Status:    string(attendance.StatusPresent),
	}

	write := func(ctx context.Context) error {
		existing, created, err := s.recordPresent(ctx, student, date)
		if err != nil {
			return err
		}
		if !created {
			resp.Status = existing.Status
			resp.AlreadyRecorded = true
		}
		return nil
	}

	// same key as a daily batch for the class, so a scan never interleaves
	// with a teacher saving the daily sheet
	key := attendance.Batch{ClassID: student.ClassID, Date: day, Scope: attendance.ScopeDaily}.Key()
	if s.locker != nil {
		err = s.locker.WithLock(ctx, "attendance:lock:"+key, s.lockTTL, write)
	} else {
		err = write(ctx)
	}

	if errors.Is(err, pkgerrors.ErrLockNotObtained) {
		metrics.AttendanceBatchFailures.WithLabelValues("busy").Inc()
		return nil, ErrAttendanceBusy
	}
	if err != nil {
		metrics.AttendanceBatchFailures.WithLabelValues("storage").Inc()
		s.logger.Error("qr check-in failed", zap.String("student_id", student.StudentID), zap.Error(err))
		return nil, err
	}

	if !resp.AlreadyRecorded {
		metrics.AttendanceRecordsSaved.WithLabelValues(string(attendance.ScopeDaily)).Inc()
	}
	s.logger.Info("qr check-in",
		zap.String("student_id", student.StudentID),
		zap.String("date", day),
		zap.Bool("already_recorded", resp.AlreadyRecorded),
	)
	return resp, nil
}

// recordPresent looks up and inserts inside one transaction; created is false
// when a record already existed
func (s *checkinService) recordPresent(ctx context.Context, student *model.Student, date time.Time) (*model.AttendanceRecord, bool, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	txRepo := s.repo.WithTx(tx)

	existing, err := txRepo.Attendance.GetDaily(ctx, student.StudentID, date)
	if err == nil {
		if tx != nil {
			tx.Rollback()
		}
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		if tx != nil {
			tx.Rollback()
		}
		return nil, false, err
	}

	record := model.AttendanceRecord{
		StudentID: student.StudentID,
		ClassID:   student.ClassID,
		Date:      date,
		Status:    string(attendance.StatusPresent),
		Note:      checkinNote,
	}
	if err := txRepo.Attendance.UpsertBatch(ctx, []model.AttendanceRecord{record}); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, false, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return nil, false, err
		}
	}
	return &record, true, nil
}

func (s *checkinService) getStudent(ctx context.Context, studentID string) (*model.Student, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("get student failed", zap.String("id", studentID), zap.Error(err))
		return nil, err
	}
	return student, nil
}
