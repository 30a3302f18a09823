package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/Rangga11268/siakad-smp-sub000/config"
	"github.com/Rangga11268/siakad-smp-sub000/internal/repository"
	"github.com/Rangga11268/siakad-smp-sub000/pkg/jwt"
	"github.com/Rangga11268/siakad-smp-sub000/pkg/redis"
)

// Service aggregate of every service
type Service struct {
	Class      ClassService
	Period     PeriodService
	Attendance AttendanceService
	Export     ExportService
	Checkin    CheckinService
}

// NewService builds the aggregate. rdb may be nil: roster caching and
// batch-save locking are then disabled.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	var (
		cache  Cache
		locker Locker
	)
	if rdb != nil {
		cache, locker = rdb, rdb
	}

	loc, err := time.LoadLocation(cfg.Database.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, check-in dates use local time",
			zap.String("timezone", cfg.Database.Timezone), zap.Error(err))
		loc = time.Local
	}

	return &Service{
		Class:      NewClassService(repo, cache, cfg.Attendance.RosterCacheTTL, logger),
		Period:     NewPeriodService(repo, logger),
		Attendance: NewAttendanceService(repo, locker, cfg.Attendance.LockTTL, logger),
		Export:     NewExportService(repo, logger),
		Checkin: NewCheckinService(repo, jwt.NewManager(&cfg.Attendance), locker,
			cfg.Attendance.LockTTL, loc, logger),
	}
}
