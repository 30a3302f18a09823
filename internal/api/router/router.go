package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rangga11268/siakad-smp-sub000/config"
	"github.com/Rangga11268/siakad-smp-sub000/internal/api/handler"
	"github.com/Rangga11268/siakad-smp-sub000/internal/api/middleware"
	"github.com/Rangga11268/siakad-smp-sub000/pkg/redis"
)

// maxBodyBytes covers a batch for a full class plus an uploaded timetable
const maxBodyBytes = 4 << 20

// Setup builds the gin engine. rdb may be nil, which disables rate limiting.
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── health & metrics ──
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limiter middleware.RateLimiter
	if rdb != nil {
		limiter = rdb
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		classes := v1.Group("/classes")
		{
			classes.GET("", h.Class.ListClasses)
			classes.GET("/:id", h.Class.GetClass)
			classes.GET("/:id/students", h.Class.Roster)
			classes.GET("/:id/periods", h.Period.ListPeriods)
			classes.POST("/:id/periods", h.Period.CreatePeriod)
			classes.POST("/:id/periods/import", h.Period.ImportPeriods)
		}

		v1.DELETE("/periods/:id", h.Period.DeletePeriod)

		att := v1.Group("/attendance")
		{
			att.GET("/daily", h.Attendance.Daily)
			att.GET("/subject", h.Attendance.Subject)
			att.GET("/reconcile", h.Attendance.Reconcile)
			att.POST("/batch",
				middleware.RateLimit(limiter, cfg.Attendance.RateLimit, cfg.Attendance.RateWindow),
				h.Attendance.SaveBatch,
			)
			att.GET("/students/:id/summary", h.Attendance.StudentSummary)
			att.GET("/classes/:id/summary", h.Attendance.ClassSummary)

			att.GET("/checkin/token", h.Checkin.IssueToken)
			att.GET("/checkin/qr", h.Checkin.QRCode)
			att.POST("/checkin",
				middleware.RateLimit(limiter, cfg.Attendance.RateLimit, cfg.Attendance.RateWindow),
				h.Checkin.Checkin,
			)
		}

		v1.GET("/export/attendance", h.Export.ExportAttendance)
	}

	return r
}
