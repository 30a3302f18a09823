package handler

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Rangga11268/siakad-smp-sub000/internal/attendance"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by the DTOs:
// date_ymd (YYYY-MM-DD calendar date) and attendance_status.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("date_ymd", validateDateYMD)
		_ = v.RegisterValidation("attendance_status", validateAttendanceStatus)
	})
}

func validateDateYMD(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func validateAttendanceStatus(fl validator.FieldLevel) bool {
	_, err := attendance.ParseStatus(fl.Field().String())
	return err == nil
}
