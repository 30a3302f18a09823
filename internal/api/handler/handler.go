package handler

import "github.com/Rangga11268/siakad-smp-sub000/internal/service"

// Handler aggregates all HTTP handlers
type Handler struct {
	Class      *ClassHandler
	Period     *PeriodHandler
	Attendance *AttendanceHandler
	Export     *ExportHandler
	Checkin    *CheckinHandler
}

// NewHandler creates the Handler aggregate and registers custom validators
func NewHandler(svc *service.Service) *Handler {
	RegisterValidators()
	return &Handler{
		Class:      NewClassHandler(svc.Class),
		Period:     NewPeriodHandler(svc.Period),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Export:     NewExportHandler(svc.Export),
		Checkin:    NewCheckinHandler(svc.Checkin),
	}
}
