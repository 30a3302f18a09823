package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rangga11268/siakad-smp-sub000/internal/dto"
	"github.com/Rangga11268/siakad-smp-sub000/internal/service"
	"github.com/Rangga11268/siakad-smp-sub000/pkg/response"
)

// AttendanceHandler attendance persistence endpoints
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler creates an AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Daily GET /api/v1/attendance/daily?class_id=&date=
func (h *AttendanceHandler) Daily(c *gin.Context) {
	var q dto.DailyRecordsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	records, err := h.attendanceSvc.Daily(c.Request.Context(), &q)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// Subject GET /api/v1/attendance/subject?class_id=&date=&period_id=
func (h *AttendanceHandler) Subject(c *gin.Context) {
	var q dto.SubjectRecordsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	records, err := h.attendanceSvc.Subject(c.Request.Context(), &q)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// SaveBatch POST /api/v1/attendance/batch
func (h *AttendanceHandler) SaveBatch(c *gin.Context) {
	var req dto.BatchSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "invalid request body", err.Error())
		return
	}

	result, err := h.attendanceSvc.SaveBatch(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// Reconcile GET /api/v1/attendance/reconcile?class_id=&date=[&period_id=]
func (h *AttendanceHandler) Reconcile(c *gin.Context) {
	var q dto.ReconcileQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	result, err := h.attendanceSvc.Reconcile(c.Request.Context(), &q)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// StudentSummary GET /api/v1/attendance/students/:id/summary?from=&to=
func (h *AttendanceHandler) StudentSummary(c *gin.Context) {
	var q dto.DateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	result, err := h.attendanceSvc.StudentSummary(c.Request.Context(), c.Param("id"), &q)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// ClassSummary GET /api/v1/attendance/classes/:id/summary?from=&to=
func (h *AttendanceHandler) ClassSummary(c *gin.Context) {
	var q dto.DateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	result, err := h.attendanceSvc.ClassSummary(c.Request.Context(), c.Param("id"), &q)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// handleAttendanceError maps attendance errors to status and business code
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 11001, "class not found")
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 12001, "period not found")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13001, "student not found")
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrPeriodRequired),
		errors.Is(err, service.ErrPeriodNotAllowed),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrDuplicateStudent),
		errors.Is(err, service.ErrEmptyAttendanceList):
		response.BadRequest(c, 13002, err.Error())
	case errors.Is(err, service.ErrStudentNotInClass),
		errors.Is(err, service.ErrPeriodNotInClass):
		response.UnprocessableEntity(c, 13003, err.Error())
	case errors.Is(err, service.ErrAttendanceBusy):
		response.Conflict(c, 13004, err.Error())
	default:
		response.InternalError(c)
	}
}
