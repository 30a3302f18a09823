package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rangga11268/siakad-smp-sub000/internal/dto"
	"github.com/Rangga11268/siakad-smp-sub000/internal/service"
	"github.com/Rangga11268/siakad-smp-sub000/pkg/response"
)

// CheckinHandler QR self check-in endpoints
type CheckinHandler struct {
	checkinSvc service.CheckinService
}

// NewCheckinHandler creates a CheckinHandler
func NewCheckinHandler(checkinSvc service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinSvc: checkinSvc}
}

// IssueToken GET /api/v1/attendance/checkin/token?student_id=
func (h *CheckinHandler) IssueToken(c *gin.Context) {
	var q dto.CheckinTokenQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "student_id is required")
		return
	}

	result, err := h.checkinSvc.IssueToken(c.Request.Context(), q.StudentID)
	if err != nil {
		h.handleCheckinError(c, err)
		return
	}

	response.OK(c, result)
}

// QRCode GET /api/v1/attendance/checkin/qr?student_id=
func (h *CheckinHandler) QRCode(c *gin.Context) {
	var q dto.CheckinTokenQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "student_id is required")
		return
	}

	png, err := h.checkinSvc.QRCode(c.Request.Context(), q.StudentID)
	if err != nil {
		h.handleCheckinError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// Checkin POST /api/v1/attendance/checkin
func (h *CheckinHandler) Checkin(c *gin.Context) {
	var req dto.CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "token is required")
		return
	}

	result, err := h.checkinSvc.Checkin(c.Request.Context(), &req)
	if err != nil {
		h.handleCheckinError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *CheckinHandler) handleCheckinError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13001, "student not found")
	case errors.Is(err, service.ErrCheckinTokenInvalid):
		response.Error(c, http.StatusUnauthorized, 13005, err.Error())
	case errors.Is(err, service.ErrCheckinTokenExpired):
		response.Error(c, http.StatusUnauthorized, 13006, err.Error())
	case errors.Is(err, service.ErrAttendanceBusy):
		response.Conflict(c, 13004, err.Error())
	default:
		response.InternalError(c)
	}
}
