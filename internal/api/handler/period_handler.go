package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Rangga11268/siakad-smp-sub000/internal/dto"
	"github.com/Rangga11268/siakad-smp-sub000/internal/service"
	"github.com/Rangga11268/siakad-smp-sub000/pkg/response"
)

// PeriodHandler timetable endpoints
type PeriodHandler struct {
	periodSvc service.PeriodService
}

// NewPeriodHandler creates a PeriodHandler
func NewPeriodHandler(periodSvc service.PeriodService) *PeriodHandler {
	return &PeriodHandler{periodSvc: periodSvc}
}

// ListPeriods GET /api/v1/classes/:id/periods?day_of_week=&date=
func (h *PeriodHandler) ListPeriods(c *gin.Context) {
	var q dto.ListPeriodsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	periods, err := h.periodSvc.List(c.Request.Context(), c.Param("id"), &q)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, gin.H{"list": periods})
}

// CreatePeriod POST /api/v1/classes/:id/periods
func (h *PeriodHandler) CreatePeriod(c *gin.Context) {
	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	period, err := h.periodSvc.Create(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.Created(c, period)
}

// DeletePeriod DELETE /api/v1/periods/:id
func (h *PeriodHandler) DeletePeriod(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "period id is required")
		return
	}

	if err := h.periodSvc.Delete(c.Request.Context(), id); err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportPeriods POST /api/v1/classes/:id/periods/import (multipart "file")
func (h *PeriodHandler) ImportPeriods(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "an iCalendar file is required in field \"file\"")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 10001, "cannot read uploaded file")
		return
	}
	defer f.Close()

	result, err := h.periodSvc.ImportICS(c.Request.Context(), c.Param("id"), f)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.Created(c, result)
}

func (h *PeriodHandler) handlePeriodError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 11001, "class not found")
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 12001, "period not found")
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 12002, "subject not found")
	case errors.Is(err, service.ErrPeriodTimeInvalid):
		response.BadRequest(c, 12003, err.Error())
	case errors.Is(err, service.ErrPeriodSlotTaken):
		response.Conflict(c, 12004, err.Error())
	case errors.Is(err, service.ErrInvalidICS):
		response.BadRequest(c, 12005, err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, err.Error())
	default:
		response.InternalError(c)
	}
}
