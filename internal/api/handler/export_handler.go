package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Rangga11268/siakad-smp-sub000/internal/dto"
	"github.com/Rangga11268/siakad-smp-sub000/internal/service"
	"github.com/Rangga11268/siakad-smp-sub000/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler spreadsheet downloads
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportAttendance class attendance recap
// GET /api/v1/export/attendance?class_id=&from=&to=
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	var q dto.ExportAttendanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "class_id, from and to are required")
		return
	}

	buf, filename, err := h.exportSvc.ExportAttendance(c.Request.Context(), &q)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 11001, "class not found")
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrExportRangeTooLarge):
		response.BadRequest(c, 16101, err.Error())
	default:
		response.InternalError(c)
	}
}
