package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Rangga11268/siakad-smp-sub000/internal/service"
	"github.com/Rangga11268/siakad-smp-sub000/pkg/response"
)

// ClassHandler class and roster endpoints
type ClassHandler struct {
	classSvc service.ClassService
}

// NewClassHandler creates a ClassHandler
func NewClassHandler(classSvc service.ClassService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc}
}

// ListClasses GET /api/v1/classes
func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.classSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": classes})
}

// GetClass GET /api/v1/classes/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "class id is required")
		return
	}

	class, err := h.classSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// Roster GET /api/v1/classes/:id/students
func (h *ClassHandler) Roster(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "class id is required")
		return
	}

	students, err := h.classSvc.Roster(c.Request.Context(), id)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, gin.H{"list": students})
}

func (h *ClassHandler) handleClassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 11001, "class not found")
	default:
		response.InternalError(c)
	}
}
