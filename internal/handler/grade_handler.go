package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studydesk-api/internal/dto"
	"github.com/noah-isme/studydesk-api/internal/models"
	"github.com/noah-isme/studydesk-api/internal/service"
	"github.com/noah-isme/studydesk-api/pkg/response"
)

type gradeService interface {
	List(ctx context.Context, courseID *int64) ([]dto.GradeItem, error)
	Get(ctx context.Context, id int64) (*models.Grade, error)
	Create(ctx context.Context, req service.CreateGradeRequest) (*models.Grade, error)
	Update(ctx context.Context, id int64, req service.UpdateGradeRequest) (*models.Grade, error)
	Delete(ctx context.Context, id int64) error
}

// GradeHandler exposes grade book endpoints.
type GradeHandler struct {
	grades gradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades gradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// List godoc
// @Summary List grades
// @Tags Grades
// @Produce json
// @Param courseId query int false "Course filter"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	courseID, err := optionalID(c, "courseId")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.grades.List(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Get godoc
// @Summary Get grade
// @Tags Grades
// @Produce json
// @Param id path int true "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /grades/{id} [get]
func (h *GradeHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	grade, err := h.grades.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grade)
}

// Create godoc
// @Summary Record grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.CreateGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Create(c *gin.Context) {
	var req service.CreateGradeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	grade, err := h.grades.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// Update godoc
// @Summary Update grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path int true "Grade ID"
// @Param payload body service.UpdateGradeRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /grades/{id} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateGradeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	grade, err := h.grades.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grade)
}

// Delete godoc
// @Summary Delete grade
// @Tags Grades
// @Param id path int true "Grade ID"
// @Success 204
// @Router /grades/{id} [delete]
func (h *GradeHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.grades.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
