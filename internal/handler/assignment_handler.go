package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studydesk-api/internal/dto"
	"github.com/noah-isme/studydesk-api/internal/models"
	"github.com/noah-isme/studydesk-api/internal/service"
	"github.com/noah-isme/studydesk-api/pkg/response"
)

type assignmentService interface {
	List(ctx context.Context, req service.AssignmentListRequest) ([]dto.AssignmentView, error)
	Grouped(ctx context.Context, req service.AssignmentListRequest) (*dto.AssignmentGroups, error)
	Counts(ctx context.Context, req service.AssignmentListRequest) (*dto.AssignmentCounts, error)
	Get(ctx context.Context, id int64) (*models.Assignment, error)
	Create(ctx context.Context, req service.CreateAssignmentRequest) (*models.Assignment, error)
	Update(ctx context.Context, id int64, req service.UpdateAssignmentRequest) (*models.Assignment, error)
	ToggleComplete(ctx context.Context, id int64) (*models.Assignment, error)
	Delete(ctx context.Context, id int64) error
}

// AssignmentHandler exposes assignment tracker endpoints.
type AssignmentHandler struct {
	assignments assignmentService
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(assignments assignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

func listRequest(c *gin.Context) (service.AssignmentListRequest, error) {
	courseID, err := optionalID(c, "courseId")
	if err != nil {
		return service.AssignmentListRequest{}, err
	}
	day, err := weekStart(c)
	if err != nil {
		return service.AssignmentListRequest{}, err
	}
	return service.AssignmentListRequest{Filter: c.Query("filter"), CourseID: courseID, WeekStart: day}, nil
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Produce json
// @Param filter query string false "all, pending, overdue, today, thisWeek or completed"
// @Param courseId query int false "Course filter"
// @Param weekStart query string false "First day of the week"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	req, err := listRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.assignments.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Grouped godoc
// @Summary Assignments grouped by due date
// @Description Buckets: overdue, today, tomorrow, this week, later, completed
// @Tags Assignments
// @Produce json
// @Param filter query string false "Filter applied before grouping"
// @Param courseId query int false "Course filter"
// @Param weekStart query string false "First day of the week"
// @Success 200 {object} response.Envelope
// @Router /assignments/grouped [get]
func (h *AssignmentHandler) Grouped(c *gin.Context) {
	req, err := listRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	groups, err := h.assignments.Grouped(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, groups)
}

// Counts godoc
// @Summary Assignment counts per filter
// @Tags Assignments
// @Produce json
// @Param courseId query int false "Course filter"
// @Param weekStart query string false "First day of the week"
// @Success 200 {object} response.Envelope
// @Router /assignments/counts [get]
func (h *AssignmentHandler) Counts(c *gin.Context) {
	req, err := listRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	counts, err := h.assignments.Counts(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, counts)
}

// Get godoc
// @Summary Get assignment
// @Tags Assignments
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	assignment, err := h.assignments.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, assignment)
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	assignment, err := h.assignments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Update godoc
// @Summary Update assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Param payload body service.UpdateAssignmentRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateAssignmentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	assignment, err := h.assignments.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, assignment)
}

// Toggle godoc
// @Summary Toggle assignment completion
// @Tags Assignments
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/toggle [patch]
func (h *AssignmentHandler) Toggle(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	assignment, err := h.assignments.ToggleComplete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, assignment)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Param id path int true "Assignment ID"
// @Success 204
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.assignments.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
