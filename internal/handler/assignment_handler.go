package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
	"github.com/ElCzar/secchub-backend-sub001/pkg/response"
)

type assignmentService interface {
	Create(ctx context.Context, actor models.Actor, req models.CreateAssignmentRequest) (*models.AssignmentResult, error)
	Update(ctx context.Context, actor models.Actor, id string, req models.UpdateAssignmentRequest) (*models.TeacherAssignment, error)
	Accept(ctx context.Context, actor models.Actor, id string, observation *string) (*models.TeacherAssignment, error)
	Reject(ctx context.Context, actor models.Actor, id string, observation *string) (*models.TeacherAssignment, error)
	UpdateTeachingDates(ctx context.Context, actor models.Actor, id string, req models.TeachingDatesRequest) (*models.TeacherAssignment, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	DeleteByTeacherAndClass(ctx context.Context, actor models.Actor, teacherID, classID string) error
	Get(ctx context.Context, actor models.Actor, id string) (*models.TeacherAssignment, error)
	ListForTeacher(ctx context.Context, actor models.Actor, teacherID string, currentOnly bool) ([]models.TeacherAssignment, error)
	ListForClass(ctx context.Context, actor models.Actor, classID string) ([]models.TeacherAssignment, error)
	ListByStatus(ctx context.Context, actor models.Actor, teacherID string, status models.AssignmentStatus) ([]models.TeacherAssignment, error)
	ListCurrentSemester(ctx context.Context, actor models.Actor) ([]models.TeacherAssignment, error)
	ListPending(ctx context.Context, actor models.Actor) ([]models.TeacherAssignment, error)
}

// AssignmentHandler exposes teacher assignment endpoints.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs an assignment handler.
func NewAssignmentHandler(service assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// Create godoc
// @Summary Propose a teacher for a class
// @Description A warning is attached when the teacher would exceed capacity once accepted.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body models.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.CreateAssignmentRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	result, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List assignments of the current semester
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.ListCurrentSemester(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, len(items))
}

// Pending godoc
// @Summary List assignments awaiting a decision
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assignments/pending [get]
func (h *AssignmentHandler) Pending(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.ListPending(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, len(items))
}

// Get godoc
// @Summary Get assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Update godoc
// @Summary Update assignment hours
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body models.UpdateAssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.UpdateAssignmentRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	item, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Param id path string true "Assignment ID"
// @Success 204 {string} string ""
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteByTeacherAndClass godoc
// @Summary Remove a teacher from a class
// @Tags Assignments
// @Param id path string true "Teacher ID"
// @Param classId path string true "Class ID"
// @Success 204 {string} string ""
// @Router /teachers/{id}/classes/{classId} [delete]
func (h *AssignmentHandler) DeleteByTeacherAndClass(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.DeleteByTeacherAndClass(c.Request.Context(), actor, c.Param("id"), c.Param("classId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Accept godoc
// @Summary Accept an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body models.DecisionRequest false "Observation"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/accept [patch]
func (h *AssignmentHandler) Accept(c *gin.Context) {
	h.decide(c, true)
}

// Reject godoc
// @Summary Reject an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body models.DecisionRequest false "Observation"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/reject [patch]
func (h *AssignmentHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *AssignmentHandler) decide(c *gin.Context, accept bool) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.DecisionRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "invalid decision payload") {
		return
	}

	var (
		item *models.TeacherAssignment
		err  error
	)
	if accept {
		item, err = h.service.Accept(c.Request.Context(), actor, c.Param("id"), req.Observation)
	} else {
		item, err = h.service.Reject(c.Request.Context(), actor, c.Param("id"), req.Observation)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// TeachingDates godoc
// @Summary Set the teaching window of an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body models.TeachingDatesRequest true "Teaching dates"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/teaching-dates [patch]
func (h *AssignmentHandler) TeachingDates(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.TeachingDatesRequest
	if !bindJSON(c, &req, "invalid teaching dates payload") {
		return
	}
	item, err := h.service.UpdateTeachingDates(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// ListForTeacher godoc
// @Summary List a teacher's assignments
// @Tags Assignments
// @Produce json
// @Param id path string true "Teacher ID"
// @Param status query string false "PENDING, ACCEPTED or REJECTED"
// @Param current query bool false "Only the current semester"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/assignments [get]
func (h *AssignmentHandler) ListForTeacher(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	teacherID := c.Param("id")

	var (
		items []models.TeacherAssignment
		err   error
	)
	if status := c.Query("status"); status != "" {
		items, err = h.service.ListByStatus(c.Request.Context(), actor, teacherID, models.AssignmentStatus(strings.ToUpper(status)))
	} else {
		currentOnly := false
		if raw := c.Query("current"); raw != "" {
			currentOnly, err = strconv.ParseBool(raw)
			if err != nil {
				response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "current must be a boolean"))
				return
			}
		}
		items, err = h.service.ListForTeacher(c.Request.Context(), actor, teacherID, currentOnly)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, len(items))
}

// ListForClass godoc
// @Summary List assignments of a class
// @Tags Assignments
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/assignments [get]
func (h *AssignmentHandler) ListForClass(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.ListForClass(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, len(items))
}
