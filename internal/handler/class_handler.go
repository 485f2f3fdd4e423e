package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	"github.com/ElCzar/secchub-backend-sub001/pkg/response"
)

type classService interface {
	CreateClass(ctx context.Context, actor models.Actor, req models.CreateClassRequest) (*models.ClassResult, error)
	GetClass(ctx context.Context, actor models.Actor, id string) (*models.ClassWithSchedules, error)
	UpdateClass(ctx context.Context, actor models.Actor, id string, req models.UpdateClassRequest) (*models.AcademicClass, error)
	DeleteClass(ctx context.Context, actor models.Actor, id string) error
	ListClasses(ctx context.Context, actor models.Actor, filter models.ClassFilter) ([]models.AcademicClass, error)
	ListCurrentSemester(ctx context.Context, actor models.Actor) ([]models.AcademicClass, error)
	ListWithoutTeacher(ctx context.Context, actor models.Actor) ([]models.AcademicClass, error)
	ListWithoutClassroom(ctx context.Context, actor models.Actor) ([]models.AcademicClass, error)
	AddSchedule(ctx context.Context, actor models.Actor, classID string, req models.ScheduleRequest) (*models.ScheduleWithConflicts, error)
	ListSchedules(ctx context.Context, actor models.Actor, classID string) ([]models.ClassSchedule, error)
}

// ClassHandler exposes academic class endpoints.
type ClassHandler struct {
	service classService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(service classService) *ClassHandler {
	return &ClassHandler{service: service}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param semester_id query string false "Semester ID"
// @Param course_id query string false "Course ID"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	filter := models.ClassFilter{
		SemesterID: c.Query("semester_id"),
		CourseID:   c.Query("course_id"),
	}
	classes, err := h.service.ListClasses(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, classes, len(classes))
}

// Current godoc
// @Summary List classes of the current semester
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes/current [get]
func (h *ClassHandler) Current(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	classes, err := h.service.ListCurrentSemester(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, classes, len(classes))
}

// WithoutTeacher godoc
// @Summary List current classes with no accepted teacher
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes/without-teacher [get]
func (h *ClassHandler) WithoutTeacher(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	classes, err := h.service.ListWithoutTeacher(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, classes, len(classes))
}

// WithoutClassroom godoc
// @Summary List current classes none of whose schedules has a classroom
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes/without-classroom [get]
func (h *ClassHandler) WithoutClassroom(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	classes, err := h.service.ListWithoutClassroom(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, classes, len(classes))
}

// Create godoc
// @Summary Create class in the current semester
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body models.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.CreateClassRequest
	if !bindJSON(c, &req, "invalid class payload") {
		return
	}
	result, err := h.service.CreateClass(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Get godoc
// @Summary Get class with schedules
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	class, err := h.service.GetClass(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Update godoc
// @Summary Update class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body models.UpdateClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.UpdateClassRequest
	if !bindJSON(c, &req, "invalid class payload") {
		return
	}
	class, err := h.service.UpdateClass(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete class and its schedules
// @Tags Classes
// @Param id path string true "Class ID"
// @Success 204 {string} string ""
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.DeleteClass(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListSchedules godoc
// @Summary List schedules of a class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/schedules [get]
func (h *ClassHandler) ListSchedules(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	schedules, err := h.service.ListSchedules(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, schedules, len(schedules))
}

// AddSchedule godoc
// @Summary Add schedule to a class
// @Description Overlapping schedules in the same classroom are returned, not rejected.
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body models.ScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Router /classes/{id}/schedules [post]
func (h *ClassHandler) AddSchedule(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.ScheduleRequest
	if !bindJSON(c, &req, "invalid schedule payload") {
		return
	}
	result, err := h.service.AddSchedule(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
