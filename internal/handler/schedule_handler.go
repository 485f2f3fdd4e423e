package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
	"github.com/ElCzar/secchub-backend-sub001/pkg/response"
)

type scheduleService interface {
	UpdateSchedule(ctx context.Context, actor models.Actor, scheduleID string, req models.ScheduleRequest) (*models.ScheduleWithConflicts, error)
	DeleteSchedule(ctx context.Context, actor models.Actor, scheduleID string) error
}

type conflictService interface {
	FindConflicts(ctx context.Context, q models.ConflictQuery) ([]models.ClassSchedule, error)
	ClassroomConflicts(ctx context.Context, actor models.Actor, semesterID string) ([]models.ClassroomConflict, error)
	TeacherConflicts(ctx context.Context, actor models.Actor, semesterID string) ([]models.TeacherConflict, error)
}

type currentSemesterService interface {
	CurrentID(ctx context.Context) (string, error)
}

// ScheduleHandler exposes class schedule and classroom conflict endpoints.
type ScheduleHandler struct {
	schedules scheduleService
	conflicts conflictService
	semesters currentSemesterService
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(schedules scheduleService, conflicts conflictService, semesters currentSemesterService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, conflicts: conflicts, semesters: semesters}
}

// Update godoc
// @Summary Replace a schedule
// @Description The schedule's own class is ignored when looking for overlaps.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body models.ScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.ScheduleRequest
	if !bindJSON(c, &req, "invalid schedule payload") {
		return
	}
	result, err := h.schedules.UpdateSchedule(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete a schedule
// @Tags Schedules
// @Param id path string true "Schedule ID"
// @Success 204 {string} string ""
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.schedules.DeleteSchedule(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Conflicts godoc
// @Summary Find schedules overlapping a proposed slot
// @Tags Schedules
// @Produce json
// @Param classroomId query string true "Classroom ID"
// @Param day query string true "Weekday"
// @Param start query string true "Start time HH:MM"
// @Param end query string true "End time HH:MM"
// @Param excludeClassId query string false "Class to ignore"
// @Param semesterId query string false "Semester ID, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /schedules/conflicts [get]
func (h *ScheduleHandler) Conflicts(c *gin.Context) {
	if _, ok := actorFromContext(c); !ok {
		return
	}
	query, err := h.parseConflictQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	conflicts, err := h.conflicts.FindConflicts(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, conflicts, len(conflicts))
}

// ClassroomConflicts godoc
// @Summary List clusters of overlapping schedules per classroom and day
// @Tags Schedules
// @Produce json
// @Param semesterId query string false "Semester ID, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /schedules/conflicts/classrooms [get]
func (h *ScheduleHandler) ClassroomConflicts(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	semesterID, err := h.semesterID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	conflicts, err := h.conflicts.ClassroomConflicts(c.Request.Context(), actor, semesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, conflicts, len(conflicts))
}

// TeacherConflicts godoc
// @Summary List clusters of overlapping schedules per teacher and day
// @Description Only accepted assignments bind a teacher to a class's schedules.
// @Tags Schedules
// @Produce json
// @Param semesterId query string false "Semester ID, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /schedules/conflicts/teachers [get]
func (h *ScheduleHandler) TeacherConflicts(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	semesterID, err := h.semesterID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	conflicts, err := h.conflicts.TeacherConflicts(c.Request.Context(), actor, semesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, conflicts, len(conflicts))
}

func (h *ScheduleHandler) parseConflictQuery(c *gin.Context) (models.ConflictQuery, error) {
	day, err := models.ParseWeekday(c.Query("day"))
	if err != nil {
		return models.ConflictQuery{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid day")
	}
	start, err := models.ParseClockTime(c.Query("start"))
	if err != nil {
		return models.ConflictQuery{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid start time")
	}
	end, err := models.ParseClockTime(c.Query("end"))
	if err != nil {
		return models.ConflictQuery{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid end time")
	}
	semesterID, err := h.semesterID(c)
	if err != nil {
		return models.ConflictQuery{}, err
	}
	return models.ConflictQuery{
		ClassroomID:    c.Query("classroomId"),
		Day:            day,
		StartTime:      start,
		EndTime:        end,
		ExcludeClassID: c.Query("excludeClassId"),
		SemesterID:     semesterID,
	}, nil
}

func (h *ScheduleHandler) semesterID(c *gin.Context) (string, error) {
	if id := c.Query("semesterId"); id != "" {
		return id, nil
	}
	return h.semesters.CurrentID(c.Request.Context())
}
