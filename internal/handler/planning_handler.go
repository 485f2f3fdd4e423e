package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	"github.com/ElCzar/secchub-backend-sub001/pkg/response"
)

type duplicationService interface {
	Preview(ctx context.Context, actor models.Actor, semesterID string) ([]models.ClassWithSchedules, error)
	DuplicateAll(ctx context.Context, actor models.Actor, sourceID, targetID string) ([]models.ClassWithSchedules, error)
	ApplyToCurrent(ctx context.Context, actor models.Actor, sourceID string) ([]models.ClassWithSchedules, error)
	DuplicateSelected(ctx context.Context, actor models.Actor, sourceID string, classIDs []string) (int, error)
}

// PlanningHandler exposes semester-to-semester duplication endpoints.
type PlanningHandler struct {
	service duplicationService
}

// NewPlanningHandler constructs a planning handler.
func NewPlanningHandler(service duplicationService) *PlanningHandler {
	return &PlanningHandler{service: service}
}

// Preview godoc
// @Summary Preview the classes a semester would contribute
// @Tags Planning
// @Produce json
// @Param semesterId path string true "Source semester ID"
// @Success 200 {object} response.Envelope
// @Router /planning/preview/{semesterId} [get]
func (h *PlanningHandler) Preview(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	classes, err := h.service.Preview(c.Request.Context(), actor, c.Param("semesterId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, classes, len(classes))
}

// Duplicate godoc
// @Summary Copy every class of one semester into another
// @Tags Planning
// @Accept json
// @Produce json
// @Param payload body models.DuplicateRequest true "Source and target"
// @Success 201 {object} response.Envelope
// @Router /planning/duplicate [post]
func (h *PlanningHandler) Duplicate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.DuplicateRequest
	if !bindJSON(c, &req, "invalid duplication payload") {
		return
	}
	classes, err := h.service.DuplicateAll(c.Request.Context(), actor, req.SourceSemesterID, req.TargetSemesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, classes)
}

// DuplicateSelected godoc
// @Summary Copy selected classes into the current semester
// @Tags Planning
// @Accept json
// @Produce json
// @Param payload body models.DuplicateSelectedRequest true "Source and classes"
// @Success 201 {object} response.Envelope
// @Router /planning/duplicate/selected [post]
func (h *PlanningHandler) DuplicateSelected(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.DuplicateSelectedRequest
	if !bindJSON(c, &req, "invalid duplication payload") {
		return
	}
	applied, err := h.service.DuplicateSelected(c.Request.Context(), actor, req.SourceSemesterID, req.ClassIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, models.DuplicateSelectedResult{Applied: applied})
}

// Apply godoc
// @Summary Copy every class of a semester into the current one
// @Tags Planning
// @Produce json
// @Param semesterId path string true "Source semester ID"
// @Success 201 {object} response.Envelope
// @Router /planning/apply/{semesterId} [post]
func (h *PlanningHandler) Apply(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	classes, err := h.service.ApplyToCurrent(c.Request.Context(), actor, c.Param("semesterId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, classes)
}
