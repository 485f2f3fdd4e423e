package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	"github.com/ElCzar/secchub-backend-sub001/internal/service"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
	"github.com/ElCzar/secchub-backend-sub001/pkg/response"
)

type workloadService interface {
	Report(ctx context.Context, teacherID string) (*models.WorkloadReport, error)
	ExtraHoursWarning(ctx context.Context, teacherID string, proposedHours int) (*models.ExtraHoursWarning, error)
	SemesterReport(ctx context.Context, actor models.Actor) ([]models.WorkloadReport, error)
	AvailableTeachers(ctx context.Context, actor models.Actor, classID string, requiredHours int) ([]models.WorkloadReport, error)
	Export(ctx context.Context, actor models.Actor, format models.ReportFormat) (*service.ExportedFile, error)
}

// WorkloadHandler exposes teacher workload endpoints.
type WorkloadHandler struct {
	service workloadService
}

// NewWorkloadHandler constructs a workload handler.
func NewWorkloadHandler(service workloadService) *WorkloadHandler {
	return &WorkloadHandler{service: service}
}

// Teacher godoc
// @Summary Get a teacher's workload in the current semester
// @Tags Workload
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/workload [get]
func (h *WorkloadHandler) Teacher(c *gin.Context) {
	report, err := h.service.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// AvailableTeachers godoc
// @Summary List unassigned teachers with enough free hours for a class
// @Tags Workload
// @Produce json
// @Param id path string true "Class ID"
// @Param requiredHours query int false "Free hours the teacher must have left" default(0)
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/available-teachers [get]
func (h *WorkloadHandler) AvailableTeachers(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	required := 0
	if raw := c.Query("requiredHours"); raw != "" {
		var err error
		required, err = strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "requiredHours must be an integer"))
			return
		}
	}
	reports, err := h.service.AvailableTeachers(c.Request.Context(), actor, c.Param("id"), required)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, reports, len(reports))
}

// ExtraHoursWarning godoc
// @Summary Preview the effect of extra hours on a teacher's workload
// @Tags Workload
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body models.ExtraHoursRequest true "Proposed hours"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/extra-hours-warning [post]
func (h *WorkloadHandler) ExtraHoursWarning(c *gin.Context) {
	var req models.ExtraHoursRequest
	if !bindJSON(c, &req, "invalid extra hours payload") {
		return
	}
	warning, err := h.service.ExtraHoursWarning(c.Request.Context(), c.Param("id"), req.ProposedHours)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, warning, nil)
}

// Report godoc
// @Summary Workload report of the current semester
// @Tags Workload
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "json, csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /workload/report [get]
func (h *WorkloadHandler) Report(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	format := models.ReportFormat(strings.ToLower(c.DefaultQuery("format", string(models.ReportFormatJSON))))
	switch format {
	case models.ReportFormatJSON:
		reports, err := h.service.SemesterReport(c.Request.Context(), actor)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.List(c, reports, len(reports))
	case models.ReportFormatCSV, models.ReportFormatPDF:
		file, err := h.service.Export(c.Request.Context(), actor, format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, file.Filename, file.ContentType, file.Payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be json, csv or pdf"))
	}
}
