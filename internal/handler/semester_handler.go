package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	"github.com/ElCzar/secchub-backend-sub001/pkg/response"
)

type semesterService interface {
	Create(ctx context.Context, req models.CreateSemesterRequest) (*models.Semester, error)
	GetCurrent(ctx context.Context) (*models.Semester, error)
	Get(ctx context.Context, id string) (*models.Semester, error)
	List(ctx context.Context) ([]models.Semester, error)
	ListPast(ctx context.Context) ([]models.Semester, error)
}

// SemesterHandler exposes semester endpoints.
type SemesterHandler struct {
	service semesterService
}

// NewSemesterHandler builds a new handler.
func NewSemesterHandler(service semesterService) *SemesterHandler {
	return &SemesterHandler{service: service}
}

// Create godoc
// @Summary Open a new current semester
// @Tags Semesters
// @Accept json
// @Produce json
// @Param payload body models.CreateSemesterRequest true "Semester payload"
// @Success 201 {object} response.Envelope
// @Router /semesters [post]
func (h *SemesterHandler) Create(c *gin.Context) {
	var req models.CreateSemesterRequest
	if !bindJSON(c, &req, "invalid semester payload") {
		return
	}
	semester, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, semester)
}

// List godoc
// @Summary List semesters
// @Tags Semesters
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /semesters [get]
func (h *SemesterHandler) List(c *gin.Context) {
	semesters, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, semesters, len(semesters))
}

// Current godoc
// @Summary Get the current semester
// @Tags Semesters
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /semesters/current [get]
func (h *SemesterHandler) Current(c *gin.Context) {
	semester, err := h.service.GetCurrent(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semester, nil)
}

// Past godoc
// @Summary List semesters other than the current one
// @Tags Semesters
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /semesters/past [get]
func (h *SemesterHandler) Past(c *gin.Context) {
	semesters, err := h.service.ListPast(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, semesters, len(semesters))
}

// Get godoc
// @Summary Get semester by id
// @Tags Semesters
// @Produce json
// @Param id path string true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /semesters/{id} [get]
func (h *SemesterHandler) Get(c *gin.Context) {
	semester, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semester, nil)
}
