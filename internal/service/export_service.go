package service

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
	"github.com/ElCzar/secchub-backend-sub001/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportedFile is a rendered report ready to stream to a client.
type ExportedFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders planning reports into downloadable files.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

var workloadHeaders = []string{"Teacher", "Assigned Hours", "Max Hours", "Available Hours", "Exceeds Capacity"}

// RenderWorkload renders workload rows as CSV or PDF.
func (s *ExportService) RenderWorkload(reports []models.WorkloadReport, format models.ReportFormat, generatedAt time.Time) (*ExportedFile, error) {
	dataset := export.Dataset{
		Headers: workloadHeaders,
		Footer:  "Generated " + generatedAt.UTC().Format(time.RFC3339),
	}
	for _, report := range reports {
		dataset.Rows = append(dataset.Rows, []string{
			report.TeacherID,
			strconv.Itoa(report.AssignedHours),
			strconv.Itoa(report.MaxHours),
			strconv.Itoa(report.AvailableHours),
			strconv.FormatBool(report.ExceedsCapacity),
		})
	}

	stamp := generatedAt.UTC().Format("20060102-150405")
	var (
		payload []byte
		err     error
		file    ExportedFile
	)
	switch format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
		file = ExportedFile{Filename: fmt.Sprintf("workload-%s.csv", stamp), ContentType: "text/csv"}
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Teacher workload")
		file = ExportedFile{Filename: fmt.Sprintf("workload-%s.pdf", stamp), ContentType: "application/pdf"}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("failed to render workload export", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render workload report")
	}
	file.Payload = payload
	return &file, nil
}
