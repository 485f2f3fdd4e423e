package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
	"github.com/ElCzar/secchub-backend-sub001/pkg/export"
)

type brokenPDF struct{}

func (brokenPDF) Render(data export.Dataset, title string) ([]byte, error) {
	return nil, errors.New("font missing")
}

func sampleWorkload() []models.WorkloadReport {
	return []models.WorkloadReport{
		{TeacherID: "teacher-1", AssignedHours: 12, MaxHours: 10, ExceedsCapacity: true},
		{TeacherID: "teacher-2", AssignedHours: 4, MaxHours: 20, AvailableHours: 16, AvailableForExtraHours: true},
	}
}

func TestRenderWorkloadCSV(t *testing.T) {
	svc := NewExportService(nil, nil, nil)
	generated := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	file, err := svc.RenderWorkload(sampleWorkload(), models.ReportFormatCSV, generated)
	require.NoError(t, err)
	assert.Equal(t, "workload-20240301-103000.csv", file.Filename)

	lines := strings.Split(strings.TrimSpace(string(file.Payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Teacher,Assigned Hours,Max Hours,Available Hours,Exceeds Capacity", lines[0])
	assert.Equal(t, "teacher-1,12,10,0,true", lines[1])
}

func TestRenderWorkloadPDF(t *testing.T) {
	svc := NewExportService(nil, nil, nil)

	file, err := svc.RenderWorkload(sampleWorkload(), models.ReportFormatPDF, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Payload), "%PDF"))
}

func TestRenderWorkloadErrors(t *testing.T) {
	svc := NewExportService(nil, brokenPDF{}, nil)

	_, err := svc.RenderWorkload(sampleWorkload(), models.ReportFormatPDF, time.Now())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal.Code))

	_, err = svc.RenderWorkload(sampleWorkload(), models.ReportFormatJSON, time.Now())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}
