package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterKeepsColumnOrder(t *testing.T) {
	data := Dataset{
		Headers: []string{"Teacher", "Hours"},
		Rows:    [][]string{{"teacher-1", "12"}, {"teacher, jr", "4"}},
		Footer:  "ignored",
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Teacher,Hours\nteacher-1,12\n\"teacher, jr\",4\n", string(out))
}

func TestCSVExporterRejectsRaggedRows(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{Headers: []string{"a", "b"}, Rows: [][]string{{"only"}}})
	assert.Error(t, err)

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRendersManyPages(t *testing.T) {
	data := Dataset{Headers: []string{"Teacher", "Hours"}, Footer: "generated"}
	for i := 0; i < 120; i++ {
		data.Rows = append(data.Rows, []string{"teacher", "8"})
	}

	out, err := NewPDFExporter().Render(data, "Teacher workload")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestPDFExporterRejectsRaggedRows(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{Headers: []string{"a"}, Rows: [][]string{{"x", "y"}}}, "")
	assert.Error(t, err)
}
