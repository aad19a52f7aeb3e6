package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	data := Dataset{
		Headers: []string{"Application", "Status"},
		Rows: []map[string]string{
			{"Application": "app-1", "Status": "UNDER_REVIEW"},
			{"Application": "app-2", "Status": "APPROVED"},
		},
	}

	out, err := exporter.Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Application,Status\napp-1,UNDER_REVIEW\napp-2,APPROVED\n", string(out))
}

func TestCSVExporterRenderMissingCell(t *testing.T) {
	exporter := NewCSVExporter()
	data := Dataset{
		Headers: []string{"Application", "Status"},
		Rows:    []map[string]string{{"Application": "app-1"}},
	}

	out, err := exporter.Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Application,Status\napp-1,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	assert.Error(t, err)
}
