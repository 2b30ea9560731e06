package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPDFExporterRender(t *testing.T) {
	doc := Document{
		Title:  "RDIC 2024-B1",
		Fields: []Field{{Label: "Child", Value: "child-1"}, {Label: "Status", Value: "PUBLISHED"}},
		Sections: []Section{
			{Heading: "Observations", Body: strings.Repeat("Participou das atividades com interesse. ", 80)},
		},
		Footer: "report-1",
	}
	out, err := NewPDFExporter().Render(doc)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRequiresTitle(t *testing.T) {
	_, err := NewPDFExporter().Render(Document{})
	require.Error(t, err)
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Columns: []Column{{Key: "id"}, {Key: "status", Title: "Status"}},
		Rows:    []map[string]string{{"id": "r-1", "status": "DRAFT"}, {"id": "r-2"}},
	})
	require.NoError(t, err)
	require.Equal(t, "id,Status\nr-1,DRAFT\nr-2,\n", string(out))

	_, err = NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}
