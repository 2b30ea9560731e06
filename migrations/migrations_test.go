package migrations

import (
	"io/fs"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportSchemaStoresPayloadsVerbatim(t *testing.T) {
	body, err := fs.ReadFile(Files, "0001_rdic_reports.sql")
	require.NoError(t, err)

	schema := string(body)
	require.Regexp(t, regexp.MustCompile(`draft_payload\s+JSON\s+NOT NULL`), schema)
	require.Regexp(t, regexp.MustCompile(`final_payload\s+JSON,`), schema)
	require.NotContains(t, schema, "JSONB")
}

func TestFilesAreOrdered(t *testing.T) {
	names, err := fs.Glob(Files, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	require.Equal(t, "0001_rdic_reports.sql", names[0])
}
