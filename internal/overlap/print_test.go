package overlap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *Table {
	return &Table{
		CohortA: "OV", CohortB: "BRCA",
		Records: []Record{
			{ModuleA: 0, ModuleB: 1, P: 0.001, FDR: 0.002},
			{ModuleA: 2, ModuleB: 0, P: 0.2, FDR: 0.3},
		},
	}
}

func TestPrint_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, testTable(), 0, FormatText))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "OV Module\tBRCA Module\tp-value\tFDR", lines[0])
	assert.Equal(t, "0\t1\t0.001\t0.002", lines[1])
	assert.Equal(t, "2\t0\t0.2\t0.3", lines[2])
}

func TestPrint_TextWithCutoff(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, testTable(), 0.01, FormatText))

	assert.Contains(t, buf.String(), "0\t1\t")
	assert.NotContains(t, buf.String(), "0.3", "records above the cutoff are dropped")
}

func TestPrint_HTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, testTable(), 0.01, FormatHTML))

	out := buf.String()
	assert.Contains(t, out, "<h4>Module Overlap")
	assert.Contains(t, out, "(FDR &le; 0.01)")
	assert.Contains(t, out, "<th>OV Module</th>")
	assert.Contains(t, out, "<td>0</td><td>1</td>")
}

func TestPrint_UnrecognizedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Print(&buf, testTable(), 0, "csv")

	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "csv", formatErr.Format)
	assert.Zero(t, buf.Len(), "a rejected format must leave no partial output")
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, ValidateFormat(FormatText))
	assert.NoError(t, ValidateFormat(FormatHTML))
	assert.Error(t, ValidateFormat("yaml"))
}
