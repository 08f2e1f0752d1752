package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	Success bool   `json:"success" yaml:"success"`
	File    string `json:"file" yaml:"file"`
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestRender_Formats(t *testing.T) {
	data := result{Success: true, File: "a.csv"}
	headers := []string{"KEY", "VALUE"}
	rows := [][]string{{"success", "true"}, {"file", "a.csv"}}

	tests := []struct {
		format Format
		want   string
	}{
		{FormatJSON, "{\n  \"success\": true,\n  \"file\": \"a.csv\"\n}\n"},
		{FormatYAML, "success: true\nfile: a.csv\n"},
		{FormatTSV, "KEY\tVALUE\nsuccess\ttrue\nfile\ta.csv\n"},
		{FormatTable, "KEY      VALUE\n-------  -----\nsuccess  true\nfile     a.csv\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			r := NewRenderer(&buf, Options{Format: tt.format})
			require.NoError(t, r.Render(data, headers, rows))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRenderTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, Options{}).RenderTable([]string{"A"}, nil))
	assert.Empty(t, buf.String())
}

func TestRender_Porcelain(t *testing.T) {
	data := result{Success: true, File: "a.csv"}
	headers := []string{"KEY", "VALUE"}
	rows := [][]string{{"file", "a.csv"}}

	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{Format: FormatTable, Porcelain: true})
	require.NoError(t, r.Render(data, headers, rows))
	assert.Equal(t, "KEY\tVALUE\nfile\ta.csv\n", buf.String())

	buf.Reset()
	r = NewRenderer(&buf, Options{Format: FormatJSON, Porcelain: true})
	require.NoError(t, r.Render(data, headers, rows))
	assert.Equal(t, "{\"success\":true,\"file\":\"a.csv\"}\n", buf.String())
}
