package prompt

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuto(t *testing.T) {
	ok, err := Auto(true).Confirm(context.Background(), "import?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Auto(false).Confirm(context.Background(), "import?")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{Answer: true}

	ok, err := r.Confirm(context.Background(), "Import 3 tasks?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Import 3 tasks?"}, r.Confirmations)

	_, found := r.Last()
	assert.False(t, found)

	r.Notify("backup failed", SeverityWarning)
	r.Notify("done", SeveritySuccess)

	last, found := r.Last()
	require.True(t, found)
	assert.Equal(t, "done", last.Message)
	assert.Len(t, r.WithSeverity(SeverityWarning), 1)
	assert.Empty(t, r.WithSeverity(SeverityError))
}

func TestTerminal_Notify(t *testing.T) {
	var buf bytes.Buffer
	Terminal{W: &buf}.Notify("Exported 7 records", SeveritySuccess)
	Terminal{W: &buf}.Notify("odd", Severity("custom"))

	out := buf.String()
	assert.Contains(t, out, "✓ Exported 7 records")
	assert.Contains(t, out, "• odd")
}
