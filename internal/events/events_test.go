package events_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lherron/habitus/internal/events"
	"github.com/lherron/habitus/internal/testutil"
)

func TestWriter_LogAndList(t *testing.T) {
	ctx := context.Background()
	database, _ := testutil.TempDB(t)
	w := events.NewWriter(database.DB)

	first, err := w.LogRun(ctx, events.Run{Kind: events.KindExport, Success: true, File: "a.csv", Records: 7})
	require.NoError(t, err)
	_, err = w.LogRun(ctx, events.Run{Kind: events.KindImport, Success: false, Message: "InvalidFormat"})
	require.NoError(t, err)
	_, err = w.LogRun(ctx, events.Run{Kind: events.KindBackfill, Success: true, Records: 2})
	require.NoError(t, err)

	runs, err := w.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, events.KindBackfill, runs[0].Kind)
	assert.Equal(t, first, runs[2].ID)
	assert.Equal(t, "a.csv", runs[2].File)
	assert.Equal(t, 7, runs[2].Records)
	assert.True(t, runs[2].Success)
	assert.NotEmpty(t, runs[2].Timestamp)

	imports, err := w.ListRuns(ctx, events.KindImport, 0)
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.False(t, imports[0].Success)
	assert.Equal(t, "InvalidFormat", imports[0].Message)
	assert.Empty(t, imports[0].File)

	limited, err := w.ListRuns(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestWriter_RejectsUnknownKind(t *testing.T) {
	database, _ := testutil.TempDB(t)
	w := events.NewWriter(database.DB)

	_, err := w.LogRun(context.Background(), events.Run{Kind: "restore"})

	assert.Error(t, err)
}
