package workbench

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jwtly10/go-reqbench/internal/history"
	"github.com/jwtly10/go-reqbench/internal/state"
	testutil "github.com/jwtly10/go-reqbench/internal/testutils"
	"github.com/stretchr/testify/require"
)

func setupWorkbench(t *testing.T) *Workbench {
	t.Helper()

	db, cleanup := testutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	w := New(history.NewRepository(db), testutil.TestLogger())
	t.Cleanup(w.Close)
	return w
}

func TestWorkbenchStartsEmpty(t *testing.T) {
	w := setupWorkbench(t)

	require.Equal(t, state.Request{}, w.Request.Snapshot())
	require.Equal(t, state.Response{}, w.Response.Snapshot())
}

func TestWorkbenchSaveAndRestore(t *testing.T) {
	w := setupWorkbench(t)
	ctx := context.Background()

	w.Request.UpdateMethod("PUT")
	w.Request.UpdateURL("http://localhost:8080/users/1")
	w.Request.UpdateBody(`{"name":"bob"}`)
	w.Request.UpdateHeaders("Content-Type: application/json")
	saved := w.Request.Snapshot()

	entry, err := w.SaveRequest(ctx)
	require.NoError(t, err)
	require.Equal(t, saved, entry.Request)

	// Edit the request, then restore the saved one
	w.Request.UpdateMethod("GET")
	w.Request.UpdateURL("http://elsewhere")
	w.Request.UpdateBody("")
	w.Request.UpdateHeaders("")

	var notified []state.Request
	unsubscribe := w.Request.Subscribe(func(r state.Request) { notified = append(notified, r) })
	defer unsubscribe()

	restored, err := w.RestoreRequest(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, saved, restored)
	require.Equal(t, saved, w.Request.Snapshot())

	// Initial delivery plus one notification per field
	require.Len(t, notified, 5)
	require.Equal(t, saved, notified[len(notified)-1])
}

func TestWorkbenchRestoreMissingEntry(t *testing.T) {
	w := setupWorkbench(t)
	w.Request.UpdateURL("http://keep")

	_, err := w.RestoreRequest(context.Background(), uuid.New())
	require.ErrorIs(t, err, history.ErrNotFound)
	require.Equal(t, "http://keep", w.Request.Snapshot().URL)
}

func TestWorkbenchHistory(t *testing.T) {
	w := setupWorkbench(t)
	ctx := context.Background()

	w.Request.UpdateURL("http://one")
	first, err := w.SaveRequest(ctx)
	require.NoError(t, err)

	w.Request.UpdateURL("http://two")
	_, err = w.SaveRequest(ctx)
	require.NoError(t, err)

	entries, err := w.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "http://two", entries[0].Request.URL)

	found, err := w.HistoryEntry(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "http://one", found.Request.URL)

	require.NoError(t, w.DeleteHistoryEntry(ctx, first.ID))
	entries, err = w.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWorkbenchResponseIsIndependent(t *testing.T) {
	w := setupWorkbench(t)

	w.Request.UpdateURL("http://x")
	w.Response.UpdateBody(`{"ok":true}`)

	require.Equal(t, state.Request{URL: "http://x"}, w.Request.Snapshot())
	require.Equal(t, state.Response{Body: `{"ok":true}`}, w.Response.Snapshot())
}
