package data

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arya182-ui/supriya/internal/dispatch"
	"github.com/Arya182-ui/supriya/internal/intent"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenCreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "supriya.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.AddTask(context.Background(), "finish report")
	assert.NoError(t, err)
}

func TestTaskLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.AddTask(ctx, "finish report")
	require.NoError(t, err)
	assert.False(t, first.Done)

	_, err = store.AddTask(ctx, "buy milk")
	require.NoError(t, err)

	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	done, err := store.CompleteTask(ctx, "report")
	require.NoError(t, err)
	require.NotNil(t, done)
	assert.Equal(t, first.ID, done.ID)
	assert.True(t, done.Done)
	require.NotNil(t, done.DoneAt)

	// Pending first in the listing.
	tasks, err = store.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.False(t, tasks[0].Done)
	assert.Equal(t, "buy milk", tasks[0].Title)
	assert.True(t, tasks[1].Done)
}

func TestCompleteTaskNoMatch(t *testing.T) {
	store := newTestStore(t)

	done, err := store.CompleteTask(context.Background(), "nothing here")
	require.NoError(t, err)
	assert.Nil(t, done)
}

func TestCompleteTaskPicksNewestPending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddTask(ctx, "call mom")
	require.NoError(t, err)
	second, err := store.AddTask(ctx, "call dad")
	require.NoError(t, err)

	done, err := store.CompleteTask(ctx, "call")
	require.NoError(t, err)
	require.NotNil(t, done)
	assert.Equal(t, second.ID, done.ID)
}

func TestDeleteTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task, err := store.AddTask(ctx, "throwaway")
	require.NoError(t, err)
	require.NoError(t, store.DeleteTask(ctx, task.ID))

	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestActionLogRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.LogAction(ctx, ActionRecord{
		TurnID:    "turn-1",
		Verb:      "open",
		Argument:  "chrome",
		Succeeded: true,
		Duration:  120 * time.Millisecond,
	})
	require.NoError(t, err)

	err = store.LogAction(ctx, ActionRecord{
		TurnID:    "turn-1",
		Verb:      "close",
		Argument:  "ghost",
		Succeeded: false,
		Error:     "no such process",
		Duration:  5 * time.Millisecond,
	})
	require.NoError(t, err)

	recs, err := store.ActionsForTurn(ctx, "turn-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "open", recs[0].Verb)
	assert.True(t, recs[0].Succeeded)
	assert.Equal(t, 120*time.Millisecond, recs[0].Duration)

	assert.Equal(t, "close", recs[1].Verb)
	assert.False(t, recs[1].Succeeded)
	assert.Equal(t, "no such process", recs[1].Error)

	other, err := store.ActionsForTurn(ctx, "turn-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAuditSinkRecords(t *testing.T) {
	store := newTestStore(t)
	sink := NewAuditSink(store)

	sink.Record(context.Background(), "turn-9", dispatch.Result{
		Directive: intent.Directive{Verb: intent.VerbOpen, Argument: "chrome"},
		Succeeded: true,
		Duration:  42 * time.Millisecond,
	})

	recs, err := store.ActionsForTurn(context.Background(), "turn-9")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "open", recs[0].Verb)
	assert.Equal(t, "chrome", recs[0].Argument)
	assert.True(t, recs[0].Succeeded)
}
