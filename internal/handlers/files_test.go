package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arya182-ui/supriya/internal/data"
)

// walkSearcher builds a FileSearcher pinned to the directory walk so
// tests do not depend on which tools the host has.
func walkSearcher(root string, opts ...FileOption) *FileSearcher {
	f := NewFileSearcher(append([]FileOption{WithSearchRoot(root)}, opts...)...)
	f.hasMdfind = false
	f.hasFind = false
	return f
}

func seedFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}
}

func TestFileSearcherWalk(t *testing.T) {
	root := t.TempDir()
	seedFiles(t, root,
		"docs/Resume-2024.pdf",
		"docs/notes.txt",
		"photos/resume_photo.jpg",
		"node_modules/resume.js",
	)

	f := walkSearcher(root)
	matches, err := f.Search(context.Background(), "resume")
	require.NoError(t, err)

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.Name)
	}
	assert.ElementsMatch(t, []string{"Resume-2024.pdf", "resume_photo.jpg"}, names)
}

func TestFileSearcherMaxResults(t *testing.T) {
	root := t.TempDir()
	seedFiles(t, root, "report-1.txt", "report-2.txt", "report-3.txt", "report-4.txt")

	f := walkSearcher(root, WithMaxResults(2))
	matches, err := f.Search(context.Background(), "report")
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestFileSearcherEmptyQuery(t *testing.T) {
	f := walkSearcher(t.TempDir())
	_, err := f.Search(context.Background(), "   ")
	assert.Error(t, err)
}

func TestFileSearcherNoMatches(t *testing.T) {
	root := t.TempDir()
	seedFiles(t, root, "notes.txt")

	f := walkSearcher(root)
	matches, err := f.Search(context.Background(), "invoice")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestTaskHandlerArguments(t *testing.T) {
	store, err := data.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewTaskHandler(store)
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, "create buy groceries"))
	require.NoError(t, h.Handle(ctx, "add call the dentist"))
	require.NoError(t, h.Handle(ctx, "water the plants"))

	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	require.NoError(t, h.Handle(ctx, "complete groceries"))
	tasks, err = store.ListTasks(ctx)
	require.NoError(t, err)

	var doneTitles []string
	for _, task := range tasks {
		if task.Done {
			doneTitles = append(doneTitles, task.Title)
		}
	}
	assert.Equal(t, []string{"buy groceries"}, doneTitles)

	require.NoError(t, h.Handle(ctx, "list"))
}

func TestTaskHandlerErrors(t *testing.T) {
	store, err := data.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewTaskHandler(store)
	ctx := context.Background()

	assert.Error(t, h.Handle(ctx, ""))
	assert.Error(t, h.Handle(ctx, "complete something that does not exist"))
}
