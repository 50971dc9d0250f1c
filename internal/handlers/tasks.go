package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Arya182-ui/supriya/internal/data"
)

// TaskHandler manages the task list from spoken arguments. The
// argument carries its own sub-command ("create ...", "list",
// "complete ..."); a bare argument is treated as a create.
type TaskHandler struct {
	store *data.Store
}

// NewTaskHandler creates a TaskHandler over the store.
func NewTaskHandler(store *data.Store) *TaskHandler {
	return &TaskHandler{store: store}
}

// Handle interprets and runs one task argument.
func (t *TaskHandler) Handle(ctx context.Context, argument string) error {
	argument = strings.TrimSpace(argument)
	lower := strings.ToLower(argument)

	switch {
	case lower == "list" || lower == "show" || strings.HasPrefix(lower, "show my"):
		return t.list(ctx)
	case strings.HasPrefix(lower, "complete "):
		return t.complete(ctx, strings.TrimSpace(argument[len("complete "):]))
	case strings.HasPrefix(lower, "finish "):
		return t.complete(ctx, strings.TrimSpace(argument[len("finish "):]))
	case strings.HasPrefix(lower, "create "):
		return t.create(ctx, strings.TrimSpace(argument[len("create "):]))
	case strings.HasPrefix(lower, "add "):
		return t.create(ctx, strings.TrimSpace(argument[len("add "):]))
	case argument == "":
		return fmt.Errorf("task: empty argument")
	default:
		return t.create(ctx, argument)
	}
}

func (t *TaskHandler) create(ctx context.Context, title string) error {
	if title == "" {
		return fmt.Errorf("task: empty title")
	}
	task, err := t.store.AddTask(ctx, title)
	if err != nil {
		return err
	}
	log.Info().Int64("id", task.ID).Str("title", task.Title).Msg("[Handlers] Task created")
	return nil
}

func (t *TaskHandler) list(ctx context.Context) error {
	tasks, err := t.store.ListTasks(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("count", len(tasks)).Msg("[Handlers] Task list")
	for _, task := range tasks {
		status := "pending"
		if task.Done {
			status = "done"
		}
		log.Info().
			Int64("id", task.ID).
			Str("status", status).
			Str("title", task.Title).
			Msg("[Handlers] Task")
	}
	return nil
}

func (t *TaskHandler) complete(ctx context.Context, query string) error {
	if query == "" {
		return fmt.Errorf("task: empty completion query")
	}
	task, err := t.store.CompleteTask(ctx, query)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task: no pending task matches %q", query)
	}
	log.Info().Int64("id", task.ID).Str("title", task.Title).Msg("[Handlers] Task completed")
	return nil
}
