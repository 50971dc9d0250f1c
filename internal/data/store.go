// Package data persists assistant state in a local SQLite database:
// the task list and an audit log of dispatched actions.
package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	done        INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL,
	done_at     TIMESTAMP
);

CREATE TABLE IF NOT EXISTS action_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	turn_id     TEXT NOT NULL,
	verb        TEXT NOT NULL,
	argument    TEXT NOT NULL,
	succeeded   INTEGER NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_action_log_turn ON action_log(turn_id);
`

// Task is one entry in the task list.
type Task struct {
	ID        int64
	Title     string
	Done      bool
	CreatedAt time.Time
	DoneAt    *time.Time
}

// ActionRecord is one audited action.
type ActionRecord struct {
	ID        int64
	TurnID    string
	Verb      string
	Argument  string
	Succeeded bool
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("data: create dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("data: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("data: apply schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("[Data] Store opened")
	return &Store{db: db}, nil
}

// OpenInMemory opens an in-memory database. Used by tests.
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("data: open in-memory: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("data: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddTask inserts a task and returns it.
func (s *Store) AddTask(ctx context.Context, title string) (*Task, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, done, created_at) VALUES (?, 0, ?)`, title, now)
	if err != nil {
		return nil, fmt.Errorf("data: add task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("data: add task id: %w", err)
	}
	return &Task{ID: id, Title: title, CreatedAt: now}, nil
}

// ListTasks returns tasks, pending first, newest within each group.
func (s *Store) ListTasks(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, done, created_at, done_at FROM tasks ORDER BY done ASC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("data: list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var done int
		var doneAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.Title, &done, &t.CreatedAt, &doneAt); err != nil {
			return nil, fmt.Errorf("data: scan task: %w", err)
		}
		t.Done = done != 0
		if doneAt.Valid {
			t.DoneAt = &doneAt.Time
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CompleteTask marks the newest pending task whose title contains the
// query as done. It returns the completed task, or nil when nothing
// matched.
func (s *Store) CompleteTask(ctx context.Context, query string) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_at FROM tasks
		 WHERE done = 0 AND title LIKE '%' || ? || '%'
		 ORDER BY id DESC LIMIT 1`, query)

	var t Task
	if err := row.Scan(&t.ID, &t.Title, &t.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("data: find task: %w", err)
	}

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET done = 1, done_at = ? WHERE id = ?`, now, t.ID); err != nil {
		return nil, fmt.Errorf("data: complete task: %w", err)
	}
	t.Done = true
	t.DoneAt = &now
	return &t, nil
}

// DeleteTask removes a task by id.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("data: delete task: %w", err)
	}
	return nil
}

// LogAction appends one action to the audit log.
func (s *Store) LogAction(ctx context.Context, rec ActionRecord) error {
	succeeded := 0
	if rec.Succeeded {
		succeeded = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO action_log (turn_id, verb, argument, succeeded, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.TurnID, rec.Verb, rec.Argument, succeeded, rec.Error,
		rec.Duration.Milliseconds(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("data: log action: %w", err)
	}
	return nil
}

// ActionsForTurn returns the audited actions of one turn, oldest
// first.
func (s *Store) ActionsForTurn(ctx context.Context, turnID string) ([]ActionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, turn_id, verb, argument, succeeded, error, duration_ms, created_at
		 FROM action_log WHERE turn_id = ? ORDER BY id ASC`, turnID)
	if err != nil {
		return nil, fmt.Errorf("data: actions for turn: %w", err)
	}
	defer rows.Close()

	var recs []ActionRecord
	for rows.Next() {
		var rec ActionRecord
		var succeeded int
		var durationMS int64
		if err := rows.Scan(&rec.ID, &rec.TurnID, &rec.Verb, &rec.Argument,
			&succeeded, &rec.Error, &durationMS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("data: scan action: %w", err)
		}
		rec.Succeeded = succeeded != 0
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
