// Package localstore is the device-local persistent store the client runs
// against when no network or no session is available. It is a plain
// string-keyed table in a SQLite file, holding the session token and the
// single authoritative task list as JSON.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"todoapp/internal/model"
)

const (
	KeyToken = "token"
	KeyTasks = "local_tasks"

	// Legacy keys from the earlier bucket-per-state layout. Read once and
	// folded into KeyTasks, never written again.
	keyLegacyPending   = "pending_tasks"
	keyLegacyCompleted = "completed_tasks"
)

var ErrNotFound = errors.New("localstore: key not found")

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure kv table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// Token returns the stored bearer token, or "" when not logged in.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, err := s.Get(ctx, KeyToken)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return token, err
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.Set(ctx, KeyToken, token)
}

func (s *Store) ClearToken(ctx context.Context) error {
	return s.Delete(ctx, KeyToken)
}

// Tasks loads the authoritative local task list. Legacy per-bucket keys from
// older installs are folded in on first read.
func (s *Store) Tasks(ctx context.Context) ([]model.Task, error) {
	if err := s.migrateLegacyBuckets(ctx); err != nil {
		return nil, err
	}

	raw, err := s.Get(ctx, KeyTasks)
	if errors.Is(err, ErrNotFound) {
		return []model.Task{}, nil
	}
	if err != nil {
		return nil, err
	}

	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}
	return tasks, nil
}

func (s *Store) SaveTasks(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode task list: %w", err)
	}
	return s.Set(ctx, KeyTasks, string(raw))
}

// migrateLegacyBuckets merges the old pending_tasks and completed_tasks
// buckets into the single list. Pending entries become pendingCreate so the
// next authenticated fetch replays them.
func (s *Store) migrateLegacyBuckets(ctx context.Context) error {
	pending, foundPending, err := s.readLegacyBucket(ctx, keyLegacyPending)
	if err != nil {
		return err
	}
	completed, foundCompleted, err := s.readLegacyBucket(ctx, keyLegacyCompleted)
	if err != nil {
		return err
	}
	if !foundPending && !foundCompleted {
		return nil
	}

	raw, err := s.Get(ctx, KeyTasks)
	var tasks []model.Task
	if err == nil {
		if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
			return fmt.Errorf("decode task list: %w", err)
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	for _, t := range pending {
		if t.SyncStatus == "" {
			t.SyncStatus = model.SyncPendingCreate
		}
		tasks = appendIfNew(tasks, t)
	}
	for _, t := range completed {
		t.Done = true
		tasks = appendIfNew(tasks, t)
	}

	if err := s.SaveTasks(ctx, tasks); err != nil {
		return err
	}
	if err := s.Delete(ctx, keyLegacyPending); err != nil {
		return err
	}
	return s.Delete(ctx, keyLegacyCompleted)
}

func (s *Store) readLegacyBucket(ctx context.Context, key string) ([]model.Task, bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, false, fmt.Errorf("decode legacy bucket %s: %w", key, err)
	}
	return tasks, true, nil
}

func appendIfNew(tasks []model.Task, candidate model.Task) []model.Task {
	for _, existing := range tasks {
		if existing.SameIdentity(candidate) {
			return tasks
		}
	}
	return append(tasks, candidate)
}
