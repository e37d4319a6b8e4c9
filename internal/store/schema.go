package store

import (
	"context"
	"fmt"

	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// migration is one forward-only schema step, applied in order and recorded
// in the migrations table so a restart never re-applies a completed step.
type migration struct {
	id  string
	sql string
}

// migrations lists every schema step in application order. Adding a table
// or column means appending a new entry here, never editing an existing
// one, mirroring lake/api/config/postgres.go's ordered, individually
// tracked CREATE TABLE IF NOT EXISTS / ALTER TABLE statements.
var migrations = []migration{
	{
		id: "0001_detections",
		sql: `CREATE TABLE IF NOT EXISTS detections (
			manager_id  TEXT PRIMARY KEY,
			installed   INTEGER NOT NULL,
			version     TEXT NOT NULL DEFAULT '',
			path        TEXT NOT NULL DEFAULT '',
			detected_at TEXT NOT NULL
		)`,
	},
	{
		id: "0002_installed_packages",
		sql: `CREATE TABLE IF NOT EXISTS installed_packages (
			manager_id TEXT NOT NULL,
			name       TEXT NOT NULL,
			version    TEXT NOT NULL,
			cached_at  TEXT NOT NULL,
			PRIMARY KEY (manager_id, name)
		)`,
	},
	{
		id: "0003_outdated_packages",
		sql: `CREATE TABLE IF NOT EXISTS outdated_packages (
			manager_id        TEXT NOT NULL,
			name              TEXT NOT NULL,
			installed_version TEXT NOT NULL,
			latest_version    TEXT NOT NULL,
			restart_required  INTEGER NOT NULL DEFAULT 0,
			cached_at         TEXT NOT NULL,
			PRIMARY KEY (manager_id, name)
		)`,
	},
	{
		id: "0004_tasks",
		sql: `CREATE TABLE IF NOT EXISTS tasks (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			manager_id  TEXT NOT NULL,
			kind        TEXT NOT NULL,
			target      TEXT NOT NULL DEFAULT '',
			label_key   TEXT NOT NULL DEFAULT '',
			label_args  TEXT NOT NULL DEFAULT '{}',
			state       TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			started_at  TEXT,
			ended_at    TEXT,
			error_key   TEXT NOT NULL DEFAULT '',
			error_args  TEXT NOT NULL DEFAULT '{}'
		)`,
	},
	{
		id:  "0004b_tasks_manager_state_idx",
		sql: `CREATE INDEX IF NOT EXISTS idx_tasks_manager_state ON tasks (manager_id, state)`,
	},
	{
		id: "0005_pins",
		sql: `CREATE TABLE IF NOT EXISTS pins (
			manager_id     TEXT NOT NULL,
			name           TEXT NOT NULL,
			pinned_version TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (manager_id, name)
		)`,
	},
	{
		id: "0006_app_settings",
		sql: `CREATE TABLE IF NOT EXISTS app_settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	},
	{
		id: "0007_search_cache",
		sql: `CREATE TABLE IF NOT EXISTS search_cache (
			query        TEXT NOT NULL,
			manager_id   TEXT NOT NULL,
			payload_json BLOB NOT NULL,
			compressed   INTEGER NOT NULL DEFAULT 0,
			fetched_at   TEXT NOT NULL,
			expires_at   TEXT NOT NULL,
			PRIMARY KEY (query, manager_id)
		)`,
	},
	{
		id: "0008_task_raw_output",
		sql: `CREATE TABLE IF NOT EXISTS task_raw_output (
			task_id    INTEGER PRIMARY KEY REFERENCES tasks(id) ON DELETE CASCADE,
			stdout     BLOB NOT NULL,
			compressed INTEGER NOT NULL DEFAULT 0
		)`,
	},
	{
		id: "0009_keg_policies",
		sql: `CREATE TABLE IF NOT EXISTS keg_policies (
			manager_id TEXT NOT NULL,
			name       TEXT NOT NULL,
			mode       INTEGER NOT NULL,
			PRIMARY KEY (manager_id, name)
		)`,
	},
}

// migrate applies every not-yet-recorded migration in order, inside a
// single transaction each, tracked by id in the migrations table.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS migrations (
		id         TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return pkgerr.New(pkgerr.KindPersistenceMigration, err)
	}

	applied := make(map[string]bool)
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM migrations`)
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceMigration, err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return pkgerr.New(pkgerr.KindPersistenceMigration, err)
		}
		applied[id] = true
	}
	rows.Close()

	for _, m := range migrations {
		if applied[m.id] {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return err
		}
		s.log.Info("store: applied migration", "id", m.id)
	}
	return nil
}

func (s *Store) applyMigration(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceMigration, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return pkgerr.New(pkgerr.KindPersistenceMigration, fmt.Errorf("migration %s: %w", m.id, err))
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO migrations (id, applied_at) VALUES (?, datetime('now'))`, m.id); err != nil {
		return pkgerr.New(pkgerr.KindPersistenceMigration, err)
	}
	if err := tx.Commit(); err != nil {
		return pkgerr.New(pkgerr.KindPersistenceMigration, err)
	}
	return nil
}

// ResetDatabase drops every table this package owns and re-applies every
// migration from scratch, for the engine's reset_database() operation.
func (s *Store) ResetDatabase(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"detections", "installed_packages", "outdated_packages", "tasks",
		"pins", "app_settings", "search_cache", "task_raw_output",
		"keg_policies", "migrations",
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer tx.Rollback()
	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+t); err != nil {
			return pkgerr.New(pkgerr.KindPersistenceIO, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}

	s.InvalidateReadCache()
	s.searchCache.DeleteAll()
	return s.migrate(ctx)
}
