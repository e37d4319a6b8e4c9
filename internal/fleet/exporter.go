package fleet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/store"
)

const exporterSchema = `
CREATE TABLE IF NOT EXISTS manifold_tasks (
	host_id     TEXT NOT NULL,
	task_id     BIGINT NOT NULL,
	manager_id  TEXT NOT NULL,
	kind        TEXT NOT NULL,
	target      TEXT NOT NULL,
	state       TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	ended_at    TIMESTAMPTZ,
	error_key   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (host_id, task_id)
);

CREATE TABLE IF NOT EXISTS manifold_outdated (
	host_id      TEXT NOT NULL,
	manager_id   TEXT NOT NULL,
	package_name TEXT NOT NULL,
	current      TEXT NOT NULL,
	available    TEXT NOT NULL,
	observed_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (host_id, manager_id, package_name)
);`

// Exporter mirrors terminal tasks and the current outdated-package
// snapshot to a central Postgres database, tagged with HostID. It is
// strictly one-way: local state flows out, nothing flows back, mirroring
// lake/api/config/postgres.go's pgxpool setup plus inline migration.
type Exporter struct {
	pool   *pgxpool.Pool
	hostID string
	store  *store.Store
	log    *slog.Logger
}

// NewExporter connects to dsn, applies the exporter schema, and returns
// an Exporter tagging every row with hostID.
func NewExporter(ctx context.Context, dsn, hostID string, s *store.Store, log *slog.Logger) (*Exporter, error) {
	if log == nil {
		log = slog.Default()
	}
	pgCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("fleet: parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("fleet: open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("fleet: ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, exporterSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("fleet: apply exporter schema: %w", err)
	}
	return &Exporter{pool: pool, hostID: hostID, store: s, log: log}, nil
}

// Close releases the underlying connection pool.
func (e *Exporter) Close() { e.pool.Close() }

// ExportTask upserts one terminal task row. Called by the daemon right
// after the queue transitions a task to a terminal state; a transient
// Postgres error is logged and swallowed rather than failing the task,
// since this mirror is best-effort and must never affect local execution.
func (e *Exporter) ExportTask(ctx context.Context, t model.Task) {
	var endedAt any
	if t.EndedAt != nil {
		endedAt = t.EndedAt.UTC()
	}
	_, err := e.pool.Exec(ctx, `
		INSERT INTO manifold_tasks (host_id, task_id, manager_id, kind, target, state, created_at, ended_at, error_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (host_id, task_id) DO UPDATE SET
			state = excluded.state, ended_at = excluded.ended_at, error_key = excluded.error_key`,
		e.hostID, t.ID, t.ManagerID, string(t.Kind), t.Target, string(t.State), t.CreatedAt.UTC(), endedAt, t.ErrorKey)
	if err != nil {
		e.log.Warn("fleet: exporter failed to mirror task", "task_id", t.ID, "err", err)
	}
}

// ExportOutdated replaces this host's outdated-package snapshot for one
// manager with recs. cmd/manifoldd does not call it; only ExportTask is
// wired to the task event stream.
func (e *Exporter) ExportOutdated(ctx context.Context, managerID string, recs []model.PackageRecord) {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		e.log.Warn("fleet: exporter failed to begin outdated export", "manager_id", managerID, "err", err)
		return
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM manifold_outdated WHERE host_id = $1 AND manager_id = $2`, e.hostID, managerID); err != nil {
		e.log.Warn("fleet: exporter failed to clear outdated snapshot", "manager_id", managerID, "err", err)
		return
	}
	now := time.Now().UTC()
	for _, r := range recs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO manifold_outdated (host_id, manager_id, package_name, current, available, observed_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			e.hostID, managerID, r.Name, r.InstalledVersion, r.LatestVersion, now); err != nil {
			e.log.Warn("fleet: exporter failed to insert outdated row", "manager_id", managerID, "package", r.Name, "err", err)
			return
		}
	}
	if err := tx.Commit(ctx); err != nil {
		e.log.Warn("fleet: exporter failed to commit outdated export", "manager_id", managerID, "err", err)
	}
}
