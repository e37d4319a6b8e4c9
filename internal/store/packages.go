package store

import (
	"context"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// ReplaceInstalled atomically replaces one manager's installed-package
// snapshot: delete-then-insert inside a single transaction, so a reader
// never observes a half-written set.
func (s *Store) ReplaceInstalled(ctx context.Context, managerID string, recs []model.PackageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM installed_packages WHERE manager_id = ?`, managerID); err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO installed_packages (manager_id, name, version, cached_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer stmt.Close()
	for _, r := range recs {
		cachedAt := r.CachedAt
		if cachedAt.IsZero() {
			cachedAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, managerID, r.Name, r.InstalledVersion, cachedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return pkgerr.New(pkgerr.KindPersistenceIO, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	s.readCache.Del(installedCacheKey(managerID))
	return nil
}

// ReplaceOutdated atomically replaces one manager's outdated-package
// snapshot, enforcing the HasUpdate invariant before the write lands.
func (s *Store) ReplaceOutdated(ctx context.Context, managerID string, recs []model.PackageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM outdated_packages WHERE manager_id = ?`, managerID); err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outdated_packages (manager_id, name, installed_version, latest_version, restart_required, cached_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer stmt.Close()
	for _, r := range recs {
		if !r.HasUpdate() {
			continue // defense in depth: adapters already filter, the store enforces again at the boundary
		}
		cachedAt := r.CachedAt
		if cachedAt.IsZero() {
			cachedAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, managerID, r.Name, r.InstalledVersion, r.LatestVersion, r.RestartRequired, cachedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return pkgerr.New(pkgerr.KindPersistenceIO, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	s.readCache.Del(outdatedCacheKey(managerID))
	return nil
}

// ListInstalled returns one manager's cached installed-package snapshot.
func (s *Store) ListInstalled(ctx context.Context, managerID string) ([]model.PackageRecord, error) {
	if v, ok := s.readCache.Get(installedCacheKey(managerID)); ok {
		return v.([]model.PackageRecord), nil
	}
	recs, err := s.queryPackages(ctx, `SELECT manager_id, name, version, '', 0, cached_at FROM installed_packages WHERE manager_id = ? ORDER BY name`, managerID)
	if err != nil {
		return nil, err
	}
	s.readCache.SetWithTTL(installedCacheKey(managerID), recs, 1, 0)
	return recs, nil
}

// ListOutdated returns one manager's cached outdated-package snapshot,
// with pin status overlaid from the pins table.
func (s *Store) ListOutdated(ctx context.Context, managerID string) ([]model.PackageRecord, error) {
	if v, ok := s.readCache.Get(outdatedCacheKey(managerID)); ok {
		return v.([]model.PackageRecord), nil
	}
	recs, err := s.queryOutdated(ctx, managerID)
	if err != nil {
		return nil, err
	}
	pinned, err := s.pinnedNames(ctx, managerID)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].Pinned = pinned[recs[i].Name]
	}
	s.readCache.SetWithTTL(outdatedCacheKey(managerID), recs, 1, 0)
	return recs, nil
}

// ListAllOutdated returns every manager's cached outdated set, pin status
// overlaid, for the engine-wide list_outdated_packages() read.
func (s *Store) ListAllOutdated(ctx context.Context) ([]model.PackageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.manager_id, o.name, o.installed_version, o.latest_version, o.restart_required, o.cached_at,
		       p.manager_id IS NOT NULL
		FROM outdated_packages o
		LEFT JOIN pins p ON p.manager_id = o.manager_id AND p.name = o.name
		ORDER BY o.manager_id, o.name`)
	if err != nil {
		return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer rows.Close()

	var out []model.PackageRecord
	for rows.Next() {
		var r model.PackageRecord
		var cachedAt string
		if err := rows.Scan(&r.ManagerID, &r.Name, &r.InstalledVersion, &r.LatestVersion, &r.RestartRequired, &cachedAt, &r.Pinned); err != nil {
			return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
		}
		r.CachedAt, _ = time.Parse(time.RFC3339Nano, cachedAt)
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) queryOutdated(ctx context.Context, managerID string) ([]model.PackageRecord, error) {
	return s.queryPackages(ctx, `SELECT manager_id, name, installed_version, latest_version, restart_required, cached_at FROM outdated_packages WHERE manager_id = ? ORDER BY name`, managerID)
}

func (s *Store) queryPackages(ctx context.Context, query string, args ...any) ([]model.PackageRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer rows.Close()

	var out []model.PackageRecord
	for rows.Next() {
		var r model.PackageRecord
		var cachedAt string
		if err := rows.Scan(&r.ManagerID, &r.Name, &r.InstalledVersion, &r.LatestVersion, &r.RestartRequired, &cachedAt); err != nil {
			return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
		}
		r.CachedAt, _ = time.Parse(time.RFC3339Nano, cachedAt)
		out = append(out, r)
	}
	return out, nil
}

func installedCacheKey(managerID string) string { return "installed:" + managerID }
func outdatedCacheKey(managerID string) string  { return "outdated:" + managerID }
