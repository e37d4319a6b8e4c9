package store

import (
	"context"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// Pin records a virtual or native pin. Applying the same pin twice is a
// no-op by virtue of the upsert.
func (s *Store) Pin(ctx context.Context, p model.Pin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pins (manager_id, name, pinned_version) VALUES (?, ?, ?)
		ON CONFLICT(manager_id, name) DO UPDATE SET pinned_version=excluded.pinned_version`,
		p.ManagerID, p.Name, p.PinnedVersion)
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	s.readCache.Del(outdatedCacheKey(p.ManagerID))
	return nil
}

// Unpin removes a pin. Unpinning something never pinned is a no-op.
func (s *Store) Unpin(ctx context.Context, managerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM pins WHERE manager_id = ? AND name = ?`, managerID, name); err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	s.readCache.Del(outdatedCacheKey(managerID))
	return nil
}

// ListPins returns every pin across every manager.
func (s *Store) ListPins(ctx context.Context) ([]model.Pin, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT manager_id, name, pinned_version FROM pins ORDER BY manager_id, name`)
	if err != nil {
		return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer rows.Close()

	var out []model.Pin
	for rows.Next() {
		var p model.Pin
		if err := rows.Scan(&p.ManagerID, &p.Name, &p.PinnedVersion); err != nil {
			return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// IsPinned reports whether (managerID, name) is currently pinned.
func (s *Store) IsPinned(ctx context.Context, managerID, name string) (bool, error) {
	var n int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM pins WHERE manager_id = ? AND name = ?`, managerID, name)
	if err := row.Scan(&n); err != nil {
		return false, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	return n > 0, nil
}

func (s *Store) pinnedNames(ctx context.Context, managerID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pins WHERE manager_id = ?`, managerID)
	if err != nil {
		return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
		}
		out[name] = true
	}
	return out, nil
}
