package store

import (
	"context"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// SetKegPolicy upserts a per-package Homebrew keg-cleanup override. Mode
// KegPolicyKeep (0) is the "no override" value but is still persisted
// explicitly rather than deleted, so set_package_keg_policy(...,0) is
// distinguishable from "never set" if a future read ever needs that.
func (s *Store) SetKegPolicy(ctx context.Context, managerID, name string, mode model.KegPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO keg_policies (manager_id, name, mode) VALUES (?, ?, ?)
		ON CONFLICT(manager_id, name) DO UPDATE SET mode=excluded.mode`,
		managerID, name, int(mode))
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	return nil
}

// KegPolicyEntry is one row of the keg-policy overlay, as returned by
// list_package_keg_policies().
type KegPolicyEntry struct {
	ManagerID string
	Name      string
	Mode      model.KegPolicy
}

// ListKegPolicies returns every recorded keg-cleanup override.
func (s *Store) ListKegPolicies(ctx context.Context) ([]KegPolicyEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT manager_id, name, mode FROM keg_policies ORDER BY manager_id, name`)
	if err != nil {
		return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer rows.Close()

	var out []KegPolicyEntry
	for rows.Next() {
		var e KegPolicyEntry
		var mode int
		if err := rows.Scan(&e.ManagerID, &e.Name, &mode); err != nil {
			return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
		}
		e.Mode = model.KegPolicy(mode)
		out = append(out, e)
	}
	return out, nil
}
