package store

import (
	"context"
	"database/sql"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// GetSetting returns a raw app_settings value, or "" with ok=false if unset.
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	row := s.db.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	return value, true, nil
}

// SetSetting upserts a raw app_settings value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	return nil
}

// GetSafeMode returns the current safe_mode flag, defaulting to true
// (guarded managers stay locked down until explicitly opted in).
func (s *Store) GetSafeMode(ctx context.Context) (bool, error) {
	v, ok, err := s.GetSetting(ctx, model.SettingSafeMode)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return v == "true", nil
}

// SetSafeMode sets the safe_mode flag.
func (s *Store) SetSafeMode(ctx context.Context, on bool) error {
	return s.SetSetting(ctx, model.SettingSafeMode, boolString(on))
}

// IsManagerEnabled reports whether a manager is enabled, defaulting to true.
func (s *Store) IsManagerEnabled(ctx context.Context, managerID string) (bool, error) {
	v, ok, err := s.GetSetting(ctx, model.ManagerEnabledKey(managerID))
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return v == "true", nil
}

// SetManagerEnabled enables or disables a manager.
func (s *Store) SetManagerEnabled(ctx context.Context, managerID string, enabled bool) error {
	return s.SetSetting(ctx, model.ManagerEnabledKey(managerID), boolString(enabled))
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
