package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// SaveDetection upserts the detection result for one manager.
func (s *Store) SaveDetection(ctx context.Context, rec model.DetectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO detections (manager_id, installed, version, path, detected_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(manager_id) DO UPDATE SET
			installed=excluded.installed, version=excluded.version,
			path=excluded.path, detected_at=excluded.detected_at`,
		rec.ManagerID, rec.Installed, rec.Version, rec.Path, rec.DetectedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	s.readCache.Del(detectionCacheKey(rec.ManagerID))
	return nil
}

// GetDetection returns the last known detection for a manager, or the zero
// value with ok=false if it has never been detected.
func (s *Store) GetDetection(ctx context.Context, managerID string) (model.DetectionRecord, bool, error) {
	if v, ok := s.readCache.Get(detectionCacheKey(managerID)); ok {
		return v.(model.DetectionRecord), true, nil
	}

	var rec model.DetectionRecord
	var detectedAt string
	row := s.db.QueryRowContext(ctx, `SELECT manager_id, installed, version, path, detected_at FROM detections WHERE manager_id = ?`, managerID)
	if err := row.Scan(&rec.ManagerID, &rec.Installed, &rec.Version, &rec.Path, &detectedAt); err != nil {
		if err == sql.ErrNoRows {
			return model.DetectionRecord{}, false, nil
		}
		return model.DetectionRecord{}, false, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	rec.DetectedAt, _ = time.Parse(time.RFC3339Nano, detectedAt)
	s.readCache.SetWithTTL(detectionCacheKey(managerID), rec, 1, 0)
	return rec, true, nil
}

// ListDetections returns every manager's last known detection.
func (s *Store) ListDetections(ctx context.Context) ([]model.DetectionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT manager_id, installed, version, path, detected_at FROM detections ORDER BY manager_id`)
	if err != nil {
		return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer rows.Close()

	var out []model.DetectionRecord
	for rows.Next() {
		var rec model.DetectionRecord
		var detectedAt string
		if err := rows.Scan(&rec.ManagerID, &rec.Installed, &rec.Version, &rec.Path, &detectedAt); err != nil {
			return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
		}
		rec.DetectedAt, _ = time.Parse(time.RFC3339Nano, detectedAt)
		out = append(out, rec)
	}
	return out, nil
}

func detectionCacheKey(managerID string) string { return "detection:" + managerID }
