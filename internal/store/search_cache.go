package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// SaveSearch persists a Search capability's results and primes the
// in-memory ttlcache so the next lookup within the TTL window skips SQLite
// entirely, the same hot-path shape the teacher's telemetry provider uses
// for its own ttlcache.Cache[string, any].
func (s *Store) SaveSearch(ctx context.Context, managerID, query string, results []model.SearchResult, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(results)
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	payload, compressed, err := maybeCompress(raw)
	if err != nil {
		return err
	}
	now := time.Now()
	expires := now.Add(ttl)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO search_cache (query, manager_id, payload_json, compressed, fetched_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(query, manager_id) DO UPDATE SET
			payload_json=excluded.payload_json, compressed=excluded.compressed,
			fetched_at=excluded.fetched_at, expires_at=excluded.expires_at`,
		query, managerID, payload, compressed, now.UTC().Format(time.RFC3339Nano), expires.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}

	if ttl > 0 { // ttlcache treats a non-positive ttl as "never expires"
		s.searchCache.Set(searchCacheKey(managerID, query), raw, ttl)
	}
	return nil
}

// GetSearch returns cached Search results for (managerID, query) if they
// haven't expired, serving from the ttlcache before falling back to SQLite.
func (s *Store) GetSearch(ctx context.Context, managerID, query string) ([]model.SearchResult, bool, error) {
	key := searchCacheKey(managerID, query)
	if item := s.searchCache.Get(key); item != nil {
		var results []model.SearchResult
		if err := json.Unmarshal(item.Value(), &results); err != nil {
			return nil, false, pkgerr.New(pkgerr.KindPersistenceIO, err)
		}
		return results, true, nil
	}

	var payload []byte
	var compressed bool
	var expiresAt string
	row := s.db.QueryRowContext(ctx, `SELECT payload_json, compressed, expires_at FROM search_cache WHERE query = ? AND manager_id = ?`, query, managerID)
	if err := row.Scan(&payload, &compressed, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	expiry, _ := time.Parse(time.RFC3339Nano, expiresAt)
	if time.Now().After(expiry) {
		return nil, false, nil
	}

	raw, err := maybeDecompress(payload, compressed)
	if err != nil {
		return nil, false, err
	}
	var results []model.SearchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	s.searchCache.Set(key, raw, time.Until(expiry))
	return results, true, nil
}

func searchCacheKey(managerID, query string) string { return managerID + "\x00" + query }
