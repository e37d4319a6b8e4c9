// Package store is the engine's SQLite-backed persistence layer: one file
// per host, fronted by two caches (a ristretto read-through cache for hot
// lookups and a ttlcache search cache for remote Search results). Grounded
// on lake/api/config/postgres.go's pool-init-then-run-inline-migrations
// shape, adapted from pgx/Postgres to database/sql + modernc.org/sqlite
// (pure Go, no cgo, so the daemon stays a static binary).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/jellydator/ttlcache/v3"
	_ "modernc.org/sqlite"

	"github.com/manifoldpm/manifold/internal/pkgerr"
)

const (
	defaultSearchCacheTTL       = 15 * time.Minute
	defaultSearchCacheCapacity  = 500
	defaultReadCacheNumCounters = 10_000
	defaultReadCacheMaxCost     = 1 << 24 // entries, since every entry is set with cost 1
	defaultReadCacheBufferItems = 64
)

// Store opens and serves the local SQLite database.
type Store struct {
	db  *sql.DB
	log *slog.Logger

	readCache   *ristretto.Cache
	searchCache *ttlcache.Cache[string, []byte]

	mu sync.Mutex // serializes writers; SQLite itself only allows one at a time
}

// Option configures a Store at construction, mirroring the functional
// options pattern used throughout this codebase's constructors.
type Option func(*options)

type options struct {
	searchCacheTTL      time.Duration
	searchCacheCapacity int
	logger              *slog.Logger
}

// WithSearchCacheTTL overrides the default 15-minute search-result TTL.
func WithSearchCacheTTL(d time.Duration) Option {
	return func(o *options) { o.searchCacheTTL = d }
}

// WithSearchCacheCapacity bounds how many distinct (manager, query) search
// results the ttlcache holds before evicting the least recently used entry.
func WithSearchCacheCapacity(n int) Option {
	return func(o *options) { o.searchCacheCapacity = n }
}

// WithLogger sets the logger used for schema/migration progress.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Open opens (creating if absent) the SQLite database at path, runs
// pending migrations, and wires the read-through and search caches.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := options{
		searchCacheTTL:      defaultSearchCacheTTL,
		searchCacheCapacity: defaultSearchCacheCapacity,
		logger:              slog.Default(),
	}
	for _, o := range opts {
		o(&cfg)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite + WAL: one writer connection avoids SQLITE_BUSY churn

	readCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: defaultReadCacheNumCounters,
		MaxCost:     defaultReadCacheMaxCost,
		BufferItems: defaultReadCacheBufferItems,
	})
	if err != nil {
		db.Close()
		return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}

	searchCache := ttlcache.New[string, []byte](
		ttlcache.WithTTL[string, []byte](cfg.searchCacheTTL),
		ttlcache.WithCapacity[string, []byte](uint64(cfg.searchCacheCapacity)),
	)
	go searchCache.Start()

	s := &Store{db: db, log: cfg.logger, readCache: readCache, searchCache: searchCache}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		readCache.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle and both caches.
func (s *Store) Close() error {
	s.searchCache.Stop()
	s.readCache.Close()
	return s.db.Close()
}

// InvalidateReadCache drops every cached row, used after Reset or a bulk
// merge where per-key invalidation would be more code than it's worth.
func (s *Store) InvalidateReadCache() {
	s.readCache.Clear()
}
