package facade

import (
	"context"
	"log/slog"
	"sync"

	"github.com/manifoldpm/manifold/internal/adapter"
	"github.com/manifoldpm/manifold/internal/executor"
	"github.com/manifoldpm/manifold/internal/orchestrator"
	"github.com/manifoldpm/manifold/internal/policy"
	"github.com/manifoldpm/manifold/internal/queue"
	"github.com/manifoldpm/manifold/internal/store"
)

// Facade is the engine's request-reply entry point: one method per public
// operation in spec.md §6.1, called by routes.go's HTTP handlers. It never
// panics outward (middleware.go recovers at the HTTP boundary) and never
// returns a raw Go error to a mutating caller — mutating operations set
// lastErrorKey and return a sentinel instead, per spec.md §4.8.
type Facade struct {
	store *store.Store
	reg   *adapter.Registry
	exec  executor.Executor
	queue *queue.Queue
	orch  *orchestrator.Orchestrator
	gate  *policy.Gate
	log   *slog.Logger

	// mu guards lastErrorKey/lastErrorArgs and initialized. A plain
	// sync.Mutex never poisons on a panic the way a Rust Mutex can; the
	// invariant this still has to uphold is that a panic recovered by
	// middleware.go never leaves the facade mid-update, which holds
	// because every write under mu is a single assignment, never a
	// multi-step mutation a panic could interrupt partway through.
	mu           sync.Mutex
	lastErrorKey string
	lastErrorArg map[string]string
	initialized  bool

	notifier upgradeAllNotifier
}

// upgradeAllNotifier is the seam handleUpgradeAll posts an excluded-count
// summary through. *fleet.Notifier satisfies it; nil (the default) means
// Fleet wasn't configured and the notification is skipped entirely.
type upgradeAllNotifier interface {
	NotifyUpgradeAllExcluded(ctx context.Context, excluded int)
}

// SetUpgradeNotifier wires an optional Fleet Notifier into upgrade_all so
// it can post a summary of packages silently excluded by the safe-mode or
// pin-overlay filters. Called by cmd/manifoldd only when fleet.notifier is
// configured; unset, handleUpgradeAll skips the notification.
func (f *Facade) SetUpgradeNotifier(n upgradeAllNotifier) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifier = n
}

// New builds a Facade over an already-open Store/Registry/Queue/Orchestrator.
// The caller (cmd/manifoldd) owns the lifecycle of all of these; Facade
// only calls into them.
func New(s *store.Store, reg *adapter.Registry, exec executor.Executor, q *queue.Queue, orch *orchestrator.Orchestrator, gate *policy.Gate, log *slog.Logger) *Facade {
	if log == nil {
		log = slog.Default()
	}
	return &Facade{store: s, reg: reg, exec: exec, queue: q, orch: orch, gate: gate, log: log}
}

// setLastError records the last mutating-operation failure, overwriting
// any previous one (single-slot, per spec.md's "keyed by the calling
// thread's most recent call").
func (f *Facade) setLastError(key string, args map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastErrorKey = key
	f.lastErrorArg = args
}

// TakeLastErrorKey returns and clears the last-error slot.
func (f *Facade) TakeLastErrorKey() (string, map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, args := f.lastErrorKey, f.lastErrorArg
	f.lastErrorKey, f.lastErrorArg = "", nil
	return key, args
}

// Init implements init(db_path) -> bool. The store/queue/orchestrator are
// already wired by the time Facade exists, so this call is a one-shot
// acknowledgement rather than a real (re)open: the first call succeeds,
// every subsequent call is rejected, matching spec.md §8's "subsequent
// re-initialization is rejected" process-wide-state note.
func (f *Facade) Init(ctx context.Context, dbPath string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initialized {
		f.lastErrorKey = "error.already_initialized"
		f.lastErrorArg = nil
		return false
	}
	f.initialized = true
	return true
}
