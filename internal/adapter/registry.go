package adapter

import (
	"sort"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// Registry is an immutable, post-startup lookup of Adapter by manager id.
// Built once at daemon startup from NewDefaultRegistry (or a test-only
// subset) and never mutated afterward, mirroring how doublezerod wires its
// Provisioner implementations into the NetlinkManager once at construction.
type Registry struct {
	byID map[string]Adapter
}

// NewRegistry builds a Registry from a literal adapter list. Duplicate ids
// are a programming error and panic immediately rather than silently
// shadowing one adapter with another.
func NewRegistry(adapters ...Adapter) *Registry {
	byID := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		id := a.Describe().ID
		if _, exists := byID[id]; exists {
			panic("adapter: duplicate manager id " + id)
		}
		byID[id] = a
	}
	return &Registry{byID: byID}
}

// Get looks up an adapter by manager id.
func (r *Registry) Get(id string) (Adapter, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, pkgerr.Newf(pkgerr.KindManagerNotFound, "no manager registered with id %q", id)
	}
	return a, nil
}

// All returns every registered adapter, ordered by id for deterministic
// iteration (log output, test fixtures).
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Describe().ID < out[j].Describe().ID })
	return out
}

// ByTier returns every registered adapter belonging to the given authority
// tier, ordered by id. Used by the orchestrator to partition refresh work
// into the fixed authoritative -> standard -> guarded sequence.
func (r *Registry) ByTier(tier model.Authority) []Adapter {
	var out []Adapter
	for _, a := range r.All() {
		if a.Describe().Authority == tier {
			out = append(out, a)
		}
	}
	return out
}

// IDs returns every registered manager id, ordered.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
