// Package specrepo owns the spec graph and its state machine (C2), the
// hardest component of the control plane: the consistency seam between
// configuration, the node fleet, and per-node block inventory. Grounded on
// the teacher's cluster.go (master/cluster/cluster.go) single-writer,
// sync.Map-indexed style, generalized from a node registry to a spec
// registry with an explicit lifecycle.
package specrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nipatil-cybage/nebula/internal/errs"
	"github.com/nipatil-cybage/nebula/internal/model"
	"github.com/nipatil-cybage/nebula/internal/source"
	"github.com/nipatil-cybage/nebula/internal/telemetry"
)

// Repository is the control plane's canonical spec set. It is single-writer
// (the scheduler goroutine); Specs() returns a snapshot safe for concurrent
// readers (invariant 5).
type Repository struct {
	enumerator source.Enumerator

	mu    sync.RWMutex
	specs map[string]*model.Spec
}

func New(enumerator source.Enumerator) *Repository {
	return &Repository{
		enumerator: enumerator,
		specs:      make(map[string]*model.Spec),
	}
}

// Refresh enumerates the current spec set from clusterInfo's tables and
// set-differences it against the repository (§4.2). It is atomic from the
// observer's viewpoint: a reader calling Specs() either sees the full old
// set or the full new set, never a partial one.
func (r *Repository) Refresh(ctx context.Context, info *model.ClusterInfo) error {
	log, ctx := telemetry.StartSpan(ctx, "specrepo.Refresh")

	seen := make(map[string]string) // signature -> source URI that produced it
	next := make(map[string]*model.Spec, len(r.specs))

	r.mu.RLock()
	existing := make(map[string]*model.Spec, len(r.specs))
	for sig, s := range r.specs {
		existing[sig] = s
	}
	r.mu.RUnlock()

	for _, table := range info.Tables {
		for _, src := range table.Sources {
			units, err := r.enumerator.Enumerate(ctx, table.Name, src)
			if err != nil {
				log.Warnf("enumerate table %s source %s failed: %s", table.Name, src.URI, err)
				continue
			}
			for _, unit := range units {
				sig := source.Signature(table.Name, src, unit)
				if firstURI, dup := seen[sig]; dup {
					log.Fatalf("duplicate spec signature %s for table %s sources %s and %s: %s",
						sig, table.Name, firstURI, src.URI, errs.ErrInternalInvariant)
				}
				seen[sig] = src.URI

				old, hadOld := existing[sig]
				switch {
				case !hadOld:
					next[sig] = &model.Spec{
						Signature: sig,
						Table:     table.Name,
						Source:    src.URI,
						State:     model.SpecNew,
						SizeBytes: unit.SizeBytes,
						MTime:     unit.MTime,
					}
				case old.MTime.Equal(unit.MTime) && old.SizeBytes == unit.SizeBytes:
					next[sig] = old
				default:
					demoted := old.Clone()
					demoted.State = model.SpecNew
					demoted.Affinity = nil
					demoted.SizeBytes = unit.SizeBytes
					demoted.MTime = unit.MTime
					demoted.FailureCount = 0
					next[sig] = demoted
				}
			}
		}
	}

	removed := len(existing) - len(seen)
	if removed < 0 {
		removed = 0
	}

	r.mu.Lock()
	r.specs = next
	r.mu.Unlock()

	log.Infof("refresh complete: %d specs (%d removed)", len(next), removed)
	return nil
}

// Assign reconciles one resident block: if sig names a spec in state NEW,
// or already ASSIGNED/READY on node, it sets affinity to node and advances
// state, returning true. Otherwise it returns false so the caller expires
// the block (§4.3).
func (r *Repository) Assign(sig string, node model.NodeID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.specs[sig]
	if !ok {
		return false
	}

	switch s.State {
	case model.SpecNew:
		s.Affinity = &node
		s.State = model.SpecAssigned
		return true
	case model.SpecAssigned, model.SpecReady:
		if s.Affinity != nil && *s.Affinity == node {
			return true
		}
		return false
	default:
		return false
	}
}

// AssignAll batch-assigns every spec in state NEW to nodes under the
// balance policy (§4.5), delegated to the caller-supplied placement
// function so the greedy-smallest-node logic lives in package assign.
func (r *Repository) AssignAll(place func(specs []*model.Spec) map[string]model.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var newSpecs []*model.Spec
	for _, s := range r.specs {
		if s.State == model.SpecNew {
			newSpecs = append(newSpecs, s)
		}
	}
	sort.Slice(newSpecs, func(i, j int) bool { return newSpecs[i].Signature < newSpecs[j].Signature })

	placement := place(newSpecs)
	for sig, node := range placement {
		s := r.specs[sig]
		n := node
		s.Affinity = &n
		s.State = model.SpecAssigned
	}
}

// legalTransitions enumerates the state machine of §3. SetState logs
// fatally on an illegal edge — an InternalInvariant violation — which
// terminates the process.
var legalTransitions = map[model.SpecState]map[model.SpecState]bool{
	model.SpecNew:      {model.SpecAssigned: true},
	model.SpecAssigned: {model.SpecReady: true, model.SpecNew: true, model.SpecFailed: true},
	model.SpecReady:    {model.SpecNew: true},
	model.SpecFailed:   {model.SpecNew: true},
}

// SetState applies a permitted transition (§3 lifecycle). Illegal
// transitions are a fatal programming error per §7.
func (r *Repository) SetState(ctx context.Context, sig string, state model.SpecState) error {
	log, _ := telemetry.StartSpan(ctx, "specrepo.SetState")

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.specs[sig]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrSpecNotFound, sig)
	}
	if s.State == state {
		return nil
	}
	if !legalTransitions[s.State][state] {
		log.Fatalf("illegal transition %s -> %s for spec %s: %s", s.State, state, sig, errs.ErrIllegalTransition)
		return fmt.Errorf("%w: %s -> %s", errs.ErrIllegalTransition, s.State, state)
	}

	s.State = state
	switch state {
	case model.SpecNew:
		s.Affinity = nil
		s.FailureCount = 0
	case model.SpecReady:
		s.FailureCount = 0
	}
	return nil
}

// RecordFailure increments a spec's consecutive-failure counter. At
// threshold it demotes the spec to NEW with affinity nulled and returns
// true so the caller can log the reassignment (§4.6, §9(a)).
func (r *Repository) RecordFailure(sig string, threshold int) (demoted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.specs[sig]
	if !ok {
		return false
	}
	s.FailureCount++
	if s.FailureCount >= threshold {
		s.State = model.SpecNew
		s.Affinity = nil
		s.FailureCount = 0
		return true
	}
	return false
}

// DemoteInactive resets every ASSIGNED or READY spec whose affinity points
// at a node not in active back to NEW with affinity nulled (invariant 2:
// losing the node must demote the spec and null its affinity; §4.4:
// inactive nodes are skipped in inventory and dispatch, their specs
// demoted to NEW on the next refresh). The caller passes the registry's
// current active-node membership; a spec with nil affinity (already NEW)
// is left alone. Returns the number of specs demoted.
func (r *Repository) DemoteInactive(active map[model.NodeID]bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	demoted := 0
	for _, s := range r.specs {
		if s.Affinity == nil {
			continue
		}
		if (s.State != model.SpecAssigned && s.State != model.SpecReady) || active[*s.Affinity] {
			continue
		}
		s.State = model.SpecNew
		s.Affinity = nil
		s.FailureCount = 0
		demoted++
	}
	return demoted
}

// MarkSent records the tick a spec's task was last dispatched on, for
// Dispatcher.NeedSync (§4.6).
func (r *Repository) MarkSent(sig string, tick int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.specs[sig]; ok {
		s.LastSentTick = tick
	}
}

// Specs returns an order-insensitive snapshot of clones, safe for
// concurrent readers (invariant 5).
func (r *Repository) Specs() []*model.Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Spec, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s.Clone())
	}
	return out
}

// Get returns a clone of one spec by signature.
func (r *Repository) Get(sig string) (*model.Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[sig]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}
