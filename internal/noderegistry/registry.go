// Package noderegistry tracks the active node set derived from
// model.ClusterInfo and each node's health, grounded on the teacher's
// node.go heartbeat/expiry idiom (master/cluster/node.go) adapted from a
// heartbeat-push model to a poll-based one (§4.4: the scheduler probes
// nodes, nodes don't heartbeat in).
package noderegistry

import (
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nipatil-cybage/nebula/internal/model"
)

const (
	// DefaultInactiveThreshold is the number of consecutive failed probes
	// before a node is demoted to inactive (§4.4).
	DefaultInactiveThreshold = 2

	// probeBackoff spaces out re-probes of an inactive node.
	probeBackoff = 3 * time.Second
)

// Registry is the coordinator's view of the fleet. It is owned by the
// scheduler goroutine, matching SpecRepo's single-writer discipline.
type Registry struct {
	mu    sync.RWMutex
	nodes map[model.NodeID]*model.Node

	// probeLimiters throttles re-probing a node that has gone inactive, so
	// a partitioned node isn't dialed at full tick cadence forever.
	probeLimiters map[model.NodeID]*rate.Limiter

	inactiveThreshold int
}

func New() *Registry {
	return &Registry{
		nodes:             make(map[model.NodeID]*model.Node),
		probeLimiters:     make(map[model.NodeID]*rate.Limiter),
		inactiveThreshold: DefaultInactiveThreshold,
	}
}

// Sync reconciles the registry against the config's node list: nodes no
// longer present are destroyed; new ones are created active. Existing
// nodes are left untouched (health state survives a config edit that
// doesn't remove them).
func (r *Registry) Sync(configNodes []model.NodeConfig) (added, removed []model.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[model.NodeID]model.NodeConfig, len(configNodes))
	for _, nc := range configNodes {
		wanted[model.NodeID{Host: nc.Host, Port: nc.Port}] = nc
	}

	for id := range r.nodes {
		if _, ok := wanted[id]; !ok {
			delete(r.nodes, id)
			delete(r.probeLimiters, id)
			removed = append(removed, id)
		}
	}
	for id, nc := range wanted {
		if _, ok := r.nodes[id]; ok {
			continue
		}
		r.nodes[id] = &model.Node{ID: id, Role: nc.Role, Active: true}
		r.probeLimiters[id] = rate.NewLimiter(rate.Every(0), 1)
		added = append(added, id)
	}
	return added, removed
}

// ShouldProbe reports whether id's turn to be probed this tick has come,
// consuming one token from its backoff limiter when it's inactive.
func (r *Registry) ShouldProbe(id model.NodeID) bool {
	r.mu.RLock()
	n, ok := r.nodes[id]
	lim := r.probeLimiters[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if n.Active {
		return true
	}
	return lim.Allow()
}

// RecordProbe applies the result of a single health probe for id (§4.4:
// two consecutive failures demote, one success reinstates).
func (r *Registry) RecordProbe(id model.NodeID, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, found := r.nodes[id]
	if !found {
		return
	}
	if ok {
		n.ConsecutiveFailures = 0
		n.Active = true
		return
	}
	n.ConsecutiveFailures++
	if n.ConsecutiveFailures >= r.inactiveThreshold {
		if n.Active {
			// just went inactive: install a backoff limiter so a
			// partitioned node isn't re-dialed at full tick cadence.
			r.probeLimiters[id] = rate.NewLimiter(rate.Every(probeBackoff), 1)
		}
		n.Active = false
	}
}

// SetSize resets a node's size estimate from inventory (invariant 4: reset,
// never accumulated).
func (r *Registry) SetSize(id model.NodeID, bytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.nodes[id]; ok {
		n.SizeBytes = bytes
	}
}

// Active returns a snapshot of currently-active nodes, sorted ascending by
// size then by (host, port) — the order the assignment policy iterates
// nodes in (§4.5).
func (r *Registry) Active() []*model.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		if n.Active {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SizeBytes != out[j].SizeBytes {
			return out[i].SizeBytes < out[j].SizeBytes
		}
		return out[i].ID.Less(out[j].ID)
	})
	return out
}

// ActiveSet returns the current active node ids as a membership set, for
// callers that only need a fast "is this node active" check rather than
// the ordered snapshot Active() returns (e.g. specrepo.DemoteInactive,
// the scheduler's dispatch filter).
func (r *Registry) ActiveSet() map[model.NodeID]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[model.NodeID]bool, len(r.nodes))
	for id, n := range r.nodes {
		if n.Active {
			out[id] = true
		}
	}
	return out
}

// All returns every known node regardless of health.
func (r *Registry) All() []*model.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		cp := *n
		out = append(out, &cp)
	}
	return out
}
