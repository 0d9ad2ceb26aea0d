// Package scheduler drives one reconciliation tick end to end (C7),
// grounded on the teacher's cluster.loop ticker (master/cluster/cluster.go)
// but composing the full C1-C6 phase order of §2 instead of a single
// allocator refresh.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nipatil-cybage/nebula/internal/assign"
	"github.com/nipatil-cybage/nebula/internal/clusterconfig"
	"github.com/nipatil-cybage/nebula/internal/dispatch"
	"github.com/nipatil-cybage/nebula/internal/inventory"
	"github.com/nipatil-cybage/nebula/internal/metrics"
	"github.com/nipatil-cybage/nebula/internal/model"
	"github.com/nipatil-cybage/nebula/internal/noderegistry"
	"github.com/nipatil-cybage/nebula/internal/nodeclient"
	"github.com/nipatil-cybage/nebula/internal/specrepo"
	"github.com/nipatil-cybage/nebula/internal/telemetry"
)

// Scheduler is a single-threaded timer: it runs each tick's phases to
// completion before the next tick is eligible, and never overlaps ticks
// (§4.7).
type Scheduler struct {
	Interval time.Duration

	Loader     *clusterconfig.Loader
	Registry   *noderegistry.Registry
	Specs      *specrepo.Repository
	Pool       *nodeclient.Pool
	Inventory  *inventory.Collector
	Dispatcher *dispatch.Dispatcher

	// OnSnapshot, if set, is called with every freshly loaded ClusterInfo
	// so other components (e.g. the query fan-out service) can observe it
	// without re-fetching the config themselves.
	OnSnapshot func(*model.ClusterInfo)

	tick   int64
	stopCh chan struct{}
	doneCh chan struct{}
}

const DefaultInterval = 5 * time.Second

// Run starts the scheduler loop in the caller's goroutine and blocks until
// Stop is called or ctx is cancelled. If a tick's work exceeds Interval,
// the next tick starts immediately with no queuing (§4.7).
func (s *Scheduler) Run(ctx context.Context) {
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	defer close(s.doneCh)

	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	for {
		start := time.Now()
		s.RunOnce(ctx)
		metrics.TickDuration.Observe(time.Since(start).Seconds())

		elapsed := time.Since(start)
		wait := interval - elapsed
		if wait < 0 {
			wait = 0
		}

		select {
		case <-time.After(wait):
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop drains the current tick (RunOnce already returned by the time Stop
// unblocks a Run loop) and halts the scheduler.
func (s *Scheduler) Stop() {
	if s.stopCh != nil {
		close(s.stopCh)
	}
	if s.doneCh != nil {
		<-s.doneCh
	}
}

// RunOnce executes exactly the phase order of §2: config -> refresh ->
// inventory-and-expire -> assign -> dispatch.
func (s *Scheduler) RunOnce(ctx context.Context) {
	tick := atomic.AddInt64(&s.tick, 1)
	log, ctx := telemetry.StartSpan(ctx, "scheduler.tick")
	log = log.With("tick", tick)

	info, _, err := s.Loader.Load(ctx)
	if err != nil {
		log.Warnf("config load degraded: %s", err)
	}
	if info == nil {
		log.Errorf("no cluster config available yet, skipping tick")
		return
	}
	if s.OnSnapshot != nil {
		s.OnSnapshot(info)
	}

	added, removed := s.Registry.Sync(info.Nodes)
	if len(added) > 0 || len(removed) > 0 {
		log.Infof("node set changed: +%d -%d", len(added), len(removed))
	}

	if err := s.Specs.Refresh(ctx, info); err != nil {
		log.Errorf("spec refresh failed: %s", err)
		return
	}

	s.probeHealth(ctx, log)

	active := s.Registry.Active()
	activeIDs := make([]model.NodeID, len(active))
	activeSet := make(map[model.NodeID]bool, len(active))
	for i, n := range active {
		activeIDs[i] = n.ID
		activeSet[n.ID] = true
	}
	metrics.ActiveNodes.Set(float64(len(activeIDs)))

	if demoted := s.Specs.DemoteInactive(activeSet); demoted > 0 {
		log.Infof("demoted %d specs affine to inactive/removed nodes", demoted)
	}

	results := s.Inventory.Collect(ctx, activeIDs)
	for _, r := range results {
		if r.ProbeError != nil {
			s.Registry.RecordProbe(r.Node, false)
			continue
		}
		s.Registry.RecordProbe(r.Node, true)
		s.Registry.SetSize(r.Node, r.SizeBytes)
		if len(r.Expired) > 0 {
			if err := s.Dispatcher.Expire(ctx, r.Node, r.Expired); err != nil {
				log.Warnf("expire on %s failed: %s", r.Node, err)
			}
		}
	}

	active = s.Registry.Active()
	loads := make([]assign.NodeLoad, len(active))
	for i, n := range active {
		loads[i] = assign.NodeLoad{ID: n.ID, SizeBytes: n.SizeBytes}
	}
	s.Specs.AssignAll(func(specs []*model.Spec) map[string]model.NodeID {
		return assign.Place(loads, specs)
	})

	s.dispatchReady(ctx, tick, log)
	s.recordSpecMetrics()
}

func (s *Scheduler) probeHealth(ctx context.Context, log *zap.SugaredLogger) {
	for _, n := range s.Registry.All() {
		if !s.Registry.ShouldProbe(n.ID) {
			continue
		}
		client, err := s.Pool.Get(ctx, n.ID)
		if err != nil {
			s.Registry.RecordProbe(n.ID, false)
			continue
		}
		rctx, cancel := context.WithTimeout(ctx, nodeclient.DefaultRPCTimeout)
		_, err = client.Echo(rctx, "ping")
		cancel()
		if err != nil {
			log.Warnf("health probe on %s failed: %s", n.ID, err)
			s.Registry.RecordProbe(n.ID, false)
			s.Pool.Drop(n.ID)
		}
	}
}

// dispatchReady dispatches INGESTION tasks for specs due for a sync,
// skipping any spec whose affinity names a node no longer active (§4.4):
// DemoteInactive already clears such specs earlier in the tick, but the
// filter is kept here too since Inventory.Collect can mark a node inactive
// after DemoteInactive ran this same tick.
func (s *Scheduler) dispatchReady(ctx context.Context, tick int64, log *zap.SugaredLogger) {
	active := s.Registry.ActiveSet()
	for _, spec := range s.Specs.Specs() {
		if spec.Affinity != nil && !active[*spec.Affinity] {
			continue
		}
		if !dispatch.NeedSync(spec, tick) {
			continue
		}
		if err := s.Dispatcher.Ingest(ctx, spec, tick); err != nil {
			log.Warnf("dispatch ingest %s failed: %s", spec.Signature, err)
		}
	}
}

func (s *Scheduler) recordSpecMetrics() {
	counts := map[model.SpecState]int{}
	for _, sp := range s.Specs.Specs() {
		counts[sp.State]++
	}
	for _, st := range []model.SpecState{model.SpecNew, model.SpecAssigned, model.SpecReady, model.SpecFailed} {
		metrics.SpecsByState.WithLabelValues(st.String()).Set(float64(counts[st]))
	}
}
