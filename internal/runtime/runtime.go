// Package runtime assembles the coordinator's long-lived collaborators
// (C11), grounded on the teacher's Master composing catalog.Catalog and
// cluster.Cluster into one struct (master/master.go), generalized so tests
// build a fresh Runtime instead of reaching for package-level state.
package runtime

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nipatil-cybage/nebula/internal/clusterconfig"
	"github.com/nipatil-cybage/nebula/internal/dispatch"
	"github.com/nipatil-cybage/nebula/internal/inventory"
	"github.com/nipatil-cybage/nebula/internal/model"
	"github.com/nipatil-cybage/nebula/internal/noderegistry"
	"github.com/nipatil-cybage/nebula/internal/nodeclient"
	"github.com/nipatil-cybage/nebula/internal/queryfanout"
	"github.com/nipatil-cybage/nebula/internal/scheduler"
	"github.com/nipatil-cybage/nebula/internal/source"
	"github.com/nipatil-cybage/nebula/internal/specrepo"
	"github.com/nipatil-cybage/nebula/internal/telemetry"
)

// Config is the runtime's construction-time input, one field per flag of
// §6. CLS_CONF_UPDATE_INTERVAL and NODE_SYNC_INTERVAL drive the same
// reconciliation tick (§4.7 folds config load and node polling into one
// phase sequence), so both map onto the scheduler's single Interval; the
// smaller of the two wins when both are set.
type Config struct {
	ClusterConfigURI string
	ConfigInterval   int // milliseconds, CLS_CONF_UPDATE_INTERVAL
	NodeSyncInterval int // milliseconds, NODE_SYNC_INTERVAL
	MaxTablesReturn  int

	Enumerator source.Enumerator // nil uses an empty source.StaticEnumerator
	Dialer     nodeclient.Dialer // nil uses nodeclient.GRPCDialer{}
}

func (c Config) tickInterval() time.Duration {
	ms := c.NodeSyncInterval
	if c.ConfigInterval > 0 && (ms <= 0 || c.ConfigInterval < ms) {
		ms = c.ConfigInterval
	}
	if ms <= 0 {
		return scheduler.DefaultInterval
	}
	return time.Duration(ms) * time.Millisecond
}

// Runtime owns every long-lived collaborator the coordinator process needs:
// the ClusterInfo snapshot holder, the node connector pool, the spec
// repository, the scheduler, and the query fan-out service (§4.11). Workers
// do not construct a Runtime; they only implement rpc.WorkerServer over a
// nodeclient.Fake.
type Runtime struct {
	snapshot atomic.Pointer[model.ClusterInfo]

	Loader     *clusterconfig.Loader
	Registry   *noderegistry.Registry
	Specs      *specrepo.Repository
	Pool       *nodeclient.Pool
	Inventory  *inventory.Collector
	Dispatcher *dispatch.Dispatcher
	Scheduler  *scheduler.Scheduler
	Query      *queryfanout.Service

	Log *zap.SugaredLogger
}

// New wires every collaborator but does not start the scheduler; call Run
// for that.
func New(cfg Config) *Runtime {
	if cfg.Enumerator == nil {
		cfg.Enumerator = &source.StaticEnumerator{Units: map[string][]source.Unit{}}
	}
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = nodeclient.GRPCDialer{}
	}

	rt := &Runtime{}
	rt.Loader = clusterconfig.NewLoader(cfg.ClusterConfigURI)
	rt.Registry = noderegistry.New()
	rt.Specs = specrepo.New(cfg.Enumerator)
	rt.Pool = nodeclient.NewPool(dialer)
	rt.Inventory = inventory.New(rt.Pool, rt.Specs)
	rt.Dispatcher = dispatch.New(rt.Pool, rt.Specs)
	rt.Query = queryfanout.New(rt.Info, rt.Specs, rt.Pool)
	if cfg.MaxTablesReturn > 0 {
		rt.Query.MaxTablesReturn = cfg.MaxTablesReturn
	}

	rt.Scheduler = &scheduler.Scheduler{
		Interval:   cfg.tickInterval(),
		Loader:     rt.Loader,
		Registry:   rt.Registry,
		Specs:      rt.Specs,
		Pool:       rt.Pool,
		Inventory:  rt.Inventory,
		Dispatcher: rt.Dispatcher,
		OnSnapshot: rt.PublishSnapshot,
	}

	rt.Log, _ = telemetry.StartSpan(context.Background(), "runtime")
	return rt
}

// Info returns the currently published ClusterInfo snapshot, or nil before
// the first successful load. Wired into queryfanout.Service.Info so readers
// never touch the scheduler's loader directly (§5 "Shared resources").
func (rt *Runtime) Info() *model.ClusterInfo {
	return rt.snapshot.Load()
}

// PublishSnapshot installs info as the latest ClusterInfo for readers. The
// scheduler calls this once per tick after a successful config load.
func (rt *Runtime) PublishSnapshot(info *model.ClusterInfo) {
	if info != nil {
		rt.snapshot.Store(info)
	}
}

// Run loads the config once synchronously (so Query/ListTables have
// something to answer before the first tick completes) and then runs the
// scheduler loop, blocking until ctx is cancelled.
func (rt *Runtime) Run(ctx context.Context) error {
	info, _, err := rt.Loader.Load(ctx)
	if err != nil && info == nil {
		return fmt.Errorf("initial cluster config load: %w", err)
	}
	rt.PublishSnapshot(info)

	rt.Scheduler.Run(ctx)
	return nil
}

// Close releases pooled node connections.
func (rt *Runtime) Close() {
	rt.Pool.CloseAll()
}
