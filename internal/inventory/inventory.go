// Package inventory reconciles each active node's reported block residency
// against the spec repository (C3), grounded on the teacher's
// cluster.refresh fan-out over allNodes (master/cluster/cluster.go)
// adapted to a per-node RPC call instead of an in-process sync.Map walk.
package inventory

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nipatil-cybage/nebula/internal/model"
	"github.com/nipatil-cybage/nebula/internal/nodeclient"
	"github.com/nipatil-cybage/nebula/internal/specrepo"
	"github.com/nipatil-cybage/nebula/internal/telemetry"
)

// Result is one node's inventory outcome for a tick.
type Result struct {
	Node       model.NodeID
	SizeBytes  int64
	Expired    []string // spec signatures whose blocks should be expired
	ProbeError error    // non-nil if the Blocks() RPC itself failed
}

// Collector pulls residency from every active node and folds it into the
// spec repository via Assign (§4.3).
type Collector struct {
	pool  *nodeclient.Pool
	specs *specrepo.Repository

	// PoolSize bounds fan-out concurrency; §5 requires it be at least
	// nodeCount so inventory collection never itself deadlocks on the
	// shared worker pool.
	PoolSize int
}

func New(pool *nodeclient.Pool, specs *specrepo.Repository) *Collector {
	return &Collector{pool: pool, specs: specs, PoolSize: 32}
}

// Collect runs Blocks() against every node in nodes concurrently (bounded
// by PoolSize) and reconciles each block against specs.Assign.
func (c *Collector) Collect(ctx context.Context, nodes []model.NodeID) []Result {
	log, ctx := telemetry.StartSpan(ctx, "inventory.Collect")

	results := make([]Result, len(nodes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.PoolSize, 1))

	for i, node := range nodes {
		i, node := i, node
		g.Go(func() error {
			results[i] = c.collectOne(ctx, node)
			return nil
		})
	}
	_ = g.Wait() // collectOne never returns an error; individual failures are per-Result

	for _, r := range results {
		if r.ProbeError != nil {
			log.Warnf("inventory probe on %s failed: %s", r.Node, r.ProbeError)
		}
	}
	return results
}

func (c *Collector) collectOne(ctx context.Context, node model.NodeID) Result {
	res := Result{Node: node}

	client, err := c.pool.Get(ctx, node)
	if err != nil {
		res.ProbeError = err
		return res
	}

	blocks, err := client.Blocks(ctx)
	if err != nil {
		res.ProbeError = err
		return res
	}

	for _, b := range blocks {
		if c.specs.Assign(b.SpecSignature, node) {
			res.SizeBytes += b.RawBytes
			continue
		}
		res.Expired = append(res.Expired, b.SpecSignature)
	}
	return res
}
