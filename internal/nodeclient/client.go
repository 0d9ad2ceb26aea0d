// Package nodeclient is the contract the control plane consumes for
// talking to a data-holding node (C9, §6 "Worker RPC surface"), grounded
// on the teacher's client.Client/MasterClient wrapping of a generated grpc
// stub (client/client.go, client/master_client.go). Nebula can't run
// protoc in this environment, so the generated stub is replaced by a hand
// written one in internal/rpc; everything above this package only ever
// sees the NodeClient interface.
package nodeclient

import (
	"context"
	"sync"
	"time"

	"github.com/nipatil-cybage/nebula/internal/model"
)

// NodeClient is the RPC surface a node exposes to the coordinator.
type NodeClient interface {
	Echo(ctx context.Context, msg string) (string, error)
	State(ctx context.Context) (NodeState, error)
	Blocks(ctx context.Context) ([]model.BlockSummary, error)
	Task(ctx context.Context, task *model.Task) (model.TaskState, error)
	// Query runs a minimal per-node scan of table's resident blocks (§6,
	// C9 "Query(Plan) -> stream<RowBatch>"). Plan compilation and true row
	// streaming are out of scope (§1); one row per resident block is
	// returned instead of a row stream.
	Query(ctx context.Context, table string) ([]map[string]interface{}, error)
	Close() error
}

// NodeState is the health + inventory summary a node reports (§6).
type NodeState struct {
	BlockCount int64
	MemBytes   int64
}

// Dialer opens a NodeClient for one fleet member. Production code uses
// GRPCDialer; tests use a Fake-backed dialer.
type Dialer interface {
	Dial(ctx context.Context, id model.NodeID) (NodeClient, error)
}

// Pool caches one NodeClient per node, dialed lazily and kept for reuse —
// the coordinator-side half of the teacher's clientMgr
// (master/cluster/client/client.go).
type Pool struct {
	dialer Dialer

	mu      sync.Mutex
	clients map[model.NodeID]NodeClient
}

func NewPool(dialer Dialer) *Pool {
	return &Pool{dialer: dialer, clients: make(map[model.NodeID]NodeClient)}
}

func (p *Pool) Get(ctx context.Context, id model.NodeID) (NodeClient, error) {
	p.mu.Lock()
	if c, ok := p.clients[id]; ok {
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()

	c, err := p.dialer.Dial(ctx, id)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if existing, ok := p.clients[id]; ok {
		p.mu.Unlock()
		c.Close()
		return existing, nil
	}
	p.clients[id] = c
	p.mu.Unlock()
	return c, nil
}

// Drop closes and evicts the cached client for id, forcing a redial on the
// next Get (used when a node is removed from config or looks wedged).
func (p *Pool) Drop(id model.NodeID) {
	p.mu.Lock()
	c, ok := p.clients[id]
	delete(p.clients, id)
	p.mu.Unlock()
	if ok {
		c.Close()
	}
}

func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}

// DefaultRPCTimeout is the tick-scoped deadline for a single RPC (§5:
// 0.8 x the reconciliation interval at the default 5s interval).
const DefaultRPCTimeout = 4 * time.Second
