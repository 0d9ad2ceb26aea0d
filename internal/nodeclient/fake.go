package nodeclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/nipatil-cybage/nebula/internal/idgen"
	"github.com/nipatil-cybage/nebula/internal/model"
)

// Fake is an in-memory NodeClient standing in for a real worker, used both
// by control-plane tests and as the backing state of cmd/node's gRPC
// server (§4.9). It executes INGESTION/EXPIRATION tasks synchronously and
// unconditionally — tests that need QUEUED/RUNNING/FAILED sequences use
// ScriptedFake instead.
type Fake struct {
	mu     sync.Mutex
	blocks map[string]model.BlockSummary // keyed by spec signature
}

func NewFake() *Fake {
	return &Fake{blocks: make(map[string]model.BlockSummary)}
}

func (f *Fake) Echo(_ context.Context, msg string) (string, error) {
	return msg, nil
}

func (f *Fake) State(_ context.Context) (NodeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mem int64
	for _, b := range f.blocks {
		mem += b.RawBytes
	}
	return NodeState{BlockCount: int64(len(f.blocks)), MemBytes: mem}, nil
}

func (f *Fake) Blocks(_ context.Context) ([]model.BlockSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.BlockSummary, 0, len(f.blocks))
	for _, b := range f.blocks {
		out = append(out, b)
	}
	return out, nil
}

func (f *Fake) Task(_ context.Context, task *model.Task) (model.TaskState, error) {
	switch task.Type {
	case model.TaskIngestion:
		payload, err := model.UnmarshalSpecPayload(task.Payload)
		if err != nil {
			return model.TaskFailed, fmt.Errorf("decode ingestion payload: %w", err)
		}
		f.mu.Lock()
		f.blocks[payload.Signature] = model.BlockSummary{
			SpecSignature:  payload.Signature,
			ResidencyEpoch: idgen.NewEpoch(),
			Table:          payload.Table,
			RowCount:       1,
			RawBytes:       payload.SizeBytes,
		}
		f.mu.Unlock()
		return model.TaskSucceeded, nil

	case model.TaskExpiration:
		payload, err := model.UnmarshalExpirationPayload(task.Payload)
		if err != nil {
			return model.TaskFailed, fmt.Errorf("decode expiration payload: %w", err)
		}
		f.mu.Lock()
		for _, sig := range payload.Signatures {
			delete(f.blocks, sig)
		}
		f.mu.Unlock()
		return model.TaskSucceeded, nil

	case model.TaskCommand:
		return model.TaskSucceeded, nil

	default:
		return model.TaskFailed, fmt.Errorf("unknown task type %v", task.Type)
	}
}

// Query returns one row per resident block of table, carrying only the
// block-level stats the coordinator already tracks — full plan execution
// and row scanning are out of scope (§1); this is the stub C9's Query(Plan)
// -> stream<RowBatch> contract needs to be exercised by queryfanout.
func (f *Fake) Query(_ context.Context, table string) ([]map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []map[string]interface{}
	for _, b := range f.blocks {
		if b.Table != table {
			continue
		}
		rows = append(rows, map[string]interface{}{
			"spec_signature": b.SpecSignature,
			"row_count":      b.RowCount,
			"raw_bytes":      b.RawBytes,
		})
	}
	return rows, nil
}

func (f *Fake) Close() error { return nil }

// dialerFunc adapts a plain function to the Dialer interface, used by
// tests that want a fixed set of Fakes keyed by node id.
type dialerFunc func(ctx context.Context, id model.NodeID) (NodeClient, error)

func (f dialerFunc) Dial(ctx context.Context, id model.NodeID) (NodeClient, error) {
	return f(ctx, id)
}

// NewFakeDialer returns a Dialer serving the given fixed clients, erroring
// on any node id not present in the map.
func NewFakeDialer(clients map[model.NodeID]NodeClient) Dialer {
	return dialerFunc(func(_ context.Context, id model.NodeID) (NodeClient, error) {
		c, ok := clients[id]
		if !ok {
			return nil, fmt.Errorf("no fake client for node %s", id)
		}
		return c, nil
	})
}
