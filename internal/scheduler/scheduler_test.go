package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nipatil-cybage/nebula/internal/clusterconfig"
	"github.com/nipatil-cybage/nebula/internal/dispatch"
	"github.com/nipatil-cybage/nebula/internal/inventory"
	"github.com/nipatil-cybage/nebula/internal/model"
	"github.com/nipatil-cybage/nebula/internal/noderegistry"
	"github.com/nipatil-cybage/nebula/internal/nodeclient"
	"github.com/nipatil-cybage/nebula/internal/source"
	"github.com/nipatil-cybage/nebula/internal/specrepo"
)

// flakyClient wraps a Fake and fails every RPC once marked down, standing
// in for a node that has actually vanished from the network rather than
// one that was removed from config.
type flakyClient struct {
	*nodeclient.Fake
	down atomic.Bool
}

func (f *flakyClient) Echo(ctx context.Context, msg string) (string, error) {
	if f.down.Load() {
		return "", errors.New("node unreachable")
	}
	return f.Fake.Echo(ctx, msg)
}

func (f *flakyClient) Blocks(ctx context.Context) ([]model.BlockSummary, error) {
	if f.down.Load() {
		return nil, errors.New("node unreachable")
	}
	return f.Fake.Blocks(ctx)
}

func writeTwoNodeConfig(t *testing.T, dir string, a, b model.NodeID) string {
	t.Helper()
	path := filepath.Join(dir, "cluster.yml")
	body := "version: \"1\"\n" +
		"nodes:\n" +
		"  - host: " + a.Host + "\n" +
		"    port: " + strconv.Itoa(a.Port) + "\n" +
		"    role: node\n" +
		"  - host: " + b.Host + "\n" +
		"    port: " + strconv.Itoa(b.Port) + "\n" +
		"    role: node\n" +
		"tables:\n" +
		"  - name: requests\n" +
		"    schema: \"ROW<col:STRING>\"\n" +
		"    sources:\n" +
		"      - uri: local:///data\n" +
		"        format: CSV\n" +
		"        time-column: ts\n" +
		"        retention: 3600\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func writeConfig(t *testing.T, dir string, node model.NodeConfig) string {
	t.Helper()
	path := filepath.Join(dir, "cluster.yml")
	body := "version: \"1\"\n" +
		"nodes:\n" +
		"  - host: " + node.Host + "\n" +
		"    port: " + strconv.Itoa(node.Port) + "\n" +
		"    role: node\n" +
		"tables:\n" +
		"  - name: requests\n" +
		"    schema: \"ROW<col:STRING>\"\n" +
		"    sources:\n" +
		"      - uri: local:///data\n" +
		"        format: CSV\n" +
		"        time-column: ts\n" +
		"        retention: 3600\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newTestScheduler(t *testing.T, node model.NodeID, fake nodeclient.NodeClient) (*Scheduler, *specrepo.Repository) {
	t.Helper()
	path := writeConfig(t, t.TempDir(), model.NodeConfig{Host: node.Host, Port: node.Port, Role: model.NodeRoleNode})

	pool := nodeclient.NewPool(nodeclient.NewFakeDialer(map[model.NodeID]nodeclient.NodeClient{node: fake}))
	enum := &source.StaticEnumerator{Units: map[string][]source.Unit{
		"local:///data": {{PartitionKey: "p1", SizeBytes: 10}},
	}}
	specs := specrepo.New(enum)

	s := &Scheduler{
		Loader:     clusterconfig.NewLoader(path),
		Registry:   noderegistry.New(),
		Specs:      specs,
		Pool:       pool,
		Inventory:  inventory.New(pool, specs),
		Dispatcher: dispatch.New(pool, specs),
	}
	return s, specs
}

func TestSchedulerOneTickAssignsAndDispatches(t *testing.T) {
	node := model.NodeID{Host: "127.0.0.1", Port: 7080}
	s, specs := newTestScheduler(t, node, nodeclient.NewFake())

	s.RunOnce(context.Background())

	all := specs.Specs()
	require.Len(t, all, 1)
	require.Equal(t, model.SpecReady, all[0].State, "a healthy single-node fleet should ingest a spec to READY within one tick")
}

func TestSchedulerIdempotentOnSecondTick(t *testing.T) {
	node := model.NodeID{Host: "127.0.0.1", Port: 7080}
	s, specs := newTestScheduler(t, node, nodeclient.NewFake())

	s.RunOnce(context.Background())
	first := specs.Specs()[0].State

	s.RunOnce(context.Background())
	second := specs.Specs()[0].State

	require.Equal(t, model.SpecReady, first)
	require.Equal(t, model.SpecReady, second, "a second tick with no changes must leave the spec READY")
}

func TestSchedulerExpiresBlockForRemovedSpec(t *testing.T) {
	node := model.NodeID{Host: "127.0.0.1", Port: 7080}
	fake := nodeclient.NewFake()
	s, specs := newTestScheduler(t, node, fake)

	s.RunOnce(context.Background())
	require.Equal(t, model.SpecReady, specs.Specs()[0].State)

	// simulate the source unit disappearing: a fresh enumerator with no
	// units means the next Refresh drops the spec from the repository,
	// but the node still reports the old block until expired.
	s.Specs = specrepo.New(&source.StaticEnumerator{})
	s.Inventory = inventory.New(s.Pool, s.Specs)
	s.Dispatcher = dispatch.New(s.Pool, s.Specs)

	s.RunOnce(context.Background())

	blocks, err := fake.Blocks(context.Background())
	require.NoError(t, err)
	require.Empty(t, blocks, "a block whose spec is gone from the repository must be expired")
}

func TestSchedulerNodeLossDemotesAndReassignsSurvivingSpec(t *testing.T) {
	nodeA := model.NodeID{Host: "10.0.0.1", Port: 1}
	nodeB := model.NodeID{Host: "10.0.0.2", Port: 2}
	clientA := &flakyClient{Fake: nodeclient.NewFake()}
	clientB := nodeclient.NewFake()

	path := writeTwoNodeConfig(t, t.TempDir(), nodeA, nodeB)
	pool := nodeclient.NewPool(nodeclient.NewFakeDialer(map[model.NodeID]nodeclient.NodeClient{
		nodeA: clientA,
		nodeB: clientB,
	}))
	enum := &source.StaticEnumerator{Units: map[string][]source.Unit{
		"local:///data": {{PartitionKey: "p1", SizeBytes: 10}},
	}}
	specs := specrepo.New(enum)

	s := &Scheduler{
		Loader:     clusterconfig.NewLoader(path),
		Registry:   noderegistry.New(),
		Specs:      specs,
		Pool:       pool,
		Inventory:  inventory.New(pool, specs),
		Dispatcher: dispatch.New(pool, specs),
	}

	s.RunOnce(context.Background())
	first := specs.Specs()[0]
	require.Equal(t, model.SpecReady, first.State)
	require.NotNil(t, first.Affinity)
	require.Equal(t, nodeA, *first.Affinity, "the lone node-local spec goes to the lexicographically-first node")

	// node A vanishes from the network (not from config): both the health
	// probe and the inventory fan-out start failing against it.
	clientA.down.Store(true)

	s.RunOnce(context.Background())
	second := specs.Specs()[0]
	require.Equal(t, model.SpecReady, second.State, "the spec's affinity is still observed active at the start of this tick")
	require.False(t, s.Registry.ActiveSet()[nodeA], "two RPC failures in one tick (probe + inventory) must mark A inactive by tick's end")

	s.RunOnce(context.Background())
	third := specs.Specs()[0]
	require.Equal(t, model.SpecReady, third.State, "the demoted spec must be reassigned and re-ingested within the same tick")
	require.NotNil(t, third.Affinity)
	require.Equal(t, nodeB, *third.Affinity, "losing node A must reassign the spec to the only surviving node")
}
