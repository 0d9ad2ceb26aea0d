package nodeclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nipatil-cybage/nebula/internal/model"
)

type countingClient struct {
	NodeClient
	closed int
}

func (c *countingClient) Close() error {
	c.closed++
	return nil
}

func TestPoolGetCachesClientPerNode(t *testing.T) {
	node := model.NodeID{Host: "h1", Port: 1}
	client := &countingClient{NodeClient: NewFake()}
	pool := NewPool(NewFakeDialer(map[model.NodeID]NodeClient{node: client}))

	first, err := pool.Get(context.Background(), node)
	require.NoError(t, err)
	second, err := pool.Get(context.Background(), node)
	require.NoError(t, err)
	require.Same(t, first, second, "Get must reuse the dialed client rather than redialing")
}

func TestPoolGetPropagatesDialError(t *testing.T) {
	pool := NewPool(NewFakeDialer(map[model.NodeID]NodeClient{}))
	_, err := pool.Get(context.Background(), model.NodeID{Host: "ghost", Port: 1})
	require.Error(t, err)
}

func TestPoolDropClosesAndForcesRedial(t *testing.T) {
	node := model.NodeID{Host: "h1", Port: 1}
	client := &countingClient{NodeClient: NewFake()}
	pool := NewPool(NewFakeDialer(map[model.NodeID]NodeClient{node: client}))

	_, err := pool.Get(context.Background(), node)
	require.NoError(t, err)

	pool.Drop(node)
	require.Equal(t, 1, client.closed)

	_, err = pool.Get(context.Background(), node)
	require.NoError(t, err, "a dropped node must be redialable")
}

func TestPoolCloseAllClosesEveryCachedClient(t *testing.T) {
	nodeA := model.NodeID{Host: "a", Port: 1}
	nodeB := model.NodeID{Host: "b", Port: 1}
	clientA := &countingClient{NodeClient: NewFake()}
	clientB := &countingClient{NodeClient: NewFake()}
	pool := NewPool(NewFakeDialer(map[model.NodeID]NodeClient{nodeA: clientA, nodeB: clientB}))

	_, err := pool.Get(context.Background(), nodeA)
	require.NoError(t, err)
	_, err = pool.Get(context.Background(), nodeB)
	require.NoError(t, err)

	pool.CloseAll()
	require.Equal(t, 1, clientA.closed)
	require.Equal(t, 1, clientB.closed)

	// a second CloseAll on an already-drained pool must be a no-op, not a
	// double-close.
	pool.CloseAll()
	require.Equal(t, 1, clientA.closed)
}

func TestGRPCDialerDialsWithoutBlocking(t *testing.T) {
	client, err := GRPCDialer{}.Dial(context.Background(), model.NodeID{Host: "127.0.0.1", Port: 7080})
	require.NoError(t, err, "DialContext without grpc.WithBlock must return immediately")
	require.NoError(t, client.Close())
}
