package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nipatil-cybage/nebula/internal/model"
	"github.com/nipatil-cybage/nebula/internal/nodeclient"
	"github.com/nipatil-cybage/nebula/internal/source"
	"github.com/nipatil-cybage/nebula/internal/specrepo"
)

func newSpec(t *testing.T, repo *specrepo.Repository, node model.NodeID) *model.Spec {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.Refresh(ctx, &model.ClusterInfo{
		Tables: []model.Table{{
			Name:    "requests",
			Sources: []model.IngestionSource{{URI: "local:///data", Format: model.FormatCSV}},
		}},
	}))
	sig := repo.Specs()[0].Signature
	require.True(t, repo.Assign(sig, node))
	s, _ := repo.Get(sig)
	return s
}

func newEnumeratingRepo() *specrepo.Repository {
	enum := &source.StaticEnumerator{Units: map[string][]source.Unit{
		"local:///data": {{PartitionKey: "p1"}},
	}}
	return specrepo.New(enum)
}

func TestIngestSucceededAdvancesToReady(t *testing.T) {
	node := model.NodeID{Host: "h1", Port: 1}
	fake := nodeclient.NewFake()
	pool := nodeclient.NewPool(nodeclient.NewFakeDialer(map[model.NodeID]nodeclient.NodeClient{node: fake}))

	repo := newEnumeratingRepo()
	s := newSpec(t, repo, node)

	d := New(pool, repo)
	require.NoError(t, d.Ingest(context.Background(), s, 1))

	got, _ := repo.Get(s.Signature)
	require.Equal(t, model.SpecReady, got.State)
}

func TestIngestFailedSequenceDemotesAtThreshold(t *testing.T) {
	node := model.NodeID{Host: "h1", Port: 1}
	scripted := nodeclient.NewScriptedFake()
	pool := nodeclient.NewPool(nodeclient.NewFakeDialer(map[model.NodeID]nodeclient.NodeClient{node: scripted}))

	repo := newEnumeratingRepo()
	s := newSpec(t, repo, node)
	scripted.Script(s.Signature, model.TaskFailed, model.TaskFailed, model.TaskFailed)

	d := New(pool, repo)
	for i := 0; i < 3; i++ {
		require.NoError(t, d.Ingest(context.Background(), s, int64(i+1)))
	}

	got, _ := repo.Get(s.Signature)
	require.Equal(t, model.SpecNew, got.State, "three consecutive FAILED replies must demote the spec")
	require.Nil(t, got.Affinity)
}

func TestIngestQueuedLeavesAssigned(t *testing.T) {
	node := model.NodeID{Host: "h1", Port: 1}
	scripted := nodeclient.NewScriptedFake()
	pool := nodeclient.NewPool(nodeclient.NewFakeDialer(map[model.NodeID]nodeclient.NodeClient{node: scripted}))

	repo := newEnumeratingRepo()
	s := newSpec(t, repo, node)
	scripted.Script(s.Signature, model.TaskQueued)

	d := New(pool, repo)
	require.NoError(t, d.Ingest(context.Background(), s, 1))

	got, _ := repo.Get(s.Signature)
	require.Equal(t, model.SpecAssigned, got.State)
}

func TestNeedSyncDisjunction(t *testing.T) {
	s := &model.Spec{State: model.SpecAssigned, LastSentTick: 3}
	require.True(t, NeedSync(s, 4))
	require.False(t, NeedSync(s, 3))

	s.State = model.SpecNew
	require.False(t, NeedSync(s, 4))

	s.State = model.SpecReady
	require.False(t, NeedSync(s, 4))
}

func TestExpireEmptyBatchIsNoop(t *testing.T) {
	pool := nodeclient.NewPool(nodeclient.NewFakeDialer(map[model.NodeID]nodeclient.NodeClient{}))
	repo := newEnumeratingRepo()
	d := New(pool, repo)

	require.NoError(t, d.Expire(context.Background(), model.NodeID{Host: "h1", Port: 1}, nil))
}
