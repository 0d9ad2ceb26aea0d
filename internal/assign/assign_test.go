package assign

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nipatil-cybage/nebula/internal/model"
)

func node(host string, port int) model.NodeID {
	return model.NodeID{Host: host, Port: port}
}

func TestPlaceIsTotal(t *testing.T) {
	nodes := []NodeLoad{
		{ID: node("h1", 1), SizeBytes: 0},
		{ID: node("h2", 2), SizeBytes: 0},
		{ID: node("h3", 3), SizeBytes: 0},
	}
	specs := []*model.Spec{
		{Signature: "s1", SizeBytes: 10},
		{Signature: "s2", SizeBytes: 20},
		{Signature: "s3", SizeBytes: 30},
		{Signature: "s4", SizeBytes: 5},
	}

	placement := Place(nodes, specs)
	require.Len(t, placement, len(specs))
	for _, s := range specs {
		_, ok := placement[s.Signature]
		require.True(t, ok, "spec %s must be placed", s.Signature)
	}
}

func TestPlaceBalancesGreedySmallest(t *testing.T) {
	nodes := []NodeLoad{
		{ID: node("h1", 1), SizeBytes: 100},
		{ID: node("h2", 2), SizeBytes: 0},
	}
	specs := []*model.Spec{
		{Signature: "s1", SizeBytes: 10},
	}

	placement := Place(nodes, specs)
	require.Equal(t, node("h2", 2), placement["s1"], "the lighter node should receive the new spec")
}

func TestPlaceIsDeterministic(t *testing.T) {
	nodes := []NodeLoad{
		{ID: node("h1", 1), SizeBytes: 5},
		{ID: node("h2", 2), SizeBytes: 5},
	}
	specs := []*model.Spec{
		{Signature: "s1", SizeBytes: 10},
		{Signature: "s2", SizeBytes: 10},
	}

	first := Place(nodes, specs)
	second := Place(nodes, specs)
	require.Equal(t, first, second)
}

func TestPlaceNoNodesReturnsEmpty(t *testing.T) {
	placement := Place(nil, []*model.Spec{{Signature: "s1", SizeBytes: 10}})
	require.Empty(t, placement)
}
