// Package assign implements the greedy-smallest-node balance policy (C5),
// grounded on the teacher's nodeSet.Alloc (master/cluster/allocator.go)
// but deterministic: that allocator shuffles and samples randomly because
// any of several interchangeable nodes will do for a new shard; specs are
// long-lived (§4.5 rationale), so placement here is a stable sort instead.
package assign

import (
	"sort"

	"github.com/nipatil-cybage/nebula/internal/model"
)

// NodeLoad is the minimal view the policy needs of a candidate node.
type NodeLoad struct {
	ID        model.NodeID
	SizeBytes int64
}

// Place assigns each spec (already sorted by signature by the caller, but
// Place sorts defensively) to the currently-smallest node, incrementing
// that node's working size so later specs in the same call stay balanced
// (§4.5). Returns signature -> chosen node.
func Place(nodes []NodeLoad, specs []*model.Spec) map[string]model.NodeID {
	if len(nodes) == 0 || len(specs) == 0 {
		return nil
	}

	working := make([]NodeLoad, len(nodes))
	copy(working, nodes)
	sort.Slice(working, func(i, j int) bool { return less(working[i], working[j]) })

	ordered := make([]*model.Spec, len(specs))
	copy(ordered, specs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Signature < ordered[j].Signature })

	placement := make(map[string]model.NodeID, len(ordered))
	for _, s := range ordered {
		target := &working[0]
		placement[s.Signature] = target.ID
		target.SizeBytes += s.SizeBytes

		// re-sink the just-grown node into sorted position; len(working)
		// is small (fleet size), so a linear re-sort is fine per tick.
		sort.Slice(working, func(i, j int) bool { return less(working[i], working[j]) })
	}
	return placement
}

func less(a, b NodeLoad) bool {
	if a.SizeBytes != b.SizeBytes {
		return a.SizeBytes < b.SizeBytes
	}
	return a.ID.Less(b.ID)
}
