// Package idgen mints process-local identifiers. The teacher's allocator
// leans on a raft-replicated ID range (master/cluster/allocator.go,
// proto/id.go); Nebula has no persisted or replicated state (§6), so the
// only identifier it needs — a node's per-process block residency epoch —
// is minted locally with google/uuid and never needs to survive a restart.
package idgen

import "github.com/google/uuid"

// NewEpoch mints a fresh residency epoch for a block a node just finished
// ingesting (§4.6 INGESTION reply path, model.BlockSummary.ResidencyEpoch).
func NewEpoch() string {
	return uuid.NewString()
}
