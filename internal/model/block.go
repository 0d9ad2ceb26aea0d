package model

import "time"

// ColumnStats is a per-column summary the coordinator keeps for a Block
// without ever touching the node's actual columnar pages.
type ColumnStats struct {
	Name     string
	DistinctApprox int64
	NullCount int64
}

// BlockSummary is what a node reports about one resident block during
// inventory collection (§4.3). Identity is (SpecSignature, node,
// ResidencyEpoch); the coordinator never dereferences node memory.
type BlockSummary struct {
	SpecSignature string
	ResidencyEpoch string // uuid, minted by the node on ingest ack
	Table         string // carried from SpecPayload.Table at ingest, so Query can filter resident blocks by table

	RowCount int64
	RawBytes int64

	MinTime time.Time
	MaxTime time.Time

	Columns []ColumnStats
}
