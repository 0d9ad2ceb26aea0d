package model

import "time"

// TableStateResult is the aggregate TableState answer (§4.8). Lives in
// model (rather than queryfanout, which defines it as an alias) so the rpc
// package can reference it without importing queryfanout.
type TableStateResult struct {
	Name       string
	BlockCount int64
	RowCount   int64
	MemBytes   int64
	MinTime    time.Time
	MaxTime    time.Time
	Dimensions []Column
	Metrics    []Column
}

// QueryResult is the query result envelope of §6: a JSON-typed payload plus
// execution stats. Lives in model (rather than queryfanout, which defines
// it as an alias) so the rpc package can reference it without importing
// queryfanout.
type QueryResult struct {
	Type  string
	Data  []map[string]interface{}
	Stats QueryStats
}

type QueryStats struct {
	QueryTimeMs int64
	RowsScanned int64
	Error       string
	Message     string
}
