package queryfanout

import (
	"fmt"

	"github.com/nipatil-cybage/nebula/internal/model"
)

// CursorKind tags the closed set of row-cursor shapes the merge boundary
// understands (§9 design notes: "dynamic dispatch on cursor shapes" is
// re-expressed as a value-level sum type instead of an interface with N
// empty-ish implementations).
type CursorKind int

const (
	CursorBlock CursorKind = iota
	CursorSamples
	CursorFlat
	CursorComposite
	CursorMock
)

// Cursor is the merge-time representation of one node's contribution to a
// query. Full cursor execution (actually scanning columnar pages) is out of
// scope (§1); only the shape that the fan-out merge step needs to reason
// about is modeled here.
type Cursor struct {
	Kind CursorKind

	// Block holds one BlockSummary's worth of pre-aggregated stats.
	Block *model.BlockSummary

	// Samples holds raw row-like values, one map per row.
	Samples []map[string]interface{}

	// Flat holds a single flattened row (e.g. a COMMAND/echo acknowledgement).
	Flat map[string]interface{}

	// Composite holds sub-cursors to be merged in order.
	Composite []Cursor

	// Mock carries a literal value for tests, where no real node data is
	// being modeled.
	Mock interface{}
}

// AsBuffer flattens the cursor into a slice of rows shaped by schema,
// dispatching on Kind with a switch on its integer value (Kind is a value
// enum rather than an interface, so no type switch is involved).
func (c Cursor) AsBuffer(schema []model.Column) ([]map[string]interface{}, error) {
	switch c.Kind {
	case CursorBlock:
		if c.Block == nil {
			return nil, nil
		}
		row := map[string]interface{}{
			"spec_signature": c.Block.SpecSignature,
			"row_count":      c.Block.RowCount,
			"raw_bytes":      c.Block.RawBytes,
			"min_time":       c.Block.MinTime,
			"max_time":       c.Block.MaxTime,
		}
		return []map[string]interface{}{row}, nil
	case CursorSamples:
		return c.Samples, nil
	case CursorFlat:
		if c.Flat == nil {
			return nil, nil
		}
		return []map[string]interface{}{c.Flat}, nil
	case CursorComposite:
		var out []map[string]interface{}
		for _, sub := range c.Composite {
			rows, err := sub.AsBuffer(schema)
			if err != nil {
				return nil, err
			}
			out = append(out, rows...)
		}
		return out, nil
	case CursorMock:
		return []map[string]interface{}{{"mock": c.Mock}}, nil
	default:
		return nil, fmt.Errorf("unknown cursor kind %d", c.Kind)
	}
}
