package queryfanout

// AggKind is the closed set of aggregation functions TableState's
// dimension/metric split recognises (§9 design notes: "UDAF type
// specialisation by enum tag" re-expressed as a value enum plus a factory
// table rather than a type hierarchy). Full UDAF execution over row data is
// out of scope (§1). TableState sums its per-node BlockSummary stats inline
// and does not call NewAggregator.
type AggKind int

const (
	AggSum AggKind = iota
	AggMax
	AggMin
	AggCount
)

// Aggregator folds int64 samples into a running value.
type Aggregator interface {
	Add(v int64)
	Result() int64
}

type sumAgg struct{ total int64 }

func (a *sumAgg) Add(v int64)   { a.total += v }
func (a *sumAgg) Result() int64 { return a.total }

type maxAgg struct {
	value int64
	seen  bool
}

func (a *maxAgg) Add(v int64) {
	if !a.seen || v > a.value {
		a.value, a.seen = v, true
	}
}
func (a *maxAgg) Result() int64 { return a.value }

type minAgg struct {
	value int64
	seen  bool
}

func (a *minAgg) Add(v int64) {
	if !a.seen || v < a.value {
		a.value, a.seen = v, true
	}
}
func (a *minAgg) Result() int64 { return a.value }

type countAgg struct{ n int64 }

func (a *countAgg) Add(int64)    { a.n++ }
func (a *countAgg) Result() int64 { return a.n }

// aggregators is the AggKind -> constructor factory table.
var aggregators = map[AggKind]func() Aggregator{
	AggSum:   func() Aggregator { return &sumAgg{} },
	AggMax:   func() Aggregator { return &maxAgg{} },
	AggMin:   func() Aggregator { return &minAgg{} },
	AggCount: func() Aggregator { return &countAgg{} },
}

// NewAggregator builds a fresh accumulator for kind, or nil if kind is not
// in the recognised set.
func NewAggregator(kind AggKind) Aggregator {
	factory, ok := aggregators[kind]
	if !ok {
		return nil
	}
	return factory()
}
