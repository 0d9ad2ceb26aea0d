package model

import "time"

// SpecState is a spec's position in the lifecycle machine of §3.
type SpecState int

const (
	SpecNew SpecState = iota
	SpecAssigned
	SpecReady
	SpecFailed
)

func (s SpecState) String() string {
	switch s {
	case SpecNew:
		return "NEW"
	case SpecAssigned:
		return "ASSIGNED"
	case SpecReady:
		return "READY"
	case SpecFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Spec is a deterministic unit of ingestion derived from (table, source,
// partition-key). Signature is the sole stable identity (invariant 3).
type Spec struct {
	Signature string

	Table  string
	Source string // IngestionSource.URI this spec was derived from

	State    SpecState
	Affinity *NodeID

	SizeBytes int64
	MTime     time.Time

	// FailureCount is consecutive FAILED task replies since the last
	// SUCCEEDED or reassignment; threshold demotion resets it to zero.
	FailureCount int

	// LastSentTick is the tick index this spec's task was last dispatched
	// on, used by Dispatcher.NeedSync (§4.6).
	LastSentTick int64
}

// Clone returns a value copy safe to hand to a reader outside the writer
// goroutine (invariant 5: readers observe a consistent snapshot).
func (s *Spec) Clone() *Spec {
	cp := *s
	if s.Affinity != nil {
		aff := *s.Affinity
		cp.Affinity = &aff
	}
	return &cp
}
