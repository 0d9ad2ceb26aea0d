package model

// TaskType is the closed set of work a coordinator can hand a node (§4.6).
type TaskType int

const (
	TaskIngestion TaskType = iota + 1
	TaskExpiration
	TaskCommand
)

func (t TaskType) String() string {
	switch t {
	case TaskIngestion:
		return "INGESTION"
	case TaskExpiration:
		return "EXPIRATION"
	case TaskCommand:
		return "COMMAND"
	default:
		return "UNKNOWN"
	}
}

// TaskState is a node's reply to a dispatched Task.
type TaskState int

const (
	TaskQueued TaskState = iota + 1
	TaskRunning
	TaskSucceeded
	TaskFailed
)

func (s TaskState) String() string {
	switch s {
	case TaskQueued:
		return "QUEUED"
	case TaskRunning:
		return "RUNNING"
	case TaskSucceeded:
		return "SUCCEEDED"
	case TaskFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Task is the wire message the dispatcher sends and a node executes.
// Payload holds either a marshaled Spec (INGESTION), a list of block
// signatures (EXPIRATION), or a command name (COMMAND) — the exact byte
// shape is the (out of scope) wire codec's business; Task itself only
// promises that (Type, Payload, Signature) round-trip byte-for-byte.
type Task struct {
	Type      TaskType
	Payload   []byte
	Signature string
}
