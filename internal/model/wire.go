package model

import "encoding/json"

// taskWire is the on-the-wire shape of a Task. The actual byte format is
// out of scope (§1); JSON is used because it round-trips predictably and
// keeps the RPC layer (internal/rpc) free of a protoc dependency.
type taskWire struct {
	Type      TaskType `json:"type"`
	Payload   []byte   `json:"payload"`
	Signature string   `json:"signature"`
}

// MarshalTask encodes t for the wire. Round-tripping through
// MarshalTask/UnmarshalTask must preserve (Type, Payload, Signature)
// byte-for-byte (§8).
func MarshalTask(t *Task) ([]byte, error) {
	return json.Marshal(taskWire{Type: t.Type, Payload: t.Payload, Signature: t.Signature})
}

func UnmarshalTask(data []byte) (*Task, error) {
	var w taskWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &Task{Type: w.Type, Payload: w.Payload, Signature: w.Signature}, nil
}

// SpecPayload / ExpirationPayload are the two concrete Task.Payload shapes.
type SpecPayload struct {
	Signature string `json:"signature"`
	Table     string `json:"table"`
	Source    string `json:"source"`
	SizeBytes int64  `json:"size_bytes"`
}

type ExpirationPayload struct {
	Signatures []string `json:"signatures"`
}

func MarshalSpecPayload(p *SpecPayload) ([]byte, error) {
	return json.Marshal(p)
}

func UnmarshalSpecPayload(data []byte) (*SpecPayload, error) {
	var p SpecPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func MarshalExpirationPayload(p *ExpirationPayload) ([]byte, error) {
	return json.Marshal(p)
}

func UnmarshalExpirationPayload(data []byte) (*ExpirationPayload, error) {
	var p ExpirationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
