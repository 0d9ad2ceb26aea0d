package nodeclient

import (
	"context"
	"sync"

	"github.com/nipatil-cybage/nebula/internal/model"
)

// ScriptedFake wraps a Fake and forces the next N Task replies for a given
// spec signature to a fixed model.TaskState, letting dispatcher tests drive
// exact QUEUED -> RUNNING -> FAILED -> ... sequences (§8 scenario 5).
type ScriptedFake struct {
	*Fake

	mu     sync.Mutex
	script map[string][]model.TaskState // signature -> queued replies, consumed FIFO
}

func NewScriptedFake() *ScriptedFake {
	return &ScriptedFake{Fake: NewFake(), script: make(map[string][]model.TaskState)}
}

// Script queues replies for future Task calls carrying this signature.
func (s *ScriptedFake) Script(signature string, replies ...model.TaskState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script[signature] = append(s.script[signature], replies...)
}

func (s *ScriptedFake) Task(ctx context.Context, task *model.Task) (model.TaskState, error) {
	s.mu.Lock()
	queue := s.script[task.Signature]
	if len(queue) > 0 {
		next := queue[0]
		s.script[task.Signature] = queue[1:]
		s.mu.Unlock()
		if next == model.TaskSucceeded {
			// let the underlying Fake actually materialize/clear the block
			// so inventory reflects a real SUCCEEDED, matching a real node.
			return s.Fake.Task(ctx, task)
		}
		return next, nil
	}
	s.mu.Unlock()
	return s.Fake.Task(ctx, task)
}
