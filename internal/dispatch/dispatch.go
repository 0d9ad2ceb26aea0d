// Package dispatch delivers ingestion/expiration/command tasks to nodes and
// interprets their replies (C6), grounded on the teacher's taskMgr
// (master/catalog/task.go) send/execute/retry loop, adapted from a
// self-driving retry queue to a tick-scoped fan-out the scheduler drives
// directly (§4.7 requires ticks to run to completion, not overlap with a
// background retry goroutine).
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nipatil-cybage/nebula/internal/errs"
	"github.com/nipatil-cybage/nebula/internal/metrics"
	"github.com/nipatil-cybage/nebula/internal/model"
	"github.com/nipatil-cybage/nebula/internal/nodeclient"
	"github.com/nipatil-cybage/nebula/internal/specrepo"
	"github.com/nipatil-cybage/nebula/internal/telemetry"
)

// DefaultFailureThreshold is the number of consecutive FAILED replies
// before a spec is demoted back to NEW (§9 open question (a)).
const DefaultFailureThreshold = 3

// Dispatcher sends tasks through a nodeclient.Pool and folds replies back
// into a specrepo.Repository.
type Dispatcher struct {
	pool     *nodeclient.Pool
	specs    *specrepo.Repository
	failures int
}

func New(pool *nodeclient.Pool, specs *specrepo.Repository) *Dispatcher {
	return &Dispatcher{pool: pool, specs: specs, failures: DefaultFailureThreshold}
}

// NeedSync reports whether s should be (re)dispatched this tick: it is
// ASSIGNED and wasn't sent this tick, or NEW-turned-ASSIGNED just now
// (§4.6). currentTick is the scheduler's monotonically increasing tick
// index.
func NeedSync(s *model.Spec, currentTick int64) bool {
	if s.State != model.SpecAssigned {
		return false
	}
	return s.LastSentTick != currentTick
}

// Ingest sends an INGESTION task for s and folds the reply into the
// repository. Network errors that never established the RPC do not count
// toward the failure threshold (§4.6).
func (d *Dispatcher) Ingest(ctx context.Context, s *model.Spec, tick int64) error {
	log, ctx := telemetry.StartSpan(ctx, "dispatch.Ingest")
	if s.Affinity == nil {
		return fmt.Errorf("spec %s has no affinity", s.Signature)
	}

	payload, err := model.MarshalSpecPayload(&model.SpecPayload{
		Signature: s.Signature,
		Table:     s.Table,
		Source:    s.Source,
		SizeBytes: s.SizeBytes,
	})
	if err != nil {
		return err
	}
	task := &model.Task{Type: model.TaskIngestion, Signature: s.Signature, Payload: payload}

	reply, established, err := d.send(ctx, *s.Affinity, task)
	d.specs.MarkSent(s.Signature, tick)

	if err != nil {
		metrics.TaskReplies.WithLabelValues("INGESTION", "ERROR").Inc()
		if !established {
			log.Warnf("ingest %s on %s: rpc not established: %s", s.Signature, s.Affinity, err)
			return nil
		}
		d.recordFailure(ctx, s.Signature, log)
		return nil
	}

	return d.applyReply(ctx, s.Signature, model.TaskIngestion, reply, log)
}

// Expire sends one EXPIRATION task carrying the whole batch of stale block
// signatures for node (§4.3: batched to minimise RPC count).
func (d *Dispatcher) Expire(ctx context.Context, node model.NodeID, signatures []string) error {
	log, ctx := telemetry.StartSpan(ctx, "dispatch.Expire")
	if len(signatures) == 0 {
		return nil
	}

	payload, err := model.MarshalExpirationPayload(&model.ExpirationPayload{Signatures: signatures})
	if err != nil {
		return err
	}
	task := &model.Task{Type: model.TaskExpiration, Signature: node.String(), Payload: payload}

	_, _, err = d.send(ctx, node, task)
	if err != nil {
		metrics.TaskReplies.WithLabelValues("EXPIRATION", "ERROR").Inc()
		log.Warnf("expire %d blocks on %s failed: %s", len(signatures), node, err)
		return err
	}
	metrics.TaskReplies.WithLabelValues("EXPIRATION", "SUCCEEDED").Inc()
	return nil
}

// Command sends an out-of-band task (e.g. shutdown) to one node.
func (d *Dispatcher) Command(ctx context.Context, node model.NodeID, name string) error {
	task := &model.Task{Type: model.TaskCommand, Signature: name, Payload: []byte(name)}
	_, _, err := d.send(ctx, node, task)
	return err
}

func (d *Dispatcher) send(ctx context.Context, node model.NodeID, task *model.Task) (model.TaskState, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, nodeclient.DefaultRPCTimeout)
	defer cancel()

	client, err := d.pool.Get(ctx, node)
	if err != nil {
		return 0, false, fmt.Errorf("%w: dial %s: %s", errs.ErrNodeUnreachable, node, err)
	}

	reply, err := client.Task(ctx, task)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s", errs.ErrTaskFailed, err)
	}
	return reply, true, nil
}

func (d *Dispatcher) applyReply(ctx context.Context, sig string, taskType model.TaskType, reply model.TaskState, log *zap.SugaredLogger) error {
	metrics.TaskReplies.WithLabelValues(taskType.String(), reply.String()).Inc()

	switch reply {
	case model.TaskSucceeded:
		return d.specs.SetState(ctx, sig, model.SpecReady)
	case model.TaskQueued, model.TaskRunning:
		return nil
	case model.TaskFailed:
		d.recordFailure(ctx, sig, log)
		return nil
	default:
		return fmt.Errorf("%w: unknown task state %v", errs.ErrTaskRejected, reply)
	}
}

func (d *Dispatcher) recordFailure(ctx context.Context, sig string, log *zap.SugaredLogger) {
	if d.specs.RecordFailure(sig, d.failures) {
		log.Infof("spec %s demoted to NEW after %d consecutive failures", sig, d.failures)
	} else {
		log.Warnf("spec %s task failed", sig)
	}
}

// IsTimeout reports whether err is a context deadline breach, treated as a
// FAILED reply that never aborts the tick (§5 cancellation & timeouts).
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
