package nodeclient

import (
	"context"
	"fmt"
	"math"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/nipatil-cybage/nebula/internal/model"
	"github.com/nipatil-cybage/nebula/internal/rpc"
)

// GRPCDialer is the production Dialer, grounded on the teacher's
// client.NewClient (client/client.go): same keepalive params and
// max-message-size call options, dialing over plaintext since the cluster
// is assumed to run inside a trusted network (§1 scope — TLS/auth
// transport hardening is out of scope).
type GRPCDialer struct{}

func (GRPCDialer) Dial(ctx context.Context, id model.NodeID) (NodeClient, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithDefaultCallOptions(
			grpc.MaxCallSendMsgSize(math.MaxInt32),
			grpc.MaxCallRecvMsgSize(math.MaxInt32),
			grpc.CallContentSubtype(rpc.CodecName),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                1 * time.Second,
			Timeout:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}

	conn, err := grpc.DialContext(ctx, id.String(), dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial node %s: %w", id, err)
	}

	return &grpcNodeClient{
		id:     id,
		conn:   conn,
		worker: rpc.NewWorkerClient(conn),
	}, nil
}

// grpcNodeClient adapts the generated-style rpc.WorkerClient wire surface
// to the plain-Go NodeClient interface the rest of the control plane uses.
type grpcNodeClient struct {
	id     model.NodeID
	conn   *grpc.ClientConn
	worker rpc.WorkerClient
}

func (c *grpcNodeClient) Echo(ctx context.Context, msg string) (string, error) {
	resp, err := c.worker.Echo(ctx, &rpc.EchoRequest{Message: msg})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *grpcNodeClient) State(ctx context.Context) (NodeState, error) {
	resp, err := c.worker.State(ctx, &rpc.StateRequest{})
	if err != nil {
		return NodeState{}, err
	}
	return NodeState{BlockCount: resp.BlockCount, MemBytes: resp.MemBytes}, nil
}

func (c *grpcNodeClient) Blocks(ctx context.Context) ([]model.BlockSummary, error) {
	resp, err := c.worker.Blocks(ctx, &rpc.BlocksRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Blocks, nil
}

func (c *grpcNodeClient) Task(ctx context.Context, task *model.Task) (model.TaskState, error) {
	resp, err := c.worker.Task(ctx, &rpc.TaskRequest{
		Type:      task.Type,
		Payload:   task.Payload,
		Signature: task.Signature,
	})
	if err != nil {
		return model.TaskQueued, err
	}
	return resp.State, nil
}

func (c *grpcNodeClient) Query(ctx context.Context, table string) ([]map[string]interface{}, error) {
	resp, err := c.worker.Query(ctx, &rpc.QueryRequest{Table: table})
	if err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

func (c *grpcNodeClient) Close() error {
	return c.conn.Close()
}
