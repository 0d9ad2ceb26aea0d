package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/nipatil-cybage/nebula/internal/model"
)

const workerServiceName = "nebula.Worker"

// Wire request/response shapes for the worker RPC surface (§6). These
// travel over the JSON codec (codec.go), not a protoc-compiled format.
type (
	EchoRequest  struct{ Message string }
	EchoResponse struct{ Message string }

	StateRequest  struct{}
	StateResponse struct {
		BlockCount int64
		MemBytes   int64
	}

	BlocksRequest  struct{}
	BlocksResponse struct {
		Blocks []model.BlockSummary
	}

	TaskRequest struct {
		Type      model.TaskType
		Payload   []byte
		Signature string
	}
	TaskResponse struct {
		State model.TaskState
	}

	// QueryRequest/QueryResponse are the unary stand-in for C9's
	// Query(Plan) -> stream<RowBatch> contract: plan compilation and true
	// row-batch streaming are out of scope (§1), so a node returns one row
	// per resident block of Table rather than streaming scanned rows.
	QueryRequest struct {
		Table string
	}
	QueryResponse struct {
		Rows []map[string]interface{}
	}
)

// WorkerClient is the generated-style client stub for the worker RPC
// surface.
type WorkerClient interface {
	Echo(ctx context.Context, in *EchoRequest, opts ...grpc.CallOption) (*EchoResponse, error)
	State(ctx context.Context, in *StateRequest, opts ...grpc.CallOption) (*StateResponse, error)
	Blocks(ctx context.Context, in *BlocksRequest, opts ...grpc.CallOption) (*BlocksResponse, error)
	Task(ctx context.Context, in *TaskRequest, opts ...grpc.CallOption) (*TaskResponse, error)
	Query(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error)
}

type workerClient struct {
	cc grpc.ClientConnInterface
}

func NewWorkerClient(cc grpc.ClientConnInterface) WorkerClient {
	return &workerClient{cc: cc}
}

func (c *workerClient) Echo(ctx context.Context, in *EchoRequest, opts ...grpc.CallOption) (*EchoResponse, error) {
	out := new(EchoResponse)
	if err := c.cc.Invoke(ctx, "/"+workerServiceName+"/Echo", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerClient) State(ctx context.Context, in *StateRequest, opts ...grpc.CallOption) (*StateResponse, error) {
	out := new(StateResponse)
	if err := c.cc.Invoke(ctx, "/"+workerServiceName+"/State", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerClient) Blocks(ctx context.Context, in *BlocksRequest, opts ...grpc.CallOption) (*BlocksResponse, error) {
	out := new(BlocksResponse)
	if err := c.cc.Invoke(ctx, "/"+workerServiceName+"/Blocks", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerClient) Task(ctx context.Context, in *TaskRequest, opts ...grpc.CallOption) (*TaskResponse, error) {
	out := new(TaskResponse)
	if err := c.cc.Invoke(ctx, "/"+workerServiceName+"/Task", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerClient) Query(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error) {
	out := new(QueryResponse)
	if err := c.cc.Invoke(ctx, "/"+workerServiceName+"/Query", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// WorkerServer is the interface a node process implements.
type WorkerServer interface {
	Echo(ctx context.Context, in *EchoRequest) (*EchoResponse, error)
	State(ctx context.Context, in *StateRequest) (*StateResponse, error)
	Blocks(ctx context.Context, in *BlocksRequest) (*BlocksResponse, error)
	Task(ctx context.Context, in *TaskRequest) (*TaskResponse, error)
	Query(ctx context.Context, in *QueryRequest) (*QueryResponse, error)
}

// RegisterWorkerServer wires srv into s the way protoc-gen-go-grpc would,
// minus the protoc step (§4.9).
func RegisterWorkerServer(s grpc.ServiceRegistrar, srv WorkerServer) {
	s.RegisterService(&workerServiceDesc, srv)
}

var workerServiceDesc = grpc.ServiceDesc{
	ServiceName: workerServiceName,
	HandlerType: (*WorkerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Echo", Handler: workerEchoHandler},
		{MethodName: "State", Handler: workerStateHandler},
		{MethodName: "Blocks", Handler: workerBlocksHandler},
		{MethodName: "Task", Handler: workerTaskHandler},
		{MethodName: "Query", Handler: workerQueryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nebula/worker.proto",
}

func workerEchoHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(EchoRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerServer).Echo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + workerServiceName + "/Echo"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerServer).Echo(ctx, req.(*EchoRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func workerStateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(StateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerServer).State(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + workerServiceName + "/State"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerServer).State(ctx, req.(*StateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func workerBlocksHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BlocksRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerServer).Blocks(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + workerServiceName + "/Blocks"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerServer).Blocks(ctx, req.(*BlocksRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func workerTaskHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(TaskRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerServer).Task(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + workerServiceName + "/Task"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerServer).Task(ctx, req.(*TaskRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func workerQueryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(QueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + workerServiceName + "/Query"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerServer).Query(ctx, req.(*QueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}
