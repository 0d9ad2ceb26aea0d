package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/nipatil-cybage/nebula/internal/model"
)

const coordinatorServiceName = "nebula.Coordinator"

// Wire request/response shapes for the coordinator gRPC surface (§6, §4.8).
type (
	TablesRequest struct {
		Limit int
	}
	TablesResponse struct {
		Names []string
	}

	TableStateRequest struct {
		Name string
	}
	TableStateResponse struct {
		State *model.TableStateResult
		Error string // INVALID_TABLE, empty on success
	}

	CoordinatorQueryRequest struct {
		Table  string
		User   string
		Groups []string
	}
	CoordinatorQueryResponse struct {
		Result *model.QueryResult
		Error  string // INVALID_QUERY, INVALID_TABLE, COMPILE_ERROR, EXECUTION_ERROR, UNKNOWN
	}
)

// CoordinatorClient is the generated-style client stub for the coordinator
// surface a CLI or dashboard would dial.
type CoordinatorClient interface {
	Echo(ctx context.Context, in *EchoRequest, opts ...grpc.CallOption) (*EchoResponse, error)
	Tables(ctx context.Context, in *TablesRequest, opts ...grpc.CallOption) (*TablesResponse, error)
	TableState(ctx context.Context, in *TableStateRequest, opts ...grpc.CallOption) (*TableStateResponse, error)
	Query(ctx context.Context, in *CoordinatorQueryRequest, opts ...grpc.CallOption) (*CoordinatorQueryResponse, error)
}

type coordinatorClient struct {
	cc grpc.ClientConnInterface
}

func NewCoordinatorClient(cc grpc.ClientConnInterface) CoordinatorClient {
	return &coordinatorClient{cc: cc}
}

func (c *coordinatorClient) Echo(ctx context.Context, in *EchoRequest, opts ...grpc.CallOption) (*EchoResponse, error) {
	out := new(EchoResponse)
	if err := c.cc.Invoke(ctx, "/"+coordinatorServiceName+"/Echo", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *coordinatorClient) Tables(ctx context.Context, in *TablesRequest, opts ...grpc.CallOption) (*TablesResponse, error) {
	out := new(TablesResponse)
	if err := c.cc.Invoke(ctx, "/"+coordinatorServiceName+"/Tables", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *coordinatorClient) TableState(ctx context.Context, in *TableStateRequest, opts ...grpc.CallOption) (*TableStateResponse, error) {
	out := new(TableStateResponse)
	if err := c.cc.Invoke(ctx, "/"+coordinatorServiceName+"/TableState", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *coordinatorClient) Query(ctx context.Context, in *CoordinatorQueryRequest, opts ...grpc.CallOption) (*CoordinatorQueryResponse, error) {
	out := new(CoordinatorQueryResponse)
	if err := c.cc.Invoke(ctx, "/"+coordinatorServiceName+"/Query", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CoordinatorServer is implemented by cmd/coordinator, backed by a
// runtime.Runtime.
type CoordinatorServer interface {
	Echo(ctx context.Context, in *EchoRequest) (*EchoResponse, error)
	Tables(ctx context.Context, in *TablesRequest) (*TablesResponse, error)
	TableState(ctx context.Context, in *TableStateRequest) (*TableStateResponse, error)
	Query(ctx context.Context, in *CoordinatorQueryRequest) (*CoordinatorQueryResponse, error)
}

func RegisterCoordinatorServer(s grpc.ServiceRegistrar, srv CoordinatorServer) {
	s.RegisterService(&coordinatorServiceDesc, srv)
}

var coordinatorServiceDesc = grpc.ServiceDesc{
	ServiceName: coordinatorServiceName,
	HandlerType: (*CoordinatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Echo", Handler: coordinatorEchoHandler},
		{MethodName: "Tables", Handler: coordinatorTablesHandler},
		{MethodName: "TableState", Handler: coordinatorTableStateHandler},
		{MethodName: "Query", Handler: coordinatorQueryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nebula/coordinator.proto",
}

func coordinatorEchoHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(EchoRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CoordinatorServer).Echo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + coordinatorServiceName + "/Echo"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CoordinatorServer).Echo(ctx, req.(*EchoRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func coordinatorTablesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(TablesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CoordinatorServer).Tables(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + coordinatorServiceName + "/Tables"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CoordinatorServer).Tables(ctx, req.(*TablesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func coordinatorTableStateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(TableStateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CoordinatorServer).TableState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + coordinatorServiceName + "/TableState"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CoordinatorServer).TableState(ctx, req.(*TableStateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func coordinatorQueryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CoordinatorQueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CoordinatorServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + coordinatorServiceName + "/Query"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CoordinatorServer).Query(ctx, req.(*CoordinatorQueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}
