package main

import (
	"context"
	"errors"

	"github.com/nipatil-cybage/nebula/internal/errs"
	"github.com/nipatil-cybage/nebula/internal/queryfanout"
	"github.com/nipatil-cybage/nebula/internal/rpc"
)

// coordinatorServer adapts a queryfanout.Service to the rpc.CoordinatorServer
// wire contract (§4.8, §6).
type coordinatorServer struct {
	query *queryfanout.Service
}

func (s *coordinatorServer) Echo(_ context.Context, in *rpc.EchoRequest) (*rpc.EchoResponse, error) {
	return &rpc.EchoResponse{Message: in.Message}, nil
}

func (s *coordinatorServer) Tables(_ context.Context, in *rpc.TablesRequest) (*rpc.TablesResponse, error) {
	return &rpc.TablesResponse{Names: s.query.ListTables(in.Limit)}, nil
}

func (s *coordinatorServer) TableState(ctx context.Context, in *rpc.TableStateRequest) (*rpc.TableStateResponse, error) {
	state, err := s.query.TableState(ctx, in.Name)
	if err != nil {
		return &rpc.TableStateResponse{Error: "INVALID_TABLE"}, nil
	}
	return &rpc.TableStateResponse{State: state}, nil
}

func (s *coordinatorServer) Query(ctx context.Context, in *rpc.CoordinatorQueryRequest) (*rpc.CoordinatorQueryResponse, error) {
	result, err := s.query.Query(ctx, queryfanout.Request{
		Table:  in.Table,
		User:   in.User,
		Groups: in.Groups,
	})
	if err != nil {
		code := "EXECUTION_ERROR"
		if errors.Is(err, errs.ErrUnknownTable) {
			code = "INVALID_TABLE"
		}
		return &rpc.CoordinatorQueryResponse{Result: result, Error: code}, nil
	}
	return &rpc.CoordinatorQueryResponse{Result: result}, nil
}
