package main

import (
	"context"

	"github.com/nipatil-cybage/nebula/internal/model"
	"github.com/nipatil-cybage/nebula/internal/nodeclient"
	"github.com/nipatil-cybage/nebula/internal/rpc"
)

// workerServer adapts an in-process nodeclient.NodeClient (backed by
// nodeclient.Fake's mutable block map) to the rpc.WorkerServer wire
// contract (§4.9, §6).
type workerServer struct {
	client nodeclient.NodeClient
}

func (s *workerServer) Echo(ctx context.Context, in *rpc.EchoRequest) (*rpc.EchoResponse, error) {
	msg, err := s.client.Echo(ctx, in.Message)
	if err != nil {
		return nil, err
	}
	return &rpc.EchoResponse{Message: msg}, nil
}

func (s *workerServer) State(ctx context.Context, _ *rpc.StateRequest) (*rpc.StateResponse, error) {
	state, err := s.client.State(ctx)
	if err != nil {
		return nil, err
	}
	return &rpc.StateResponse{BlockCount: state.BlockCount, MemBytes: state.MemBytes}, nil
}

func (s *workerServer) Blocks(ctx context.Context, _ *rpc.BlocksRequest) (*rpc.BlocksResponse, error) {
	blocks, err := s.client.Blocks(ctx)
	if err != nil {
		return nil, err
	}
	return &rpc.BlocksResponse{Blocks: blocks}, nil
}

func (s *workerServer) Task(ctx context.Context, in *rpc.TaskRequest) (*rpc.TaskResponse, error) {
	state, err := s.client.Task(ctx, &model.Task{
		Type:      in.Type,
		Payload:   in.Payload,
		Signature: in.Signature,
	})
	if err != nil {
		return &rpc.TaskResponse{State: model.TaskFailed}, err
	}
	return &rpc.TaskResponse{State: state}, nil
}

func (s *workerServer) Query(ctx context.Context, in *rpc.QueryRequest) (*rpc.QueryResponse, error) {
	rows, err := s.client.Query(ctx, in.Table)
	if err != nil {
		return nil, err
	}
	return &rpc.QueryResponse{Rows: rows}, nil
}
