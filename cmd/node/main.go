// Command node runs a single Nebula data-holding worker: a WorkerService
// gRPC server backed by in-memory block state (nodeclient.Fake). Real
// ingestion readers and columnar storage are out of scope (§1); this
// process exists so the coordinator control plane has a real gRPC peer to
// dial, probe, and dispatch tasks to.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/nipatil-cybage/nebula/internal/metrics"
	"github.com/nipatil-cybage/nebula/internal/nodeclient"
	"github.com/nipatil-cybage/nebula/internal/rpc"
	"github.com/nipatil-cybage/nebula/internal/telemetry"
)

func main() {
	grpcAddr := flag.String("grpc-addr", ":7080", "worker gRPC bind address")
	flag.Parse()

	log, _ := telemetry.StartSpan(context.Background(), "node.main")

	grpcServer := grpc.NewServer(
		grpc.StreamInterceptor(metrics.GRPCServerMetrics.StreamServerInterceptor()),
		grpc.UnaryInterceptor(metrics.GRPCServerMetrics.UnaryServerInterceptor()),
	)
	rpc.RegisterWorkerServer(grpcServer, &workerServer{client: nodeclient.NewFake()})

	lis, err := net.Listen("tcp", *grpcAddr)
	if err != nil {
		log.Fatalf("listen %s failed: %s", *grpcAddr, err)
	}

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Errorf("grpc server stopped: %s", err)
		}
	}()

	log.Infof("node listening: grpc=%s", *grpcAddr)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
	<-ch

	log.Infof("shutting down")
	grpcServer.GracefulStop()
}
