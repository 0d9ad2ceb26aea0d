// Command coordinator runs the Nebula cluster control plane: the
// reconciliation scheduler, the coordinator gRPC surface, and an HTTP admin
// mux. Flag/env handling and signal-driven shutdown are grounded on the
// teacher's cmd/cmd.go main(), simplified since Nebula carries no raft
// cluster or rocksdb store to initialise (§6, §9).
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/nipatil-cybage/nebula/internal/httpapi"
	"github.com/nipatil-cybage/nebula/internal/metrics"
	"github.com/nipatil-cybage/nebula/internal/rpc"
	"github.com/nipatil-cybage/nebula/internal/runtime"
	"github.com/nipatil-cybage/nebula/internal/telemetry"
)

func main() {
	clsConf := flag.String("CLS_CONF", "configs/cluster.yml", "cluster config file or s3:// URI")
	clsConfInterval := flag.Int("CLS_CONF_UPDATE_INTERVAL", 5000, "cluster config refresh interval, ms")
	nodeSyncInterval := flag.Int("NODE_SYNC_INTERVAL", 5000, "node polling interval, ms")
	maxTables := flag.Int("MAX_TABLES_RETURN", 500, "max tables returned by ListTables")
	grpcAddr := flag.String("grpc-addr", ":7070", "coordinator gRPC bind address")
	httpAddr := flag.String("http-addr", ":7071", "coordinator HTTP admin bind address")
	flag.Parse()

	if v := os.Getenv("NCONF"); v != "" {
		*clsConf = v
	}

	log, ctx := telemetry.StartSpan(context.Background(), "coordinator.main")

	rt := runtime.New(runtime.Config{
		ClusterConfigURI: *clsConf,
		ConfigInterval:   *clsConfInterval,
		NodeSyncInterval: *nodeSyncInterval,
		MaxTablesReturn:  *maxTables,
	})
	defer rt.Close()

	grpcServer := grpc.NewServer(
		grpc.StreamInterceptor(metrics.GRPCServerMetrics.StreamServerInterceptor()),
		grpc.UnaryInterceptor(metrics.GRPCServerMetrics.UnaryServerInterceptor()),
	)
	rpc.RegisterCoordinatorServer(grpcServer, &coordinatorServer{query: rt.Query})

	lis, err := net.Listen("tcp", *grpcAddr)
	if err != nil {
		log.Fatalf("listen %s failed: %s", *grpcAddr, err)
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Errorf("grpc server stopped: %s", err)
		}
	}()

	httpServer := &http.Server{
		Addr:    *httpAddr,
		Handler: httpapi.Router(rt.Query, metrics.Registry),
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("http server stopped: %s", err)
		}
	}()

	runCtx, cancelRun := context.WithCancel(ctx)
	go func() {
		if err := rt.Run(runCtx); err != nil {
			log.Fatalf("runtime stopped: %s", err)
		}
	}()

	log.Infof("coordinator listening: grpc=%s http=%s config=%s", *grpcAddr, *httpAddr, *clsConf)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
	<-ch

	log.Infof("shutting down")
	cancelRun()
	rt.Scheduler.Stop()
	grpcServer.GracefulStop()
	httpServer.Close()
}
