package node

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"localstore/internal/config"
	"localstore/internal/rpc"
	"localstore/internal/service"
)

// Node runs the storage service and serves it over gRPC.
type Node struct {
	nodeID          string
	listenAddr      string
	shutdownTimeout time.Duration
	verbose         bool

	svc        *service.Service
	handle     service.Handle
	cancel     context.CancelFunc
	grpcServer *grpc.Server
	health     *health.Server

	mu       sync.Mutex
	listener net.Listener
	stopped  bool
}

// NewNode creates a node from cfg. The storage service starts immediately so
// in-process callers can use Handle before the gRPC listener is up.
func NewNode(cfg *config.Config) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	svc := service.New(service.Options{
		Name:      cfg.NodeID,
		QueueSize: cfg.QueueSize,
		Verbose:   cfg.Verbose,
	})
	ctx, cancel := context.WithCancel(context.Background())

	n := &Node{
		nodeID:          cfg.NodeID,
		listenAddr:      cfg.ListenAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		verbose:         cfg.Verbose,
		svc:             svc,
		handle:          svc.Start(ctx),
		cancel:          cancel,
		grpcServer:      grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler())),
		health:          health.NewServer(),
	}

	rpc.RegisterStorageServer(n.grpcServer, rpc.NewServer(n.handle, n.nodeID, n.verbose))
	healthpb.RegisterHealthServer(n.grpcServer, n.health)
	// grpcurl can list and call localstore.v1.Storage through reflection.
	reflection.Register(n.grpcServer)
	n.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	n.health.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	go n.watchService()

	return n, nil
}

// Handle returns the in-process endpoint of the storage service.
func (n *Node) Handle() service.Handle {
	return n.handle
}

// Listen binds the listen address and returns the bound address.
func (n *Node) Listen() (net.Addr, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stopped {
		return nil, errors.New("node stopped")
	}
	if n.listener != nil {
		return n.listener.Addr(), nil
	}

	lis, err := net.Listen("tcp", n.listenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", n.listenAddr, err)
	}
	n.listener = lis
	return lis.Addr(), nil
}

// Start listens and serves gRPC until Stop. It blocks.
func (n *Node) Start() error {
	addr, err := n.Listen()
	if err != nil {
		return err
	}

	n.mu.Lock()
	lis := n.listener
	n.mu.Unlock()

	log.Printf("[%s] Starting node on %s", n.nodeID, addr)

	if err := n.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop drains gRPC calls, then stops the storage service. Calls still running
// after the shutdown timeout are cut off.
func (n *Node) Stop() {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.stopped = true
	n.mu.Unlock()

	log.Printf("[%s] Stopping node", n.nodeID)
	n.health.Shutdown()

	drained := make(chan struct{})
	go func() {
		n.grpcServer.GracefulStop()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(n.shutdownTimeout):
		log.Printf("[%s] Graceful stop timed out after %s", n.nodeID, n.shutdownTimeout)
		n.grpcServer.Stop()
	}

	n.mu.Lock()
	if n.listener != nil {
		_ = n.listener.Close()
	}
	n.mu.Unlock()

	statsCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	if stats, err := n.handle.Stats(statsCtx); err == nil {
		log.Printf("[%s] Served %d requests (%d writes, %d dropped replies) for %d origins",
			n.nodeID, stats.Requests, stats.Writes, stats.DroppedReplies, stats.Origins)
	}
	cancel()

	n.handle.Stop()
	select {
	case <-n.svc.Done():
	case <-time.After(n.shutdownTimeout):
		n.cancel()
		<-n.svc.Done()
	}
	n.cancel()
}

// watchService flips health to NOT_SERVING once the storage service stops.
func (n *Node) watchService() {
	<-n.svc.Done()

	n.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	n.health.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	log.Printf("[%s] Storage service stopped", n.nodeID)
}

// Stats returns the storage service counters.
func (n *Node) Stats(ctx context.Context) (service.Stats, error) {
	return n.handle.Stats(ctx)
}
