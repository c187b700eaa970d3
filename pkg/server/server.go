// Package server implements the device service over gRPC
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/netutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/devfs/pkg/api"
	"github.com/example/devfs/pkg/devfs"
	"github.com/example/devfs/pkg/fs"
)

// Config contains the device server configuration
type Config struct {
	// Network address to listen on (e.g. "127.0.0.1:7070")
	ListenAddress string

	// Maximum concurrent requests and connections
	MaxConcurrent int

	// Maximum read size in bytes
	MaxReadSize int

	// Reject writes
	ReadOnly bool
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ListenAddress: "127.0.0.1:7070",
		MaxConcurrent: 64,
		MaxReadSize:   1024 * 1024, // 1MB
	}
}

// Registry is the device filesystem the server exposes: a mountable tree
// plus a device number registry.
type Registry interface {
	fs.FileSystem
	GetDevice(major, minor uint32) (fs.Node, bool)
	Devices() []devfs.DeviceID
}

// DeviceServer implements the device service
type DeviceServer struct {
	// Configuration
	config *Config

	// The device filesystem being served
	registry Registry

	metrics *Metrics

	// Worker pool for limiting concurrent requests
	workerPool chan struct{}

	requestSeq atomic.Uint64
}

// NewDeviceServer creates a new device server. Metrics are registered with
// reg unless it is nil.
func NewDeviceServer(config *Config, registry Registry, reg prometheus.Registerer) (*DeviceServer, error) {
	if config.MaxConcurrent <= 0 {
		return nil, fmt.Errorf("invalid max concurrent requests: %d", config.MaxConcurrent)
	}
	if config.MaxReadSize <= 0 {
		return nil, fmt.Errorf("invalid max read size: %d", config.MaxReadSize)
	}

	metrics, err := NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return &DeviceServer{
		config:     config,
		registry:   registry,
		metrics:    metrics,
		workerPool: make(chan struct{}, config.MaxConcurrent),
	}, nil
}

// Metrics returns the server's metrics.
func (s *DeviceServer) Metrics() *Metrics {
	return s.metrics
}

// NewGRPCServer returns a gRPC server with the device service registered.
func (s *DeviceServer) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.processRequest))
	grpcServer := grpc.NewServer(opts...)
	api.RegisterDeviceServiceServer(grpcServer, s)
	return grpcServer
}

// Start listens on the configured address and serves until ctx is cancelled
func (s *DeviceServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is cancelled, then stops gracefully.
func (s *DeviceServer) Serve(ctx context.Context, lis net.Listener) error {
	grpcServer := s.NewGRPCServer()
	lis = netutil.LimitListener(lis, s.config.MaxConcurrent)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		grpcServer.GracefulStop()
	}()

	slog.Info("Device server starting.", "addr", lis.Addr().String())
	err := grpcServer.Serve(lis)
	if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	if ctx.Err() != nil {
		<-stopped
	}
	slog.Info("Device server stopped.")

	return nil
}

// acquireWorker gets a worker from the pool or times out
func (s *DeviceServer) acquireWorker(ctx context.Context) error {
	select {
	case s.workerPool <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// releaseWorker returns a worker to the pool
func (s *DeviceServer) releaseWorker() {
	<-s.workerPool
}

// processRequest handles common request processing logic
func (s *DeviceServer) processRequest(ctx context.Context, req any, info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	reqID := s.requestSeq.Add(1)
	log := slog.With("op", info.FullMethod, "req", reqID)
	log.Debug("Request received.")
	startTime := time.Now()

	if err := s.acquireWorker(ctx); err != nil {
		err = status.FromContextError(err).Err()
		s.metrics.observe(info.FullMethod, status.Code(err))
		log.Warn("No worker available.", "err", err)
		return nil, err
	}
	defer s.releaseWorker()

	resp, err := handler(ctx, req)
	if err != nil {
		err = toStatus(err)
	}

	code := status.Code(err)
	s.metrics.observe(info.FullMethod, code)
	if err != nil && code == codes.Internal {
		log.Error("Request failed.", "err", err, "duration", time.Since(startTime))
	} else {
		log.Debug("Request done.", "code", code.String(), "duration", time.Since(startTime))
	}

	return resp, err
}

// resolve returns the node a request addresses.
func (s *DeviceServer) resolve(target api.Target) (fs.Node, error) {
	if target.Path != "" {
		return fs.Resolve(s.registry.RootDir(), target.Path)
	}
	node, ok := s.registry.GetDevice(target.Device.Major(), target.Device.Minor())
	if !ok {
		return nil, fs.NewError("device", target.Device.String(), fs.ErrNotExist)
	}
	return node, nil
}

// Stat implements api.DeviceServiceServer.
func (s *DeviceServer) Stat(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	node, err := fs.Resolve(s.registry.RootDir(), req.GetValue())
	if err != nil {
		return nil, err
	}
	attr, err := node.GetAttr()
	if err != nil {
		return nil, fs.NewError("stat", req.GetValue(), err)
	}
	return api.AttrToStruct(attr)
}

// List implements api.DeviceServiceServer.
func (s *DeviceServer) List(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	node, err := fs.Resolve(s.registry.RootDir(), req.GetValue())
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDirAll(node)
	if err != nil {
		return nil, fs.NewError("readdir", req.GetValue(), err)
	}
	return api.EntriesToStruct(entries)
}

// Devices implements api.DeviceServiceServer.
func (s *DeviceServer) Devices(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	ids := s.registry.Devices()
	devices := make([]api.DeviceInfo, 0, len(ids))
	for _, id := range ids {
		node, ok := s.registry.GetDevice(id.Major(), id.Minor())
		if !ok {
			// unregistered since Devices returned
			continue
		}
		attr, err := node.GetAttr()
		if err != nil {
			return nil, fs.NewError("stat", id.String(), err)
		}
		devices = append(devices, api.DeviceInfo{ID: id, Type: attr.Type})
	}
	return api.DevicesToStruct(devices)
}

// Read implements api.DeviceServiceServer.
func (s *DeviceServer) Read(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	r, err := api.ParseReadRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if r.Length > s.config.MaxReadSize {
		return nil, status.Errorf(codes.InvalidArgument, "read of %s exceeds limit of %s",
			humanize.IBytes(uint64(r.Length)), humanize.IBytes(uint64(s.config.MaxReadSize)))
	}

	node, err := s.resolve(r.Target)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, r.Length)
	n, err := node.ReadAt(r.Offset, buf)
	if err != nil {
		return nil, fs.NewError("read", targetName(r.Target), err)
	}
	s.metrics.BytesRead.Add(float64(n))
	slog.Debug("Read from device.", "dev", targetName(r.Target), "bytes", humanize.IBytes(uint64(n)))

	return wrapperspb.Bytes(buf[:n]), nil
}

// Write implements api.DeviceServiceServer.
func (s *DeviceServer) Write(ctx context.Context, req *structpb.Struct) (*wrapperspb.UInt64Value, error) {
	if s.config.ReadOnly {
		return nil, fs.NewError("write", "", fs.ErrReadOnly)
	}

	w, err := api.ParseWriteRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	node, err := s.resolve(w.Target)
	if err != nil {
		return nil, err
	}

	n, err := node.WriteAt(w.Offset, w.Data)
	if err != nil {
		return nil, fs.NewError("write", targetName(w.Target), err)
	}
	s.metrics.BytesWritten.Add(float64(n))
	slog.Debug("Wrote to device.", "dev", targetName(w.Target), "bytes", humanize.IBytes(uint64(n)))

	return wrapperspb.UInt64(uint64(n)), nil
}

func targetName(t api.Target) string {
	if t.Path != "" {
		return t.Path
	}
	return t.Device.String()
}

var _ api.DeviceServiceServer = (*DeviceServer)(nil)
