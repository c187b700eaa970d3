// Command devfsd serves the standard device filesystem over gRPC and,
// optionally, FUSE.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/devfs/pkg/config"
	"github.com/example/devfs/pkg/devfs"
	"github.com/example/devfs/pkg/fuse"
	"github.com/example/devfs/pkg/server"
)

var (
	configPath  = flag.String("config", "", "KEY=VALUE configuration file")
	listenAddr  = flag.String("listen", "", "gRPC listen address (overrides "+config.KeyListen+")")
	metricsAddr = flag.String("metrics", "", "serve /metrics on this address (overrides "+config.KeyMetrics+")")
	mountPoint  = flag.String("mount", "", "serve the devfs through FUSE at this directory (overrides "+config.KeyMount+")")
	readOnly    = flag.Bool("readonly", false, "reject writes")
	logLevel    = flag.String("log-level", "", "debug, info, warn or error (overrides "+config.KeyLogLevel+")")
)

func setupLogging(level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	if *listenAddr != "" {
		cfg.ListenAddress = *listenAddr
	}
	if *metricsAddr != "" {
		cfg.MetricsAddress = *metricsAddr
	}
	if *mountPoint != "" {
		cfg.MountPoint = *mountPoint
	}
	if *readOnly {
		cfg.ReadOnly = true
	}
	if *logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(*logLevel)); err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
	}

	return cfg, cfg.Validate()
}

// mountIntoHost builds the daemon's namespace, a root directory holding the
// directories of path, and mounts d on the last of them.
func mountIntoHost(d *devfs.DeviceFileSystem, path string) (*devfs.DirNode, error) {
	host := devfs.NewDirNode(nil)

	dir := host
	for _, name := range strings.Split(strings.Trim(path, "/"), "/") {
		if name == "" {
			continue
		}
		dir = dir.Mkdir(name)
	}
	if dir == host {
		return nil, fmt.Errorf("cannot mount devfs on the host root")
	}

	if err := d.Mount(path, dir); err != nil {
		return nil, fmt.Errorf("failed to mount devfs on %s: %w", path, err)
	}
	return host, nil
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Metrics server starting.", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config) error {
	d := devfs.NewStandard()
	if _, err := mountIntoHost(d, cfg.MountPath); err != nil {
		return err
	}
	for _, id := range d.Devices() {
		slog.Debug("Registered device.", "dev", id.String())
	}
	slog.Debug("Built device tree.", "entries", d.Root().Len(), "mounted", d.Mounted())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv, err := server.NewDeviceServer(&server.Config{
		ListenAddress: cfg.ListenAddress,
		MaxConcurrent: cfg.MaxConcurrent,
		MaxReadSize:   cfg.MaxReadSize,
		ReadOnly:      cfg.ReadOnly,
	}, d, reg)
	if err != nil {
		return fmt.Errorf("failed to create device server: %w", err)
	}

	slog.Info("Starting devfsd.",
		"listen", cfg.ListenAddress,
		"mount_path", cfg.MountPath,
		"max_read", humanize.IBytes(uint64(cfg.MaxReadSize)),
		"readonly", cfg.ReadOnly,
	)

	// Any subsystem failing stops the others.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result *multierror.Error
	)
	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				slog.Error("Subsystem failed.", "subsystem", name, "err", err)
				mu.Lock()
				result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancel()
			}
		}()
	}

	start("grpc", srv.Start)
	if cfg.MetricsAddress != "" {
		start("metrics", func(ctx context.Context) error {
			return serveMetrics(ctx, cfg.MetricsAddress, reg)
		})
	}
	if cfg.MountPoint != "" {
		start("fuse", func(ctx context.Context) error {
			return fuse.Mount(ctx, fuse.NewFS(d, d), fuse.MountOptions{
				MountPoint: cfg.MountPoint,
				ReadOnly:   cfg.ReadOnly,
				Debug:      cfg.Debug,
			})
		})
	}

	wg.Wait()
	return result.ErrorOrNil()
}

func main() {
	flag.Parse()

	setupLogging(slog.LevelInfo)
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Invalid configuration.", "err", err)
		os.Exit(2)
	}
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Devfsd failed.", "err", err)
		os.Exit(1)
	}
	slog.Info("Devfsd stopped.")
}
