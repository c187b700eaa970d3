package server

import (
	"context"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/example/devfs/pkg/api"
	"github.com/example/devfs/pkg/devfs"
)

const bufSize = 1024 * 1024

type testEnv struct {
	client api.DeviceServiceClient
	server *DeviceServer
	devfs  *devfs.DeviceFileSystem
}

// startTestServer serves a standard device filesystem over an in-memory
// connection for the duration of the test.
func startTestServer(t *testing.T, config *Config) *testEnv {
	t.Helper()

	if config == nil {
		config = DefaultConfig()
	}

	d := devfs.NewStandard()
	server, err := NewDeviceServer(config, d, prometheus.NewRegistry())
	require.NoError(t, err)

	lis := bufconn.Listen(bufSize)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		require.NoError(t, <-done)
	})

	return &testEnv{
		client: api.NewDeviceServiceClient(conn),
		server: server,
		devfs:  d,
	}
}
