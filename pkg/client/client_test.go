package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/example/devfs/pkg/api"
	"github.com/example/devfs/pkg/devfs"
	"github.com/example/devfs/pkg/fs"
	"github.com/example/devfs/pkg/server"
)

// newTestClient connects a client to a standard device server over an
// in-memory connection.
func newTestClient(t *testing.T, config *server.Config) *Client {
	t.Helper()

	if config == nil {
		config = server.DefaultConfig()
	}
	srv, err := server.NewDeviceServer(config, devfs.NewStandard(), prometheus.NewRegistry())
	require.NoError(t, err)

	lis := bufconn.Listen(1024 * 1024)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, lis)
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

	cfg := DefaultConfig()
	cfg.Timeout = 5 * time.Second
	return NewFromConn(conn, cfg)
}

func TestClient_Stat(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, nil)
	ctx := context.Background()

	attr, err := c.Stat(ctx, "/")
	require.NoError(t, err)
	assert.True(t, attr.IsDir())
	assert.Equal(t, fs.DefaultDir(), attr.Mode)

	attr, err = c.Stat(ctx, "/zero")
	require.NoError(t, err)
	assert.Equal(t, fs.FileTypeChar, attr.Type)
	assert.Equal(t, fs.DefaultFile(), attr.Mode)

	_, err = c.Stat(ctx, "/missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestClient_List(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, nil)

	entries, err := c.List(context.Background(), "/")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{".", "..", "null", "pts", "random", "shm", "urandom", "zero"}, names)

	_, err = c.List(context.Background(), "/null")
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestClient_Devices(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, nil)

	devices, err := c.Devices(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []api.DeviceInfo{
		{ID: devfs.MakeDev(devfs.MemMajor, devfs.NullMinor), Type: fs.FileTypeChar},
		{ID: devfs.MakeDev(devfs.MemMajor, devfs.ZeroMinor), Type: fs.FileTypeChar},
		{ID: devfs.MakeDev(devfs.MemMajor, devfs.RandomMinor), Type: fs.FileTypeChar},
		{ID: devfs.MakeDev(devfs.MemMajor, devfs.URandomMinor), Type: fs.FileTypeChar},
	}, devices)
}

func TestClient_ReadWrite(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, nil)
	ctx := context.Background()

	data, err := c.ReadDevice(ctx, devfs.MakeDev(devfs.MemMajor, devfs.ZeroMinor), 0, 32)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32), data)

	data, err = c.ReadPath(ctx, "/null", 0, 32)
	require.NoError(t, err)
	assert.Empty(t, data)

	data, err = c.ReadPath(ctx, "/urandom", 0, 32)
	require.NoError(t, err)
	assert.Len(t, data, 32)

	n, err := c.WritePath(ctx, "/null", 0, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = c.WriteDevice(ctx, devfs.MakeDev(devfs.MemMajor, devfs.ZeroMinor), 7, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = c.ReadDevice(ctx, devfs.MakeDev(9, 9), 0, 1)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = c.ReadPath(ctx, "/pts", 0, 1)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestClient_ReadOnly(t *testing.T) {
	t.Parallel()

	config := server.DefaultConfig()
	config.ReadOnly = true
	c := newTestClient(t, config)

	_, err := c.WritePath(context.Background(), "/null", 0, []byte("x"))
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestStatusToError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, StatusToError("stat", "/", nil))

	err := StatusToError("read", "/zero", status.Error(codes.Unavailable, "down"))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.EqualError(t, err, "read /zero: Unavailable: down")

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, codes.Unavailable, remote.Code)

	err = StatusToError("read", "/zero", status.Error(codes.Internal, "boom"))
	assert.ErrorIs(t, err, fs.ErrIO)
}

func TestCallWithRetry(t *testing.T) {
	t.Parallel()

	c := NewFromConn(nil, &Config{
		Timeout:       time.Second,
		MaxRetries:    2,
		RetryDelay:    time.Millisecond,
		BackoffFactor: 1,
	})

	calls := 0
	err := c.callWithRetry(context.Background(), "test", func(context.Context) error {
		calls++
		return status.Error(codes.Unavailable, "down")
	})
	assert.Equal(t, 3, calls)
	assert.Equal(t, codes.Unavailable, status.Code(err))

	calls = 0
	err = c.callWithRetry(context.Background(), "test", func(context.Context) error {
		calls++
		if calls < 2 {
			return status.Error(codes.Aborted, "again")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = c.callWithRetry(context.Background(), "test", func(context.Context) error {
		calls++
		return status.Error(codes.NotFound, "gone")
	})
	assert.Equal(t, 1, calls)
	assert.Equal(t, codes.NotFound, status.Code(err))
}
