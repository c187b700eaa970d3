package client

import (
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/example/devfs/pkg/api"
)

// Config contains the client configuration options
type Config struct {
	// ServerAddress is the address of the device server (e.g., "127.0.0.1:7070")
	ServerAddress string

	// Timeout is the default timeout for RPC operations
	Timeout time.Duration

	// MaxRetries is the maximum number of retries for operations
	MaxRetries int

	// RetryDelay is the initial delay between retries (will be multiplied by backoff factor)
	RetryDelay time.Duration

	// BackoffFactor is the multiplier for retry delay after each attempt
	BackoffFactor float64
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ServerAddress: "127.0.0.1:7070",
		Timeout:       30 * time.Second,
		MaxRetries:    3,
		RetryDelay:    500 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

// String describes the configuration for logging
func (c *Config) String() string {
	return fmt.Sprintf("server=%s timeout=%s retries=%d", c.ServerAddress, c.Timeout, c.MaxRetries)
}

// Client implements DeviceClient over gRPC
type Client struct {
	// gRPC connection to the server, nil when the caller owns it
	conn *grpc.ClientConn

	rpc api.DeviceServiceClient

	config *Config
}

// New creates a client connected to config.ServerAddress
func New(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	conn, err := grpc.NewClient(
		config.ServerAddress,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	c := NewFromConn(conn, config)
	c.conn = conn
	return c, nil
}

// NewFromConn creates a client on an existing connection. Close does not
// close cc.
func NewFromConn(cc grpc.ClientConnInterface, config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{
		rpc:    api.NewDeviceServiceClient(cc),
		config: config,
	}
}

// Close closes the client connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

var _ DeviceClient = (*Client)(nil)
