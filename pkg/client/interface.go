// Package client implements a client for the device service
package client

import (
	"context"

	"github.com/example/devfs/pkg/api"
	"github.com/example/devfs/pkg/devfs"
	"github.com/example/devfs/pkg/fs"
)

// DeviceClient defines the operations offered by the device service
type DeviceClient interface {
	// Stat retrieves the attributes of the node at path
	Stat(ctx context.Context, path string) (fs.NodeAttr, error)

	// List returns the entries of the directory at path, including "." and ".."
	List(ctx context.Context, path string) ([]fs.DirEntry, error)

	// Devices returns every registered device
	Devices(ctx context.Context) ([]api.DeviceInfo, error)

	// ReadDevice reads up to length bytes from the device registered under id
	ReadDevice(ctx context.Context, id devfs.DeviceID, offset uint64, length int) ([]byte, error)

	// ReadPath reads up to length bytes from the node at path
	ReadPath(ctx context.Context, path string, offset uint64, length int) ([]byte, error)

	// WriteDevice writes data to the device registered under id
	WriteDevice(ctx context.Context, id devfs.DeviceID, offset uint64, data []byte) (int, error)

	// WritePath writes data to the node at path
	WritePath(ctx context.Context, path string, offset uint64, data []byte) (int, error)

	// Close closes the connection
	Close() error
}
