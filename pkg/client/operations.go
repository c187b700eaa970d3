package client

import (
	"context"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/devfs/pkg/api"
	"github.com/example/devfs/pkg/devfs"
	"github.com/example/devfs/pkg/fs"
)

// Stat retrieves the attributes of the node at path
func (c *Client) Stat(ctx context.Context, path string) (fs.NodeAttr, error) {
	var resp *structpb.Struct
	err := c.callWithRetry(ctx, "stat", func(ctx context.Context) error {
		var err error
		resp, err = c.rpc.Stat(ctx, wrapperspb.String(path))
		return err
	})
	if err != nil {
		return fs.NodeAttr{}, StatusToError("stat", path, err)
	}
	return api.AttrFromStruct(resp), nil
}

// List returns the entries of the directory at path
func (c *Client) List(ctx context.Context, path string) ([]fs.DirEntry, error) {
	var resp *structpb.Struct
	err := c.callWithRetry(ctx, "list", func(ctx context.Context) error {
		var err error
		resp, err = c.rpc.List(ctx, wrapperspb.String(path))
		return err
	})
	if err != nil {
		return nil, StatusToError("list", path, err)
	}
	return api.EntriesFromStruct(resp), nil
}

// Devices returns every registered device
func (c *Client) Devices(ctx context.Context) ([]api.DeviceInfo, error) {
	var resp *structpb.Struct
	err := c.callWithRetry(ctx, "devices", func(ctx context.Context) error {
		var err error
		resp, err = c.rpc.Devices(ctx, &emptypb.Empty{})
		return err
	})
	if err != nil {
		return nil, StatusToError("devices", "", err)
	}
	return api.DevicesFromStruct(resp), nil
}

// ReadDevice reads from the device registered under id
func (c *Client) ReadDevice(ctx context.Context, id devfs.DeviceID, offset uint64, length int) ([]byte, error) {
	return c.read(ctx, api.ReadRequest{Target: api.Target{Device: id}, Offset: offset, Length: length})
}

// ReadPath reads from the node at path
func (c *Client) ReadPath(ctx context.Context, path string, offset uint64, length int) ([]byte, error) {
	return c.read(ctx, api.ReadRequest{Target: api.Target{Path: path}, Offset: offset, Length: length})
}

// WriteDevice writes to the device registered under id
func (c *Client) WriteDevice(ctx context.Context, id devfs.DeviceID, offset uint64, data []byte) (int, error) {
	return c.write(ctx, api.WriteRequest{Target: api.Target{Device: id}, Offset: offset, Data: data})
}

// WritePath writes to the node at path
func (c *Client) WritePath(ctx context.Context, path string, offset uint64, data []byte) (int, error) {
	return c.write(ctx, api.WriteRequest{Target: api.Target{Path: path}, Offset: offset, Data: data})
}

func (c *Client) read(ctx context.Context, req api.ReadRequest) ([]byte, error) {
	in, err := req.ToStruct()
	if err != nil {
		return nil, err
	}

	var resp *wrapperspb.BytesValue
	err = c.callWithRetry(ctx, "read", func(ctx context.Context) error {
		var err error
		resp, err = c.rpc.Read(ctx, in)
		return err
	})
	if err != nil {
		return nil, StatusToError("read", targetName(req.Target), err)
	}
	return resp.GetValue(), nil
}

func (c *Client) write(ctx context.Context, req api.WriteRequest) (int, error) {
	in, err := req.ToStruct()
	if err != nil {
		return 0, err
	}

	var resp *wrapperspb.UInt64Value
	err = c.callWithRetry(ctx, "write", func(ctx context.Context) error {
		var err error
		resp, err = c.rpc.Write(ctx, in)
		return err
	})
	if err != nil {
		return 0, StatusToError("write", targetName(req.Target), err)
	}
	return int(resp.GetValue()), nil
}

func targetName(t api.Target) string {
	if t.Path != "" {
		return t.Path
	}
	return t.Device.String()
}
