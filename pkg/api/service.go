// Package api defines the devfs.v1.DeviceService gRPC service. Messages are
// protobuf well-known types; the helpers in this package convert them to and
// from the filesystem types.
package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "devfs.v1.DeviceService"

// Full method names, as seen by interceptors.
const (
	DeviceService_Stat_FullMethodName    = "/" + ServiceName + "/Stat"
	DeviceService_List_FullMethodName    = "/" + ServiceName + "/List"
	DeviceService_Devices_FullMethodName = "/" + ServiceName + "/Devices"
	DeviceService_Read_FullMethodName    = "/" + ServiceName + "/Read"
	DeviceService_Write_FullMethodName   = "/" + ServiceName + "/Write"
)

// DeviceServiceServer is the server API for DeviceService.
type DeviceServiceServer interface {
	// Stat returns the attributes of the node at a path.
	Stat(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// List returns the entries of the directory at a path.
	List(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// Devices returns every registered device number.
	Devices(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// Read reads from a device addressed by path or by number.
	Read(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
	// Write writes to a device addressed by path or by number.
	Write(context.Context, *structpb.Struct) (*wrapperspb.UInt64Value, error)
}

// unaryHandler adapts a typed server method to a grpc.MethodHandler.
func unaryHandler[Req proto.Message, Resp proto.Message](
	fullMethod string,
	newReq func() Req,
	call func(DeviceServiceServer, context.Context, Req) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DeviceServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DeviceServiceServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// DeviceService_ServiceDesc is the grpc.ServiceDesc for DeviceService.
var DeviceService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DeviceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Stat",
			Handler: unaryHandler(DeviceService_Stat_FullMethodName,
				func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
				DeviceServiceServer.Stat),
		},
		{
			MethodName: "List",
			Handler: unaryHandler(DeviceService_List_FullMethodName,
				func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
				DeviceServiceServer.List),
		},
		{
			MethodName: "Devices",
			Handler: unaryHandler(DeviceService_Devices_FullMethodName,
				func() *emptypb.Empty { return new(emptypb.Empty) },
				DeviceServiceServer.Devices),
		},
		{
			MethodName: "Read",
			Handler: unaryHandler(DeviceService_Read_FullMethodName,
				func() *structpb.Struct { return new(structpb.Struct) },
				DeviceServiceServer.Read),
		},
		{
			MethodName: "Write",
			Handler: unaryHandler(DeviceService_Write_FullMethodName,
				func() *structpb.Struct { return new(structpb.Struct) },
				DeviceServiceServer.Write),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "devfs/v1/device.proto",
}

// RegisterDeviceServiceServer registers srv with s.
func RegisterDeviceServiceServer(s grpc.ServiceRegistrar, srv DeviceServiceServer) {
	s.RegisterService(&DeviceService_ServiceDesc, srv)
}

// DeviceServiceClient is the client API for DeviceService.
type DeviceServiceClient interface {
	Stat(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	List(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Devices(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Read(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Write(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.UInt64Value, error)
}

type deviceServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDeviceServiceClient creates a client for DeviceService on cc.
func NewDeviceServiceClient(cc grpc.ClientConnInterface) DeviceServiceClient {
	return &deviceServiceClient{cc}
}

func (c *deviceServiceClient) Stat(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, DeviceService_Stat_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *deviceServiceClient) List(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, DeviceService_List_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *deviceServiceClient) Devices(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, DeviceService_Devices_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *deviceServiceClient) Read(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, DeviceService_Read_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *deviceServiceClient) Write(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.UInt64Value, error) {
	out := new(wrapperspb.UInt64Value)
	if err := c.cc.Invoke(ctx, DeviceService_Write_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
