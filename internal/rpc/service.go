package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "photovault.gateway.Gateway"

const (
	MethodPing                  = "/" + ServiceName + "/Ping"
	MethodRequestUploadTarget   = "/" + ServiceName + "/RequestUploadTarget"
	MethodRequestUploadTargets  = "/" + ServiceName + "/RequestUploadTargets"
	MethodRequestDownloadTarget = "/" + ServiceName + "/RequestDownloadTarget"
	MethodDeleteObject          = "/" + ServiceName + "/DeleteObject"
	MethodListObjects           = "/" + ServiceName + "/ListObjects"
)

// GatewayServer is implemented by the gateway's gRPC handler.
type GatewayServer interface {
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	RequestUploadTarget(context.Context, *UploadTargetRequest) (*UploadTargetResponse, error)
	RequestUploadTargets(context.Context, *BatchUploadRequest) (*BatchUploadResponse, error)
	// RequestDownloadTarget takes the object key.
	RequestDownloadTarget(context.Context, *wrapperspb.StringValue) (*DownloadTargetResponse, error)
	DeleteObject(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	// ListObjects takes the folder name; empty lists the root.
	ListObjects(context.Context, *wrapperspb.StringValue) (*ListObjectsResponse, error)
}

func unary[Req, Resp any](name string, call func(GatewayServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GatewayServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(GatewayServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var GatewayServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", GatewayServer.Ping),
		unary("RequestUploadTarget", GatewayServer.RequestUploadTarget),
		unary("RequestUploadTargets", GatewayServer.RequestUploadTargets),
		unary("RequestDownloadTarget", GatewayServer.RequestDownloadTarget),
		unary("DeleteObject", GatewayServer.DeleteObject),
		unary("ListObjects", GatewayServer.ListObjects),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "photovault/gateway",
}

func RegisterGatewayServer(s grpc.ServiceRegistrar, srv GatewayServer) {
	s.RegisterService(&GatewayServiceDesc, srv)
}

// GatewayClient is the client side of GatewayServiceDesc.
type GatewayClient struct {
	cc grpc.ClientConnInterface
}

func NewGatewayClient(cc grpc.ClientConnInterface) *GatewayClient {
	return &GatewayClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GatewayClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, MethodPing, in, opts)
}

func (c *GatewayClient) RequestUploadTarget(ctx context.Context, in *UploadTargetRequest, opts ...grpc.CallOption) (*UploadTargetResponse, error) {
	return invoke[UploadTargetResponse](ctx, c.cc, MethodRequestUploadTarget, in, opts)
}

func (c *GatewayClient) RequestUploadTargets(ctx context.Context, in *BatchUploadRequest, opts ...grpc.CallOption) (*BatchUploadResponse, error) {
	return invoke[BatchUploadResponse](ctx, c.cc, MethodRequestUploadTargets, in, opts)
}

func (c *GatewayClient) RequestDownloadTarget(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*DownloadTargetResponse, error) {
	return invoke[DownloadTargetResponse](ctx, c.cc, MethodRequestDownloadTarget, in, opts)
}

func (c *GatewayClient) DeleteObject(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodDeleteObject, in, opts)
}

func (c *GatewayClient) ListObjects(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*ListObjectsResponse, error) {
	return invoke[ListObjectsResponse](ctx, c.cc, MethodListObjects, in, opts)
}
