package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

/*
 * codematch.v1.CodeService wire surface.
 *
 * Requests and responses are google.protobuf.Struct so the service needs no
 * generated message types. Field names are the snake_case keys documented on
 * each handler.
 */

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "codematch.v1.CodeService"

const (
	methodMatch         = "/" + ServiceName + "/Match"
	methodCreateCode    = "/" + ServiceName + "/CreateCode"
	methodListTemplates = "/" + ServiceName + "/ListTemplates"
	methodListScans     = "/" + ServiceName + "/ListScans"
)

// CodeServiceServer is the server API for codematch.v1.CodeService.
type CodeServiceServer interface {
	Match(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateCode(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTemplates(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListScans(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(CodeServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CodeServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CodeServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CodeServiceDesc describes codematch.v1.CodeService for grpc.Server.
var CodeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CodeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Match", Handler: unaryHandler(methodMatch, CodeServiceServer.Match)},
		{MethodName: "CreateCode", Handler: unaryHandler(methodCreateCode, CodeServiceServer.CreateCode)},
		{MethodName: "ListTemplates", Handler: unaryHandler(methodListTemplates, CodeServiceServer.ListTemplates)},
		{MethodName: "ListScans", Handler: unaryHandler(methodListScans, CodeServiceServer.ListScans)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "codematch/v1/code_service.proto",
}

// RegisterCodeServiceServer registers srv on s.
func RegisterCodeServiceServer(s grpc.ServiceRegistrar, srv CodeServiceServer) {
	s.RegisterService(&CodeServiceDesc, srv)
}

// CodeServiceClient calls codematch.v1.CodeService.
type CodeServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCodeServiceClient wraps a client connection.
func NewCodeServiceClient(cc grpc.ClientConnInterface) *CodeServiceClient {
	return &CodeServiceClient{cc: cc}
}

func (c *CodeServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Match classifies a scanned code.
func (c *CodeServiceClient) Match(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodMatch, in, opts...)
}

// CreateCode renders a code with an embedded value.
func (c *CodeServiceClient) CreateCode(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodCreateCode, in, opts...)
}

// ListTemplates lists active templates in matching order.
func (c *CodeServiceClient) ListTemplates(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodListTemplates, in, opts...)
}

// ListScans lists recent journal entries for the caller's project.
func (c *CodeServiceClient) ListScans(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodListScans, in, opts...)
}
