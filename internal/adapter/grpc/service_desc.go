package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "directory.v1.UserDirectory"

// UserDirectoryServer is the server API of the user directory service.
// Requests and responses are google.protobuf.Struct documents shaped like
// the REST payloads.
type UserDirectoryServer interface {
	ListUsers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CreateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	UpdateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	DeleteUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv UserDirectoryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + method

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(UserDirectoryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(UserDirectoryServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// UserDirectoryServiceDesc is the grpc.ServiceDesc for UserDirectoryServer.
var UserDirectoryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserDirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListUsers", Handler: unaryHandler("ListUsers", UserDirectoryServer.ListUsers)},
		{MethodName: "GetUser", Handler: unaryHandler("GetUser", UserDirectoryServer.GetUser)},
		{MethodName: "CreateUser", Handler: unaryHandler("CreateUser", UserDirectoryServer.CreateUser)},
		{MethodName: "UpdateUser", Handler: unaryHandler("UpdateUser", UserDirectoryServer.UpdateUser)},
		{MethodName: "DeleteUser", Handler: unaryHandler("DeleteUser", UserDirectoryServer.DeleteUser)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "directory/v1/user_directory.proto",
}

// RegisterUserDirectoryServer registers srv on s.
func RegisterUserDirectoryServer(s grpc.ServiceRegistrar, srv UserDirectoryServer) {
	s.RegisterService(&UserDirectoryServiceDesc, srv)
}

// UserDirectoryClient is the client API of the user directory service.
type UserDirectoryClient struct {
	cc grpc.ClientConnInterface
}

// NewUserDirectoryClient creates a client on top of cc.
func NewUserDirectoryClient(cc grpc.ClientConnInterface) *UserDirectoryClient {
	return &UserDirectoryClient{cc: cc}
}

func (c *UserDirectoryClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsers calls UserDirectory.ListUsers.
func (c *UserDirectoryClient) ListUsers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListUsers", in, opts...)
}

// GetUser calls UserDirectory.GetUser.
func (c *UserDirectoryClient) GetUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetUser", in, opts...)
}

// CreateUser calls UserDirectory.CreateUser.
func (c *UserDirectoryClient) CreateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateUser", in, opts...)
}

// UpdateUser calls UserDirectory.UpdateUser.
func (c *UserDirectoryClient) UpdateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "UpdateUser", in, opts...)
}

// DeleteUser calls UserDirectory.DeleteUser.
func (c *UserDirectoryClient) DeleteUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "DeleteUser", in, opts...)
}
