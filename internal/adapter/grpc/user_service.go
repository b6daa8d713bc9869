package grpc

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"user-directory-service/internal/usecase/user"
	"user-directory-service/pkg/logger"
)

// UserServiceServer implements the gRPC user directory service
type UserServiceServer struct {
	uc  user.Usecase
	log *zap.Logger
}

var _ UserDirectoryServer = (*UserServiceServer)(nil)

// NewUserServiceServer creates a new gRPC user service server
func NewUserServiceServer(uc user.Usecase, log *zap.Logger) *UserServiceServer {
	return &UserServiceServer{uc: uc, log: log}
}

// ListUsers handles gRPC ListUsers request
func (s *UserServiceServer) ListUsers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := reader{fields: req.GetFields()}
	in := user.ListUsersRequest{
		Search: r.str("search"),
		Page:   r.int("page"),
		Limit:  r.int("limit"),
	}
	if r.err != nil {
		return nil, r.err
	}

	resp, err := s.uc.ListUsers(ctx, in)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	users := make([]any, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = userMap(u)
	}

	return s.reply(map[string]any{
		"users": users,
		"pagination": map[string]any{
			"currentPage": resp.Pagination.CurrentPage,
			"totalPages":  resp.Pagination.TotalPages,
			"totalUsers":  resp.Pagination.Total,
			"hasNext":     resp.Pagination.HasNext,
			"hasPrev":     resp.Pagination.HasPrev,
			"limit":       resp.Pagination.Limit,
		},
	})
}

// GetUser handles gRPC GetUser request
func (s *UserServiceServer) GetUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := reader{fields: req.GetFields()}
	in := user.GetUserRequest{ID: r.str("id")}
	if r.err != nil {
		return nil, r.err
	}

	resp, err := s.uc.GetUser(ctx, in)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.reply(map[string]any{"user": userMap(resp.User)})
}

// CreateUser handles gRPC CreateUser request
func (s *UserServiceServer) CreateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := reader{fields: req.GetFields()}
	in := user.CreateUserRequest{
		Name:   r.str("name"),
		Email:  r.str("email"),
		Phone:  r.optStr("phone"),
		Role:   r.str("role"),
		Status: r.str("status"),
	}
	if r.err != nil {
		return nil, r.err
	}

	resp, err := s.uc.CreateUser(ctx, in)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.reply(map[string]any{
		"message": "User created successfully",
		"user":    userMap(resp.User),
	})
}

// UpdateUser handles gRPC UpdateUser request
func (s *UserServiceServer) UpdateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := reader{fields: req.GetFields()}
	in := user.UpdateUserRequest{
		ID:     r.str("id"),
		Name:   r.optStr("name"),
		Email:  r.optStr("email"),
		Phone:  r.optStr("phone"),
		Role:   r.optStr("role"),
		Status: r.optStr("status"),
	}
	if r.err != nil {
		return nil, r.err
	}

	resp, err := s.uc.UpdateUser(ctx, in)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.reply(map[string]any{
		"message": "User updated successfully",
		"user":    userMap(resp.User),
	})
}

// DeleteUser handles gRPC DeleteUser request
func (s *UserServiceServer) DeleteUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := reader{fields: req.GetFields()}
	in := user.DeleteUserRequest{ID: r.str("id")}
	if r.err != nil {
		return nil, r.err
	}

	resp, err := s.uc.DeleteUser(ctx, in)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.reply(map[string]any{
		"id":      resp.ID,
		"message": "User deleted successfully",
	})
}

// toStatus passes typed errors through (they carry their own gRPC status)
// and hides anything else behind codes.Internal.
func (s *UserServiceServer) toStatus(ctx context.Context, err error) error {
	if st, ok := status.FromError(err); ok {
		return st.Err()
	}
	logger.WithContext(ctx, s.log).Error("unmapped usecase error", zap.Error(err))
	return status.Error(codes.Internal, "Internal server error")
}

func (s *UserServiceServer) reply(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
		return nil, status.Error(codes.Internal, "Internal server error")
	}
	return out, nil
}

func userMap(u user.User) map[string]any {
	return map[string]any{
		"id":       u.ID,
		"name":     u.Name,
		"email":    u.Email,
		"phone":    nullable(u.Phone),
		"role":     u.Role,
		"status":   u.Status,
		"joinDate": u.JoinDate,
		"avatar":   nullable(u.Avatar),
	}
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// reader extracts typed fields from a Struct and records the first type mismatch.
type reader struct {
	fields map[string]*structpb.Value
	err    error
}

func (r *reader) fail(key, want string) {
	if r.err == nil {
		r.err = status.Error(codes.InvalidArgument, fmt.Sprintf("Invalid request body: %s must be a %s", key, want))
	}
}

// optStr returns nil when key is absent or null.
func (r *reader) optStr(key string) *string {
	v, ok := r.fields[key]
	if !ok {
		return nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil
	case *structpb.Value_StringValue:
		s := k.StringValue
		return &s
	}
	r.fail(key, "string")
	return nil
}

func (r *reader) str(key string) string {
	if s := r.optStr(key); s != nil {
		return *s
	}
	return ""
}

// int reads a whole number, also accepting numeric strings. Absent keys yield 0.
func (r *reader) int(key string) int64 {
	v, ok := r.fields[key]
	if !ok {
		return 0
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0
	case *structpb.Value_NumberValue:
		// float64 values at or past 2^63 do not convert to int64
		if k.NumberValue >= math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(k.NumberValue)
	case *structpb.Value_StringValue:
		var n int64
		if _, err := fmt.Sscan(k.StringValue, &n); err == nil {
			return n
		}
		return 0
	}
	r.fail(key, "number")
	return 0
}
