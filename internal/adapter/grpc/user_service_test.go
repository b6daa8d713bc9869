package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"user-directory-service/internal/adapter/grpc/middleware"
	"user-directory-service/internal/adapter/repository/memory"
	domain "user-directory-service/internal/domain/user"
	"user-directory-service/internal/usecase/user"
	"user-directory-service/pkg/idgen"
	"user-directory-service/pkg/logger"
	"user-directory-service/pkg/ratelimit"
)

func startServer(t *testing.T, limiter ratelimit.Limiter) *UserDirectoryClient {
	t.Helper()
	log := zaptest.NewLogger(t)

	repo := memory.NewUserRepository(domain.DemoUsers(), log)
	ids := idgen.NewSequence(4)
	uc := user.New(repo, ids, log, user.WithClock(func() time.Time {
		return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	}))

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		logger.RequestIDInterceptor(),
		middleware.NewRateLimiter(limiter, log).UnaryInterceptor(),
	))
	RegisterUserDirectoryServer(srv, NewUserServiceServer(uc, log))

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewUserDirectoryClient(conn)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func userOf(t *testing.T, s *structpb.Struct) map[string]any {
	t.Helper()
	u, ok := s.AsMap()["user"].(map[string]any)
	require.True(t, ok)
	return u
}

func TestUserDirectory_CRUD(t *testing.T) {
	client := startServer(t, nil)
	ctx := context.Background()

	created, err := client.CreateUser(ctx, mustStruct(t, map[string]any{
		"name": "Ann Lee", "email": "Ann@Example.com", "role": "user", "status": "pending", "phone": "+1 555 0100",
	}))
	require.NoError(t, err)
	u := userOf(t, created)
	assert.Equal(t, "5", u["id"])
	assert.Equal(t, "ann@example.com", u["email"])
	assert.Equal(t, "2026-10-19", u["joinDate"])
	assert.Nil(t, u["avatar"])

	got, err := client.GetUser(ctx, mustStruct(t, map[string]any{"id": "5"}))
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", userOf(t, got)["name"])

	updated, err := client.UpdateUser(ctx, mustStruct(t, map[string]any{"id": "5", "status": "active", "phone": ""}))
	require.NoError(t, err)
	u = userOf(t, updated)
	assert.Equal(t, "active", u["status"])
	assert.Equal(t, "Ann Lee", u["name"])
	assert.Nil(t, u["phone"])

	deleted, err := client.DeleteUser(ctx, mustStruct(t, map[string]any{"id": "5"}))
	require.NoError(t, err)
	assert.Equal(t, "User deleted successfully", deleted.AsMap()["message"])

	_, err = client.GetUser(ctx, mustStruct(t, map[string]any{"id": "5"}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestUserDirectory_ListUsers(t *testing.T) {
	client := startServer(t, nil)

	out, err := client.ListUsers(context.Background(), mustStruct(t, map[string]any{"page": 2, "limit": 3}))
	require.NoError(t, err)

	m := out.AsMap()
	assert.Len(t, m["users"], 1)
	p := m["pagination"].(map[string]any)
	assert.Equal(t, float64(2), p["currentPage"])
	assert.Equal(t, float64(2), p["totalPages"])
	assert.Equal(t, float64(4), p["totalUsers"])
	assert.Equal(t, false, p["hasNext"])
	assert.Equal(t, true, p["hasPrev"])

	out, err = client.ListUsers(context.Background(), mustStruct(t, map[string]any{"search": "wilson"}))
	require.NoError(t, err)
	assert.Len(t, out.AsMap()["users"], 1)
}

func TestUserDirectory_ListUsersHugePage(t *testing.T) {
	client := startServer(t, nil)

	out, err := client.ListUsers(context.Background(), mustStruct(t, map[string]any{"page": 1e19, "limit": 10}))
	require.NoError(t, err)

	m := out.AsMap()
	assert.Empty(t, m["users"])
	p := m["pagination"].(map[string]any)
	assert.Equal(t, false, p["hasNext"])
	assert.Equal(t, true, p["hasPrev"])
}

func TestUserDirectory_ErrorCodes(t *testing.T) {
	client := startServer(t, nil)
	ctx := context.Background()

	_, err := client.CreateUser(ctx, mustStruct(t, map[string]any{"name": "A", "email": "bad", "role": "user", "status": "active"}))
	st := status.Convert(err)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	var violations []string
	for _, d := range st.Details() {
		if br, ok := d.(*errdetails.BadRequest); ok {
			for _, v := range br.GetFieldViolations() {
				violations = append(violations, v.GetField())
			}
		}
	}
	assert.Equal(t, []string{"name", "email"}, violations)

	_, err = client.CreateUser(ctx, mustStruct(t, map[string]any{"name": "Johnny", "email": "john@example.com", "role": "user", "status": "active"}))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = client.UpdateUser(ctx, mustStruct(t, map[string]any{"id": "1", "email": "sarah@example.com"}))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = client.DeleteUser(ctx, mustStruct(t, map[string]any{"id": "999"}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.CreateUser(ctx, mustStruct(t, map[string]any{"name": 42}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestUserDirectory_RequestIDHeader(t *testing.T) {
	client := startServer(t, nil)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "req-42")
	var header metadata.MD
	_, err := client.GetUser(ctx, mustStruct(t, map[string]any{"id": "1"}), grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"req-42"}, header.Get("x-request-id"))
}

func TestUserDirectory_RateLimited(t *testing.T) {
	client := startServer(t, ratelimit.NewLocalLimiter(ratelimit.Config{RequestsPerSecond: 0.001, Burst: 1}))
	ctx := context.Background()

	_, err := client.GetUser(ctx, mustStruct(t, map[string]any{"id": "1"}))
	require.NoError(t, err)

	_, err = client.GetUser(ctx, mustStruct(t, map[string]any{"id": "1"}))
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}
