package middleware

import (
	"context"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"user-directory-service/pkg/ratelimit"
)

// RateLimiter applies a ratelimit.Limiter to gRPC calls, keyed by method and client IP.
type RateLimiter struct {
	limiter ratelimit.Limiter
	log     *zap.Logger
}

// NewRateLimiter creates a new rate limiter interceptor. A nil limiter disables limiting.
func NewRateLimiter(limiter ratelimit.Limiter, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		log:     log,
	}
}

// UnaryInterceptor returns a gRPC unary interceptor for rate limiting.
func (rl *RateLimiter) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if rl.limiter == nil {
			return handler(ctx, req)
		}

		clientIP := getClientIP(ctx)
		key := "grpc:" + info.FullMethod + ":" + clientIP

		allowed, err := rl.limiter.Allow(ctx, key)
		if err != nil {
			// On limiter error, allow request to proceed (fail open)
			rl.log.Warn("rate limiter error, allowing request",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
				zap.Error(err),
			)
			return handler(ctx, req)
		}

		if !allowed {
			rl.log.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
			)
			return nil, status.Error(codes.ResourceExhausted, "Too many requests, please try again later")
		}

		return handler(ctx, req)
	}
}

// getClientIP extracts the client IP address from the gRPC context.
func getClientIP(ctx context.Context) string {
	// Proxies forward the original address in metadata
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if xff := md.Get("x-forwarded-for"); len(xff) > 0 {
			return xff[0]
		}
		if xri := md.Get("x-real-ip"); len(xri) > 0 {
			return xri[0]
		}
	}

	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}

	return "unknown"
}
