package health

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestCheck_AllHealthy(t *testing.T) {
	svc := New("test", map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return nil }),
		"cache":    nil,
	}, zaptest.NewLogger(t))
	svc.now = func() time.Time { return svc.started.Add(90 * time.Second) }

	r := svc.Check(context.Background())

	assert.Equal(t, StatusHealthy, r.Status)
	assert.Equal(t, 90.0, r.Uptime)
	assert.Equal(t, "test", r.Environment)
	assert.Equal(t, runtime.Version(), r.Version)
	assert.Equal(t, map[string]string{"database": StateConnected, "cache": StateDisabled}, r.Services)
	assert.NotZero(t, r.Memory.Sys)
	assert.Positive(t, r.Memory.Goroutines)
}

func TestCheck_Degraded(t *testing.T) {
	svc := New("production", map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return nil }),
		"cache":    PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	}, zaptest.NewLogger(t))

	r := svc.Check(context.Background())

	assert.Equal(t, StatusDegraded, r.Status)
	assert.Equal(t, StateDisconnected, r.Services["cache"])
	assert.Equal(t, StateConnected, r.Services["database"])
}

func TestCheck_PingTimeout(t *testing.T) {
	svc := New("test", map[string]Pinger{
		"database": PingFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	}, zaptest.NewLogger(t))
	svc.timeout = 10 * time.Millisecond

	r := svc.Check(context.Background())
	assert.Equal(t, StateDisconnected, r.Services["database"])
}
