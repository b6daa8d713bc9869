package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory-service/internal/adapter/gin/handler"
	"user-directory-service/internal/adapter/repository/memory"
	domain "user-directory-service/internal/domain/user"
	"user-directory-service/internal/usecase/dashboard"
	"user-directory-service/internal/usecase/health"
	"user-directory-service/internal/usecase/user"
	"user-directory-service/pkg/idgen"
	"user-directory-service/pkg/ratelimit"
)

func setupBenchmarkRouter(b *testing.B) *gin.Engine {
	b.Helper()
	gin.SetMode(gin.ReleaseMode)
	log := zap.NewNop()

	repo := memory.NewUserRepository(domain.DemoUsers(), log)
	ids := idgen.NewSequence(0)
	for _, u := range domain.DemoUsers() {
		ids.Observe(u.ID)
	}
	uc := user.New(repo, ids, log)

	return SetupRouter(Config{
		Users:       handler.NewUserHandler(uc, log),
		Dashboard:   handler.NewDashboardHandler(dashboard.New(nil), log),
		Health:      handler.NewHealthHandler(health.New("bench", nil, log)),
		Limiter:     ratelimit.NewLocalLimiter(ratelimit.Config{RequestsPerSecond: 1e9, Burst: 1 << 30}),
		CORSOrigins: []string{"*"},
		Production:  true,
		Log:         log,
	})
}

func serve(r http.Handler, method, path string, body any) int {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func BenchmarkGin_CreateUser(b *testing.B) {
	r := setupBenchmarkRouter(b)

	var counter int64
	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(p *testing.PB) {
		for p.Next() {
			n := atomic.AddInt64(&counter, 1)
			code := serve(r, http.MethodPost, "/api/users", map[string]any{
				"name":   fmt.Sprintf("User %d", n),
				"email":  fmt.Sprintf("user_%d@example.com", n),
				"role":   "user",
				"status": "active",
			})
			if code != http.StatusCreated {
				b.Errorf("expected status 201, got %d", code)
			}
		}
	})
}

func BenchmarkGin_GetUser(b *testing.B) {
	r := setupBenchmarkRouter(b)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(p *testing.PB) {
		for p.Next() {
			if code := serve(r, http.MethodGet, "/api/users/1", nil); code != http.StatusOK {
				b.Errorf("expected status 200, got %d", code)
			}
		}
	})
}

func BenchmarkGin_UpdateUser(b *testing.B) {
	r := setupBenchmarkRouter(b)

	var counter int64
	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(p *testing.PB) {
		for p.Next() {
			n := atomic.AddInt64(&counter, 1)
			code := serve(r, http.MethodPut, "/api/users/2", map[string]any{
				"name": fmt.Sprintf("Sarah %d", n),
			})
			if code != http.StatusOK {
				b.Errorf("expected status 200, got %d", code)
			}
		}
	})
}

func BenchmarkGin_ListUsers(b *testing.B) {
	r := setupBenchmarkRouter(b)
	for i := range 200 {
		serve(r, http.MethodPost, "/api/users", map[string]any{
			"name":   fmt.Sprintf("Seeded %d", i),
			"email":  fmt.Sprintf("seeded_%d@example.com", i),
			"role":   "user",
			"status": "pending",
		})
	}

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(p *testing.PB) {
		for p.Next() {
			if code := serve(r, http.MethodGet, "/api/users?page=3&limit=20&search=seeded", nil); code != http.StatusOK {
				b.Errorf("expected status 200, got %d", code)
			}
		}
	})
}
