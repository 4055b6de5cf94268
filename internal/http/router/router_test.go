package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apphttp "educare/internal/http"
	"educare/platform/httpkit"
	"educare/platform/logger"
	"educare/platform/metrics"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type routerConfig struct{}

func (routerConfig) GetHTTPAddr() string        { return ":0" }
func (routerConfig) GetCORSAllowAll() bool      { return false }
func (routerConfig) GetCORSOrigins() []string   { return []string{"http://localhost:5173"} }
func (routerConfig) GetCORSAllowCreds() bool    { return true }
func (routerConfig) GetRateLimitPerMinute() int { return 0 }
func (routerConfig) GetJWTAccessSecret() string { return "secret" }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/echo", func(c *gin.Context) { httpkit.OK(c, "pong") })
	ctx.Admin.GET("/echo", func(c *gin.Context) { httpkit.OK(c, "admin pong") })
	ctx.Protected.GET("/notifications/stream", func(c *gin.Context) { httpkit.OK(c, "stream") })
	ctx.Protected.GET("/me", func(c *gin.Context) { httpkit.OK(c, "me") })
}

func newApp(health apphttp.HealthChecker) *apphttp.App {
	return &apphttp.App{
		Config:  routerConfig{},
		Logger:  logger.Discard(),
		Health:  health,
		Metrics: metrics.New(),
		Modules: []apphttp.Module{echoModule{}},
	}
}

func serve(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouterMountsModulesAndGuards(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := New(newApp(pinger{}))

	if rec := serve(engine, "/api/v1/echo"); rec.Code != http.StatusOK {
		t.Fatalf("expected public module route 200, got %d", rec.Code)
	}
	if rec := serve(engine, "/api/v1/admin/echo"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected admin route without token 401, got %d", rec.Code)
	}
	rec := serve(engine, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rec.Code)
	}
	if rec.Header().Get(httpkit.HeaderRequestID) == "" {
		t.Fatal("expected request id header")
	}
	if rec := serve(engine, "/metrics"); rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := New(newApp(pinger{err: errors.New("down")}))

	if rec := serve(engine, "/api/health"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestQueryTokenAcceptedOnlyOnEventStream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := New(newApp(pinger{}))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": httpkit.RoleParent,
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	if rec := serve(engine, "/api/v1/notifications/stream?token="+token); rec.Code != http.StatusOK {
		t.Fatalf("expected stream to accept query token, got %d", rec.Code)
	}
	if rec := serve(engine, "/api/v1/me?token="+token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected query token refused outside the stream, got %d", rec.Code)
	}
}
