// Package routertest mounts modules on a gin engine with a fixed identity so
// handler tests can exercise routes without signing tokens.
package routertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "educare/internal/http"
	"educare/platform/httpkit"
	"educare/platform/logger"
	"educare/platform/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Harness is a test router. Requests carry the identity set with As.
type Harness struct {
	Engine   *gin.Engine
	identity httpkit.Identity
}

// Response is the decoded envelope with typed data.
type Response[T any] struct {
	Success    bool              `json:"success"`
	Data       T                 `json:"data"`
	Message    string            `json:"message"`
	Error      string            `json:"error"`
	Details    json.RawMessage   `json:"details"`
	Pagination *query.Pagination `json:"pagination"`
}

// New mounts modules the same way the production router groups them.
func New(modules ...apphttp.Module) *Harness {
	gin.SetMode(gin.TestMode)

	h := &Harness{Engine: gin.New(), identity: httpkit.Anonymous()}
	log := logger.Discard()

	v1 := h.Engine.Group("/api/v1")
	protected := v1.Group("", h.authenticate)
	admin := protected.Group("/admin", httpkit.RequireRoles(log, httpkit.RoleAdmin, httpkit.RoleOwner))

	ctx := &apphttp.RouterContext{Engine: h.Engine, V1: v1, Protected: protected, Admin: admin, Logger: log}
	for _, m := range modules {
		m.RegisterRoutes(ctx)
	}
	return h
}

// As sets the identity for subsequent requests.
func (h *Harness) As(id httpkit.Identity) *Harness {
	h.identity = id
	return h
}

// AsRole sets a fresh identity with role and returns its user id.
func (h *Harness) AsRole(role string) uuid.UUID {
	id := uuid.New()
	h.identity = httpkit.NewIdentity(id, role)
	return id
}

// Do performs a request. body may be nil, a string, []byte or any value
// encoded as JSON.
func (h *Harness) Do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return h.Serve(req)
}

// Serve runs a prepared request.
func (h *Harness) Serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Engine.ServeHTTP(rec, req)
	return rec
}

// Decode parses the envelope of rec into a typed Response.
func Decode[T any](t testing.TB, rec *httptest.ResponseRecorder) Response[T] {
	t.Helper()
	var out Response[T]
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return out
}

func (h *Harness) authenticate(c *gin.Context) {
	if h.identity == nil || !h.identity.IsAuthenticated() {
		httpkit.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		c.Abort()
		return
	}
	c.Request = c.Request.WithContext(httpkit.WithIdentity(c.Request.Context(), h.identity))
	c.Next()
}
