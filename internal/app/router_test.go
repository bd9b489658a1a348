package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packquote/packquote/internal/observability"
	"github.com/packquote/packquote/internal/rbac"
	_ "github.com/packquote/packquote/internal/testing/guard"
	"github.com/packquote/packquote/jobs"
)

func newTestRouter() http.Handler {
	cfg := &Config{AppEnv: "production", RateLimitPerMinute: 1000}
	return NewRouter(RouterParams{
		Config:     cfg,
		JobHandler: jobs.NewHandler(nil, nil, nil),
		Metrics:    observability.NewMetrics(),
	})
}

func TestRouterHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestRouterAdminGuard(t *testing.T) {
	router := newTestRouter()
	cases := []struct {
		name   string
		role   string
		userID string
		status int
	}{
		{name: "anonymous", status: http.StatusUnauthorized},
		{name: "member", userID: "u-1", role: rbac.RoleMember, status: http.StatusForbidden},
		{name: "admin", userID: "u-2", role: rbac.RoleAdmin, status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/jobs/health", nil)
			req.Header.Set("X-Forwarded-Proto", "https")
			if tc.userID != "" {
				req.Header.Set(rbac.HeaderUserID, tc.userID)
				req.Header.Set(rbac.HeaderUserRole, tc.role)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
		})
	}
}

func TestRouterMetrics(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "packquote_")
}
