package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireRole(t *testing.T) {
	guarded := IdentityFromHeaders(RequireRole(nil, RoleAdmin)(okHandler()))

	tests := []struct {
		name   string
		userID string
		roles  string
		want   int
	}{
		{name: "anonymous", want: http.StatusUnauthorized},
		{name: "member", userID: "u-1", roles: "member", want: http.StatusForbidden},
		{name: "admin", userID: "u-2", roles: "member, ADMIN", want: http.StatusNoContent},
		{name: "role without user", roles: "admin", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			if tt.roles != "" {
				req.Header.Set(HeaderUserRole, tt.roles)
			}
			rr := httptest.NewRecorder()
			guarded.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRequireRoleWithoutRolesPassesThrough(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireRole(nil, " ", "")(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestIdentityFromHeaders(t *testing.T) {
	var got Identity
	var found bool
	handler := IdentityFromHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, " user-9 ")
	req.Header.Set(HeaderUserRole, "admin,admin,,member")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, found)
	assert.Equal(t, "user-9", got.UserID)
	assert.Equal(t, []string{"admin", "member"}, got.Roles)
	assert.True(t, got.IsAdmin())
}
