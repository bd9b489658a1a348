// Package rbac resolves the caller identity forwarded by the gateway and
// guards routes by role.
package rbac

import (
	"context"
	"net/http"
	"strings"
)

// Headers set by the upstream gateway after authentication.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Known roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Identity describes the authenticated actor.
type Identity struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the identity carries role (case-insensitive).
func (i Identity) HasRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for HasRole(RoleAdmin).
func (i Identity) IsAdmin() bool {
	return i.HasRole(RoleAdmin)
}

type identityKey struct{}

// ContextWithIdentity stores id on ctx.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by IdentityFromHeaders.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

// IdentityFromHeaders reads the gateway headers into the request context.
// Requests without a user id pass through anonymously.
func IdentityFromHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}
		id := Identity{UserID: userID, Roles: parseRoles(r.Header.Get(HeaderUserRole))}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
	})
}

func parseRoles(raw string) []string {
	unique := make(map[string]struct{})
	roles := make([]string, 0, 2)
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if _, seen := unique[part]; seen {
			continue
		}
		unique[part] = struct{}{}
		roles = append(roles, part)
	}
	return roles
}
