package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/packquote/packquote/internal/platform/httpx"
)

// RequireRole ensures the current identity carries at least one of roles.
// Anonymous callers get 401, authenticated callers without the role get 403.
func RequireRole(logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	required := normalizeRoles(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			for _, role := range required {
				if id.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			if logger != nil {
				logger.Warn("rbac role denied",
					slog.String("user_id", id.UserID),
					slog.String("path", r.URL.Path),
					slog.Any("required", required))
			}
			httpx.RespondError(w, httpx.ErrForbidden)
		})
	}
}

func normalizeRoles(roles []string) []string {
	unique := make(map[string]struct{}, len(roles))
	normalized := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.TrimSpace(strings.ToLower(role))
		if role == "" {
			continue
		}
		if _, ok := unique[role]; ok {
			continue
		}
		unique[role] = struct{}{}
		normalized = append(normalized, role)
	}
	return normalized
}
