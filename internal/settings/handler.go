package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/packquote/packquote/internal/platform/httpx"
	"github.com/packquote/packquote/internal/pricing"
	"github.com/packquote/packquote/internal/rbac"
)

// Handler serves the admin settings endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	cache   *Cache
}

// NewHandler builds a settings handler.
func NewHandler(logger *slog.Logger, service *Service, cache *Cache) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, cache: cache}
}

// MountRoutes registers routes under /admin/settings. Callers apply the
// admin role guard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/rates", h.rates)
	r.Put("/{category}/{key}", h.update)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.fail(w, "list settings", err)
		return
	}
	if rows == nil {
		rows = []Setting{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"settings": rows})
}

type ratesResponse struct {
	Rates      pricing.Rates `json:"rates"`
	LastLoaded *time.Time    `json:"lastLoaded,omitempty"`
}

func (h *Handler) rates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.service.Rates(r.Context())
	if err != nil {
		h.fail(w, "load rates", err)
		return
	}
	resp := ratesResponse{Rates: rates}
	if loaded := h.cache.LastLoaded(); !loaded.IsZero() {
		resp.LastLoaded = &loaded
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	var updatedBy string
	if id, ok := rbac.IdentityFromContext(r.Context()); ok {
		updatedBy = id.UserID
	}
	saved, err := h.service.Update(r.Context(), chi.URLParam(r, "category"), chi.URLParam(r, "key"), req, updatedBy)
	if err != nil {
		h.fail(w, "update setting", err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrInvalidValue):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
