package quotations

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/packquote/packquote/internal/platform/httpx"
	"github.com/packquote/packquote/internal/pricing"
	"github.com/packquote/packquote/internal/rbac"
	"github.com/packquote/packquote/internal/specsheet"
)

const msgNotFound = "見積が見つかりません。"

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the customer routes under /quotations.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Get("/{id}/processing-options", h.processingOptions)
}

// MountAdminRoutes registers routes under /admin/quotations. Callers apply
// the admin role guard.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/cost-breakdown", h.costBreakdown)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, total, err := h.service.List(r.Context(), f, actor)
	if err != nil {
		h.fail(w, "list quotations", err)
		return
	}
	f.normalize()
	if rows == nil {
		rows = []Quotation{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"quotations": rows,
		"pagination": httpx.NewPage(f.Page, f.Limit, total),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req CreateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	q, err := h.service.Create(r.Context(), req, actor.UserID)
	if err != nil {
		h.fail(w, "create quotation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	q, err := h.service.Get(r.Context(), id, actor)
	if err != nil {
		h.fail(w, "get quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) processingOptions(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	resp, err := h.service.ProcessingOptions(r.Context(), id, actor)
	if err != nil {
		h.fail(w, "processing options", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	q, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, "update quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete quotation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) costBreakdown(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	resp, err := h.service.CostBreakdown(r.Context(), id)
	if err != nil {
		h.fail(w, "cost breakdown", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", msgNotFound)
	case errors.Is(err, ErrValidation),
		errors.Is(err, specsheet.ErrMalformedSpecification),
		errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrInvalidDimensions):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
	case errors.Is(err, ErrFinalized), errors.Is(err, ErrInvalidStatus):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrConflict, err))
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (rbac.Identity, bool) {
	id, ok := rbac.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return rbac.Identity{}, false
	}
	return id, true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", msgNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func parseFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	f := ListFilter{
		UserID: q.Get("userId"),
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Desc:   !strings.EqualFold(q.Get("order"), "asc"),
	}
	if raw := q.Get("status"); raw != "" {
		status, err := NormalizeStatus(raw)
		if err != nil {
			return ListFilter{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
		}
		f.Status = status
	}
	for name, dst := range map[string]*int{"page": &f.Page, "limit": &f.Limit} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return ListFilter{}, fmt.Errorf("%w: invalid %s", httpx.ErrValidation, name)
		}
		*dst = n
	}
	return f, nil
}
