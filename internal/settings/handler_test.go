package settings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packquote/packquote/internal/rbac"
	_ "github.com/packquote/packquote/testing"
)

func newTestRouter(repo *mockRepo) http.Handler {
	cache := NewCache(repo, nil, time.Hour, nil)
	svc := NewService(repo, cache, nil)
	h := NewHandler(nil, svc, cache)
	r := chi.NewRouter()
	r.Use(rbac.IdentityFromHeaders)
	r.Route("/admin/settings", h.MountRoutes)
	return r
}

func TestHandlerUpdateAndRates(t *testing.T) {
	repo := &mockRepo{}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPut, "/admin/settings/exchange_rate/krw_to_jpy", strings.NewReader(`{"value":0.115}`))
	req.Header.Set(rbac.HeaderUserID, "admin-7")
	req.Header.Set(rbac.HeaderUserRole, "admin")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Len(t, repo.upserts, 1)
	assert.Equal(t, "admin-7", *repo.upserts[0].UpdatedBy)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/settings/rates", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Rates struct {
			ExchangeRate float64 `json:"exchangeRate"`
		} `json:"rates"`
		LastLoaded *time.Time `json:"lastLoaded"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 0.115, body.Rates.ExchangeRate)
	assert.NotNil(t, body.LastLoaded)
}

func TestHandlerErrors(t *testing.T) {
	router := newTestRouter(&mockRepo{})

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unknown key", "/admin/settings/printing/nope", `{"value":1}`, http.StatusNotFound},
		{"invalid value", "/admin/settings/printing/cost_per_m2", `{"value":-3}`, http.StatusBadRequest},
		{"bad json", "/admin/settings/printing/cost_per_m2", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rr.Code)
			assert.Contains(t, rr.Header().Get("Content-Type"), "application/problem+json")
		})
	}
}

func TestHandlerList(t *testing.T) {
	repo := &mockRepo{}
	repo.set(CategoryPrinting, "cost_per_m2", 480)
	repo.set(CategorySlitter, "min_cost", 30000)
	router := newTestRouter(repo)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/settings/?category=printing", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Settings []Setting `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Settings, 1)
	assert.Equal(t, "cost_per_m2", body.Settings[0].Key)
}
