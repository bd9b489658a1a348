package quotations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packquote/packquote/internal/platform/httpx"
	"github.com/packquote/packquote/internal/rbac"
	_ "github.com/packquote/packquote/testing"
)

func newTestRouter(repo *mockRepo) http.Handler {
	svc, _ := newTestService(repo)
	h := NewHandler(nil, svc)
	r := chi.NewRouter()
	r.Use(rbac.IdentityFromHeaders)
	r.Route("/quotations", h.MountRoutes)
	r.Route("/admin/quotations", h.MountAdminRoutes)
	return r
}

func do(t *testing.T, router http.Handler, method, path, body string, who *rbac.Identity) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if who != nil {
		req.Header.Set(rbac.HeaderUserID, who.UserID)
		req.Header.Set(rbac.HeaderUserRole, strings.Join(who.Roles, ","))
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

const createBody = `{
	"customerName": "山田商事",
	"customerEmail": "buyer@example.jp",
	"items": [{
		"productName": "スタンドパウチ",
		"quantity": 3000,
		"unitPrice": 52.37,
		"specifications": {"bagType":"stand_up","width":130,"height":200,"depth":40,"postProcessingOptions":["zipper-yes","notch-yes"]}
	}]
}`

func TestHandlerCreateAndShow(t *testing.T) {
	repo := newMockRepo()
	router := newTestRouter(repo)

	rr := do(t, router, http.MethodPost, "/quotations", createBody, &member)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created Quotation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "QT-2026-0001", created.QuotationNumber)
	assert.Equal(t, 157200.0, created.TotalAmount-created.TaxAmount)

	rr = do(t, router, http.MethodGet, "/quotations/"+created.ID.String(), "", &member)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodGet, "/quotations/"+created.ID.String(), "", &other)
	require.Equal(t, http.StatusNotFound, rr.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Equal(t, msgNotFound, problem.Detail)

	rr = do(t, router, http.MethodGet, "/quotations/"+created.ID.String()+"/processing-options", "", &member)
	require.Equal(t, http.StatusOK, rr.Code)
	var opts ProcessingOptionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &opts))
	assert.True(t, opts.ProcessingOptions.Ziplock)
	assert.True(t, opts.ProcessingOptions.Notch)
	assert.False(t, opts.ProcessingOptions.HangingHole)
}

func TestHandlerList(t *testing.T) {
	repo := newMockRepo()
	router := newTestRouter(repo)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/quotations", createBody, &member).Code)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/quotations", createBody, &other).Code)

	rr := do(t, router, http.MethodGet, "/quotations?status=pending&page=2&limit=5", "", &member)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, StatusSent, repo.lastFilter.Status)
	assert.Equal(t, member.UserID, repo.lastFilter.UserID)
	assert.Equal(t, 2, repo.lastFilter.Page)
	assert.Equal(t, 5, repo.lastFilter.Limit)

	rr = do(t, router, http.MethodGet, "/admin/quotations", "", &admin)
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Quotations []Quotation `json:"quotations"`
		Pagination httpx.Page  `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body.Quotations, 2)
	assert.Equal(t, 2, body.Pagination.Total)
	assert.Equal(t, 1, body.Pagination.TotalPages)
}

func TestHandlerAdminUpdateAndCostBreakdown(t *testing.T) {
	repo := newMockRepo()
	router := newTestRouter(repo)
	rr := do(t, router, http.MethodPost, "/quotations", createBody, &member)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created Quotation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	path := "/admin/quotations/" + created.ID.String()

	rr = do(t, router, http.MethodPatch, path, `{"status":"sent","adminNotes":"確認済み"}`, &admin)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated Quotation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, StatusSent, updated.Status)

	rr = do(t, router, http.MethodPatch, path, `{"status":"converted"}`, &admin)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, router, http.MethodGet, path+"/cost-breakdown", "", &admin)
	require.Equal(t, http.StatusOK, rr.Code)
	var cost CostBreakdownResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cost))
	require.Len(t, cost.Cost.SKUs, 1)
	assert.NotEmpty(t, cost.Cost.Summary.Total.Formatted)

	rr = do(t, router, http.MethodDelete, path, "", &admin)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, router, http.MethodDelete, path, "", &admin)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlerErrors(t *testing.T) {
	router := newTestRouter(newMockRepo())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		who    *rbac.Identity
		want   int
	}{
		{"anonymous list", http.MethodGet, "/quotations", "", nil, http.StatusUnauthorized},
		{"anonymous create", http.MethodPost, "/quotations", createBody, nil, http.StatusUnauthorized},
		{"bad json", http.MethodPost, "/quotations", `{`, &member, http.StatusBadRequest},
		{"invalid request", http.MethodPost, "/quotations", `{"customerName":"x","items":[]}`, &member, http.StatusBadRequest},
		{"bad status filter", http.MethodGet, "/quotations?status=archived", "", &member, http.StatusBadRequest},
		{"bad page", http.MethodGet, "/quotations?page=abc", "", &member, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/quotations/not-a-uuid", "", &member, http.StatusNotFound},
		{"unknown id", http.MethodGet, "/admin/quotations/00000000-0000-0000-0000-000000000001/cost-breakdown", "", &admin, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, router, tt.method, tt.path, tt.body, tt.who)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}
