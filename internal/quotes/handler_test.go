package quotes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verandameister/quotedesk/internal/catalog"
	"github.com/verandameister/quotedesk/internal/shared"
)

type staticCatalog catalog.Catalog

func (c staticCatalog) Catalog() catalog.Catalog { return catalog.Catalog(c).Clone() }

func newTestAPI(t *testing.T) (http.Handler, *Service) {
	t.Helper()
	svc, _ := newTestService(t)
	source := staticCatalog{{ID: "1", Name: "VERANDA", SubCategories: []catalog.SubCategory{{ID: "1-1", Name: "3 Meter", Articles: []catalog.Article{terrace, sideway}}}}}
	h := NewHandler(nil, svc, source)
	r := chi.NewRouter()
	r.Route("/api/quotes", h.MountRoutes)
	return r, svc
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateQuoteOverHTTP(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := call(t, api, http.MethodPost, "/api/quotes/", `{
		"customerName": "Jan Janssen",
		"items": [
			{"articleId": "a1", "quantity": 1},
			{"title": "Montage", "price": 100, "quantity": 2}
		]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp DraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2118.20, resp.Quote.Amount)
	assert.Equal(t, StatusCreated, resp.Quote.Status)
	require.Len(t, resp.Quote.Items, 2)
	assert.Equal(t, "a1", resp.Quote.Items[0].ID)
	assert.True(t, resp.Quote.Items[1].IsManual)
	assert.Equal(t, "Montage", resp.Quote.Items[1].Title)
	assert.Equal(t, ManualItemDetails, resp.Quote.Items[1].Details)

	rec = call(t, api, http.MethodGet, "/api/quotes/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestCreateQuoteMergesRepeatedArticles(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := call(t, api, http.MethodPost, "/api/quotes/", `{"customerName":"Tim","items":[{"articleId":"a2"},{"articleId":"a2","quantity":2}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp DraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Quote.Items, 1)
	assert.Equal(t, 3, resp.Quote.Items[0].Quantity)
}

func TestCreateQuoteKeepsManualLineIDs(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := call(t, api, http.MethodPost, "/api/quotes/", `{"customerName":"Tim","items":[
		{"articleId":"manual-x","title":"Montage","price":100,"quantity":2},
		{"articleId":"manual-x","title":"Afvoer","price":50},
		{"articleId":"legacy-7","title":"Fundering","price":80},
		{"articleId":"a1"}
	]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp DraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	items := resp.Quote.Items
	require.Len(t, items, 4)

	assert.Equal(t, "manual-x", items[0].ID)
	assert.True(t, items[0].IsManual)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Montage", items[0].Title)

	assert.NotEqual(t, "manual-x", items[1].ID)
	assert.True(t, items[1].IsManual)
	assert.Equal(t, "Afvoer", items[1].Title)

	assert.Equal(t, "legacy-7", items[2].ID)
	assert.True(t, items[2].IsManual)
	assert.Equal(t, 80.0, items[2].Price)

	assert.Equal(t, "a1", items[3].ID)
	assert.False(t, items[3].IsManual)
}

func TestCreateQuoteValidation(t *testing.T) {
	api, svc := newTestAPI(t)

	rec := call(t, api, http.MethodPost, "/api/quotes/", `{"customerName":"  ","items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, api, http.MethodPost, "/api/quotes/", `{"customerName":"A","items":[{"articleId":"nope"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, api, http.MethodPost, "/api/quotes/", `{"customerName":"A","customerEmail":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, api, http.MethodPost, "/api/quotes/", `{"customerName":"A","date":"32-13-2025"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	all, err := svc.List(t.Context(), nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestQuoteLifecycleOverHTTP(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := call(t, api, http.MethodPost, "/api/quotes/", `{"customerName":"Silke","date":"31-01-2025","items":[{"articleId":"a1"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created DraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Quote.ID
	assert.Equal(t, "28-02-2025", created.Quote.ValidUntil.String())

	rec = call(t, api, http.MethodGet, "/api/quotes/next-number", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"quoteNumber":"2026262"}`, rec.Body.String())

	rec = call(t, api, http.MethodPatch, "/api/quotes/"+id+"/status", `{"status":"VERSTUURD"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, api, http.MethodGet, "/api/quotes/?status=VERSTUURD", "")
	var sent []Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sent))
	assert.Len(t, sent, 1)

	rec = call(t, api, http.MethodGet, "/api/quotes/?status=BOGUS", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, api, http.MethodPut, "/api/quotes/"+id, `{"customerName":"Silke Bernhardt","items":[{"articleId":"a1","price":1500}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated DraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, StatusSent, updated.Quote.Status)
	assert.Equal(t, 1785.0, updated.Quote.Amount)

	rec = call(t, api, http.MethodPost, "/api/quotes/"+id+"/invoice", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, api, http.MethodGet, "/api/quotes/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(t, api, http.MethodGet, "/api/quotes/selected", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, api, http.MethodDelete, "/api/quotes/"+id, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(t, api, http.MethodGet, "/api/quotes/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = call(t, api, http.MethodGet, "/api/quotes/selected", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type memIdempotency map[string]bool

func (m memIdempotency) Claim(_ context.Context, scope, key string) error {
	if m[scope+key] {
		return shared.ErrIdempotencyConflict
	}
	m[scope+key] = true
	return nil
}

func (m memIdempotency) Release(_ context.Context, scope, key string) error {
	delete(m, scope+key)
	return nil
}

func TestCreateQuoteIdempotencyKey(t *testing.T) {
	svc, _ := newTestService(t)
	h := NewHandler(nil, svc, staticCatalog{})
	keys := memIdempotency{}
	h.UseIdempotency(keys)
	r := chi.NewRouter()
	r.Route("/api/quotes", h.MountRoutes)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/quotes/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(shared.IdempotencyHeader, "submit-1")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := post(`{"customerName":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, keys, "failed create releases the key")

	rec = post(`{"customerName":"Jan"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = post(`{"customerName":"Jan"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	list, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
