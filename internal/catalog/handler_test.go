package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *memoryPersistence) {
	t.Helper()
	p := &memoryPersistence{}
	h := NewHandler(nil, NewService(p, nil))
	r := chi.NewRouter()
	r.Route("/api/catalog", h.MountRoutes)
	return r, p
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerGetReturnsSeed(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/catalog/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Catalog, 7)
	assert.Equal(t, "1-1", resp.Selection.SubID)
}

func TestHandlerAddMainValidation(t *testing.T) {
	router, p := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/catalog/main", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, p.saves)

	rec = doJSON(t, router, http.MethodPost, "/api/catalog/main", `{"name":"markisen"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created MainCategory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "MARKISEN", created.Name)
}

func TestHandlerArticleLifecycle(t *testing.T) {
	router, p := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/catalog/sub/1-2/articles", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var article Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &article))

	rec = doJSON(t, router, http.MethodPatch, "/api/catalog/sub/1-2/articles/"+article.ID, `{"field":"price","value":"2199"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	stored, ok := p.stored.FindArticle(article.ID)
	require.True(t, ok)
	assert.Equal(t, 2199.0, stored.Price)

	rec = doJSON(t, router, http.MethodPatch, "/api/catalog/sub/1-2/articles/"+article.ID, `{"field":"colour","value":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/catalog/sub/1-2/articles/"+article.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, ok = p.stored.FindArticle(article.ID)
	assert.False(t, ok)
}

func TestHandlerAddSubUnknownParent(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/catalog/main/nope/sub", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerReplaceRejectsDuplicateIDs(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPut, "/api/catalog/", `[{"id":"a","name":"A","subCategories":[]},{"id":"a","name":"B","subCategories":[]}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDeleteMainReselects(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodDelete, "/api/catalog/main/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Catalog, 6)
	assert.Equal(t, Selection{MainID: "2"}, resp.Selection)
}
