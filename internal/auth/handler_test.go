package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/verandameister/quotedesk/internal/auth"
	"github.com/verandameister/quotedesk/internal/shared"
	"github.com/verandameister/quotedesk/internal/view"
	_ "github.com/verandameister/quotedesk/testing"
)

var defaultCreds = auth.Credentials{Username: "Verandameister", Password: "Welkom123!"}

type authHarness struct {
	redis    *miniredis.Miniredis
	sessions *shared.SessionManager
	router   chi.Router
}

func newAuthHarness(t *testing.T, creds auth.Credentials) *authHarness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	templates, err := view.NewEngine()
	require.NoError(t, err)

	handler := auth.NewHandler(nil, auth.NewService(creds), templates, shared.NewCSRFManager("csrfsecret"))
	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) { handler.MountRoutes(r, nil) })
	r.With(auth.RequireSession).Get("/api/quotes", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.With(auth.RequireSession).Get("/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return &authHarness{
		redis:    mr,
		sessions: shared.NewSessionManager(client, "test_session", time.Hour, false),
		router:   r,
	}
}

// do serves req with the session loaded from its cookie and committed after
// the handler ran. It returns the recorder and the session used.
func (h *authHarness) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	sess, err := h.sessions.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req.WithContext(ctx))
	require.NoError(t, h.sessions.Commit(ctx, rec, sess))
	return rec, sess
}

func withCookie(req *http.Request, h *authHarness, sess *shared.Session) *http.Request {
	req.AddCookie(&http.Cookie{Name: h.sessions.CookieName(), Value: sess.ID})
	return req
}

func TestLoginPage(t *testing.T) {
	h := newAuthHarness(t, defaultCreds)

	rec, sess := h.do(t, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<form")
	assert.NotEmpty(t, sess.Get(shared.CSRFSessionKey))
	assert.True(t, h.redis.Exists("quotedesk:session:"+sess.ID))
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newAuthHarness(t, defaultCreds)

	form := url.Values{"username": {"Verandameister"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec, sess := h.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), auth.MessageInvalidLogin)
	assert.Contains(t, rec.Body.String(), `value="Verandameister"`)
	assert.Empty(t, sess.User())
}

func TestLoginFormSuccessRotatesSession(t *testing.T) {
	h := newAuthHarness(t, defaultCreds)

	_, anon := h.do(t, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	anonID := anon.ID

	form := url.Values{"username": {"Verandameister"}, "password": {"Welkom123!"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec, sess := h.do(t, withCookie(req, h, anon))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "Verandameister", sess.User())
	assert.NotEqual(t, anonID, sess.ID)
	assert.False(t, h.redis.Exists("quotedesk:session:"+anonID))
	assert.True(t, h.redis.Exists("quotedesk:session:"+sess.ID))
}

func TestLoginJSONAndSessionEndpoint(t *testing.T) {
	h := newAuthHarness(t, defaultCreds)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"Verandameister","password":"Welkom123!"}`))
	req.Header.Set("Content-Type", "application/json")
	rec, sess := h.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body auth.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Authenticated)
	assert.Equal(t, "Verandameister", body.User)
	assert.NotEmpty(t, body.CSRFToken)

	rec, _ = h.do(t, withCookie(httptest.NewRequest(http.MethodGet, "/auth/session", nil), h, sess))
	require.Equal(t, http.StatusOK, rec.Code)
	var again auth.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	assert.True(t, again.Authenticated)
	assert.Equal(t, body.CSRFToken, again.CSRFToken)

	rec, _ = h.do(t, withCookie(httptest.NewRequest(http.MethodGet, "/api/quotes", nil), h, sess))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginJSONRejected(t *testing.T) {
	h := newAuthHarness(t, defaultCreds)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"Welkom123!"}`))
	req.Header.Set("Content-Type", "application/json")
	rec, _ := h.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestLogoutDestroysSession(t *testing.T) {
	h := newAuthHarness(t, defaultCreds)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"Verandameister","password":"Welkom123!"}`))
	req.Header.Set("Content-Type", "application/json")
	_, sess := h.do(t, req)
	require.True(t, h.redis.Exists("quotedesk:session:"+sess.ID))

	rec, _ := h.do(t, withCookie(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), h, sess))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.False(t, h.redis.Exists("quotedesk:session:"+sess.ID))

	rec, _ = h.do(t, withCookie(httptest.NewRequest(http.MethodGet, "/api/quotes", nil), h, sess))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSessionRedirectsBrowsers(t *testing.T) {
	h := newAuthHarness(t, defaultCreds)

	rec, _ := h.do(t, httptest.NewRequest(http.MethodGet, "/documents/q1", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))

	rec, _ = h.do(t, httptest.NewRequest(http.MethodGet, "/api/quotes", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServicePasswordHashTakesPrecedence(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("geheim-2025"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := auth.NewService(auth.Credentials{Username: "Verandameister", Password: "Welkom123!", PasswordHash: string(hash)})

	_, err = svc.Authenticate("Verandameister", "Welkom123!")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	user, err := svc.Authenticate("Verandameister", "geheim-2025")
	require.NoError(t, err)
	assert.Equal(t, "Verandameister", user)
}

func TestServiceRejectsEmptyConfig(t *testing.T) {
	_, err := auth.NewService(auth.Credentials{}).Authenticate("", "")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = auth.NewService(auth.Credentials{Username: "u"}).Authenticate("u", "")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
