package auth

import (
	"net/http"
	"strings"

	"github.com/verandameister/quotedesk/internal/platform/httpx"
	"github.com/verandameister/quotedesk/internal/shared"
)

// RequireSession admits only signed-in sessions. API callers get a 401
// problem response, browsers are sent to the login page.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.Authenticated(r.Context()) {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/") {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
	})
}
