package auth

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/verandameister/quotedesk/internal/platform/httpx"
	"github.com/verandameister/quotedesk/internal/shared"
	"github.com/verandameister/quotedesk/internal/view"
)

// Messages shown on the login page.
const (
	MessageInvalidLogin = "Onjuiste gebruikersnaam of wachtwoord."
	MessageWelcome      = "Welkom terug"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	validator *validator.Validate
	now       func() time.Time
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		validator: validator.New(),
		now:       time.Now,
	}
}

// MountRoutes registers auth routes on provided router. loginLimit wraps the
// login POST, typically with a rate limiter.
func (h *Handler) MountRoutes(r chi.Router, loginLimit func(http.Handler) http.Handler) {
	r.Get("/login", h.showLogin)
	if loginLimit != nil {
		r.With(loginLimit).Post("/login", h.handleLogin)
	} else {
		r.Post("/login", h.handleLogin)
	}
	r.Post("/logout", h.handleLogout)
	r.Get("/session", h.session)
}

type loginForm struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

type loginPageData struct {
	Username string
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	User          string     `json:"user,omitempty"`
	SignedInAt    *time.Time `json:"signedInAt,omitempty"`
	CSRFToken     string     `json:"csrfToken"`
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil && sess.User() != "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginPageData{}, nil)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.RespondError(w, errors.New("session unavailable"))
		return
	}

	jsonRequest := isJSON(r)
	var form loginForm
	if jsonRequest {
		if err := httpx.DecodeJSON(w, r, &form); err != nil {
			httpx.RespondError(w, err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		form = loginForm{
			Username: strings.TrimSpace(r.PostFormValue("username")),
			Password: r.PostFormValue("password"),
		}
	}

	user, err := h.authenticate(form)
	if err != nil {
		h.logger.Info("login rejected", slog.String("remote_addr", r.RemoteAddr))
		if jsonRequest {
			httpx.RespondError(w, err)
			return
		}
		flash := &shared.FlashMessage{Kind: "error", Message: MessageInvalidLogin}
		h.renderLogin(w, r, http.StatusBadRequest, loginPageData{Username: form.Username}, flash)
		return
	}

	sess.SignIn(user, h.now())
	h.logger.Info("user signed in", slog.String("user", user))
	if jsonRequest {
		httpx.JSON(w, http.StatusOK, h.describe(sess))
		return
	}
	sess.SetFlash(shared.FlashMessage{Kind: "success", Message: MessageWelcome})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) authenticate(form loginForm) (string, error) {
	if err := h.validator.Struct(form); err != nil {
		return "", shared.ErrInvalidCredentials
	}
	return h.service.Authenticate(form.Username, form.Password)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if user := sess.User(); user != "" {
			h.logger.Info("user signed out", slog.String("user", user))
		}
		sess.SignOut()
	}
	if isJSON(r) || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.describe(shared.SessionFromContext(r.Context())))
}

func (h *Handler) describe(sess *shared.Session) SessionResponse {
	resp := SessionResponse{CSRFToken: h.csrf.EnsureToken(sess)}
	if sess != nil && sess.User() != "" {
		at := sess.SignedInAt()
		resp.Authenticated = true
		resp.User = sess.User()
		resp.SignedInAt = &at
	}
	return resp
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginPageData, flash *shared.FlashMessage) {
	sess := shared.SessionFromContext(r.Context())
	if flash == nil && sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Inloggen",
		CSRFToken:   h.csrf.EnsureToken(sess),
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
	}
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
