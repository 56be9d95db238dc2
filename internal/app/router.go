package app

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/verandameister/quotedesk/internal/auth"
	"github.com/verandameister/quotedesk/internal/catalog"
	"github.com/verandameister/quotedesk/internal/observability"
	"github.com/verandameister/quotedesk/internal/platform/httpx"
	"github.com/verandameister/quotedesk/internal/quotes"
	"github.com/verandameister/quotedesk/internal/shared"
	"github.com/verandameister/quotedesk/internal/store"
	"github.com/verandameister/quotedesk/internal/view"
	"github.com/verandameister/quotedesk/jobs"
	"github.com/verandameister/quotedesk/report"
	"github.com/verandameister/quotedesk/web"
)

// StoreStatus reports which store currently serves reads.
type StoreStatus interface {
	Mode(ctx context.Context) store.Mode
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler    *auth.Handler
	QuoteHandler   *quotes.Handler
	CatalogHandler *catalog.Handler
	ReportHandler  *report.Handler
	JobHandler     *jobs.Handler

	Quotes  QuoteLister
	Catalog CatalogLoader
	Store   StoreStatus
	Resync  ResyncQueue
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
}

// NewRouter constructs the chi.Router with quotedesk defaults.
func NewRouter(params RouterParams) http.Handler {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	r := chi.NewRouter()

	// Static assets skip sessions, CSRF and rate limiting.
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, HealthResponse{Status: "ok", Store: storeMode(r.Context(), params.Store)})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         params.Logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			CSRFManager:    params.CSRFManager,
			Metrics:        params.Metrics,
		}) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r, httprate.LimitByIP(5, time.Minute))
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession)

			r.Get("/", dashboardHandler(params))
			if params.QuoteHandler != nil {
				r.Route("/api/quotes", params.QuoteHandler.MountRoutes)
			}
			if params.CatalogHandler != nil {
				r.Route("/api/catalog", params.CatalogHandler.MountRoutes)
			}
			r.Route("/api/store", func(r chi.Router) { mountStoreRoutes(r, params) })
			if params.JobHandler != nil {
				r.Route("/api/jobs", params.JobHandler.MountRoutes)
			}
			if params.ReportHandler != nil {
				r.Route("/documents", params.ReportHandler.MountRoutes)
			}
		})
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
