package app

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/verandameister/quotedesk/internal/catalog"
	"github.com/verandameister/quotedesk/internal/quotes"
	"github.com/verandameister/quotedesk/internal/shared"
	"github.com/verandameister/quotedesk/internal/view"
)

// QuoteLister feeds the dashboard with quotes and their aggregates.
type QuoteLister interface {
	List(ctx context.Context, filter *quotes.Status) ([]quotes.Quote, error)
	Stats(ctx context.Context) (quotes.Stats, error)
}

// CatalogLoader loads the current catalog.
type CatalogLoader interface {
	Load(ctx context.Context) (catalog.Catalog, error)
}

func dashboardHandler(params RouterParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := loadDashboard(r.Context(), params)
		if err != nil {
			params.Logger.Error("load dashboard", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		sess := shared.SessionFromContext(r.Context())
		td := view.TemplateData{
			Title:       "Dashboard",
			CSRFToken:   params.CSRFManager.EnsureToken(sess),
			CurrentPath: r.URL.Path,
			Data:        data,
		}
		if sess != nil {
			td.User = sess.User()
			td.Flash = sess.PopFlash()
		}
		if err := params.Templates.Render(w, "pages/dashboard.html", td); err != nil {
			params.Logger.Error("render dashboard", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

func loadDashboard(ctx context.Context, params RouterParams) (view.DashboardData, error) {
	var (
		data view.DashboardData
		tree catalog.Catalog
	)
	g, gctx := errgroup.WithContext(ctx)
	if params.Quotes != nil {
		g.Go(func() error {
			list, err := params.Quotes.List(gctx, nil)
			data.Quotes = list
			return err
		})
		g.Go(func() error {
			stats, err := params.Quotes.Stats(gctx)
			data.Stats = stats
			return err
		})
	}
	if params.Catalog != nil {
		g.Go(func() error {
			var err error
			tree, err = params.Catalog.Load(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return view.DashboardData{}, err
	}
	data.Categories = len(tree)
	for _, main := range tree {
		for _, sub := range main.SubCategories {
			data.Articles += len(sub.Articles)
		}
	}
	data.StoreMode = storeMode(ctx, params.Store)
	return data, nil
}
