package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/verandameister/quotedesk/internal/platform/httpx"
)

// ResyncQueue schedules store:resync tasks.
type ResyncQueue interface {
	EnqueueStoreResync(ctx context.Context) (*asynq.TaskInfo, error)
}

// StoreResponse reports the store mode and any queued resync.
type StoreResponse struct {
	Mode   string `json:"mode"`
	TaskID string `json:"taskId,omitempty"`
	Queued bool   `json:"queued"`
}

func mountStoreRoutes(r chi.Router, params RouterParams) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, StoreResponse{Mode: storeMode(r.Context(), params.Store)})
	})
	r.Post("/resync", func(w http.ResponseWriter, r *http.Request) {
		if params.Resync == nil {
			httpx.Problem(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable), "job queue not configured")
			return
		}
		resp := StoreResponse{Mode: storeMode(r.Context(), params.Store), Queued: true}
		info, err := params.Resync.EnqueueStoreResync(r.Context())
		switch {
		case errors.Is(err, asynq.ErrDuplicateTask):
			resp.Queued = false
		case err != nil:
			params.Logger.Error("queue store resync", slog.Any("error", err))
			httpx.Problem(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable), "queue unavailable")
			return
		default:
			resp.TaskID = info.ID
		}
		httpx.JSON(w, http.StatusAccepted, resp)
	})
}

func storeMode(ctx context.Context, s StoreStatus) string {
	if s == nil {
		return ""
	}
	return string(s.Mode(ctx))
}
