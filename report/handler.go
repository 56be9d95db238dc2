package report

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/verandameister/quotedesk/internal/document"
	"github.com/verandameister/quotedesk/internal/platform/httpx"
	"github.com/verandameister/quotedesk/internal/quotes"
	"github.com/verandameister/quotedesk/internal/shared"
)

// ErrPDFUnavailable is returned when no PDF converter is configured.
var ErrPDFUnavailable = errors.New("report: pdf rendering unavailable")

// QuoteSource looks up quotes by id.
type QuoteSource interface {
	Get(ctx context.Context, id string) (quotes.Quote, error)
}

// Recorder counts rendered documents.
type Recorder interface {
	DocumentRendered(format, kind string)
}

// ArchiveQueue schedules PDF renders into the document archive.
type ArchiveQueue interface {
	EnqueueDocumentRender(ctx context.Context, quoteID string) (*asynq.TaskInfo, error)
}

// ArchiveResponse acknowledges a queued archive render.
type ArchiveResponse struct {
	TaskID string `json:"taskId"`
	Queue  string `json:"queue"`
}

// Handler serves the print HTML and PDF of a quote.
type Handler struct {
	quotes   QuoteSource
	renderer *Renderer
	logger   *slog.Logger
	recorder Recorder
	archive  ArchiveQueue
}

// NewHandler creates a document handler. recorder may be nil.
func NewHandler(source QuoteSource, renderer *Renderer, logger *slog.Logger, recorder Recorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{quotes: source, renderer: renderer, logger: logger, recorder: recorder}
}

// UseArchiveQueue enables POST /{id}/archive.
func (h *Handler) UseArchiveQueue(q ArchiveQueue) {
	h.archive = q
}

// MountRoutes registers document routes. "/{id}.pdf" is served by the same
// route as the HTML page.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}", h.document)
	r.Post("/{id}/archive", h.queueArchive)
}

func (h *Handler) queueArchive(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable), "archive queue not configured")
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := h.quotes.Get(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	info, err := h.archive.EnqueueDocumentRender(r.Context(), id)
	if err != nil {
		h.logger.Error("queue document render", slog.String("quote_id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable), "queue unavailable")
		return
	}
	httpx.JSON(w, http.StatusAccepted, ArchiveResponse{TaskID: info.ID, Queue: info.Queue})
}

func (h *Handler) document(w http.ResponseWriter, r *http.Request) {
	id, wantPDF := strings.CutSuffix(chi.URLParam(r, "id"), ".pdf")
	q, err := h.quotes.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("load quote for document", slog.String("quote_id", id), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}

	html, err := h.renderer.HTML(q)
	if err != nil {
		h.logger.Error("render document html", slog.String("quote_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	etag := document.ETag(html)
	if wantPDF {
		etag = `"pdf-` + strings.Trim(etag, `"`) + `"`
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if !wantPDF {
		h.record("html", q)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(html)
		return
	}

	pdf, err := h.renderer.PDF(r.Context(), q)
	if err != nil {
		h.logger.Error("render document pdf", slog.String("quote_id", id), slog.Any("error", err))
		status := http.StatusBadGateway
		if errors.Is(err, ErrPDFUnavailable) {
			status = http.StatusServiceUnavailable
		}
		httpx.Problem(w, status, http.StatusText(status), "")
		return
	}
	h.record("pdf", q)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+FileName(q)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) record(format string, q quotes.Quote) {
	if h.recorder != nil {
		h.recorder.DocumentRendered(format, Kind(q))
	}
}
