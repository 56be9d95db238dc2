package quotes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/verandameister/quotedesk/internal/catalog"
	"github.com/verandameister/quotedesk/internal/platform/httpx"
	"github.com/verandameister/quotedesk/internal/shared"
)

// CatalogSource provides the articles quote lines may reference.
type CatalogSource interface {
	Catalog() catalog.Catalog
}

// Idempotency guards create requests carrying an Idempotency-Key header.
type Idempotency interface {
	Claim(ctx context.Context, scope, key string) error
	Release(ctx context.Context, scope, key string) error
}

// Handler exposes the quote API.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	catalog     CatalogSource
	validator   *validator.Validate
	idempotency Idempotency
}

// NewHandler constructs a quote handler.
func NewHandler(logger *slog.Logger, service *Service, source CatalogSource) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, catalog: source, validator: validator.New()}
}

// UseIdempotency makes POST requests with an Idempotency-Key header
// succeed at most once per key.
func (h *Handler) UseIdempotency(store Idempotency) {
	h.idempotency = store
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var filter *Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		if !status.Valid() {
			httpx.RespondError(w, &ValidationError{Field: "status", Message: "unknown status " + strconv.Quote(raw)})
			return
		}
		filter = &status
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, "list quotes", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) nextNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.service.NextNumber(r.Context())
	if err != nil {
		h.fail(w, "next quote number", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NextNumberResponse{QuoteNumber: number})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.fail(w, "quote stats", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) selected(w http.ResponseWriter, r *http.Request) {
	q, ok := h.service.Selected()
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, DraftResponse{Quote: q, Totals: ComputeTotals(q.Items)})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get quote", err)
		return
	}
	h.service.Select(id)
	httpx.JSON(w, http.StatusOK, DraftResponse{Quote: q, Totals: ComputeTotals(q.Items)})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !h.decode(w, r, &req) {
		return
	}
	key := r.Header.Get(shared.IdempotencyHeader)
	if key != "" && h.idempotency != nil {
		if err := h.idempotency.Claim(r.Context(), "quotes", key); err != nil {
			h.fail(w, "claim idempotency key", err)
			return
		}
	}
	q, err := h.createQuote(r.Context(), req)
	if err != nil {
		if key != "" && h.idempotency != nil {
			if relErr := h.idempotency.Release(r.Context(), "quotes", key); relErr != nil {
				h.logger.Warn("release idempotency key", slog.Any("error", relErr))
			}
		}
		h.fail(w, "create quote", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, DraftResponse{Quote: q, Totals: ComputeTotals(q.Items)})
}

func (h *Handler) createQuote(ctx context.Context, req QuoteRequest) (Quote, error) {
	b, err := h.service.NewDraft(ctx)
	if err != nil {
		return Quote{}, err
	}
	if err := h.apply(b, req); err != nil {
		return Quote{}, err
	}
	return h.service.Save(ctx, b)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !h.decode(w, r, &req) {
		return
	}
	b, err := h.service.EditDraft(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "edit draft", err)
		return
	}
	if err := h.apply(b, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	q, err := h.service.Save(r.Context(), b)
	if err != nil {
		h.fail(w, "update quote", err)
		return
	}
	httpx.JSON(w, http.StatusOK, DraftResponse{Quote: q, Totals: ComputeTotals(q.Items)})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete quote", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.service.SetStatus(r.Context(), id, req.Status); err != nil {
		h.fail(w, "set quote status", err)
		return
	}
	q, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get quote", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) invoice(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.ConvertToInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "convert to invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, DraftResponse{Quote: q, Totals: ComputeTotals(q.Items)})
}

// apply copies a request onto a builder, replacing all lines.
func (h *Handler) apply(b *Builder, req QuoteRequest) error {
	b.SetCustomer(req.Customer)
	if req.Slogan != "" {
		b.SetSlogan(req.Slogan)
	}
	if req.QuoteNumber != "" {
		b.SetNumber(req.QuoteNumber)
	}
	if !req.Date.IsZero() {
		b.SetDate(req.Date)
	}
	if !req.ValidUntil.IsZero() {
		b.SetValidUntil(req.ValidUntil)
	}
	b.SetInvoice(req.IsInvoice)

	var tree catalog.Catalog
	if h.catalog != nil {
		tree = h.catalog.Catalog()
	}
	b.ClearItems()
	for i, item := range req.Items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		id := item.ArticleID
		article, inCatalog := catalog.Article{}, false
		if id != "" && !IsManualItemID(id) {
			article, inCatalog = tree.FindArticle(id)
			if !inCatalog && item.Price == nil {
				return &ValidationError{Field: "items[" + strconv.Itoa(i) + "].articleId", Message: "unknown article " + id}
			}
		}
		if inCatalog {
			b.AddFromCatalog(article)
			b.AdjustQuantity(id, qty-1)
		} else {
			id = b.AddManualWithID(id)
			if err := b.UpdateItem(id, ItemQuantity, strconv.Itoa(qty)); err != nil {
				return err
			}
		}
		if err := overrideItem(b, id, item); err != nil {
			return err
		}
	}
	return nil
}

func overrideItem(b *Builder, id string, item ItemRequest) error {
	if item.Title != "" {
		if err := b.UpdateItem(id, ItemTitle, item.Title); err != nil {
			return err
		}
	}
	if item.Details != "" {
		if err := b.UpdateItem(id, ItemDetails, item.Details); err != nil {
			return err
		}
	}
	if item.Price != nil {
		if err := b.UpdateItem(id, ItemPrice, strconv.FormatFloat(*item.Price, 'f', -1, 64)); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(w, r, target); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			httpx.RespondError(w, &ValidationError{Field: fieldErrs[0].Namespace(), Message: "failed " + fieldErrs[0].Tag()})
			return false
		}
		httpx.RespondError(w, err)
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrIdempotencyConflict):
		h.logger.Debug(op, slog.Any("error", err))
	default:
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
