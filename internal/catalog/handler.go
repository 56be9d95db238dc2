package catalog

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/verandameister/quotedesk/internal/platform/httpx"
	"github.com/verandameister/quotedesk/internal/shared"
)

// Handler exposes catalog editing over JSON.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Load(r.Context()); err != nil {
		h.fail(w, "load catalog", err)
		return
	}
	h.respond(w, http.StatusOK)
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	var payload Catalog
	if err := httpx.DecodeJSON(w, r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := validateTree(payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if _, err := h.service.Save(r.Context(), payload); err != nil {
		h.fail(w, "save catalog", err)
		return
	}
	h.respond(w, http.StatusOK)
}

func (h *Handler) selectCategory(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if req.SubID != "" {
		h.service.SelectSub(req.SubID)
	} else {
		h.service.SelectMain(req.MainID)
	}
	h.respond(w, http.StatusOK)
}

func (h *Handler) addMain(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !h.decode(w, r, &req) {
		return
	}
	created, err := h.service.AddMain(r.Context(), req.Name)
	if err != nil {
		h.fail(w, "add main category", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) deleteMain(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMain(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete main category", err)
		return
	}
	h.respond(w, http.StatusOK)
}

func (h *Handler) addSub(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !h.decode(w, r, &req) {
		return
	}
	created, err := h.service.AddSub(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		h.fail(w, "add subcategory", err)
		return
	}
	if created.ID == "" {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) deleteSub(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSub(r.Context(), chi.URLParam(r, "mainID"), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete subcategory", err)
		return
	}
	h.respond(w, http.StatusOK)
}

func (h *Handler) addArticle(w http.ResponseWriter, r *http.Request) {
	created, ok, err := h.service.AddArticle(r.Context(), chi.URLParam(r, "subID"))
	if err != nil {
		h.fail(w, "add article", err)
		return
	}
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateArticle(w http.ResponseWriter, r *http.Request) {
	var req UpdateArticleRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.service.UpdateArticle(r.Context(), chi.URLParam(r, "subID"), chi.URLParam(r, "id"), ArticleField(req.Field), req.Value)
	if err != nil {
		h.fail(w, "update article", err)
		return
	}
	h.respond(w, http.StatusOK)
}

func (h *Handler) deleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteArticle(r.Context(), chi.URLParam(r, "subID"), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete article", err)
		return
	}
	h.respond(w, http.StatusOK)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(w, r, target); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			httpx.RespondError(w, &shared.ValidationError{Field: fieldErrs[0].Field(), Message: fieldErrs[0].Tag()})
			return false
		}
		httpx.RespondError(w, err)
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, status int) {
	httpx.JSON(w, status, Response{Catalog: h.service.Catalog(), Selection: h.service.Selection()})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, shared.ErrValidation) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func validateTree(c Catalog) error {
	seen := make(map[string]struct{})
	check := func(kind, id string) error {
		if id == "" {
			return &shared.ValidationError{Field: "id", Message: kind + " without id"}
		}
		key := kind + ":" + id
		if _, dup := seen[key]; dup {
			return &shared.ValidationError{Field: "id", Message: "duplicate " + kind + " id " + id}
		}
		seen[key] = struct{}{}
		return nil
	}
	for _, main := range c {
		if err := check("main category", main.ID); err != nil {
			return err
		}
		for _, sub := range main.SubCategories {
			if err := check("subcategory", sub.ID); err != nil {
				return err
			}
			for _, a := range sub.Articles {
				if a.Price < 0 {
					return &shared.ValidationError{Field: "price", Message: "negative price on article " + a.ID}
				}
			}
		}
	}
	return nil
}
