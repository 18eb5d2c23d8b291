package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-menu-service/internal/category"
	"github.com/fekuna/omnipos-menu-service/internal/category/dto"
	"github.com/fekuna/omnipos-menu-service/internal/httpx"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

// Routes mounts the category endpoints under the caller's prefix.
func (h *CategoryHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateCategory)
	r.Get("/", h.ListCategories)
	r.Get("/{id}", h.GetCategory)
	r.Put("/{id}", h.UpdateCategory)
	r.Delete("/{id}", h.DeleteCategory)
}

// CreateCategory handles POST /categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateCategoryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	cat, err := h.uc.CreateCategory(r.Context(), &input)
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	h.logger.Info("category created", zap.Int64("category_id", cat.ID))
	httpx.WriteJSON(w, http.StatusCreated, cat, h.logger)
}

// ListCategories handles GET /categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.uc.ListCategories(r.Context())
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cats, h.logger)
}

// GetCategory handles GET /categories/{id}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	cat, err := h.uc.GetCategory(r.Context(), id)
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cat, h.logger)
}

// UpdateCategory handles PUT /categories/{id}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	var input dto.UpdateCategoryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	input.ID = id

	cat, err := h.uc.UpdateCategory(r.Context(), &input)
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cat, h.logger)
}

// DeleteCategory handles DELETE /categories/{id}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	if err := h.uc.DeleteCategory(r.Context(), id); err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
