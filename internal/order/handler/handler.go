package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-menu-service/internal/httpx"
	"github.com/fekuna/omnipos-menu-service/internal/order"
	"github.com/fekuna/omnipos-menu-service/internal/order/dto"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *OrderHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateOrder)
	r.Get("/", h.ListOrders)
	r.Get("/{id}", h.GetOrder)
	r.Put("/{id}", h.UpdateOrder)
	r.Delete("/{id}", h.DeleteOrder)
}

// CreateOrder handles POST /orders and answers with the new order id.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateOrderInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	id, err := h.uc.CreateOrder(r.Context(), &input)
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, dto.CreateOrderResponse{ID: id}, h.logger)
}

// ListOrders handles GET /orders. Line names and unit prices are current
// product values; total is the amount stored when the items were written.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	views, err := h.uc.ListOrders(r.Context())
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views, h.logger)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	view, err := h.uc.GetOrder(r.Context(), id)
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view, h.logger)
}

func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	var input dto.UpdateOrderInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	input.ID = id

	view, err := h.uc.UpdateOrder(r.Context(), &input)
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view, h.logger)
}

func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	if err := h.uc.DeleteOrder(r.Context(), id); err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
