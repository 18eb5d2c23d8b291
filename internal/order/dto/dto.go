package dto

import "github.com/fekuna/omnipos-menu-service/internal/model"

// ItemInput is one requested line. Quantity defaults to 1 when omitted.
type ItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity"`
}

type CreateOrderInput struct {
	TableNumber *int        `json:"table_number"`
	Products    []ItemInput `json:"products"`
}

// UpdateOrderInput patches an order. A nil Products keeps the current items
// and total.
type UpdateOrderInput struct {
	ID          int64              `json:"-"`
	TableNumber *int               `json:"table_number"`
	Status      *model.OrderStatus `json:"status"`
	Products    *[]ItemInput       `json:"products"`
}

type CreateOrderResponse struct {
	ID int64 `json:"id"`
}
