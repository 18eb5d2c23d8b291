package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusOpen   OrderStatus = "open"
	OrderStatusClosed OrderStatus = "closed"
)

func (s OrderStatus) Valid() bool {
	return s == OrderStatusOpen || s == OrderStatusClosed
}

// Order is the order header. Total is a write-time snapshot: it is computed
// from product prices when items are written and never recomputed on read.
type Order struct {
	BaseModel
	TableNumber int             `db:"table_number" json:"table_number"`
	Total       decimal.Decimal `db:"total" json:"total"`
	Status      OrderStatus     `db:"status" json:"status"`
}

type OrderItem struct {
	ID        int64 `db:"id" json:"id"`
	OrderID   int64 `db:"order_id" json:"order_id"`
	ProductID int64 `db:"product_id" json:"product_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
}

// OrderView is the denormalized read model. Item names and unit prices come
// from the current product rows, while Total is the stored snapshot, so the
// two can disagree after a price change.
type OrderView struct {
	ID          int64           `json:"id"`
	TableNumber int             `json:"table_number"`
	Total       decimal.Decimal `json:"total"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Items       []OrderLineView `json:"products"`
}

// OrderLineView is one line of an OrderView. ProductName is empty and
// UnitPrice/LineTotal are null when the product has since been deleted.
type OrderLineView struct {
	ProductID   int64               `db:"product_id" json:"product_id"`
	ProductName string              `db:"product_name" json:"product_name"`
	Quantity    int                 `db:"quantity" json:"quantity"`
	UnitPrice   decimal.NullDecimal `db:"unit_price" json:"unit_price"`
	LineTotal   decimal.NullDecimal `db:"-" json:"line_total"`
}
