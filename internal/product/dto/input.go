package dto

import (
	"github.com/fekuna/omnipos-menu-service/internal/pkg/storage"
	"github.com/shopspring/decimal"
)

type CreateProductInput struct {
	Name        string           `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  int64            `json:"category_id"`
	Description *string          `json:"description"`
	ImageLink   *string          `json:"image_link"`
	Image       *storage.File    `json:"-"` // multipart upload, takes precedence over ImageLink
}

// UpdateProductInput patches a product; nil fields keep their current value.
type UpdateProductInput struct {
	ID          int64            `json:"-"`
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *int64           `json:"category_id"`
	Description *string          `json:"description"`
	ImageLink   *string          `json:"image_link"`
	Image       *storage.File    `json:"-"`
}
