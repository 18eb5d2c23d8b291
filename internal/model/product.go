package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	CategoryID  int64           `db:"category_id" json:"category_id"`
	Name        string          `db:"name" json:"name"`
	Description *string         `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	ImageLink   *string         `db:"image_link" json:"image_link"`
	Category    *Category       `db:"-" json:"category,omitempty"` // Joined data
}
