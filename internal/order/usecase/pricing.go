package usecase

import (
	"context"
	"math"

	"github.com/fekuna/omnipos-menu-service/internal/apperr"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/order/dto"
	"github.com/shopspring/decimal"
)

const (
	defaultQuantity = 1
	maxQuantity     = math.MaxInt32
)

// maxTotal is the largest value orders.total (NUMERIC(12,2)) can hold.
var maxTotal = decimal.RequireFromString("9999999999.99")

// ProductFinder loads products by id. Missing ids are simply absent from the
// result.
type ProductFinder interface {
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
}

type PricedItem struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

type Pricing struct {
	Items []PricedItem
	Total decimal.Decimal
}

// PricingResolver prices a requested item list against current product
// prices.
type PricingResolver struct {
	products ProductFinder
}

func NewPricingResolver(products ProductFinder) *PricingResolver {
	return &PricingResolver{products: products}
}

// Resolve is all-or-nothing: any invalid quantity or unknown product fails
// the whole list and no partial pricing is returned.
func (r *PricingResolver) Resolve(ctx context.Context, items []dto.ItemInput) (*Pricing, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for i, item := range items {
		if item.ProductID <= 0 {
			return nil, apperr.Validation("products[%d]: product_id is required", i)
		}
		if item.Quantity != nil && (*item.Quantity <= 0 || *item.Quantity > maxQuantity) {
			return nil, apperr.Validation("products[%d]: quantity must be between 1 and %d", i, maxQuantity)
		}
		if _, ok := seen[item.ProductID]; !ok {
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}

	found, err := r.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	prices := make(map[int64]decimal.Decimal, len(found))
	for _, p := range found {
		prices[p.ID] = p.Price
	}

	pricing := &Pricing{Items: make([]PricedItem, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		price, ok := prices[item.ProductID]
		if !ok {
			return nil, apperr.ProductNotFound(item.ProductID)
		}
		qty := defaultQuantity
		if item.Quantity != nil {
			qty = *item.Quantity
		}
		pricing.Items = append(pricing.Items, PricedItem{ProductID: item.ProductID, Quantity: qty, UnitPrice: price})
		pricing.Total = pricing.Total.Add(price.Mul(decimal.NewFromInt(int64(qty))))
	}
	if pricing.Total.GreaterThan(maxTotal) {
		return nil, apperr.Validation("order total %s exceeds %s", pricing.Total.StringFixed(2), maxTotal.StringFixed(2))
	}
	return pricing, nil
}
