package order

import (
	"context"

	"github.com/fekuna/omnipos-menu-service/internal/model"
)

type Repository interface {
	// CreateWithItems inserts the header and its items in one transaction
	// and sets order.ID.
	CreateWithItems(ctx context.Context, order *model.Order, items []model.OrderItem) error
	FindByID(ctx context.Context, id int64) (*model.Order, error)
	// Update writes the header. A non-nil items slice replaces the stored
	// items and total in the same transaction; nil leaves both untouched.
	Update(ctx context.Context, order *model.Order, items []model.OrderItem) error
	Delete(ctx context.Context, id int64) (bool, error)

	FindViewByID(ctx context.Context, id int64) (*model.OrderView, error)
	FindAllViews(ctx context.Context) ([]model.OrderView, error)
}
