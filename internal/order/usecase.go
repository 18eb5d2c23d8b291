package order

import (
	"context"

	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/order/dto"
)

type UseCase interface {
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (int64, error)
	GetOrder(ctx context.Context, id int64) (*model.OrderView, error)
	ListOrders(ctx context.Context) ([]model.OrderView, error)
	UpdateOrder(ctx context.Context, input *dto.UpdateOrderInput) (*model.OrderView, error)
	DeleteOrder(ctx context.Context, id int64) error
}
