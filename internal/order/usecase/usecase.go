package usecase

import (
	"context"
	"math"
	"time"

	"github.com/fekuna/omnipos-menu-service/internal/apperr"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/order"
	"github.com/fekuna/omnipos-menu-service/internal/order/dto"
	"github.com/fekuna/omnipos-menu-service/internal/order/event"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Publisher receives order events after the write has committed. A publish
// error is logged and never fails the request.
type Publisher = event.Publisher

type orderUseCase struct {
	repo      order.Repository
	pricing   *PricingResolver
	publisher Publisher
	logger    logger.ZapLogger
}

// NewOrderUseCase wires the order composer and reader. publisher may be nil.
func NewOrderUseCase(repo order.Repository, products ProductFinder, publisher Publisher, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		pricing:   NewPricingResolver(products),
		publisher: publisher,
		logger:    log,
	}
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (int64, error) {
	if input.TableNumber == nil {
		return 0, apperr.Validation("table_number is required")
	}
	if err := validateTableNumber(*input.TableNumber); err != nil {
		return 0, err
	}
	if len(input.Products) == 0 {
		return 0, apperr.Validation("products must not be empty")
	}

	pricing, err := uc.pricing.Resolve(ctx, input.Products)
	if err != nil {
		uc.logger.Debug("order pricing rejected", zap.Error(err))
		return 0, err
	}

	now := time.Now().UTC()
	o := &model.Order{
		BaseModel:   model.BaseModel{CreatedAt: now, UpdatedAt: now},
		TableNumber: *input.TableNumber,
		Total:       pricing.Total,
		Status:      model.OrderStatusOpen,
	}
	items := toItems(pricing)

	if err := uc.repo.CreateWithItems(ctx, o, items); err != nil {
		uc.logger.Error("failed to create order", zap.Int("table_number", o.TableNumber), zap.Error(err))
		return 0, err
	}

	uc.logger.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.Int("items", len(items)),
		zap.String("total", o.Total.StringFixed(2)),
	)
	uc.publish(ctx, event.New(event.TypeOrderCreated, event.PayloadFromOrder(o, items)))

	return o.ID, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id int64) (*model.OrderView, error) {
	view, err := uc.repo.FindViewByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, apperr.NotFound("order")
	}
	fillLineTotals(view)
	return view, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context) ([]model.OrderView, error) {
	views, err := uc.repo.FindAllViews(ctx)
	if err != nil {
		return nil, err
	}
	for i := range views {
		fillLineTotals(&views[i])
	}
	return views, nil
}

// UpdateOrder patches the header and, when products are given, replaces the
// items. New prices are resolved before anything is written, so a bad item
// list leaves the stored order untouched.
func (uc *orderUseCase) UpdateOrder(ctx context.Context, input *dto.UpdateOrderInput) (*model.OrderView, error) {
	o, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFound("order")
	}

	if input.TableNumber != nil {
		if err := validateTableNumber(*input.TableNumber); err != nil {
			return nil, err
		}
		o.TableNumber = *input.TableNumber
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperr.Validation("invalid status %q (must be open or closed)", *input.Status)
		}
		o.Status = *input.Status
	}

	var items []model.OrderItem
	if input.Products != nil {
		if len(*input.Products) == 0 {
			return nil, apperr.Validation("products must not be empty")
		}
		pricing, err := uc.pricing.Resolve(ctx, *input.Products)
		if err != nil {
			uc.logger.Debug("order pricing rejected", zap.Int64("order_id", o.ID), zap.Error(err))
			return nil, err
		}
		items = toItems(pricing)
		o.Total = pricing.Total
	}

	o.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, o, items); err != nil {
		uc.logger.Error("failed to update order", zap.Int64("order_id", o.ID), zap.Error(err))
		return nil, err
	}

	uc.publish(ctx, event.New(event.TypeOrderUpdated, event.PayloadFromOrder(o, items)))

	return uc.GetOrder(ctx, o.ID)
}

func (uc *orderUseCase) DeleteOrder(ctx context.Context, id int64) error {
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		uc.logger.Error("failed to delete order", zap.Int64("order_id", id), zap.Error(err))
		return err
	}
	if !deleted {
		return apperr.NotFound("order")
	}

	uc.publish(ctx, event.New(event.TypeOrderDeleted, event.OrderPayload{ID: id}))
	return nil
}

// publish runs after commit. The publisher is expected to queue rather than
// block on the broker; see event.Dispatcher.
func (uc *orderUseCase) publish(ctx context.Context, e *event.OrderEvent) {
	if uc.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := uc.publisher.Publish(ctx, e); err != nil {
		uc.logger.Warn("failed to publish order event",
			zap.String("event_type", e.EventType),
			zap.Int64("order_id", e.Payload.ID),
			zap.Error(err),
		)
	}
}

func validateTableNumber(n int) error {
	if n <= 0 || n > math.MaxInt32 {
		return apperr.Validation("table_number must be between 1 and %d", math.MaxInt32)
	}
	return nil
}

func toItems(p *Pricing) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, model.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return items
}

// fillLineTotals sets quantity x current unit price on every line. Lines
// whose product is gone keep a null total.
func fillLineTotals(v *model.OrderView) {
	for i := range v.Items {
		line := &v.Items[i]
		if !line.UnitPrice.Valid {
			continue
		}
		line.LineTotal = decimal.NullDecimal{
			Decimal: line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))),
			Valid:   true,
		}
	}
}
