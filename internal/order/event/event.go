// Package event describes the order lifecycle events published to Kafka.
package event

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeOrderCreated = "OrderCreated"
	TypeOrderUpdated = "OrderUpdated"
	TypeOrderDeleted = "OrderDeleted"
)

type OrderEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID          int64              `json:"id"`
	TableNumber int                `json:"table_number,omitempty"`
	Status      model.OrderStatus  `json:"status,omitempty"`
	Total       *decimal.Decimal   `json:"total,omitempty"`
	Items       []OrderItemPayload `json:"items,omitempty"`
}

type OrderItemPayload struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func New(eventType string, payload OrderPayload) *OrderEvent {
	return &OrderEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// PayloadFromOrder builds a payload for a written order. Items may be nil
// when the write did not touch them.
func PayloadFromOrder(o *model.Order, items []model.OrderItem) OrderPayload {
	total := o.Total
	p := OrderPayload{
		ID:          o.ID,
		TableNumber: o.TableNumber,
		Status:      o.Status,
		Total:       &total,
	}
	for _, it := range items {
		p.Items = append(p.Items, OrderItemPayload{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return p
}

// MessageWriter is satisfied by broker.KafkaProducer.
type MessageWriter interface {
	Publish(ctx context.Context, key, value []byte) error
}

// KafkaPublisher encodes events as JSON keyed by order id.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e *OrderEvent) error {
	value, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal order event")
	}
	key := []byte(strconv.FormatInt(e.Payload.ID, 10))
	if err := p.writer.Publish(ctx, key, value); err != nil {
		return errors.Wrapf(err, "publish %s", e.EventType)
	}
	return nil
}
