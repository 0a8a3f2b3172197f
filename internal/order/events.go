package order

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/money"
	"github.com/google/uuid"
)

const EventOrderPlaced = "OrderPlaced"

// Event is the envelope written to the order topic.
type Event struct {
	EventID   string        `json:"event_id"`
	EventType string        `json:"event_type"`
	Payload   PlacedPayload `json:"payload"`
	Timestamp time.Time     `json:"timestamp"`
}

type PlacedPayload struct {
	OrderID      int64        `json:"order_id"`
	CustomerName string       `json:"customer_name"`
	TotalCents   money.Cents  `json:"total_cents"`
	PurchasedAt  time.Time    `json:"purchased_at"`
	Items        []PlacedItem `json:"items"`
}

type PlacedItem struct {
	ProductID      int64       `json:"product_id"`
	LotID          int64       `json:"lot_id"`
	Quantity       int         `json:"quantity"`
	UnitPriceCents money.Cents `json:"unit_price_cents"`
}

func NewOrderPlaced(o *model.Order) *Event {
	items := make([]PlacedItem, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = PlacedItem{
			ProductID:      l.ProductID,
			LotID:          l.LotID,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPrice,
		}
	}
	return &Event{
		EventID:   uuid.New().String(),
		EventType: EventOrderPlaced,
		Payload: PlacedPayload{
			OrderID:      o.ID,
			CustomerName: o.CustomerName,
			TotalCents:   o.TotalCost,
			PurchasedAt:  o.PurchasedAt,
			Items:        items,
		},
		Timestamp: time.Now().UTC(),
	}
}

// EventPublisher announces committed orders. Failures never undo the order.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *Event) error
}
