package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/order"
)

// QueueWriter is satisfied by queue.Publisher.
type QueueWriter interface {
	Publish(ctx context.Context, body []byte) error
}

// PickRequest asks the warehouse to pick the lots of a committed order.
type PickRequest struct {
	OrderID     int64      `json:"order_id"`
	Customer    string     `json:"customer"`
	Items       []PickItem `json:"items"`
	RequestedAt time.Time  `json:"requested_at"`
}

type PickItem struct {
	LotID     int64 `json:"lot_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type WarehousePublisher struct {
	writer QueueWriter
}

func NewWarehousePublisher(w QueueWriter) *WarehousePublisher {
	return &WarehousePublisher{writer: w}
}

func (p *WarehousePublisher) PublishOrderPlaced(ctx context.Context, event *order.Event) error {
	req := PickRequest{
		OrderID:     event.Payload.OrderID,
		Customer:    event.Payload.CustomerName,
		Items:       make([]PickItem, len(event.Payload.Items)),
		RequestedAt: event.Timestamp,
	}
	for i, it := range event.Payload.Items {
		req.Items[i] = PickItem{LotID: it.LotID, ProductID: it.ProductID, Quantity: it.Quantity}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return p.writer.Publish(ctx, body)
}
