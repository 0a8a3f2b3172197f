package events

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/fekuna/omnipos-storefront-service/internal/order"
)

// MessageWriter is satisfied by broker.KafkaProducer.
type MessageWriter interface {
	Publish(ctx context.Context, key, value []byte) error
}

// KafkaPublisher writes order events keyed by order id, so all events of
// one order land on the same partition.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, event *order.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := []byte(strconv.FormatInt(event.Payload.OrderID, 10))
	return p.writer.Publish(ctx, key, value)
}
