package events

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront-service/internal/order"
)

// Fanout delivers every event to all publishers, even after one fails.
type Fanout []order.EventPublisher

func (f Fanout) PublishOrderPlaced(ctx context.Context, event *order.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishOrderPlaced(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
