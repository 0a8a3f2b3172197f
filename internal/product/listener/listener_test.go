package listener

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queueReader hands out queued messages, then blocks until ctx ends.
type queueReader struct {
	mu   sync.Mutex
	msgs []kafka.Message
	errs []error
}

func (q *queueReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	q.mu.Lock()
	if len(q.errs) > 0 {
		err := q.errs[0]
		q.errs = q.errs[1:]
		q.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(q.msgs) > 0 {
		m := q.msgs[0]
		q.msgs = q.msgs[1:]
		q.mu.Unlock()
		return m, nil
	}
	q.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

type salesRecorder struct {
	product.UseCase
	mu   sync.Mutex
	sold map[int64]int
	done chan struct{}
}

func (s *salesRecorder) RecordSales(_ context.Context, sold map[int64]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, q := range sold {
		s.sold[id] += q
	}
	s.done <- struct{}{}
	return nil
}

func encode(t *testing.T, e *order.Event) kafka.Message {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return kafka.Message{Value: b}
}

func TestListenerRecordsPlacedOrders(t *testing.T) {
	placed := order.NewOrderPlaced(&model.Order{
		ID: 1,
		Lines: []model.OrderLineItem{
			{ProductID: 7, Quantity: 2},
			{ProductID: 9, Quantity: 1},
		},
	})
	other := &order.Event{EventType: "OrderCancelled"}

	reader := &queueReader{
		errs: []error{errors.New("leader not available")},
		msgs: []kafka.Message{{Value: []byte("{not json")}, encode(t, other), encode(t, placed)},
	}
	rec := &salesRecorder{sold: map[int64]int{}, done: make(chan struct{}, 1)}

	l := NewRankingListener(reader, rec, logger.NewNop())
	l.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(stopped)
	}()

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("sales were not recorded")
	}
	cancel()
	<-stopped

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, map[int64]int{7: 2, 9: 1}, rec.sold)
}
