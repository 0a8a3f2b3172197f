package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/order"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// RankingListener feeds placed orders into the bestseller ranking.
type RankingListener struct {
	consumer MessageReader
	uc       product.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewRankingListener(consumer MessageReader, uc product.UseCase, logger logger.ZapLogger) *RankingListener {
	return &RankingListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *RankingListener) Start(ctx context.Context) {
	l.logger.Info("Starting ranking Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping ranking Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(l.backoff)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *RankingListener) processMessage(ctx context.Context, value []byte) {
	var event order.Event
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != order.EventOrderPlaced {
		return
	}

	sold := make(map[int64]int, len(event.Payload.Items))
	for _, item := range event.Payload.Items {
		sold[item.ProductID] += item.Quantity
	}

	if err := l.uc.RecordSales(ctx, sold); err != nil {
		l.logger.Error("Failed to record sales",
			zap.Int64("order_id", event.Payload.OrderID),
			zap.Error(err),
		)
		return
	}
	l.logger.Debug("Recorded sales", zap.Int64("order_id", event.Payload.OrderID), zap.Int("products", len(sold)))
}
