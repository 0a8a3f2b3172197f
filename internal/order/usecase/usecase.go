package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order"
	"github.com/fekuna/omnipos-storefront-service/internal/session"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockPrefix     = "checkout:lock:"
	publishTimeout = 5 * time.Second
)

// Locker is satisfied by cache.RedisClient.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

type Config struct {
	Workers int
	LockTTL time.Duration
}

type orderUseCase struct {
	repo      order.Repository
	assembler *order.Assembler
	locker    Locker
	publisher order.EventPublisher
	cfg       Config
	logger    logger.ZapLogger
}

// NewOrderUseCase wires checkout. publisher may be nil.
func NewOrderUseCase(repo order.Repository, selector order.LotSelector, locker Locker, publisher order.EventPublisher, cfg Config, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		assembler: order.NewAssembler(selector, cfg.Workers),
		locker:    locker,
		publisher: publisher,
		cfg:       cfg,
		logger:    log,
	}
}

func (uc *orderUseCase) Checkout(ctx context.Context, sess *session.Session) (*model.Order, error) {
	customer, ok := sess.Actor.CustomerName()
	if !ok {
		return nil, model.ErrForbidden
	}

	entries := sess.Cart.List()
	if len(entries) == 0 {
		return nil, model.ErrEmptyCart
	}

	key := lockPrefix + sess.ID
	token := uuid.New().String()
	acquired, err := uc.locker.AcquireLock(ctx, key, token, uc.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, model.ErrCheckoutInProgress
	}
	defer func() {
		if err := uc.locker.ReleaseLock(context.WithoutCancel(ctx), key, token); err != nil {
			uc.logger.Warn("failed to release checkout lock", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}()

	draft, err := uc.assembler.Assemble(ctx, entries)
	if err != nil {
		uc.logger.Info("checkout rejected",
			zap.String("customer", customer),
			zap.Int("lines", len(entries)),
			zap.Error(err),
		)
		return nil, err
	}

	placed, err := uc.repo.Commit(ctx, customer, draft)
	if err != nil {
		if errors.Is(err, model.ErrInventoryRace) {
			uc.logger.Warn("checkout lost inventory race", zap.String("customer", customer), zap.Error(err))
		} else {
			uc.logger.Error("failed to commit order", zap.String("customer", customer), zap.Error(err))
		}
		return nil, err
	}

	sess.Cart.Clear()

	uc.logger.Info("order placed",
		zap.Int64("order_id", placed.ID),
		zap.String("customer", customer),
		zap.Stringer("total", placed.TotalCost),
		zap.Int("lines", len(placed.Lines)),
	)

	uc.publish(ctx, placed)
	return placed, nil
}

func (uc *orderUseCase) publish(ctx context.Context, placed *model.Order) {
	if uc.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := uc.publisher.PublishOrderPlaced(pubCtx, order.NewOrderPlaced(placed)); err != nil {
		uc.logger.Error("failed to publish order event", zap.Int64("order_id", placed.ID), zap.Error(err))
	}
}

func (uc *orderUseCase) ListOrders(ctx context.Context, customerName string) ([]model.Order, error) {
	return uc.repo.ListByCustomer(ctx, customerName)
}

// GetOrder hides orders of other customers behind model.ErrNotFound.
func (uc *orderUseCase) GetOrder(ctx context.Context, customerName string, id int64) (*model.Order, error) {
	o, err := uc.repo.GetWithLines(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || o.CustomerName != customerName {
		return nil, model.ErrNotFound
	}
	return o, nil
}
