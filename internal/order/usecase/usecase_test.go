package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order"
	"github.com/fekuna/omnipos-storefront-service/internal/order/ordertest"
	"github.com/fekuna/omnipos-storefront-service/internal/session"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*order.Event
	err    error
}

func (r *recordingPublisher) PublishOrderPlaced(_ context.Context, e *order.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func customerSession(id, name string, entries ...model.CartEntry) *session.Session {
	s := session.New(id)
	s.SignIn(auth.Customer(name), name)
	s.Cart.Entries = append(s.Cart.Entries, entries...)
	return s
}

func newUseCase(store *ordertest.Store, locker Locker, pub order.EventPublisher) order.UseCase {
	return NewOrderUseCase(store, store, locker, pub, Config{Workers: 4, LockTTL: time.Minute}, logger.NewNop())
}

func TestCheckoutPlacesOrderAndClearsCart(t *testing.T) {
	store := ordertest.NewStore()
	store.AddLot(1, 100, 1250, 5)
	store.AddLot(2, 200, 725, 1)
	pub := &recordingPublisher{}
	uc := newUseCase(store, ordertest.NewLocker(), pub)

	sess := customerSession("s1", "alice",
		model.CartEntry{ProductID: 100, Quantity: 2},
		model.CartEntry{ProductID: 200, Quantity: 1},
	)

	placed, err := uc.Checkout(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(3225), placed.TotalCost)
	assert.Equal(t, "32.25", placed.TotalCost.String())
	assert.Zero(t, sess.Cart.Len())
	assert.Equal(t, 3, store.Remaining(1))
	assert.Equal(t, 0, store.Remaining(2))

	require.Len(t, pub.events, 1)
	assert.Equal(t, placed.ID, pub.events[0].Payload.OrderID)

	got, err := uc.GetOrder(context.Background(), "alice", placed.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 2)

	_, err = uc.GetOrder(context.Background(), "bob", placed.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	orders, err := uc.ListOrders(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckoutAssemblyFailureWritesNothing(t *testing.T) {
	store := ordertest.NewStore()
	store.AddLot(1, 100, 1250, 5)
	store.AddLot(2, 200, 725, 1)
	uc := newUseCase(store, ordertest.NewLocker(), nil)

	sess := customerSession("s1", "alice",
		model.CartEntry{ProductID: 100, Quantity: 1},
		model.CartEntry{ProductID: 200, Quantity: 3},
	)

	_, err := uc.Checkout(context.Background(), sess)
	assert.ErrorIs(t, err, model.ErrInsufficientInventory)

	var lineErr *model.LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, int64(200), lineErr.ProductID)

	assert.Zero(t, store.Commits())
	assert.Empty(t, store.Orders())
	assert.Zero(t, store.LineCount())
	assert.Equal(t, 2, sess.Cart.Len())
	assert.Equal(t, 5, store.Remaining(1))
}

func TestCheckoutRequiresCustomer(t *testing.T) {
	uc := newUseCase(ordertest.NewStore(), ordertest.NewLocker(), nil)

	anon := session.New("s1")
	anon.Cart.Entries = []model.CartEntry{{ProductID: 1, Quantity: 1}}
	_, err := uc.Checkout(context.Background(), anon)
	assert.ErrorIs(t, err, model.ErrForbidden)

	sup := session.New("s2")
	sup.SignIn(auth.Supplier("acme"), "Acme")
	_, err = uc.Checkout(context.Background(), sup)
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestCheckoutEmptyCart(t *testing.T) {
	uc := newUseCase(ordertest.NewStore(), ordertest.NewLocker(), nil)
	_, err := uc.Checkout(context.Background(), customerSession("s1", "alice"))
	assert.ErrorIs(t, err, model.ErrEmptyCart)
}

func TestCheckoutRejectsSecondCheckoutOfSameSession(t *testing.T) {
	store := ordertest.NewStore()
	store.AddLot(1, 100, 1000, 5)
	locker := ordertest.NewLocker()
	uc := newUseCase(store, locker, nil)

	ok, err := locker.AcquireLock(context.Background(), lockPrefix+"s1", "other", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	sess := customerSession("s1", "alice", model.CartEntry{ProductID: 100, Quantity: 1})
	_, err = uc.Checkout(context.Background(), sess)
	assert.ErrorIs(t, err, model.ErrCheckoutInProgress)
	assert.Equal(t, 1, sess.Cart.Len())
}

func TestCheckoutSurvivesPublishFailure(t *testing.T) {
	store := ordertest.NewStore()
	store.AddLot(1, 100, 1000, 5)
	pub := &recordingPublisher{err: errors.New("broker down")}
	uc := newUseCase(store, ordertest.NewLocker(), pub)

	placed, err := uc.Checkout(context.Background(), customerSession("s1", "alice", model.CartEntry{ProductID: 100, Quantity: 1}))
	require.NoError(t, err)
	assert.NotZero(t, placed.ID)
	assert.Len(t, store.Orders(), 1)
}

func TestConcurrentCheckoutsForLastUnit(t *testing.T) {
	store := ordertest.NewStore()
	store.AddLot(1, 100, 1000, 1)

	// Both checkouts resolve the lot before either commits.
	var arrived sync.WaitGroup
	arrived.Add(2)
	store.BeforeSelect = func(context.Context, int64) error {
		arrived.Done()
		arrived.Wait()
		return nil
	}
	uc := newUseCase(store, ordertest.NewLocker(), nil)

	sessions := []*session.Session{
		customerSession("s1", "alice", model.CartEntry{ProductID: 100, Quantity: 1}),
		customerSession("s2", "bob", model.CartEntry{ProductID: 100, Quantity: 1}),
	}

	errs := make([]error, len(sessions))
	var wg sync.WaitGroup
	for i, s := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = uc.Checkout(context.Background(), s)
		}()
	}
	wg.Wait()

	succeeded, raced := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, model.ErrInventoryRace):
			raced++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, raced)
	assert.Equal(t, 0, store.Remaining(1))
	assert.Len(t, store.Orders(), 1)
}
