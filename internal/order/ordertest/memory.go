// Package ordertest provides an in-memory lot and order store for checkout
// tests. Debits are compare-and-decrement under one mutex, matching the
// guarantees of the SQL repository.
package ordertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/money"
)

type Store struct {
	mu      sync.Mutex
	lots    map[int64]*model.CatalogLot
	orders  []model.Order
	nextID  int64
	commits int

	// BeforeSelect, when set, runs at the start of every SelectLot.
	BeforeSelect func(ctx context.Context, productID int64) error
}

func NewStore() *Store {
	return &Store{lots: map[int64]*model.CatalogLot{}, nextID: 1}
}

func (s *Store) AddLot(id, productID int64, price money.Cents, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lots[id] = &model.CatalogLot{ID: id, ProductID: productID, UnitPrice: price, RemainingQuantity: remaining}
}

func (s *Store) Remaining(lotID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.lots[lotID]; ok {
		return l.RemainingQuantity
	}
	return -1
}

func (s *Store) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// LineCount is the number of persisted order lines across all orders.
func (s *Store) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, o := range s.orders {
		n += len(o.Lines)
	}
	return n
}

func (s *Store) SelectLot(ctx context.Context, productID int64, quantity int) (model.LotSelection, error) {
	if s.BeforeSelect != nil {
		if err := s.BeforeSelect(ctx, productID); err != nil {
			return model.LotSelection{}, err
		}
	}

	s.mu.Lock()
	var lots []model.CatalogLot
	for _, l := range s.lots {
		if l.ProductID == productID && l.RemainingQuantity > 0 {
			lots = append(lots, *l)
		}
	}
	s.mu.Unlock()

	sort.Slice(lots, func(i, j int) bool { return lots[i].ID < lots[j].ID })
	return catalog.PickLot(lots, quantity)
}

func (s *Store) Commit(_ context.Context, customerName string, draft *model.OrderDraft) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++

	for _, l := range draft.Lines {
		lot, ok := s.lots[l.LotID]
		if !ok || lot.RemainingQuantity < l.Quantity {
			return nil, &model.LineError{ProductID: l.ProductID, Quantity: l.Quantity, Err: model.ErrInventoryRace}
		}
	}

	o := model.Order{
		ID:           s.nextID,
		CustomerName: customerName,
		TotalCost:    draft.Total,
		PurchasedAt:  time.Now(),
	}
	s.nextID++
	for i, l := range draft.Lines {
		s.lots[l.LotID].RemainingQuantity -= l.Quantity
		o.Lines = append(o.Lines, model.OrderLineItem{
			ID:        int64(i + 1),
			OrderID:   o.ID,
			LotID:     l.LotID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	s.orders = append(s.orders, o)
	return &o, nil
}

// Commits counts Commit calls, successful or not.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

func (s *Store) ListByCustomer(_ context.Context, customerName string) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.orders {
		if o.CustomerName == customerName {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Store) GetWithLines(_ context.Context, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			cp := o
			return &cp, nil
		}
	}
	return nil, nil
}

// Locker is an in-process stand-in for the redis checkout lock.
type Locker struct {
	mu   sync.Mutex
	held map[string]string
}

func NewLocker() *Locker {
	return &Locker{held: map[string]string{}}
}

func (l *Locker) AcquireLock(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = value
	return true, nil
}

func (l *Locker) ReleaseLock(_ context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == value {
		delete(l.held, key)
	}
	return nil
}
