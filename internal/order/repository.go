package order

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type Repository interface {
	// Commit writes the order header and its lines and debits the lots in
	// one transaction. A lot that ran short fails with model.ErrInventoryRace.
	Commit(ctx context.Context, customerName string, draft *model.OrderDraft) (*model.Order, error)

	ListByCustomer(ctx context.Context, customerName string) ([]model.Order, error)
	GetWithLines(ctx context.Context, id int64) (*model.Order, error)
}
