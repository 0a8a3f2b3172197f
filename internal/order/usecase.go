package order

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/session"
)

type UseCase interface {
	// Checkout turns the session cart into an order for the signed-in customer.
	// The cart is cleared only when the order commits.
	Checkout(ctx context.Context, sess *session.Session) (*model.Order, error)

	ListOrders(ctx context.Context, customerName string) ([]model.Order, error)
	GetOrder(ctx context.Context, customerName string, id int64) (*model.Order, error)
}
