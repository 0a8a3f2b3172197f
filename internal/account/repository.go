package account

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type Repository interface {
	CreateCustomer(ctx context.Context, c *model.Customer) error
	FindCustomer(ctx context.Context, accountName string) (*model.Customer, error)
	CreateSupplier(ctx context.Context, s *model.Supplier) error
	FindSupplier(ctx context.Context, name string) (*model.Supplier, error)
}
