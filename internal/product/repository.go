package product

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
)

type Repository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateDetails(ctx context.Context, product *model.Product) error
}

// Ranking keeps per-product units sold.
type Ranking interface {
	IncrBy(ctx context.Context, productID int64, quantity int) error
	Top(ctx context.Context, n int) ([]int64, error)
}
