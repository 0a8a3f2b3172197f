package catalog

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type Repository interface {
	// Lots
	GetByID(ctx context.Context, id int64) (*model.CatalogLot, error)
	ListByProduct(ctx context.Context, productID int64, availableOnly bool) ([]model.CatalogLot, error)
	BatchListAvailable(ctx context.Context, productIDs []int64) ([]model.CatalogLot, error)
	SumRemaining(ctx context.Context, productID int64) (int, error)

	// Stock changes, each recorded with a movement in the same transaction
	CreateWithMovement(ctx context.Context, lot *model.CatalogLot, movement *model.LotMovement) error
	RestockWithMovement(ctx context.Context, lotID int64, quantity int, movement *model.LotMovement) (*model.CatalogLot, error)

	// Movements / Audit
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.LotMovement, int, error)
}
