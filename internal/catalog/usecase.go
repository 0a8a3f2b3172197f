package catalog

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type UseCase interface {
	// Lot selection for checkout
	SelectLot(ctx context.Context, productID int64, quantity int) (model.LotSelection, error)
	AvailableQuantity(ctx context.Context, productID int64) (int, error)

	// Listings
	ListAvailable(ctx context.Context, productID int64) ([]model.CatalogLot, error)
	ListAvailableByProducts(ctx context.Context, productIDs []int64) (map[int64][]model.CatalogLot, error)
	ListLots(ctx context.Context, productID int64) ([]model.CatalogLot, error)

	// Supplier stock management
	AddLot(ctx context.Context, input *dto.AddLotInput) (*model.CatalogLot, error)
	Restock(ctx context.Context, input *dto.RestockInput) (*model.CatalogLot, error)
	ListMovements(ctx context.Context, supplierName string, filters *dto.MovementFilters) ([]model.LotMovement, int, error)
}
