package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	"github.com/fekuna/omnipos-storefront-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/pkg/money"
	"go.uber.org/zap"
)

const referenceProduct = "product"

type catalogUseCase struct {
	repo     catalog.Repository
	products product.Repository
	logger   logger.ZapLogger
}

func NewCatalogUseCase(repo catalog.Repository, products product.Repository, log logger.ZapLogger) catalog.UseCase {
	return &catalogUseCase{
		repo:     repo,
		products: products,
		logger:   log,
	}
}

func (uc *catalogUseCase) SelectLot(ctx context.Context, productID int64, quantity int) (model.LotSelection, error) {
	lots, err := uc.repo.ListByProduct(ctx, productID, true)
	if err != nil {
		return model.LotSelection{}, err
	}
	return catalog.PickLot(lots, quantity)
}

func (uc *catalogUseCase) AvailableQuantity(ctx context.Context, productID int64) (int, error) {
	return uc.repo.SumRemaining(ctx, productID)
}

func (uc *catalogUseCase) ListAvailable(ctx context.Context, productID int64) ([]model.CatalogLot, error) {
	return uc.repo.ListByProduct(ctx, productID, true)
}

func (uc *catalogUseCase) ListAvailableByProducts(ctx context.Context, productIDs []int64) (map[int64][]model.CatalogLot, error) {
	lots, err := uc.repo.BatchListAvailable(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[int64][]model.CatalogLot, len(productIDs))
	for _, l := range lots {
		byProduct[l.ProductID] = append(byProduct[l.ProductID], l)
	}
	return byProduct, nil
}

func (uc *catalogUseCase) ListLots(ctx context.Context, productID int64) ([]model.CatalogLot, error) {
	return uc.repo.ListByProduct(ctx, productID, false)
}

func (uc *catalogUseCase) AddLot(ctx context.Context, input *dto.AddLotInput) (*model.CatalogLot, error) {
	price, err := money.Parse(input.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: unit price must be positive", model.ErrInvalidInput)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", model.ErrInvalidInput)
	}
	if err := uc.checkOwner(ctx, input.ProductID, input.SupplierName); err != nil {
		return nil, err
	}

	now := time.Now()
	lot := &model.CatalogLot{
		ProductID:         input.ProductID,
		UnitPrice:         price,
		RemainingQuantity: input.Quantity,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	refType := referenceProduct
	refID := strconv.FormatInt(input.ProductID, 10)
	createdBy := input.SupplierName
	movement := &model.LotMovement{
		ProductID:      input.ProductID,
		MovementType:   model.MovementInitial,
		QuantityChange: input.Quantity,
		QuantityBefore: 0,
		QuantityAfter:  input.Quantity,
		ReferenceType:  &refType,
		ReferenceID:    &refID,
		CreatedBy:      &createdBy,
		CreatedAt:      now,
	}

	if err := uc.repo.CreateWithMovement(ctx, lot, movement); err != nil {
		return nil, err
	}

	uc.logger.Info("lot added",
		zap.Int64("lot_id", lot.ID),
		zap.Int64("product_id", lot.ProductID),
		zap.Stringer("unit_price", lot.UnitPrice),
		zap.Int("quantity", lot.RemainingQuantity),
	)
	return lot, nil
}

func (uc *catalogUseCase) Restock(ctx context.Context, input *dto.RestockInput) (*model.CatalogLot, error) {
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", model.ErrInvalidInput)
	}

	lot, err := uc.repo.GetByID(ctx, input.LotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, model.ErrNotFound
	}
	if err := uc.checkOwner(ctx, lot.ProductID, input.SupplierName); err != nil {
		return nil, err
	}

	createdBy := input.SupplierName
	movement := &model.LotMovement{
		MovementType: model.MovementRestock,
		CreatedBy:    &createdBy,
		CreatedAt:    time.Now(),
	}

	updated, err := uc.repo.RestockWithMovement(ctx, input.LotID, input.Quantity, movement)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("lot restocked",
		zap.Int64("lot_id", updated.ID),
		zap.Int("added", input.Quantity),
		zap.Int("remaining", updated.RemainingQuantity),
	)
	return updated, nil
}

func (uc *catalogUseCase) ListMovements(ctx context.Context, supplierName string, filters *dto.MovementFilters) ([]model.LotMovement, int, error) {
	if filters.ProductID == 0 {
		return nil, 0, fmt.Errorf("%w: product is required", model.ErrInvalidInput)
	}
	if err := uc.checkOwner(ctx, filters.ProductID, supplierName); err != nil {
		return nil, 0, err
	}
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *catalogUseCase) checkOwner(ctx context.Context, productID int64, supplierName string) error {
	p, err := uc.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return model.ErrNotFound
	}
	if p.SupplierName != supplierName {
		return model.ErrForbidden
	}
	return nil
}
