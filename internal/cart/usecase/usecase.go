package usecase

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/cart/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/session"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
)

type cartUseCase struct {
	catalog  catalog.UseCase
	products product.UseCase
	logger   logger.ZapLogger
}

func NewCartUseCase(catalogUC catalog.UseCase, productUC product.UseCase, log logger.ZapLogger) cart.UseCase {
	return &cartUseCase{
		catalog:  catalogUC,
		products: productUC,
		logger:   log,
	}
}

// AddOrIncrement puts one unit of productID in the cart. A first add is
// accepted without looking at stock; later adds may not push the quantity
// past the product's total remaining inventory.
func (uc *cartUseCase) AddOrIncrement(ctx context.Context, sess *session.Session, productID int64) (model.CartEntry, error) {
	c := &sess.Cart

	idx, ok := c.Find(productID)
	if !ok {
		p, err := uc.products.GetProduct(ctx, productID)
		if err != nil {
			return model.CartEntry{}, err
		}
		if p == nil {
			return model.CartEntry{}, model.ErrNotFound
		}
		entry := model.CartEntry{ProductID: productID, Quantity: 1}
		c.Entries = append(c.Entries, entry)
		return entry, nil
	}

	entry := c.Entries[idx]
	available, err := uc.catalog.AvailableQuantity(ctx, productID)
	if err != nil {
		return entry, err
	}
	if entry.Quantity+1 > available {
		uc.logger.Debug("cart increment refused",
			zap.String("session_id", sess.ID),
			zap.Int64("product_id", productID),
			zap.Int("requested", entry.Quantity+1),
			zap.Int("available", available),
		)
		return entry, &model.LineError{
			ProductID: productID,
			Quantity:  entry.Quantity + 1,
			Available: available,
			Err:       fmt.Errorf("%w: %d available", model.ErrInventoryExceeded, available),
		}
	}

	c.Entries[idx].Quantity++
	return c.Entries[idx], nil
}

func (uc *cartUseCase) List(sess *session.Session) []model.CartEntry {
	return sess.Cart.List()
}

func (uc *cartUseCase) Clear(sess *session.Session) {
	sess.Cart.Clear()
}

// View joins cart entries with product names and current availability.
func (uc *cartUseCase) View(ctx context.Context, sess *session.Session) (*dto.CartView, error) {
	entries := sess.Cart.List()
	view := &dto.CartView{Lines: make([]dto.CartLine, 0, len(entries))}
	if len(entries) == 0 {
		return view, nil
	}

	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ProductID
	}

	products, err := uc.products.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	lots, err := uc.catalog.ListAvailableByProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		available := 0
		for _, l := range lots[e.ProductID] {
			available += l.RemainingQuantity
		}
		line := dto.CartLine{
			ProductID:   e.ProductID,
			ProductName: products[e.ProductID].Name,
			Quantity:    e.Quantity,
			Available:   available,
			Exceeds:     e.Quantity > available,
		}
		if line.Exceeds {
			view.HasShortfall = true
		}
		view.Lines = append(view.Lines, line)
	}
	return view, nil
}
