package catalog

import (
	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

// PickLot chooses the lot that fulfils quantity: among lots holding at least
// quantity, the highest unit price wins, ties go to the lowest lot id. Orders
// are never split across lots.
//
// Highest-price-first mirrors the storefront's historical behaviour. It has
// not been confirmed as a pricing rule; check with the business before
// relying on it.
func PickLot(lots []model.CatalogLot, quantity int) (model.LotSelection, error) {
	if quantity <= 0 {
		return model.LotSelection{}, model.ErrInvalidInput
	}

	var best *model.CatalogLot
	for i := range lots {
		l := &lots[i]
		if l.RemainingQuantity < quantity {
			continue
		}
		if best == nil ||
			l.UnitPrice > best.UnitPrice ||
			(l.UnitPrice == best.UnitPrice && l.ID < best.ID) {
			best = l
		}
	}
	if best == nil {
		return model.LotSelection{}, model.ErrInsufficientInventory
	}
	return model.LotSelection{LotID: best.ID, UnitPrice: best.UnitPrice}, nil
}
