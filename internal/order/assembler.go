package order

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/money"
	"golang.org/x/sync/errgroup"
)

type LotSelector interface {
	SelectLot(ctx context.Context, productID int64, quantity int) (model.LotSelection, error)
}

// Assembler resolves a lot for every cart entry concurrently and builds the
// draft handed to the repository.
type Assembler struct {
	selector LotSelector
	workers  int
}

// NewAssembler bounds concurrent lot lookups to workers; workers <= 0 means
// one goroutine per entry.
func NewAssembler(selector LotSelector, workers int) *Assembler {
	return &Assembler{selector: selector, workers: workers}
}

// Assemble fails as a whole on the first entry that cannot be fulfilled,
// returning a *model.LineError for it. Nothing is written.
func (a *Assembler) Assemble(ctx context.Context, entries []model.CartEntry) (*model.OrderDraft, error) {
	if len(entries) == 0 {
		return nil, model.ErrEmptyCart
	}

	lines := make([]model.DraftLine, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	if a.workers > 0 {
		g.SetLimit(a.workers)
	}

	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sel, err := a.selector.SelectLot(gctx, entry.ProductID, entry.Quantity)
			if err != nil {
				return &model.LineError{ProductID: entry.ProductID, Quantity: entry.Quantity, Err: err}
			}
			lines[i] = model.DraftLine{
				ProductID: entry.ProductID,
				LotID:     sel.LotID,
				Quantity:  entry.Quantity,
				UnitPrice: sel.UnitPrice,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total money.Cents
	for _, l := range lines {
		lineTotal, err := l.UnitPrice.CheckedMul(l.Quantity)
		if err != nil {
			return nil, &model.LineError{ProductID: l.ProductID, Quantity: l.Quantity, Err: err}
		}
		if total, err = total.CheckedAdd(lineTotal); err != nil {
			return nil, fmt.Errorf("order total: %w", err)
		}
	}
	return &model.OrderDraft{Lines: lines, Total: total}, nil
}
