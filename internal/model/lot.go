package model

import (
	"time"

	"github.com/fekuna/omnipos-storefront-service/pkg/money"
)

// CatalogLot is a priced batch of stock for one product. A lot with no
// remaining quantity stays in the table but is never offered or sold from.
type CatalogLot struct {
	ID                int64       `db:"id" json:"id"`
	ProductID         int64       `db:"product_id" json:"product_id"`
	UnitPrice         money.Cents `db:"unit_price_cents" json:"unit_price_cents"`
	RemainingQuantity int         `db:"remaining_quantity" json:"remaining_quantity"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updated_at"`
}

func (l *CatalogLot) IsAvailable() bool {
	return l.RemainingQuantity > 0
}

const (
	MovementInitial = "initial"
	MovementRestock = "restock"
	MovementSale    = "sale"
)

type LotMovement struct {
	ID             int64     `db:"id"`
	LotID          int64     `db:"lot_id"`
	ProductID      int64     `db:"product_id"`
	MovementType   string    `db:"movement_type"`
	QuantityChange int       `db:"quantity_change"`
	QuantityBefore int       `db:"quantity_before"`
	QuantityAfter  int       `db:"quantity_after"`
	ReferenceType  *string   `db:"reference_type"`
	ReferenceID    *string   `db:"reference_id"`
	CreatedBy      *string   `db:"created_by"`
	CreatedAt      time.Time `db:"created_at"`
}

// LotSelection is the lot chosen to fulfil one cart line.
type LotSelection struct {
	LotID     int64
	UnitPrice money.Cents
}
