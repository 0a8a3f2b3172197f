package model

import (
	"time"

	"github.com/fekuna/omnipos-storefront-service/pkg/money"
)

type Order struct {
	ID           int64           `db:"id" json:"id"`
	CustomerName string          `db:"customer_name" json:"customer_name"`
	TotalCost    money.Cents     `db:"total_cents" json:"total_cents"`
	PurchasedAt  time.Time       `db:"purchased_at" json:"purchased_at"`
	Lines        []OrderLineItem `db:"-" json:"lines,omitempty"`
}

type OrderLineItem struct {
	ID          int64       `db:"id" json:"id"`
	OrderID     int64       `db:"order_id" json:"order_id"`
	LotID       int64       `db:"lot_id" json:"lot_id"`
	ProductID   int64       `db:"product_id" json:"product_id"`
	Quantity    int         `db:"quantity" json:"quantity"`
	UnitPrice   money.Cents `db:"unit_price_cents" json:"unit_price_cents"`
	ProductName string      `db:"product_name" json:"product_name"` // Joined data
}

func (l *OrderLineItem) LineTotal() money.Cents {
	return l.UnitPrice.Mul(l.Quantity)
}

// DraftLine is one resolved cart entry of an uncommitted order.
type DraftLine struct {
	ProductID int64
	LotID     int64
	Quantity  int
	UnitPrice money.Cents
}

func (l DraftLine) LineTotal() money.Cents {
	return l.UnitPrice.Mul(l.Quantity)
}

// OrderDraft is built by the assembler and handed to the persister as is.
// Total is computed once at assembly and never recomputed downstream.
type OrderDraft struct {
	Lines []DraftLine
	Total money.Cents
}
