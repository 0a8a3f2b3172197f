package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const referenceOrder = "order"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func persistErr(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", model.ErrPersistence, step, err)
}

func (r *PGRepository) Commit(ctx context.Context, customerName string, draft *model.OrderDraft) (*model.Order, error) {
	tx, err := r.DB.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, persistErr("begin", err)
	}
	defer tx.Rollback()

	now := time.Now()
	order := &model.Order{
		CustomerName: customerName,
		TotalCost:    draft.Total,
		PurchasedAt:  now,
	}

	err = tx.GetContext(ctx, &order.ID, `
        INSERT INTO orders (customer_name, total_cents, purchased_at)
        VALUES ($1, $2, $3)
        RETURNING id
    `, order.CustomerName, order.TotalCost, order.PurchasedAt)
	if err != nil {
		return nil, persistErr("insert order", err)
	}

	// Lots are debited in id order so concurrent commits lock rows in the
	// same sequence.
	debits := make([]model.DraftLine, len(draft.Lines))
	copy(debits, draft.Lines)
	sort.Slice(debits, func(i, j int) bool { return debits[i].LotID < debits[j].LotID })

	remaining := make(map[int64]int, len(debits))
	for _, l := range debits {
		var left int
		err := tx.GetContext(ctx, &left, `
            UPDATE catalog_lots
            SET remaining_quantity = remaining_quantity - $1, updated_at = $2
            WHERE id = $3 AND remaining_quantity >= $1
            RETURNING remaining_quantity
        `, l.Quantity, now, l.LotID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, &model.LineError{ProductID: l.ProductID, Quantity: l.Quantity, Err: model.ErrInventoryRace}
			}
			return nil, persistErr("debit lot", err)
		}
		remaining[l.LotID] = left
	}

	refType := referenceOrder
	refID := strconv.FormatInt(order.ID, 10)
	createdBy := customerName

	order.Lines = make([]model.OrderLineItem, 0, len(draft.Lines))
	for _, l := range draft.Lines {
		item := model.OrderLineItem{
			OrderID:   order.ID,
			LotID:     l.LotID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
		err := tx.GetContext(ctx, &item.ID, `
            INSERT INTO order_line_items (order_id, lot_id, product_id, quantity, unit_price_cents)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id
        `, item.OrderID, item.LotID, item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			return nil, persistErr("insert line item", err)
		}

		after := remaining[l.LotID]
		_, err = tx.ExecContext(ctx, `
            INSERT INTO lot_movements (
                lot_id, product_id, movement_type, quantity_change,
                quantity_before, quantity_after, reference_type, reference_id,
                created_by, created_at
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        `, l.LotID, l.ProductID, model.MovementSale, -l.Quantity,
			after+l.Quantity, after, refType, refID, createdBy, now)
		if err != nil {
			return nil, persistErr("log movement", err)
		}

		order.Lines = append(order.Lines, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, persistErr("commit", err)
	}
	return order, nil
}

func (r *PGRepository) ListByCustomer(ctx context.Context, customerName string) ([]model.Order, error) {
	orders := []model.Order{}
	err := r.DB.SelectContext(ctx, &orders, `
        SELECT * FROM orders
        WHERE customer_name = $1
        ORDER BY purchased_at DESC, id DESC
    `, customerName)
	return orders, err
}

func (r *PGRepository) GetWithLines(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.DB.GetContext(ctx, &order, `SELECT * FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	err = r.DB.SelectContext(ctx, &order.Lines, `
        SELECT li.*, p.name AS product_name
        FROM order_line_items li
        JOIN products p ON p.id = li.product_id
        WHERE li.order_id = $1
        ORDER BY li.id
    `, id)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
