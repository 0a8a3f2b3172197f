package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const insertMovementQuery = `
        INSERT INTO lot_movements (
            lot_id, product_id, movement_type, quantity_change,
            quantity_before, quantity_after, reference_type, reference_id,
            created_by, created_at
        )
        VALUES (
            :lot_id, :product_id, :movement_type, :quantity_change,
            :quantity_before, :quantity_after, :reference_type, :reference_id,
            :created_by, :created_at
        )
    `

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByID(ctx context.Context, id int64) (*model.CatalogLot, error) {
	var lot model.CatalogLot
	err := r.DB.GetContext(ctx, &lot, `SELECT * FROM catalog_lots WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

func (r *PGRepository) ListByProduct(ctx context.Context, productID int64, availableOnly bool) ([]model.CatalogLot, error) {
	query := `SELECT * FROM catalog_lots WHERE product_id = $1`
	if availableOnly {
		query += ` AND remaining_quantity > 0`
	}
	query += ` ORDER BY unit_price_cents DESC, id ASC`

	lots := []model.CatalogLot{}
	err := r.DB.SelectContext(ctx, &lots, query, productID)
	return lots, err
}

func (r *PGRepository) BatchListAvailable(ctx context.Context, productIDs []int64) ([]model.CatalogLot, error) {
	if len(productIDs) == 0 {
		return []model.CatalogLot{}, nil
	}

	query, args, err := sqlx.In(`
        SELECT * FROM catalog_lots
        WHERE product_id IN (?) AND remaining_quantity > 0
        ORDER BY product_id, unit_price_cents DESC, id ASC
    `, productIDs)
	if err != nil {
		return nil, err
	}

	// Rebind for Postgres ($1, $2...)
	query = r.DB.Rebind(query)

	var lots []model.CatalogLot
	err = r.DB.SelectContext(ctx, &lots, query, args...)
	return lots, err
}

func (r *PGRepository) SumRemaining(ctx context.Context, productID int64) (int, error) {
	var total int
	err := r.DB.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(remaining_quantity), 0) FROM catalog_lots WHERE product_id = $1`, productID)
	return total, err
}

func (r *PGRepository) CreateWithMovement(ctx context.Context, lot *model.CatalogLot, movement *model.LotMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `
        INSERT INTO catalog_lots (product_id, unit_price_cents, remaining_quantity, created_at, updated_at)
        VALUES (:product_id, :unit_price_cents, :remaining_quantity, :created_at, :updated_at)
        RETURNING id
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if err := stmt.GetContext(ctx, &lot.ID, lot); err != nil {
		return fmt.Errorf("failed to insert lot: %w", err)
	}

	movement.LotID = lot.ID
	if _, err := tx.NamedExecContext(ctx, insertMovementQuery, movement); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) RestockWithMovement(ctx context.Context, lotID int64, quantity int, movement *model.LotMovement) (*model.CatalogLot, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var lot model.CatalogLot
	err = tx.GetContext(ctx, &lot, `
        UPDATE catalog_lots
        SET remaining_quantity = remaining_quantity + $1, updated_at = $2
        WHERE id = $3
        RETURNING *
    `, quantity, movement.CreatedAt, lotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update lot: %w", err)
	}

	movement.LotID = lot.ID
	movement.ProductID = lot.ProductID
	movement.QuantityChange = quantity
	movement.QuantityAfter = lot.RemainingQuantity
	movement.QuantityBefore = lot.RemainingQuantity - quantity

	if _, err := tx.NamedExecContext(ctx, insertMovementQuery, movement); err != nil {
		return nil, fmt.Errorf("failed to log movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.LotMovement, int, error) {
	var items []model.LotMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != 0 {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LotID != 0 {
		conditions = append(conditions, "lot_id = :lot_id")
		args["lot_id"] = f.LotID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM lot_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, err
		}
	}
	rows.Close()

	query := "SELECT * FROM lot_movements" + whereClause + " ORDER BY created_at DESC, id DESC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}
