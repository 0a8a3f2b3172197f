package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/jackc/pgx"
	"github.com/jmoiron/sqlx"
)

const uniqueViolation = "23505"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func mapInsertErr(err error) error {
	var pgErr pgx.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return model.ErrAlreadyExists
	}
	return err
}

func (r *PGRepository) CreateCustomer(ctx context.Context, c *model.Customer) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO customers (account_name, password_hash, first_name, last_name, created_at)
        VALUES (:account_name, :password_hash, :first_name, :last_name, :created_at)
    `, c)
	return mapInsertErr(err)
}

func (r *PGRepository) FindCustomer(ctx context.Context, accountName string) (*model.Customer, error) {
	var c model.Customer
	err := r.DB.GetContext(ctx, &c, `SELECT * FROM customers WHERE account_name = $1`, accountName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) CreateSupplier(ctx context.Context, s *model.Supplier) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO suppliers (name, password_hash, contact_email, created_at)
        VALUES (:name, :password_hash, :contact_email, :created_at)
    `, s)
	return mapInsertErr(err)
}

func (r *PGRepository) FindSupplier(ctx context.Context, name string) (*model.Supplier, error) {
	var s model.Supplier
	err := r.DB.GetContext(ctx, &s, `SELECT * FROM suppliers WHERE name = $1`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
