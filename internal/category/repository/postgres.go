package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-storefront-service/internal/category/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	stmt, err := r.DB.PrepareNamedContext(ctx, `
        INSERT INTO categories (name, description, sort_order, created_at, updated_at)
        VALUES (:name, :description, :sort_order, :created_at, :updated_at)
        RETURNING id
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	return stmt.GetContext(ctx, &c.ID, c)
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*model.Category, error) {
	return r.findOne(ctx, `SELECT * FROM categories WHERE id = $1 LIMIT 1`, id)
}

func (r *PGRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	return r.findOne(ctx, `SELECT * FROM categories WHERE lower(name) = lower($1) LIMIT 1`, name)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Category, error) {
	var category model.Category
	err := r.DB.GetContext(ctx, &category, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	var count int
	if err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM categories`); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM categories ORDER BY sort_order ASC, name ASC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	categories := []model.Category{}
	if err := r.DB.SelectContext(ctx, &categories, query); err != nil {
		return nil, 0, err
	}
	return categories, count, nil
}
