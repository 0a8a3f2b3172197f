package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/money"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "postgres")), mock
}

func draft() *model.OrderDraft {
	return &model.OrderDraft{
		Lines: []model.DraftLine{
			{ProductID: 1, LotID: 20, Quantity: 2, UnitPrice: 1250},
			{ProductID: 2, LotID: 10, Quantity: 1, UnitPrice: 725},
		},
		Total: 3225,
	}
}

func TestCommitWritesOrderLinesAndDebits(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs("alice", int64(3225), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))
	// debits run in lot id order
	mock.ExpectQuery(`UPDATE catalog_lots`).
		WithArgs(1, sqlmock.AnyArg(), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"remaining_quantity"}).AddRow(4))
	mock.ExpectQuery(`UPDATE catalog_lots`).
		WithArgs(2, sqlmock.AnyArg(), int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"remaining_quantity"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO order_line_items`).
		WithArgs(int64(77), int64(20), int64(1), 2, int64(1250)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO lot_movements`).
		WithArgs(int64(20), int64(1), model.MovementSale, -2, 2, 0, "order", "77", "alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`INSERT INTO order_line_items`).
		WithArgs(int64(77), int64(10), int64(2), 1, int64(725)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectExec(`INSERT INTO lot_movements`).
		WithArgs(int64(10), int64(2), model.MovementSale, -1, 5, 4, "order", "77", "alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	order, err := repo.Commit(context.Background(), "alice", draft())
	require.NoError(t, err)
	assert.Equal(t, int64(77), order.ID)
	assert.Equal(t, money.Cents(3225), order.TotalCost)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, int64(20), order.Lines[0].LotID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitShortLotRollsBack(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(78))
	mock.ExpectQuery(`UPDATE catalog_lots`).
		WithArgs(1, sqlmock.AnyArg(), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"remaining_quantity"}))
	mock.ExpectRollback()

	_, err := repo.Commit(context.Background(), "alice", draft())
	assert.ErrorIs(t, err, model.ErrInventoryRace)

	var lineErr *model.LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, int64(2), lineErr.ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitWrapsDatabaseErrors(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Commit(context.Background(), "alice", draft())
	assert.ErrorIs(t, err, model.ErrPersistence)
	assert.NotErrorIs(t, err, model.ErrInventoryRace)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWithLines(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM orders WHERE id = $1`)).
		WithArgs(int64(77)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_name", "total_cents", "purchased_at"}).
			AddRow(77, "alice", 3225, now))
	mock.ExpectQuery(`FROM order_line_items li\s+JOIN products p`).
		WithArgs(int64(77)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "lot_id", "product_id", "quantity", "unit_price_cents", "product_name"}).
			AddRow(1, 77, 20, 1, 2, 1250, "Rope").
			AddRow(2, 77, 10, 2, 1, 725, "Tent"))

	order, err := repo.GetWithLines(context.Background(), 77)
	require.NoError(t, err)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, "Rope", order.Lines[0].ProductName)
	assert.Equal(t, money.Cents(2500), order.Lines[0].LineTotal())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWithLinesMissing(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT \* FROM orders`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	order, err := repo.GetWithLines(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, order)
}
