package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-menu-service/internal/apperr"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(table int, total string) *model.Order {
	now := time.Now().UTC()
	return &model.Order{
		BaseModel:   model.BaseModel{CreatedAt: now, UpdatedAt: now},
		TableNumber: table,
		Total:       decimal.RequireFromString(total),
		Status:      model.OrderStatusOpen,
	}
}

func TestCreateWithItems_RollsBackHeaderWhenItemsFail(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPGRepository(db)

	// quantity 0 violates the order_items CHECK constraint after the header
	// insert has already run inside the transaction.
	err := repo.CreateWithItems(context.Background(), newOrder(5, "11.98"), []model.OrderItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 0},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsPersistence(err))
	assert.Equal(t, 0, testutil.Count(t, db, "orders"))
	assert.Equal(t, 0, testutil.Count(t, db, "order_items"))
}

func TestCreateWithItems_BatchInsert(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPGRepository(db)
	ctx := context.Background()

	o := newOrder(5, "30.96")
	require.NoError(t, repo.CreateWithItems(ctx, o, []model.OrderItem{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 1},
	}))
	assert.NotZero(t, o.ID)

	view, err := repo.FindViewByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, int64(1), view.Items[0].ProductID)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, int64(2), view.Items[1].ProductID)
	assert.Equal(t, "30.96", view.Total.StringFixed(2))
}

func TestUpdate_RollsBackItemReplacement(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPGRepository(db)
	ctx := context.Background()

	o := newOrder(5, "11.98")
	require.NoError(t, repo.CreateWithItems(ctx, o, []model.OrderItem{{ProductID: 1, Quantity: 2}}))

	o.Total = decimal.RequireFromString("99.00")
	o.TableNumber = 7
	err := repo.Update(ctx, o, []model.OrderItem{{ProductID: 3, Quantity: -1}})
	require.Error(t, err)

	stored, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.TableNumber)
	assert.Equal(t, "11.98", stored.Total.StringFixed(2))

	view, err := repo.FindViewByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(1), view.Items[0].ProductID)
}

func TestUpdate_NilItemsKeepsTotal(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPGRepository(db)
	ctx := context.Background()

	o := newOrder(5, "11.98")
	require.NoError(t, repo.CreateWithItems(ctx, o, []model.OrderItem{{ProductID: 1, Quantity: 2}}))

	o.Total = decimal.RequireFromString("1.00")
	o.Status = model.OrderStatusClosed
	require.NoError(t, repo.Update(ctx, o, nil))

	stored, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusClosed, stored.Status)
	assert.Equal(t, "11.98", stored.Total.StringFixed(2))
	assert.Equal(t, 1, testutil.Count(t, db, "order_items"))
}

func TestFindViewByID_Missing(t *testing.T) {
	repo := NewPGRepository(testutil.NewDB(t))

	view, err := repo.FindViewByID(context.Background(), 1)
	assert.NoError(t, err)
	assert.Nil(t, view)

	deleted, err := repo.Delete(context.Background(), 1)
	assert.NoError(t, err)
	assert.False(t, deleted)
}

func TestUpdate_MissingOrderIsNotFound(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPGRepository(db)
	ctx := context.Background()

	o := newOrder(5, "11.98")
	require.NoError(t, repo.CreateWithItems(ctx, o, []model.OrderItem{{ProductID: 1, Quantity: 2}}))
	deleted, err := repo.Delete(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	err = repo.Update(ctx, o, []model.OrderItem{{ProductID: 1, Quantity: 1}})
	assert.True(t, apperr.IsNotFound(err), "err = %v", err)
	assert.False(t, apperr.IsPersistence(err))
	assert.Equal(t, "order not found", apperr.PublicMessage(err))
	assert.Equal(t, 0, testutil.Count(t, db, "order_items"))

	err = repo.Update(ctx, o, nil)
	assert.True(t, apperr.IsNotFound(err), "err = %v", err)
}
