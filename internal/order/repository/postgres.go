package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-menu-service/internal/apperr"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/database"
	"github.com/jmoiron/sqlx"
)

const orderColumns = `id, table_number, total, status, created_at, updated_at`

// lineQuery joins items against the current product rows. Items whose
// product was deleted come back with an empty name and a NULL price.
const lineQuery = `
    SELECT oi.order_id,
           oi.product_id,
           COALESCE(p.name, '') AS product_name,
           oi.quantity,
           p.price AS unit_price
    FROM order_items oi
    LEFT JOIN products p ON p.id = oi.product_id
`

type lineRow struct {
	OrderID int64 `db:"order_id"`
	model.OrderLineView
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateWithItems(ctx context.Context, o *model.Order, items []model.OrderItem) error {
	err := database.RunInTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		query, args, err := tx.BindNamed(`
            INSERT INTO orders (table_number, total, status, created_at, updated_at)
            VALUES (:table_number, :total, :status, :created_at, :updated_at)
            RETURNING id
        `, o)
		if err != nil {
			return err
		}
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&o.ID); err != nil {
			return err
		}
		return insertItems(ctx, tx, o.ID, items)
	})
	return apperr.Persistence(err, "insert order")
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*model.Order, error) {
	var o model.Order
	query := r.DB.Rebind(`SELECT ` + orderColumns + ` FROM orders WHERE id = ?`)
	if err := r.DB.GetContext(ctx, &o, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Persistence(err, "select order")
	}
	return &o, nil
}

func (r *PGRepository) Update(ctx context.Context, o *model.Order, items []model.OrderItem) error {
	err := database.RunInTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		header := `
            UPDATE orders
            SET table_number = :table_number,
                status = :status,
                updated_at = :updated_at
            WHERE id = :id
        `
		if items != nil {
			header = `
            UPDATE orders
            SET table_number = :table_number,
                status = :status,
                total = :total,
                updated_at = :updated_at
            WHERE id = :id
        `
		}
		res, err := tx.NamedExecContext(ctx, header, o)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			// Deleted after the caller loaded it.
			return apperr.NotFound("order")
		}
		if items == nil {
			return nil
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM order_items WHERE order_id = ?`), o.ID); err != nil {
			return err
		}
		return insertItems(ctx, tx, o.ID, items)
	})
	if apperr.IsNotFound(err) {
		return err
	}
	return apperr.Persistence(err, "update order")
}

// Delete removes the order; its items go with it through ON DELETE CASCADE.
func (r *PGRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM orders WHERE id = ?`), id)
	if err != nil {
		return false, apperr.Persistence(err, "delete order")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Persistence(err, "delete order")
	}
	return n > 0, nil
}

func (r *PGRepository) FindViewByID(ctx context.Context, id int64) (*model.OrderView, error) {
	o, err := r.FindByID(ctx, id)
	if err != nil || o == nil {
		return nil, err
	}

	var rows []lineRow
	query := r.DB.Rebind(lineQuery + ` WHERE oi.order_id = ? ORDER BY oi.id ASC`)
	if err := r.DB.SelectContext(ctx, &rows, query, id); err != nil {
		return nil, apperr.Persistence(err, "select order items")
	}

	view := toView(*o)
	for _, row := range rows {
		view.Items = append(view.Items, row.OrderLineView)
	}
	return &view, nil
}

// FindAllViews loads every order ordered by id, with items in insertion
// order. Two queries regardless of the number of orders.
func (r *PGRepository) FindAllViews(ctx context.Context) ([]model.OrderView, error) {
	var orders []model.Order
	if err := r.DB.SelectContext(ctx, &orders, `SELECT `+orderColumns+` FROM orders ORDER BY id ASC`); err != nil {
		return nil, apperr.Persistence(err, "list orders")
	}

	var rows []lineRow
	if err := r.DB.SelectContext(ctx, &rows, lineQuery+` ORDER BY oi.order_id ASC, oi.id ASC`); err != nil {
		return nil, apperr.Persistence(err, "list order items")
	}

	byOrder := make(map[int64][]model.OrderLineView, len(orders))
	for _, row := range rows {
		byOrder[row.OrderID] = append(byOrder[row.OrderID], row.OrderLineView)
	}

	views := make([]model.OrderView, 0, len(orders))
	for _, o := range orders {
		view := toView(o)
		if lines, ok := byOrder[o.ID]; ok {
			view.Items = lines
		}
		views = append(views, view)
	}
	return views, nil
}

func insertItems(ctx context.Context, tx *sqlx.Tx, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	_, err := tx.NamedExecContext(ctx, `
        INSERT INTO order_items (order_id, product_id, quantity)
        VALUES (:order_id, :product_id, :quantity)
    `, items)
	return err
}

func toView(o model.Order) model.OrderView {
	return model.OrderView{
		ID:          o.ID,
		TableNumber: o.TableNumber,
		Total:       o.Total,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Items:       []model.OrderLineView{},
	}
}
