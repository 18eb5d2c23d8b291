package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-menu-service/internal/apperr"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := r.DB.Rebind(`
        INSERT INTO categories (name, created_at, updated_at)
        VALUES (?, ?, ?)
        RETURNING id
    `)
	err := r.DB.GetContext(ctx, &c.ID, query, c.Name, c.CreatedAt, c.UpdatedAt)
	return apperr.Persistence(err, "insert category")
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*model.Category, error) {
	var category model.Category
	query := r.DB.Rebind(`SELECT id, name, created_at, updated_at FROM categories WHERE id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &category, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Persistence(err, "select category")
	}
	return &category, nil
}

func (r *PGRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	query := r.DB.Rebind(`SELECT id, name, created_at, updated_at FROM categories WHERE name = ? ORDER BY id LIMIT 1`)
	err := r.DB.GetContext(ctx, &category, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Persistence(err, "select category by name")
	}
	return &category, nil
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	err := r.DB.SelectContext(ctx, &categories, `SELECT id, name, created_at, updated_at FROM categories ORDER BY id ASC`)
	if err != nil {
		return nil, apperr.Persistence(err, "list categories")
	}
	return categories, nil
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET name = :name,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return apperr.Persistence(err, "update category")
}

// Delete reports whether a row was removed. Products still referencing the
// category make the statement fail on the foreign key.
func (r *PGRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind("DELETE FROM categories WHERE id = ?"), id)
	if err != nil {
		return false, apperr.Persistence(err, "delete category")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Persistence(err, "delete category")
	}
	return n > 0, nil
}

func (r *PGRepository) HasProducts(ctx context.Context, id int64) (bool, error) {
	var count int
	query := r.DB.Rebind(`SELECT count(*) FROM products WHERE category_id = ?`)
	if err := r.DB.GetContext(ctx, &count, query, id); err != nil {
		return false, apperr.Persistence(err, "count category products")
	}
	return count > 0, nil
}
