package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresSchema creates the menu tables. Idempotent.
//
// order_items.product_id is not a foreign key: products may be
// deleted while old orders still point at them.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS categories (
    id          BIGSERIAL    PRIMARY KEY,
    name        VARCHAR(50)  NOT NULL CHECK (name <> ''),
    created_at  TIMESTAMPTZ  NOT NULL,
    updated_at  TIMESTAMPTZ  NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id           BIGSERIAL      PRIMARY KEY,
    category_id  BIGINT         NOT NULL REFERENCES categories(id),
    name         VARCHAR(100)   NOT NULL,
    description  TEXT,
    price        NUMERIC(10,2)  NOT NULL CHECK (price >= 0),
    image_link   TEXT,
    created_at   TIMESTAMPTZ    NOT NULL,
    updated_at   TIMESTAMPTZ    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id);

CREATE TABLE IF NOT EXISTS orders (
    id            BIGSERIAL      PRIMARY KEY,
    table_number  INTEGER        NOT NULL,
    total         NUMERIC(12,2)  NOT NULL DEFAULT 0 CHECK (total >= 0),
    status        VARCHAR(16)    NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
    created_at    TIMESTAMPTZ    NOT NULL,
    updated_at    TIMESTAMPTZ    NOT NULL
);

CREATE TABLE IF NOT EXISTS order_items (
    id          BIGSERIAL  PRIMARY KEY,
    order_id    BIGINT     NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id  BIGINT     NOT NULL,
    quantity    INTEGER    NOT NULL DEFAULT 1 CHECK (quantity > 0)
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON order_items(product_id);
`

// ApplySchema runs the given DDL in one round trip.
func ApplySchema(ctx context.Context, db *sqlx.DB, ddl string) error {
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("database: apply schema: %w", err)
	}
	return nil
}
