// Package testutil provides a throwaway SQLite database with the same tables
// as the Postgres schema, so repositories can be exercised end to end.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE categories (
    id          INTEGER   PRIMARY KEY AUTOINCREMENT,
    name        TEXT      NOT NULL CHECK (name <> ''),
    created_at  TIMESTAMP NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE products (
    id           INTEGER        PRIMARY KEY AUTOINCREMENT,
    category_id  INTEGER        NOT NULL REFERENCES categories(id),
    name         TEXT           NOT NULL,
    description  TEXT,
    price        NUMERIC(10,2)  NOT NULL CHECK (price >= 0),
    image_link   TEXT,
    created_at   TIMESTAMP      NOT NULL,
    updated_at   TIMESTAMP      NOT NULL
);

CREATE TABLE orders (
    id            INTEGER        PRIMARY KEY AUTOINCREMENT,
    table_number  INTEGER        NOT NULL,
    total         NUMERIC(12,2)  NOT NULL DEFAULT 0 CHECK (total >= 0),
    status        TEXT           NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
    created_at    TIMESTAMP      NOT NULL,
    updated_at    TIMESTAMP      NOT NULL
);

CREATE TABLE order_items (
    id          INTEGER  PRIMARY KEY AUTOINCREMENT,
    order_id    INTEGER  NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id  INTEGER  NOT NULL,
    quantity    INTEGER  NOT NULL DEFAULT 1 CHECK (quantity > 0)
);
`

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// NewDB opens a file-backed SQLite database in t.TempDir with foreign keys
// enforced and the menu schema applied. It is closed when the test ends.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "menu.db")
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		t.Fatalf("apply schema: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Count returns the number of rows in table.
func Count(t testing.TB, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, "SELECT count(*) FROM "+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
