// Package migrations creates and seeds the storefront schema. Statements are
// idempotent so Apply can run on every startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ethanscookies/storefront/internal/app/domain/catalogue"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS catalogue (
		shortname   TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL,
		ingredients TEXT NOT NULL,
		price       NUMERIC(10, 2) NOT NULL CHECK (price >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		username      TEXT PRIMARY KEY,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		session_id    TEXT UNIQUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id           TEXT PRIMARY KEY,
		phone_number TEXT NOT NULL,
		username     TEXT,
		email        TEXT NOT NULL,
		items        TEXT NOT NULL,
		qtys         TEXT NOT NULL,
		ingredients  TEXT NOT NULL,
		total_price  NUMERIC(10, 2) NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id         TEXT PRIMARY KEY,
		question   TEXT NOT NULL,
		username   TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS orders_username_idx ON orders (username)`,
}

const seedStatement = `
	INSERT INTO catalogue (shortname, name, description, ingredients, price)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (shortname) DO NOTHING
`

// Apply runs every schema statement in order, then seeds the stock catalogue.
// Existing rows are left untouched.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}

	for _, p := range catalogue.Defaults() {
		if _, err := db.ExecContext(ctx, seedStatement,
			p.Shortname, p.Name, p.Description, p.Ingredients, p.Price); err != nil {
			return fmt.Errorf("seed catalogue %s: %w", p.Shortname, err)
		}
	}
	return nil
}
