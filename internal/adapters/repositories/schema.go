package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// The DDL is shared by SQLite and Postgres; types are kept to the subset
// both accept.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		max_storage INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS routes (
		id BIGINT PRIMARY KEY,
		source_id BIGINT NOT NULL REFERENCES locations(id),
		target_id BIGINT NOT NULL REFERENCES locations(id),
		cost DOUBLE PRECISION NOT NULL,
		transit_days INTEGER NOT NULL DEFAULT 0,
		mode TEXT NOT NULL DEFAULT 'truck',
		capacity INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE TABLE IF NOT EXISTS spike_events (
		id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		type TEXT NOT NULL,
		magnitude DOUBLE PRECISION NOT NULL,
		affected_route_id BIGINT,
		affected_location_id BIGINT,
		affected_product_id BIGINT,
		start_day INTEGER NOT NULL,
		end_day INTEGER NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		meta TEXT NOT NULL DEFAULT '{}',
		parent_id BIGINT
	);`,
	`CREATE TABLE IF NOT EXISTS vendors (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		reliability DOUBLE PRECISION NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS vendor_metrics (
		vendor_id BIGINT NOT NULL REFERENCES vendors(id),
		category TEXT NOT NULL,
		late_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		fill_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		complaint_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (vendor_id, category)
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		vendor_id BIGINT NOT NULL,
		unit_price_cents BIGINT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		vendor_id BIGINT NOT NULL,
		source_id BIGINT NOT NULL,
		target_id BIGINT NOT NULL,
		status TEXT NOT NULL,
		delivery_day INTEGER NOT NULL,
		delivery_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_id BIGINT NOT NULL REFERENCES orders(id),
		product_id BIGINT NOT NULL,
		quantity INTEGER NOT NULL,
		PRIMARY KEY (order_id, product_id)
	);`,
	`CREATE TABLE IF NOT EXISTS inventory (
		user_id BIGINT NOT NULL,
		location_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INTEGER NOT NULL,
		PRIMARY KEY (user_id, location_id, product_id)
	);`,
	`CREATE TABLE IF NOT EXISTS balances (
		user_id BIGINT PRIMARY KEY,
		cents BIGINT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS simulation_clock (
		user_id BIGINT PRIMARY KEY,
		current_day INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		location_id BIGINT NOT NULL,
		type TEXT NOT NULL,
		severity TEXT NOT NULL,
		message TEXT NOT NULL,
		spike_event_id BIGINT,
		is_resolved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL,
		resolved_at TIMESTAMP
	);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status);`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_open ON alerts(user_id, location_id, type, is_resolved);`,
}

// Initialize the database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
