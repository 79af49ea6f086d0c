package repositories

import (
	"context"
	"fmt"
	"logistics-engine/internal/adapters/worldfile"
)

// ImportSnapshot upserts a world file into the database in one transaction.
// Rows already present are overwritten; rows absent from the file are kept.
func (s *SQLStore) ImportSnapshot(ctx context.Context, snap *worldfile.Snapshot) error {
	if s.DB == nil {
		return errNilDB
	}
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import snapshot: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range snap.DomainLocations() {
		_, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO locations (id, name, type, max_storage)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name, type = excluded.type, max_storage = excluded.max_storage;
		`), l.ID, l.Name, string(l.Type), l.MaxStorage)
		if err != nil {
			return fmt.Errorf("import snapshot: location %d: %w", l.ID, err)
		}
	}

	for _, r := range snap.DomainRoutes() {
		_, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO routes (id, source_id, target_id, cost, transit_days, mode, capacity, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET source_id = excluded.source_id,
			target_id = excluded.target_id,
			cost = excluded.cost,
			transit_days = excluded.transit_days,
			mode = excluded.mode,
			capacity = excluded.capacity,
			is_active = excluded.is_active;
		`), r.ID, r.SourceID, r.TargetID, r.Cost, r.TransitDays, string(r.Mode), r.Capacity, r.IsActive)
		if err != nil {
			return fmt.Errorf("import snapshot: route %d: %w", r.ID, err)
		}
	}

	for _, v := range snap.DomainVendors() {
		_, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO vendors (id, name, reliability)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, reliability = excluded.reliability;
		`), v.ID, v.Name, v.Reliability)
		if err != nil {
			return fmt.Errorf("import snapshot: vendor %d: %w", v.ID, err)
		}
		for category, m := range v.Metrics {
			_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO vendor_metrics (vendor_id, category, late_rate, fill_rate, complaint_rate)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (vendor_id, category) DO UPDATE
			SET late_rate = excluded.late_rate,
				fill_rate = excluded.fill_rate,
				complaint_rate = excluded.complaint_rate;
			`), v.ID, category, m.LateRate, m.FillRate, m.ComplaintRate)
			if err != nil {
				return fmt.Errorf("import snapshot: vendor %d metrics %q: %w", v.ID, category, err)
			}
		}
	}

	for _, p := range snap.DomainProducts() {
		_, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO products (id, name, category, vendor_id, unit_price_cents)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name,
			category = excluded.category,
			vendor_id = excluded.vendor_id,
			unit_price_cents = excluded.unit_price_cents;
		`), p.ID, p.Name, p.Category, p.VendorID, p.UnitPriceCents)
		if err != nil {
			return fmt.Errorf("import snapshot: product %d: %w", p.ID, err)
		}
	}

	for _, e := range snap.DomainSpikes() {
		if err := saveSpikeEvent(ctx, tx, s.q, e); err != nil {
			return fmt.Errorf("import snapshot: %w", err)
		}
	}

	for _, o := range snap.DomainOrders() {
		_, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO orders (id, user_id, vendor_id, source_id, target_id, status, delivery_day, delivery_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET status = excluded.status,
			delivery_day = excluded.delivery_day,
			delivery_at = excluded.delivery_at;
		`), o.ID, o.UserID, o.VendorID, o.SourceID, o.TargetID, string(o.Status), o.DeliveryDay, nullTime(o.DeliveryAt))
		if err != nil {
			return fmt.Errorf("import snapshot: order %d: %w", o.ID, err)
		}
		for _, it := range o.Items {
			_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO order_items (order_id, product_id, quantity)
			VALUES (?, ?, ?)
			ON CONFLICT (order_id, product_id) DO UPDATE SET quantity = excluded.quantity;
			`), o.ID, it.ProductID, it.Quantity)
			if err != nil {
				return fmt.Errorf("import snapshot: order %d item %d: %w", o.ID, it.ProductID, err)
			}
		}
	}

	for _, st := range snap.Stock {
		_, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO inventory (user_id, location_id, product_id, quantity)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, location_id, product_id) DO UPDATE SET quantity = excluded.quantity;
		`), st.UserID, st.LocationID, st.ProductID, st.Quantity)
		if err != nil {
			return fmt.Errorf("import snapshot: stock user=%d location=%d: %w", st.UserID, st.LocationID, err)
		}
	}

	for _, b := range snap.Balances {
		_, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO balances (user_id, cents)
		VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET cents = excluded.cents;
		`), b.UserID, b.Cents)
		if err != nil {
			return fmt.Errorf("import snapshot: balance user=%d: %w", b.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import snapshot: commit tx: %w", err)
	}
	return nil
}
