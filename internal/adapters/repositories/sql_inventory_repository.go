package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"logistics-engine/internal/domain"
)

func (s *SQLStore) StockAt(ctx context.Context, userID, locationID int64) (int, error) {
	if s.DB == nil {
		return 0, errNilDB
	}

	var n int64
	err := s.DB.QueryRowContext(ctx, s.q(`
	SELECT COALESCE(SUM(quantity), 0) FROM inventory WHERE user_id = ? AND location_id = ?;
	`), userID, locationID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("stock at: user=%d location=%d: %w", userID, locationID, err)
	}
	return int(n), nil
}

// Balance returns zero for users without a balance row.
func (s *SQLStore) Balance(ctx context.Context, userID int64) (int64, error) {
	if s.DB == nil {
		return 0, errNilDB
	}

	var cents int64
	err := s.DB.QueryRowContext(ctx, s.q(`SELECT cents FROM balances WHERE user_id = ?;`), userID).Scan(&cents)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance: user=%d: %w", userID, err)
	}
	return cents, nil
}

func (s *SQLStore) CurrentDay(ctx context.Context, userID int64) (int, error) {
	if s.DB == nil {
		return 0, errNilDB
	}

	var day int
	err := s.DB.QueryRowContext(ctx, s.q(`SELECT current_day FROM simulation_clock WHERE user_id = ?;`), userID).Scan(&day)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("current day: user=%d: %w", userID, err)
	}
	return day, nil
}

func (s *SQLStore) SetCurrentDay(ctx context.Context, userID int64, day int) error {
	if s.DB == nil {
		return errNilDB
	}

	_, err := s.DB.ExecContext(ctx, s.q(`
	INSERT INTO simulation_clock (user_id, current_day)
	VALUES (?, ?)
	ON CONFLICT (user_id) DO UPDATE SET current_day = excluded.current_day;
	`), userID, day)
	if err != nil {
		return fmt.Errorf("set current day: user=%d: %w", userID, err)
	}
	return nil
}

func (s *SQLStore) GetVendor(ctx context.Context, vendorID int64) (domain.Vendor, error) {
	if s.DB == nil {
		return domain.Vendor{}, errNilDB
	}

	v := domain.Vendor{ID: vendorID}
	err := s.DB.QueryRowContext(ctx, s.q(`SELECT name, reliability FROM vendors WHERE id = ?;`), vendorID).
		Scan(&v.Name, &v.Reliability)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Vendor{}, fmt.Errorf("vendor %d: %w", vendorID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Vendor{}, fmt.Errorf("vendor %d: %w", vendorID, err)
	}

	rows, err := s.DB.QueryContext(ctx, s.q(`
	SELECT category, late_rate, fill_rate, complaint_rate
	FROM vendor_metrics
	WHERE vendor_id = ?;
	`), vendorID)
	if err != nil {
		return domain.Vendor{}, fmt.Errorf("vendor %d: query metrics: %w", vendorID, err)
	}
	defer rows.Close()

	v.Metrics = make(map[string]domain.VendorMetrics)
	for rows.Next() {
		var category string
		var m domain.VendorMetrics
		if err := rows.Scan(&category, &m.LateRate, &m.FillRate, &m.ComplaintRate); err != nil {
			return domain.Vendor{}, fmt.Errorf("vendor %d: scan metrics: %w", vendorID, err)
		}
		v.Metrics[category] = m
	}
	if err := rows.Err(); err != nil {
		return domain.Vendor{}, fmt.Errorf("vendor %d: metrics iteration: %w", vendorID, err)
	}

	return v, nil
}

func (s *SQLStore) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	if s.DB == nil {
		return domain.Product{}, errNilDB
	}

	p := domain.Product{ID: productID}
	err := s.DB.QueryRowContext(ctx, s.q(`
	SELECT name, category, vendor_id, unit_price_cents FROM products WHERE id = ?;
	`), productID).Scan(&p.Name, &p.Category, &p.VendorID, &p.UnitPriceCents)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %d: %w", productID, err)
	}
	return p, nil
}
