package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"logistics-engine/internal/domain"
	"logistics-engine/internal/platform/obs"
	"time"
)

func (s *SQLStore) ListInFlightOrders(ctx context.Context, userID int64) (_ []domain.Order, err error) {
	defer obs.Time(ctx, "repo.ListInFlightOrders")(&err)

	if s.DB == nil {
		return nil, errNilDB
	}

	rows, err := s.DB.QueryContext(ctx, s.q(`
	SELECT id, user_id, vendor_id, source_id, target_id, status, delivery_day, delivery_at
	FROM orders
	WHERE user_id = ? AND status IN (?, ?)
	ORDER BY id;
	`), userID, string(domain.OrderPending), string(domain.OrderShipped))
	if err != nil {
		return nil, fmt.Errorf("list in-flight orders: query orders table: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	index := make(map[int64]int)
	for rows.Next() {
		var o domain.Order
		var status string
		var at sql.NullTime
		if err := rows.Scan(&o.ID, &o.UserID, &o.VendorID, &o.SourceID, &o.TargetID, &status, &o.DeliveryDay, &at); err != nil {
			return nil, fmt.Errorf("list in-flight orders: scan row: %w", err)
		}
		o.Status = domain.OrderStatus(status)
		o.DeliveryAt = timePtr(at)
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list in-flight orders: row iteration: %w", err)
	}
	if len(orders) == 0 {
		return nil, nil
	}

	items, err := s.DB.QueryContext(ctx, s.q(`
	SELECT oi.order_id, oi.product_id, oi.quantity
	FROM order_items oi
	JOIN orders o ON o.id = oi.order_id
	WHERE o.user_id = ? AND o.status IN (?, ?)
	ORDER BY oi.order_id, oi.product_id;
	`), userID, string(domain.OrderPending), string(domain.OrderShipped))
	if err != nil {
		return nil, fmt.Errorf("list in-flight orders: query order_items table: %w", err)
	}
	defer items.Close()

	for items.Next() {
		var orderID int64
		var it domain.OrderItem
		if err := items.Scan(&orderID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("list in-flight orders: scan item: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	if err := items.Err(); err != nil {
		return nil, fmt.Errorf("list in-flight orders: item iteration: %w", err)
	}

	return orders, nil
}

func (s *SQLStore) UpdateDelivery(ctx context.Context, orderID int64, deliveryDay int, deliveryAt *time.Time) error {
	if s.DB == nil {
		return errNilDB
	}

	res, err := s.DB.ExecContext(ctx, s.q(`
	UPDATE orders SET delivery_day = ?, delivery_at = ? WHERE id = ?;
	`), deliveryDay, nullTime(deliveryAt), orderID)
	if err != nil {
		return fmt.Errorf("update order %d: %w", orderID, err)
	}
	return expectRow(res, "update order", orderID)
}

func (s *SQLStore) UnitsOrdered(ctx context.Context, userID, productID int64, fromDay, toDay int) (int, error) {
	if s.DB == nil {
		return 0, errNilDB
	}

	var units int64
	err := s.DB.QueryRowContext(ctx, s.q(`
	SELECT COALESCE(SUM(oi.quantity), 0)
	FROM order_items oi
	JOIN orders o ON o.id = oi.order_id
	WHERE o.user_id = ? AND oi.product_id = ? AND o.status <> ?
		AND o.delivery_day BETWEEN ? AND ?;
	`), userID, productID, string(domain.OrderCancelled), fromDay, toDay).Scan(&units)
	if err != nil {
		return 0, fmt.Errorf("units ordered: user=%d product=%d: %w", userID, productID, err)
	}
	return int(units), nil
}
