package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"logistics-engine/internal/domain"
	"time"
)

const alertColumns = `id, user_id, location_id, type, severity, message, spike_event_id, is_resolved, created_at, resolved_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(r rowScanner) (domain.Alert, error) {
	var a domain.Alert
	var typ, severity string
	var spike sql.NullInt64
	var resolved sql.NullTime
	err := r.Scan(&a.ID, &a.UserID, &a.LocationID, &typ, &severity, &a.Message, &spike, &a.IsResolved, &a.CreatedAt, &resolved)
	if err != nil {
		return domain.Alert{}, err
	}
	a.Type = domain.AlertType(typ)
	a.Severity = domain.AlertSeverity(severity)
	a.SpikeEventID = idPtr(spike)
	a.ResolvedAt = timePtr(resolved)
	return a, nil
}

func (s *SQLStore) FindUnresolved(ctx context.Context, userID, locationID int64, typ domain.AlertType) (*domain.Alert, error) {
	if s.DB == nil {
		return nil, errNilDB
	}

	row := s.DB.QueryRowContext(ctx, s.q(`
	SELECT `+alertColumns+`
	FROM alerts
	WHERE user_id = ? AND location_id = ? AND type = ? AND is_resolved = ?
	ORDER BY created_at
	LIMIT 1;
	`), userID, locationID, string(typ), false)

	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find unresolved alert: user=%d location=%d: %w", userID, locationID, err)
	}
	return &a, nil
}

func (s *SQLStore) CreateAlert(ctx context.Context, a domain.Alert) error {
	if s.DB == nil {
		return errNilDB
	}

	_, err := s.DB.ExecContext(ctx, s.q(`
	INSERT INTO alerts (`+alertColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`), a.ID, a.UserID, a.LocationID, string(a.Type), string(a.Severity), a.Message,
		nullID(a.SpikeEventID), a.IsResolved, a.CreatedAt.UTC(), nullTime(a.ResolvedAt))
	if err != nil {
		return fmt.Errorf("create alert %s: %w", a.ID, err)
	}
	return nil
}

func (s *SQLStore) ResolveAlert(ctx context.Context, alertID string, at time.Time) error {
	if s.DB == nil {
		return errNilDB
	}

	res, err := s.DB.ExecContext(ctx, s.q(`
	UPDATE alerts SET is_resolved = ?, resolved_at = ? WHERE id = ?;
	`), true, at.UTC(), alertID)
	if err != nil {
		return fmt.Errorf("resolve alert %s: %w", alertID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve alert %s: rows affected: %w", alertID, err)
	}
	if n == 0 {
		return fmt.Errorf("resolve alert %s: %w", alertID, domain.ErrNotFound)
	}
	return nil
}

func (s *SQLStore) ListUnresolved(ctx context.Context, userID int64) ([]domain.Alert, error) {
	if s.DB == nil {
		return nil, errNilDB
	}

	rows, err := s.DB.QueryContext(ctx, s.q(`
	SELECT `+alertColumns+`
	FROM alerts
	WHERE user_id = ? AND is_resolved = ?
	ORDER BY created_at, id;
	`), userID, false)
	if err != nil {
		return nil, fmt.Errorf("list unresolved alerts: query alerts table: %w", err)
	}
	defer rows.Close()

	var out []domain.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("list unresolved alerts: scan row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list unresolved alerts: row iteration: %w", err)
	}
	return out, nil
}
