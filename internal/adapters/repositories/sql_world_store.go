package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"logistics-engine/internal/domain"
	"logistics-engine/internal/platform/obs"
)

func (s *SQLStore) ListLocations(ctx context.Context) (_ []domain.Location, err error) {
	defer obs.Time(ctx, "repo.ListLocations")(&err)

	if s.DB == nil {
		return nil, errNilDB
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, name, type, max_storage
	FROM locations
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list locations: query locations table: %w", err)
	}
	defer rows.Close()

	locs := make([]domain.Location, 0, 64)
	for rows.Next() {
		var l domain.Location
		var typ string
		if err := rows.Scan(&l.ID, &l.Name, &typ, &l.MaxStorage); err != nil {
			return nil, fmt.Errorf("list locations: scan row: %w", err)
		}
		l.Type = domain.LocationType(typ)
		locs = append(locs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locations: row iteration: %w", err)
	}

	return locs, nil
}

func (s *SQLStore) ListRoutes(ctx context.Context) (_ []domain.Route, err error) {
	defer obs.Time(ctx, "repo.ListRoutes")(&err)

	if s.DB == nil {
		return nil, errNilDB
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, source_id, target_id, cost, transit_days, mode, capacity, is_active
	FROM routes
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list routes: query routes table: %w", err)
	}
	defer rows.Close()

	routes := make([]domain.Route, 0, 128)
	for rows.Next() {
		var r domain.Route
		var mode string
		if err := rows.Scan(&r.ID, &r.SourceID, &r.TargetID, &r.Cost, &r.TransitDays, &mode, &r.Capacity, &r.IsActive); err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		r.Mode = domain.TransportMode(mode)
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	return routes, nil
}

func (s *SQLStore) UpdateRouteActive(ctx context.Context, routeID int64, active bool) error {
	if s.DB == nil {
		return errNilDB
	}

	res, err := s.DB.ExecContext(ctx, s.q(`UPDATE routes SET is_active = ? WHERE id = ?;`), active, routeID)
	if err != nil {
		return fmt.Errorf("update route %d: %w", routeID, err)
	}
	return expectRow(res, "update route", routeID)
}

func (s *SQLStore) UpdateLocationStorage(ctx context.Context, locationID int64, maxStorage int) error {
	if s.DB == nil {
		return errNilDB
	}

	res, err := s.DB.ExecContext(ctx, s.q(`UPDATE locations SET max_storage = ? WHERE id = ?;`), maxStorage, locationID)
	if err != nil {
		return fmt.Errorf("update location %d: %w", locationID, err)
	}
	return expectRow(res, "update location", locationID)
}

func expectRow(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, domain.ErrNotFound)
	}
	return nil
}

func (s *SQLStore) ListSpikeEvents(ctx context.Context) (_ []domain.SpikeEvent, err error) {
	defer obs.Time(ctx, "repo.ListSpikeEvents")(&err)

	if s.DB == nil {
		return nil, errNilDB
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, user_id, type, magnitude, affected_route_id, affected_location_id,
		affected_product_id, start_day, end_day, is_active, meta, parent_id
	FROM spike_events
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list spike events: query spike_events table: %w", err)
	}
	defer rows.Close()

	var events []domain.SpikeEvent
	for rows.Next() {
		var e domain.SpikeEvent
		var typ, meta string
		var route, loc, product, parent sql.NullInt64
		err := rows.Scan(&e.ID, &e.UserID, &typ, &e.Magnitude, &route, &loc,
			&product, &e.StartDay, &e.EndDay, &e.IsActive, &meta, &parent)
		if err != nil {
			return nil, fmt.Errorf("list spike events: scan row: %w", err)
		}
		e.Type = domain.SpikeType(typ)
		e.AffectedRouteID = idPtr(route)
		e.AffectedLocationID = idPtr(loc)
		e.AffectedProductID = idPtr(product)
		e.ParentID = idPtr(parent)
		if meta != "" && meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &e.Meta); err != nil {
				return nil, fmt.Errorf("list spike events: decode meta of event %d: %w", e.ID, err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list spike events: row iteration: %w", err)
	}

	return events, nil
}

func (s *SQLStore) SaveSpikeEvent(ctx context.Context, e domain.SpikeEvent) error {
	if s.DB == nil {
		return errNilDB
	}
	return saveSpikeEvent(ctx, s.DB, s.q, e)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveSpikeEvent(ctx context.Context, ex execer, q func(string) string, e domain.SpikeEvent) error {
	meta := []byte("{}")
	if len(e.Meta) > 0 {
		b, err := json.Marshal(e.Meta)
		if err != nil {
			return fmt.Errorf("save spike event %d: encode meta: %w", e.ID, err)
		}
		meta = b
	}

	_, err := ex.ExecContext(ctx, q(`
	INSERT INTO spike_events (
		id, user_id, type, magnitude, affected_route_id, affected_location_id,
		affected_product_id, start_day, end_day, is_active, meta, parent_id
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET is_active = excluded.is_active,
		meta = excluded.meta,
		parent_id = excluded.parent_id,
		magnitude = excluded.magnitude,
		start_day = excluded.start_day,
		end_day = excluded.end_day;
	`), e.ID, e.UserID, string(e.Type), e.Magnitude, nullID(e.AffectedRouteID), nullID(e.AffectedLocationID),
		nullID(e.AffectedProductID), e.StartDay, e.EndDay, e.IsActive, string(meta), nullID(e.ParentID))
	if err != nil {
		return fmt.Errorf("save spike event %d: %w", e.ID, err)
	}
	return nil
}
