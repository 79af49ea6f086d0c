package repositories

import (
	"database/sql"
	"errors"
	"logistics-engine/internal/platform/db"
	"time"
)

var errNilDB = errors.New("sql store: DB is nil")

// SQL-backed implementation of every engine port. Queries are written with
// "?" placeholders and rebound for the configured dialect.
type SQLStore struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLStore(conn *sql.DB, dialect db.Dialect) *SQLStore {
	return &SQLStore{DB: conn, Dialect: dialect}
}

func (s *SQLStore) q(query string) string {
	return db.Rebind(s.Dialect, query)
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}
