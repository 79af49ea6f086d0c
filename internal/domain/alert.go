package domain

import "time"

type AlertType string

const AlertIsolation AlertType = "isolation"

type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Represents a notification raised for a user about one location.
// SpikeEventID names the probable cause when one is known.
type Alert struct {
	ID           string
	UserID       int64
	LocationID   int64
	Type         AlertType
	Severity     AlertSeverity
	Message      string
	SpikeEventID *int64
	IsResolved   bool
	CreatedAt    time.Time
	ResolvedAt   *time.Time
}
