package ports

import (
	"context"
	"logistics-engine/internal/domain"
	"time"
)

// Port: persisted alerts.
type AlertRepository interface {
	// Return the unresolved alert of the given type for user and location, or nil when none exists.
	FindUnresolved(ctx context.Context, userID, locationID int64, typ domain.AlertType) (*domain.Alert, error)
	// Insert a new alert.
	CreateAlert(ctx context.Context, a domain.Alert) error
	// Mark an alert resolved.
	ResolveAlert(ctx context.Context, alertID string, at time.Time) error
	// Return the user's unresolved alerts ordered by creation time.
	ListUnresolved(ctx context.Context, userID int64) ([]domain.Alert, error)
}

// AlertAction tells subscribers what happened to an alert.
type AlertAction string

const (
	AlertRaised   AlertAction = "raised"
	AlertResolved AlertAction = "resolved"
)

// Contract for pushing alert changes to interested clients.
type AlertNotifier interface {
	Notify(ctx context.Context, action AlertAction, a domain.Alert) error
}
