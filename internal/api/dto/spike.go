package dto

import "time"

type CreateSpikeRequest struct {
	ID                 int64   `json:"id"`
	UserID             int64   `json:"user_id"`
	Type               string  `json:"type"`
	Magnitude          float64 `json:"magnitude"`
	AffectedRouteID    *int64  `json:"affected_route_id"`
	AffectedLocationID *int64  `json:"affected_location_id"`
	AffectedProductID  *int64  `json:"affected_product_id"`
	StartDay           int     `json:"start_day"`
	EndDay             int     `json:"end_day"`
	ParentID           *int64  `json:"parent_id"`
}

type SpikeResponse struct {
	ID                 int64          `json:"id"`
	UserID             int64          `json:"user_id"`
	Type               string         `json:"type"`
	Magnitude          float64        `json:"magnitude"`
	AffectedRouteID    *int64         `json:"affected_route_id,omitempty"`
	AffectedLocationID *int64         `json:"affected_location_id,omitempty"`
	AffectedProductID  *int64         `json:"affected_product_id,omitempty"`
	StartDay           int            `json:"start_day"`
	EndDay             int            `json:"end_day"`
	IsActive           bool           `json:"is_active"`
	ParentID           *int64         `json:"parent_id,omitempty"`
	Meta               map[string]any `json:"meta,omitempty"`
}

type AlertResponse struct {
	ID           string     `json:"id"`
	LocationID   int64      `json:"location_id"`
	Type         string     `json:"type"`
	Severity     string     `json:"severity"`
	Message      string     `json:"message"`
	SpikeEventID *int64     `json:"spike_event_id,omitempty"`
	IsResolved   bool       `json:"is_resolved"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

type IsolationResponse struct {
	StoresChecked int             `json:"stores_checked"`
	Raised        []AlertResponse `json:"raised"`
	Resolved      []AlertResponse `json:"resolved"`
}

type ListAlertsResponse struct {
	Alerts []AlertResponse `json:"alerts"`
}

type DayAdvanceResponse struct {
	UserID     int64             `json:"user_id"`
	Day        int               `json:"day"`
	Applied    []int64           `json:"applied"`
	RolledBack []int64           `json:"rolled_back"`
	Isolation  IsolationResponse `json:"isolation"`
}
