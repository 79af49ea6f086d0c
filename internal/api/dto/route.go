package dto

type RouteLegResponse struct {
	RouteID       int64   `json:"route_id"`
	SourceID      int64   `json:"source_id"`
	TargetID      int64   `json:"target_id"`
	Mode          string  `json:"mode"`
	BaseCost      float64 `json:"base_cost"`
	EffectiveCost float64 `json:"effective_cost"`
	TransitDays   int     `json:"transit_days"`
	Capacity      int     `json:"capacity"`
}

type BestRouteResponse struct {
	Found       bool               `json:"found"`
	SourceID    int64              `json:"source_id"`
	TargetID    int64              `json:"target_id"`
	TotalCost   float64            `json:"total_cost"`
	TransitDays int                `json:"transit_days"`
	Capacity    int                `json:"capacity"`
	Legs        []RouteLegResponse `json:"legs"`
}

type ReachabilityResponse struct {
	LocationID int64 `json:"location_id"`
	Reachable  bool  `json:"reachable"`
}
