package dto

type PriceMultiplierResponse struct {
	UserID      int64   `json:"user_id"`
	ProductID   int64   `json:"product_id"`
	VendorID    int64   `json:"vendor_id"`
	Multiplier  float64 `json:"multiplier"`
	Reliability float64 `json:"reliability_factor"`
	Metrics     float64 `json:"metrics_factor"`
	Spikes      float64 `json:"spike_factor"`
	Demand      float64 `json:"demand_factor"`
}

type QuoteRequest struct {
	UserID    int64 `json:"user_id"`
	VendorID  int64 `json:"vendor_id"`
	ProductID int64 `json:"product_id"`
	SourceID  int64 `json:"source_id"`
	TargetID  int64 `json:"target_id"`
	Quantity  int   `json:"quantity"`
}

type QuoteResponse struct {
	OK            bool               `json:"ok"`
	Problems      []string           `json:"problems"`
	Route         *BestRouteResponse `json:"route"`
	Capacity      int                `json:"capacity"`
	Multiplier    float64            `json:"multiplier"`
	GoodsCents    int64              `json:"goods_cents"`
	ShippingCents int64              `json:"shipping_cents"`
	TotalCents    int64              `json:"total_cents"`
}
