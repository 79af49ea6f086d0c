package domain

// Per-category delivery performance of a vendor. Rates are fractions in [0,1].
type VendorMetrics struct {
	LateRate      float64
	FillRate      float64
	ComplaintRate float64
}

// Represents a supplier. Reliability is a score in [0,1].
// Metrics are keyed by product category.
type Vendor struct {
	ID          int64
	Name        string
	Reliability float64
	Metrics     map[string]VendorMetrics
}

// Represents a purchasable good.
type Product struct {
	ID             int64
	Name           string
	Category       string
	VendorID       int64
	UnitPriceCents int64
}
