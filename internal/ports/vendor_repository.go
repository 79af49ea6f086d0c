package ports

import (
	"context"
	"logistics-engine/internal/domain"
)

// Port: vendor and product catalogue used by pricing.
type VendorRepository interface {
	// Return the vendor with its per-category metrics, or domain.ErrNotFound.
	GetVendor(ctx context.Context, vendorID int64) (domain.Vendor, error)
	// Return the product, or domain.ErrNotFound.
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
}
