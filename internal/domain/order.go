package domain

import "time"

// OrderStatus is the lifecycle status of an order. Transitions are owned by
// the surrounding application; the engine only reads them.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// InFlight reports whether the order can still be delayed.
func (s OrderStatus) InFlight() bool {
	return s == OrderPending || s == OrderShipped
}

type OrderItem struct {
	ProductID int64
	Quantity  int
}

// Represents goods travelling from a vendor-side location to a target location.
// DeliveryDay is the simulated day of arrival; DeliveryAt is the optional
// wall-clock counterpart kept in step with it.
type Order struct {
	ID          int64
	UserID      int64
	VendorID    int64
	SourceID    int64
	TargetID    int64
	Status      OrderStatus
	DeliveryDay int
	DeliveryAt  *time.Time
	Items       []OrderItem
}

// Contains reports whether any line of the order is for productID.
func (o *Order) Contains(productID int64) bool {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// Quantity is the total number of units on the order.
func (o *Order) Quantity() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
