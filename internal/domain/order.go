package domain

import "time"

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

// Order statuses.
const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to next.
// Orders progress pending -> confirmed -> shipped -> delivered; any
// non-terminal status may be cancelled.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if next == OrderCancelled {
		return s != OrderDelivered && s != OrderCancelled
	}
	switch s {
	case OrderPending:
		return next == OrderConfirmed
	case OrderConfirmed:
		return next == OrderShipped
	case OrderShipped:
		return next == OrderDelivered
	}
	return false
}

// Order is a customer purchase. Orders are the immutable historical records
// that pin product state: every line item embeds a write-once snapshot.
type Order struct {
	Auditable
	CustomerID string       `json:"customer_id"`
	Status     OrderStatus  `json:"status"`
	Note       string       `json:"note,omitempty"`
	Items      []*OrderItem `json:"items,omitempty"`
}

// Total returns the order total in minor currency units, computed from the
// snapshotted unit prices so historical totals never drift.
func (o *Order) Total() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// OrderItem is one line of an order. The referenced product may be renamed,
// deactivated, or tombstoned later; Snapshot preserves what was sold.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice int64           `json:"unit_price"` // copied from the snapshot at creation
	Snapshot  ProductSnapshot `json:"snapshot"`
	CreatedAt time.Time       `json:"created_at"`
}
