// Package sse implements Server-Sent Events for real-time catalog updates and event broadcasting.
package sse

import (
	"time"

	"github.com/mughouse/mughouse-server/internal/domain"
)

// The admin UI is the only SSE consumer. Mutations flow through the normal
// request/response API; SSE keeps other open admin sessions in sync without
// polling.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventProductCreated represents a product creation event.
	EventProductCreated EventType = "product.created"
	// EventProductUpdated represents a product update event.
	EventProductUpdated EventType = "product.updated"
	// EventProductDeleted represents a product soft-delete event.
	EventProductDeleted EventType = "product.deleted"
	// EventProductRestored represents a tombstoned product being restored.
	EventProductRestored EventType = "product.restored"
	// EventProductPurged represents a product row being permanently removed.
	EventProductPurged EventType = "product.purged"

	// EventCategoryCreated represents a category creation event.
	EventCategoryCreated EventType = "category.created"
	// EventCategoryUpdated represents a category update, including moves.
	EventCategoryUpdated EventType = "category.updated"
	// EventCategoryDeleted represents a category deletion event.
	EventCategoryDeleted EventType = "category.deleted"

	// EventCustomerCreated represents a customer creation event.
	EventCustomerCreated EventType = "customer.created"
	// EventCustomerUpdated represents a customer update event.
	EventCustomerUpdated EventType = "customer.updated"
	// EventCustomerDeleted represents a customer deletion event.
	EventCustomerDeleted EventType = "customer.deleted"

	// EventOrderCreated represents an order creation event.
	EventOrderCreated EventType = "order.created"
	// EventOrderStatusChanged represents an order status transition.
	EventOrderStatusChanged EventType = "order.status_changed"

	// EventReindexStarted represents a search reindex start event.
	// Only sent to admin users.
	EventReindexStarted EventType = "search.reindex_started"
	// EventReindexComplete represents a search reindex completion event.
	// Only sent to admin users.
	EventReindexComplete EventType = "search.reindex_completed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`

	// When set, the event is only delivered to this user's clients.
	// Empty string means broadcast to all.
	UserID string `json:"-"` // Filter to specific user (not sent to client)
}

// ProductEventData is the data payload for product events.
type ProductEventData struct {
	Product *domain.Product `json:"product"`
}

// ProductDeletedEventData is the data payload for product delete and purge events.
type ProductDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	ProductID string    `json:"product_id"`
	DeletedBy string    `json:"deleted_by,omitempty"`
}

// CategoryEventData is the data payload for category events.
type CategoryEventData struct {
	Category *domain.Category `json:"category"`
}

// CategoryDeletedEventData is the data payload for category delete events.
type CategoryDeletedEventData struct {
	DeletedAt  time.Time `json:"deleted_at"`
	CategoryID string    `json:"category_id"`
}

// CustomerEventData is the data payload for customer events.
type CustomerEventData struct {
	Customer *domain.Customer `json:"customer"`
}

// CustomerDeletedEventData is the data payload for customer delete events.
type CustomerDeletedEventData struct {
	DeletedAt  time.Time `json:"deleted_at"`
	CustomerID string    `json:"customer_id"`
}

// OrderEventData is the data payload for order creation events.
type OrderEventData struct {
	Order *domain.Order `json:"order"`
}

// OrderStatusEventData is the data payload for order status change events.
type OrderStatusEventData struct {
	OrderID    string             `json:"order_id"`
	CustomerID string             `json:"customer_id"`
	OldStatus  domain.OrderStatus `json:"old_status"`
	NewStatus  domain.OrderStatus `json:"new_status"`
}

// ReindexStartedEventData is the data payload for reindex start events.
type ReindexStartedEventData struct {
	StartedAt time.Time `json:"started_at"`
}

// ReindexCompleteEventData is the data payload for reindex complete events.
type ReindexCompleteEventData struct {
	CompletedAt time.Time `json:"completed_at"`
	Documents   int       `json:"documents"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewProductCreatedEvent creates a product.created event.
func NewProductCreatedEvent(product *domain.Product) Event {
	return Event{
		Type:      EventProductCreated,
		Data:      ProductEventData{Product: product},
		Timestamp: time.Now(),
	}
}

// NewProductUpdatedEvent creates a product.updated event.
func NewProductUpdatedEvent(product *domain.Product) Event {
	return Event{
		Type:      EventProductUpdated,
		Data:      ProductEventData{Product: product},
		Timestamp: time.Now(),
	}
}

// NewProductDeletedEvent creates a product.deleted event.
func NewProductDeletedEvent(productID, deletedBy string, deletedAt time.Time) Event {
	return Event{
		Type: EventProductDeleted,
		Data: ProductDeletedEventData{
			ProductID: productID,
			DeletedBy: deletedBy,
			DeletedAt: deletedAt,
		},
		Timestamp: time.Now(),
	}
}

// NewProductRestoredEvent creates a product.restored event.
func NewProductRestoredEvent(product *domain.Product) Event {
	return Event{
		Type:      EventProductRestored,
		Data:      ProductEventData{Product: product},
		Timestamp: time.Now(),
	}
}

// NewProductPurgedEvent creates a product.purged event.
func NewProductPurgedEvent(productID string) Event {
	return Event{
		Type: EventProductPurged,
		Data: ProductDeletedEventData{
			ProductID: productID,
			DeletedAt: time.Now(),
		},
		Timestamp: time.Now(),
	}
}

// NewCategoryCreatedEvent creates a category.created event.
func NewCategoryCreatedEvent(category *domain.Category) Event {
	return Event{
		Type:      EventCategoryCreated,
		Data:      CategoryEventData{Category: category},
		Timestamp: time.Now(),
	}
}

// NewCategoryUpdatedEvent creates a category.updated event.
// Also used for moves, which change parent_id.
func NewCategoryUpdatedEvent(category *domain.Category) Event {
	return Event{
		Type:      EventCategoryUpdated,
		Data:      CategoryEventData{Category: category},
		Timestamp: time.Now(),
	}
}

// NewCategoryDeletedEvent creates a category.deleted event.
func NewCategoryDeletedEvent(categoryID string) Event {
	return Event{
		Type: EventCategoryDeleted,
		Data: CategoryDeletedEventData{
			CategoryID: categoryID,
			DeletedAt:  time.Now(),
		},
		Timestamp: time.Now(),
	}
}

// NewCustomerCreatedEvent creates a customer.created event.
func NewCustomerCreatedEvent(customer *domain.Customer) Event {
	return Event{
		Type:      EventCustomerCreated,
		Data:      CustomerEventData{Customer: customer},
		Timestamp: time.Now(),
	}
}

// NewCustomerUpdatedEvent creates a customer.updated event.
func NewCustomerUpdatedEvent(customer *domain.Customer) Event {
	return Event{
		Type:      EventCustomerUpdated,
		Data:      CustomerEventData{Customer: customer},
		Timestamp: time.Now(),
	}
}

// NewCustomerDeletedEvent creates a customer.deleted event.
func NewCustomerDeletedEvent(customerID string) Event {
	return Event{
		Type: EventCustomerDeleted,
		Data: CustomerDeletedEventData{
			CustomerID: customerID,
			DeletedAt:  time.Now(),
		},
		Timestamp: time.Now(),
	}
}

// NewOrderCreatedEvent creates an order.created event.
func NewOrderCreatedEvent(order *domain.Order) Event {
	return Event{
		Type:      EventOrderCreated,
		Data:      OrderEventData{Order: order},
		Timestamp: time.Now(),
	}
}

// NewOrderStatusChangedEvent creates an order.status_changed event.
func NewOrderStatusChangedEvent(orderID, customerID string, oldStatus, newStatus domain.OrderStatus) Event {
	return Event{
		Type: EventOrderStatusChanged,
		Data: OrderStatusEventData{
			OrderID:    orderID,
			CustomerID: customerID,
			OldStatus:  oldStatus,
			NewStatus:  newStatus,
		},
		Timestamp: time.Now(),
	}
}

// NewReindexStartedEvent creates a search.reindex_started event.
func NewReindexStartedEvent() Event {
	return Event{
		Type: EventReindexStarted,
		Data: ReindexStartedEventData{
			StartedAt: time.Now(),
		},
		Timestamp: time.Now(),
	}
}

// NewReindexCompleteEvent creates a search.reindex_completed event.
func NewReindexCompleteEvent(documents int) Event {
	return Event{
		Type: EventReindexComplete,
		Data: ReindexCompleteEventData{
			CompletedAt: time.Now(),
			Documents:   documents,
		},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
