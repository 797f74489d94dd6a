package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/errors"
	"github.com/mughouse/mughouse-server/internal/id"
	"github.com/mughouse/mughouse-server/internal/lifecycle"
	"github.com/mughouse/mughouse-server/internal/sse"
	"github.com/mughouse/mughouse-server/internal/store"
	"github.com/mughouse/mughouse-server/internal/validation"
)

// OrderService orchestrates order creation and fulfillment transitions.
// Every order line embeds a write-once product snapshot taken at creation, so
// later catalog changes never alter what an order shows.
type OrderService struct {
	store     store.Store
	guard     *lifecycle.Guard
	events    EventEmitter
	logger    *slog.Logger
	validator *validation.Validator
}

// NewOrderService creates a new order service.
func NewOrderService(st store.Store, events EventEmitter, logger *slog.Logger) *OrderService {
	return &OrderService{
		store:     st,
		guard:     lifecycle.NewGuard(guardCatalog{store: st}, logger),
		events:    events,
		logger:    logger,
		validator: validation.New(),
	}
}

// ListOrders returns a filtered, paginated order listing.
func (s *OrderService) ListOrders(ctx context.Context, filter store.OrderFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.Order], error) {
	params.Validate()
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errors.Validationf("unknown order status %q", filter.Status)
	}
	return s.store.ListOrders(ctx, filter, params)
}

// GetOrder returns a single order with its lines and snapshots.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order "+orderID+" not found")
	}
	return o, nil
}

// OrderItemInput is one requested order line.
type OrderItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0,lte=1000"`
}

// CreateOrderRequest contains fields for creating an order.
type CreateOrderRequest struct {
	CustomerID string           `json:"customer_id" validate:"required"`
	Note       string           `json:"note" validate:"max=2000"`
	Items      []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// CreateOrder creates a pending order for a customer. Only visible products
// can be ordered; each line's unit price and display fields are frozen into a
// snapshot at this moment.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetCustomer(ctx, req.CustomerID); err != nil {
		return nil, notFound(err, "customer "+req.CustomerID+" not found")
	}

	orderID, err := id.Generate("order")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	items := make([]*domain.OrderItem, 0, len(req.Items))
	for _, in := range req.Items {
		p, err := s.store.GetProductAny(ctx, in.ProductID)
		if err != nil {
			return nil, notFound(err, "product "+in.ProductID+" not found")
		}
		if !p.Visible() {
			return nil, errors.Conflictf("product %s is not available for ordering", in.ProductID)
		}

		snap, err := s.guard.Snapshot(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}

		itemID, err := id.Generate("item")
		if err != nil {
			return nil, err
		}
		items = append(items, &domain.OrderItem{
			ID:        itemID,
			OrderID:   orderID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: snap.UnitPrice,
			Snapshot:  *snap,
			CreatedAt: now,
		})
	}

	o := &domain.Order{
		Auditable:  domain.Auditable{ID: orderID},
		CustomerID: req.CustomerID,
		Status:     domain.OrderPending,
		Note:       req.Note,
		Items:      items,
	}
	o.InitTimestamps()

	if err := s.store.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	s.events.Emit(sse.NewOrderCreatedEvent(o))
	s.logger.Info("order created", "id", orderID, "customer", req.CustomerID, "items", len(items), "total", o.Total())
	return o, nil
}

// UpdateOrderStatus moves an order along the fulfillment chain. Illegal
// transitions, including any move out of a terminal status, are rejected.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, next domain.OrderStatus) (*domain.Order, error) {
	if !next.Valid() {
		return nil, errors.Validationf("unknown order status %q", next)
	}

	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !o.Status.CanTransitionTo(next) {
		return nil, errors.InvalidLifecycleState(
			"order " + orderID + " cannot move from " + string(o.Status) + " to " + string(next))
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, next); err != nil {
		return nil, err
	}

	old := o.Status
	o.Status = next
	o.Touch()

	s.events.Emit(sse.NewOrderStatusChangedEvent(orderID, o.CustomerID, old, next))
	s.logger.Info("order status changed", "id", orderID, "from", old, "to", next)
	return o, nil
}
