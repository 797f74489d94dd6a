package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/service"
	"github.com/mughouse/mughouse-server/internal/store"
)

func (s *Server) registerOrderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listOrders",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders",
		Summary:     "List orders",
		Description: "Returns a paginated order listing, filterable by customer and status",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListOrders)

	huma.Register(s.api, huma.Operation{
		OperationID: "createOrder",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders",
		Summary:     "Create order",
		Description: "Creates an order, snapshotting every line item's product state",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOrder",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders/{id}",
		Summary:     "Get order",
		Description: "Returns an order with its line items",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateOrderStatus",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders/{id}/status",
		Summary:     "Update order status",
		Description: "Advances an order along pending, confirmed, shipped, delivered, or cancels it",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateOrderStatus)
}

// === DTOs ===

type SnapshotResponse struct {
	SchemaVersion int       `json:"schema_version" doc:"Snapshot schema version"`
	ProductID     string    `json:"product_id" doc:"Product ID at capture time"`
	Name          string    `json:"name" doc:"Product name at capture time"`
	Slug          string    `json:"slug" doc:"Product slug at capture time"`
	CategoryID    string    `json:"category_id,omitempty" doc:"Category ID at capture time"`
	CategoryName  string    `json:"category_name,omitempty" doc:"Category name at capture time"`
	Color         string    `json:"color,omitempty" doc:"Color at capture time"`
	CapacityML    int       `json:"capacity_ml,omitempty" doc:"Capacity at capture time"`
	Material      string    `json:"material,omitempty" doc:"Material at capture time"`
	UnitPrice     int64     `json:"unit_price" doc:"Unit price at capture time"`
	CapturedAt    time.Time `json:"captured_at" doc:"When the snapshot was taken"`
}

type OrderItemResponse struct {
	ID        string           `json:"id" doc:"Line item ID"`
	ProductID string           `json:"product_id" doc:"Referenced product ID"`
	Quantity  int              `json:"quantity" doc:"Quantity ordered"`
	UnitPrice int64            `json:"unit_price" doc:"Snapshotted unit price"`
	Snapshot  SnapshotResponse `json:"snapshot" doc:"Write-once product snapshot"`
}

type OrderResponse struct {
	ID         string              `json:"id" doc:"Order ID"`
	CustomerID string              `json:"customer_id" doc:"Customer ID"`
	Status     string              `json:"status" doc:"Fulfillment status"`
	Note       string              `json:"note,omitempty" doc:"Free-form note"`
	Items      []OrderItemResponse `json:"items,omitempty" doc:"Line items"`
	Total      int64               `json:"total" doc:"Order total from snapshotted prices"`
	CreatedAt  time.Time           `json:"created_at" doc:"Creation time"`
	UpdatedAt  time.Time           `json:"updated_at" doc:"Last update time"`
}

type ListOrdersInput struct {
	Authorization string `header:"Authorization"`
	CustomerID    string `query:"customer_id" doc:"Filter by customer"`
	Status        string `query:"status" doc:"Filter by status"`
	Limit         int    `query:"limit" doc:"Items per page"`
	Offset        int    `query:"offset" doc:"Rows to skip"`
}

type ListOrdersResponse struct {
	Orders  []OrderResponse `json:"orders" doc:"Page of orders"`
	Total   int             `json:"total" doc:"Total matching orders"`
	HasMore bool            `json:"has_more" doc:"Whether more pages exist"`
}

type ListOrdersOutput struct {
	Body ListOrdersResponse
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required" doc:"Product ID"`
	Quantity  int    `json:"quantity" validate:"required,gt=0" doc:"Quantity ordered"`
}

type CreateOrderRequest struct {
	CustomerID string             `json:"customer_id" validate:"required" doc:"Customer ID"`
	Note       string             `json:"note,omitempty" doc:"Free-form note"`
	Items      []OrderItemRequest `json:"items" validate:"required,min=1" doc:"Line items"`
}

type CreateOrderInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateOrderRequest
}

type OrderOutput struct {
	Body OrderResponse
}

type GetOrderInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Order ID"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required" doc:"Target status"`
}

type UpdateOrderStatusInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Order ID"`
	Body          UpdateOrderStatusRequest
}

// === Handlers ===

func (s *Server) handleListOrders(ctx context.Context, input *ListOrdersInput) (*ListOrdersOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	result, err := s.services.Order.ListOrders(ctx, store.OrderFilter{
		CustomerID: input.CustomerID,
		Status:     domain.OrderStatus(input.Status),
	}, store.PaginationParams{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return nil, err
	}

	resp := make([]OrderResponse, len(result.Items))
	for i, o := range result.Items {
		resp[i] = mapOrderResponse(o)
	}

	return &ListOrdersOutput{Body: ListOrdersResponse{
		Orders:  resp,
		Total:   result.Total,
		HasMore: result.HasMore,
	}}, nil
}

func (s *Server) handleCreateOrder(ctx context.Context, input *CreateOrderInput) (*OrderOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	items := make([]service.OrderItemInput, len(input.Body.Items))
	for i, item := range input.Body.Items {
		items[i] = service.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	o, err := s.services.Order.CreateOrder(ctx, service.CreateOrderRequest{
		CustomerID: input.Body.CustomerID,
		Note:       input.Body.Note,
		Items:      items,
	})
	if err != nil {
		return nil, err
	}

	return &OrderOutput{Body: mapOrderResponse(o)}, nil
}

func (s *Server) handleGetOrder(ctx context.Context, input *GetOrderInput) (*OrderOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	o, err := s.services.Order.GetOrder(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &OrderOutput{Body: mapOrderResponse(o)}, nil
}

func (s *Server) handleUpdateOrderStatus(ctx context.Context, input *UpdateOrderStatusInput) (*OrderOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	o, err := s.services.Order.UpdateOrderStatus(ctx, input.ID, domain.OrderStatus(input.Body.Status))
	if err != nil {
		return nil, err
	}

	return &OrderOutput{Body: mapOrderResponse(o)}, nil
}

// === Mappers ===

func mapOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Snapshot: SnapshotResponse{
				SchemaVersion: item.Snapshot.SchemaVersion,
				ProductID:     item.Snapshot.ProductID,
				Name:          item.Snapshot.Name,
				Slug:          item.Snapshot.Slug,
				CategoryID:    item.Snapshot.CategoryID,
				CategoryName:  item.Snapshot.CategoryName,
				Color:         item.Snapshot.Color,
				CapacityML:    item.Snapshot.CapacityML,
				Material:      item.Snapshot.Material,
				UnitPrice:     item.Snapshot.UnitPrice,
				CapturedAt:    item.Snapshot.CapturedAt,
			},
		}
	}

	return OrderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Status:     string(o.Status),
		Note:       o.Note,
		Items:      items,
		Total:      o.Total(),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}
