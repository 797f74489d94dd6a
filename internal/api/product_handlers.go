package api

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/service"
	"github.com/mughouse/mughouse-server/internal/store"
)

func (s *Server) registerProductRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listProducts",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List products",
		Description: "Returns a paginated, filterable product listing",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListProducts)

	huma.Register(s.api, huma.Operation{
		OperationID: "createProduct",
		Method:      http.MethodPost,
		Path:        "/api/v1/products",
		Summary:     "Create product",
		Description: "Creates a new catalog product",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProduct",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/{id}",
		Summary:     "Get product",
		Description: "Returns a product by ID. Tombstoned products require include_deleted.",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProduct",
		Method:      http.MethodPatch,
		Path:        "/api/v1/products/{id}",
		Summary:     "Update product",
		Description: "Applies partial changes to a product",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteProduct",
		Method:      http.MethodDelete,
		Path:        "/api/v1/products/{id}",
		Summary:     "Delete product",
		Description: "Soft-deletes a product, keeping the row for order history",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreProduct",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/{id}/restore",
		Summary:     "Restore product",
		Description: "Removes a product's tombstone. The product stays inactive until reactivated.",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRestoreProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "purgeProduct",
		Method:      http.MethodDelete,
		Path:        "/api/v1/products/{id}/purge",
		Summary:     "Purge product",
		Description: "Permanently removes a product that was never ordered. Admin only.",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePurgeProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "setProductActive",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/{id}/active",
		Summary:     "Set product visibility",
		Description: "Activates or deactivates a product in the storefront",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetProductActive)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadProductImage",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/{id}/image",
		Summary:     "Upload product image",
		Description: "Stores a product image (JPEG, PNG or WebP) and replaces any previous one",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadProductImage)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProductImageURL",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/{id}/image",
		Summary:     "Get product image URL",
		Description: "Returns a short-lived URL for the product's image",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProductImageURL)
}

// === DTOs ===

type ProductResponse struct {
	ID          string     `json:"id" doc:"Product ID"`
	Name        string     `json:"name" doc:"Product name"`
	Slug        string     `json:"slug" doc:"URL-safe slug, globally unique"`
	Description string     `json:"description,omitempty" doc:"Description"`
	CategoryID  string     `json:"category_id" doc:"Category ID"`
	Color       string     `json:"color,omitempty" doc:"Color"`
	CapacityML  int        `json:"capacity_ml,omitempty" doc:"Capacity in milliliters"`
	Material    string     `json:"material,omitempty" doc:"Material (ceramic, stainless, glass, plastic, bamboo)"`
	UnitPrice   int64      `json:"unit_price" doc:"Unit price in minor currency units"`
	HasImage    bool       `json:"has_image" doc:"Whether an image is attached"`
	IsActive    bool       `json:"is_active" doc:"Storefront visibility"`
	IsDeleted   bool       `json:"is_deleted" doc:"Soft-delete tombstone"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" doc:"When the product was tombstoned"`
	DeletedBy   string     `json:"deleted_by,omitempty" doc:"User who tombstoned the product"`
	CreatedAt   time.Time  `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time  `json:"updated_at" doc:"Last update time"`
}

type ListProductsInput struct {
	Authorization  string `header:"Authorization"`
	CategoryID     string `query:"category_id" doc:"Filter by category"`
	Material       string `query:"material" doc:"Filter by material"`
	Color          string `query:"color" doc:"Filter by color"`
	ActiveOnly     bool   `query:"active_only" doc:"Only storefront-visible products"`
	IncludeDeleted bool   `query:"include_deleted" doc:"Include tombstoned products"`
	Limit          int    `query:"limit" doc:"Items per page"`
	Offset         int    `query:"offset" doc:"Rows to skip"`
}

type ListProductsResponse struct {
	Products []ProductResponse `json:"products" doc:"Page of products"`
	Total    int               `json:"total" doc:"Total matching products"`
	HasMore  bool              `json:"has_more" doc:"Whether more pages exist"`
}

type ListProductsOutput struct {
	Body ListProductsResponse
}

type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120" doc:"Product name"`
	CategoryID  string `json:"category_id" validate:"required" doc:"Category ID"`
	Description string `json:"description,omitempty" doc:"Description"`
	Color       string `json:"color,omitempty" doc:"Color"`
	CapacityML  int    `json:"capacity_ml,omitempty" doc:"Capacity in milliliters"`
	Material    string `json:"material,omitempty" doc:"Material"`
	UnitPrice   int64  `json:"unit_price" validate:"required,gt=0" doc:"Unit price in minor currency units"`
}

type CreateProductInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateProductRequest
}

type ProductOutput struct {
	Body ProductResponse
}

type GetProductInput struct {
	Authorization  string `header:"Authorization"`
	ID             string `path:"id" doc:"Product ID"`
	IncludeDeleted bool   `query:"include_deleted" doc:"Also return tombstoned products"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty" doc:"Product name"`
	CategoryID  *string `json:"category_id,omitempty" doc:"Category ID"`
	Description *string `json:"description,omitempty" doc:"Description"`
	Color       *string `json:"color,omitempty" doc:"Color"`
	CapacityML  *int    `json:"capacity_ml,omitempty" doc:"Capacity in milliliters"`
	Material    *string `json:"material,omitempty" doc:"Material"`
	UnitPrice   *int64  `json:"unit_price,omitempty" doc:"Unit price in minor currency units"`
}

type UpdateProductInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Product ID"`
	Body          UpdateProductRequest
}

type ProductIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Product ID"`
}

type SetProductActiveRequest struct {
	IsActive bool `json:"is_active" doc:"Whether the product is storefront-visible"`
}

type SetProductActiveInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Product ID"`
	Body          SetProductActiveRequest
}

type UploadProductImageInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Product ID"`
	ContentType   string `header:"Content-Type" doc:"Image MIME type"`
	RawBody       []byte
}

type ProductImageURLResponse struct {
	URL string `json:"url" doc:"Short-lived image URL"`
}

type ProductImageURLOutput struct {
	Body ProductImageURLResponse
}

// === Handlers ===

func (s *Server) handleListProducts(ctx context.Context, input *ListProductsInput) (*ListProductsOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	result, err := s.services.Product.ListProducts(ctx, store.ProductFilter{
		CategoryID:     input.CategoryID,
		Material:       input.Material,
		Color:          input.Color,
		ActiveOnly:     input.ActiveOnly,
		IncludeDeleted: input.IncludeDeleted,
	}, store.PaginationParams{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return nil, err
	}

	resp := make([]ProductResponse, len(result.Items))
	for i, p := range result.Items {
		resp[i] = mapProductResponse(p)
	}

	return &ListProductsOutput{Body: ListProductsResponse{
		Products: resp,
		Total:    result.Total,
		HasMore:  result.HasMore,
	}}, nil
}

func (s *Server) handleCreateProduct(ctx context.Context, input *CreateProductInput) (*ProductOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	p, err := s.services.Product.CreateProduct(ctx, service.CreateProductRequest{
		Name:        input.Body.Name,
		CategoryID:  input.Body.CategoryID,
		Description: input.Body.Description,
		Color:       input.Body.Color,
		CapacityML:  input.Body.CapacityML,
		Material:    input.Body.Material,
		UnitPrice:   input.Body.UnitPrice,
	})
	if err != nil {
		return nil, err
	}

	return &ProductOutput{Body: mapProductResponse(p)}, nil
}

func (s *Server) handleGetProduct(ctx context.Context, input *GetProductInput) (*ProductOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	var p *domain.Product
	var err error
	if input.IncludeDeleted {
		p, err = s.services.Product.GetProductAny(ctx, input.ID)
	} else {
		p, err = s.services.Product.GetProduct(ctx, input.ID)
	}
	if err != nil {
		return nil, err
	}

	return &ProductOutput{Body: mapProductResponse(p)}, nil
}

func (s *Server) handleUpdateProduct(ctx context.Context, input *UpdateProductInput) (*ProductOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	p, err := s.services.Product.UpdateProduct(ctx, input.ID, service.UpdateProductRequest{
		Name:        input.Body.Name,
		CategoryID:  input.Body.CategoryID,
		Description: input.Body.Description,
		Color:       input.Body.Color,
		CapacityML:  input.Body.CapacityML,
		Material:    input.Body.Material,
		UnitPrice:   input.Body.UnitPrice,
	})
	if err != nil {
		return nil, err
	}

	return &ProductOutput{Body: mapProductResponse(p)}, nil
}

func (s *Server) handleDeleteProduct(ctx context.Context, input *ProductIDInput) (*MessageOutput, error) {
	claims, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Product.DeleteProduct(ctx, input.ID, claims.UserID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Product deleted"}}, nil
}

func (s *Server) handleRestoreProduct(ctx context.Context, input *ProductIDInput) (*ProductOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	p, err := s.services.Product.RestoreProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ProductOutput{Body: mapProductResponse(p)}, nil
}

func (s *Server) handlePurgeProduct(ctx context.Context, input *ProductIDInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Product.PurgeProduct(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Product purged"}}, nil
}

func (s *Server) handleSetProductActive(ctx context.Context, input *SetProductActiveInput) (*ProductOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	p, err := s.services.Product.SetProductActive(ctx, input.ID, input.Body.IsActive)
	if err != nil {
		return nil, err
	}

	return &ProductOutput{Body: mapProductResponse(p)}, nil
}

func (s *Server) handleUploadProductImage(ctx context.Context, input *UploadProductImageInput) (*ProductOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	p, err := s.services.Product.AttachImage(ctx, input.ID, input.ContentType, bytes.NewReader(input.RawBody))
	if err != nil {
		return nil, err
	}

	return &ProductOutput{Body: mapProductResponse(p)}, nil
}

func (s *Server) handleGetProductImageURL(ctx context.Context, input *ProductIDInput) (*ProductImageURLOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	p, err := s.services.Product.GetProductAny(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	url, err := s.services.Product.ImageURL(ctx, p)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, huma.Error404NotFound("Product has no image")
	}

	return &ProductImageURLOutput{Body: ProductImageURLResponse{URL: url}}, nil
}

// === Mappers ===

func mapProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		Color:       p.Color,
		CapacityML:  p.CapacityML,
		Material:    p.Material,
		UnitPrice:   p.UnitPrice,
		HasImage:    p.ImagePath != "",
		IsActive:    p.IsActive,
		IsDeleted:   p.IsDeleted,
		DeletedAt:   p.DeletedAt,
		DeletedBy:   p.DeletedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
