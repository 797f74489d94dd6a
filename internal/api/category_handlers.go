package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns all categories ordered for tree assembly",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories",
		Summary:     "Create category",
		Description: "Creates a new category under an optional parent",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategory",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Get category",
		Description: "Returns a category by ID",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCategory",
		Method:      http.MethodPatch,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Update category",
		Description: "Applies partial changes to a category",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCategory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Delete category",
		Description: "Deletes an empty category",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategoryChildren",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}/children",
		Summary:     "Get category children",
		Description: "Returns direct children of a category",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCategoryChildren)

	huma.Register(s.api, huma.Operation{
		OperationID: "moveCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories/{id}/move",
		Summary:     "Move category",
		Description: "Re-parents a category within the tree",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMoveCategory)
}

// === DTOs ===

type CategoryResponse struct {
	ID          string    `json:"id" doc:"Category ID"`
	Name        string    `json:"name" doc:"Display name"`
	Slug        string    `json:"slug" doc:"URL-safe slug, globally unique"`
	Description string    `json:"description,omitempty" doc:"Description"`
	ParentID    string    `json:"parent_id,omitempty" doc:"Parent category ID (empty for root)"`
	SortOrder   int       `json:"sort_order" doc:"Manual ordering within siblings"`
	IsActive    bool      `json:"is_active" doc:"Hidden from the storefront when false"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

type ListCategoriesInput struct {
	Authorization string `header:"Authorization"`
}

type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories" doc:"List of categories"`
}

type ListCategoriesOutput struct {
	Body ListCategoriesResponse
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100" doc:"Category name"`
	ParentID    string `json:"parent_id,omitempty" doc:"Parent category ID"`
	Description string `json:"description,omitempty" doc:"Description"`
	SortOrder   int    `json:"sort_order,omitempty" doc:"Sort order"`
}

type CreateCategoryInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateCategoryRequest
}

type CategoryOutput struct {
	Body CategoryResponse
}

type GetCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Category ID"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" doc:"Category name"`
	Description *string `json:"description,omitempty" doc:"Description"`
	SortOrder   *int    `json:"sort_order,omitempty" doc:"Sort order"`
	IsActive    *bool   `json:"is_active,omitempty" doc:"Storefront visibility"`
}

type UpdateCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Category ID"`
	Body          UpdateCategoryRequest
}

type DeleteCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Category ID"`
}

type MoveCategoryRequest struct {
	NewParentID string `json:"new_parent_id" doc:"New parent category ID (empty for root)"`
}

type MoveCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Category ID"`
	Body          MoveCategoryRequest
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, input *ListCategoriesInput) (*ListCategoriesOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	categories, err := s.services.Category.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	return &ListCategoriesOutput{Body: ListCategoriesResponse{Categories: mapCategoryResponses(categories)}}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Category.CreateCategory(ctx, service.CreateCategoryRequest{
		Name:        input.Body.Name,
		ParentID:    input.Body.ParentID,
		Description: input.Body.Description,
		SortOrder:   input.Body.SortOrder,
	})
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}

func (s *Server) handleGetCategory(ctx context.Context, input *GetCategoryInput) (*CategoryOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Category.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}

func (s *Server) handleUpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*CategoryOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Category.UpdateCategory(ctx, input.ID, service.UpdateCategoryRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		SortOrder:   input.Body.SortOrder,
		IsActive:    input.Body.IsActive,
	})
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *DeleteCategoryInput) (*MessageOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Category.DeleteCategory(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Category deleted"}}, nil
}

func (s *Server) handleGetCategoryChildren(ctx context.Context, input *GetCategoryInput) (*ListCategoriesOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	children, err := s.services.Category.GetCategoryChildren(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ListCategoriesOutput{Body: ListCategoriesResponse{Categories: mapCategoryResponses(children)}}, nil
}

func (s *Server) handleMoveCategory(ctx context.Context, input *MoveCategoryInput) (*CategoryOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Category.MoveCategory(ctx, input.ID, input.Body.NewParentID)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}

// === Mappers ===

func mapCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ParentID:    c.ParentID,
		SortOrder:   c.SortOrder,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func mapCategoryResponses(categories []*domain.Category) []CategoryResponse {
	resp := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = mapCategoryResponse(c)
	}
	return resp
}
