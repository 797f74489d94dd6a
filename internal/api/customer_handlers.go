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

func (s *Server) registerCustomerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCustomers",
		Method:      http.MethodGet,
		Path:        "/api/v1/customers",
		Summary:     "List customers",
		Description: "Returns a paginated customer listing. A q parameter searches by name instead.",
		Tags:        []string{"Customers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCustomers)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCustomer",
		Method:      http.MethodPost,
		Path:        "/api/v1/customers",
		Summary:     "Create customer",
		Description: "Creates a customer with an optional initial phone book",
		Tags:        []string{"Customers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCustomer)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCustomer",
		Method:      http.MethodGet,
		Path:        "/api/v1/customers/{id}",
		Summary:     "Get customer",
		Description: "Returns a customer with their phone book",
		Tags:        []string{"Customers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCustomer)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCustomer",
		Method:      http.MethodPatch,
		Path:        "/api/v1/customers/{id}",
		Summary:     "Update customer",
		Description: "Applies partial changes to a customer's own fields",
		Tags:        []string{"Customers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCustomer)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCustomer",
		Method:      http.MethodDelete,
		Path:        "/api/v1/customers/{id}",
		Summary:     "Delete customer",
		Description: "Deletes a customer without order history",
		Tags:        []string{"Customers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCustomer)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCustomerPhones",
		Method:      http.MethodGet,
		Path:        "/api/v1/customers/{id}/phones",
		Summary:     "List customer phones",
		Description: "Returns a customer's phone book",
		Tags:        []string{"Customers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCustomerPhones)

	huma.Register(s.api, huma.Operation{
		OperationID: "addCustomerPhone",
		Method:      http.MethodPost,
		Path:        "/api/v1/customers/{id}/phones",
		Summary:     "Add phone",
		Description: "Adds a phone number to a customer's book",
		Tags:        []string{"Customers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddCustomerPhone)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCustomerPhone",
		Method:      http.MethodPatch,
		Path:        "/api/v1/customers/{id}/phones/{phoneID}",
		Summary:     "Update phone",
		Description: "Applies partial changes to a phone number",
		Tags:        []string{"Customers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCustomerPhone)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeCustomerPhone",
		Method:      http.MethodDelete,
		Path:        "/api/v1/customers/{id}/phones/{phoneID}",
		Summary:     "Remove phone",
		Description: "Removes a phone number. The last remaining phone cannot be removed.",
		Tags:        []string{"Customers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveCustomerPhone)

	huma.Register(s.api, huma.Operation{
		OperationID: "setMainCustomerPhone",
		Method:      http.MethodPost,
		Path:        "/api/v1/customers/{id}/phones/{phoneID}/primary",
		Summary:     "Set main phone",
		Description: "Promotes a phone to the customer's main number",
		Tags:        []string{"Customers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetMainCustomerPhone)
}

// === DTOs ===

type PhoneResponse struct {
	ID         string    `json:"id" doc:"Phone ID"`
	CustomerID string    `json:"customer_id" doc:"Owning customer ID"`
	Value      string    `json:"value" doc:"Phone number in E.164 form"`
	Label      string    `json:"label,omitempty" doc:"Free-form label (home, work, zalo)"`
	IsMain     bool      `json:"is_main" doc:"Whether this is the customer's main number"`
	CreatedAt  time.Time `json:"created_at" doc:"Creation time"`
}

type CustomerResponse struct {
	ID        string          `json:"id" doc:"Customer ID"`
	FullName  string          `json:"full_name" doc:"Full name"`
	Email     string          `json:"email,omitempty" doc:"Email address"`
	Address   string          `json:"address,omitempty" doc:"Postal address"`
	Notes     string          `json:"notes,omitempty" doc:"Free-form notes"`
	Phones    []PhoneResponse `json:"phones,omitempty" doc:"Phone book (populated on detail reads)"`
	CreatedAt time.Time       `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time       `json:"updated_at" doc:"Last update time"`
}

type ListCustomersInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Name search query"`
	Limit         int    `query:"limit" doc:"Items per page"`
	Offset        int    `query:"offset" doc:"Rows to skip"`
}

type ListCustomersResponse struct {
	Customers []CustomerResponse `json:"customers" doc:"Page of customers"`
	Total     int                `json:"total" doc:"Total matching customers"`
	HasMore   bool               `json:"has_more" doc:"Whether more pages exist"`
}

type ListCustomersOutput struct {
	Body ListCustomersResponse
}

type PhoneRequest struct {
	Value  string `json:"value" validate:"required,e164" doc:"Phone number in E.164 form"`
	Label  string `json:"label,omitempty" validate:"max=50" doc:"Free-form label"`
	IsMain bool   `json:"is_main,omitempty" doc:"Flag this phone as the main number"`
}

type CreateCustomerRequest struct {
	FullName string         `json:"full_name" validate:"required,min=1,max=200" doc:"Full name"`
	Email    string         `json:"email,omitempty" validate:"omitempty,email" doc:"Email address"`
	Address  string         `json:"address,omitempty" doc:"Postal address"`
	Notes    string         `json:"notes,omitempty" doc:"Free-form notes"`
	Phones   []PhoneRequest `json:"phones,omitempty" doc:"Initial phone book"`
}

type CreateCustomerInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateCustomerRequest
}

type CustomerOutput struct {
	Body CustomerResponse
}

type GetCustomerInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Customer ID"`
}

type UpdateCustomerRequest struct {
	FullName *string `json:"full_name,omitempty" doc:"Full name"`
	Email    *string `json:"email,omitempty" doc:"Email address"`
	Address  *string `json:"address,omitempty" doc:"Postal address"`
	Notes    *string `json:"notes,omitempty" doc:"Free-form notes"`
}

type UpdateCustomerInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Customer ID"`
	Body          UpdateCustomerRequest
}

type ListPhonesResponse struct {
	Phones []PhoneResponse `json:"phones" doc:"Phone book"`
}

type ListPhonesOutput struct {
	Body ListPhonesResponse
}

type AddPhoneInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Customer ID"`
	Body          PhoneRequest
}

type PhoneOutput struct {
	Body PhoneResponse
}

type UpdatePhoneRequest struct {
	Value  *string `json:"value,omitempty" doc:"Phone number in E.164 form"`
	Label  *string `json:"label,omitempty" doc:"Free-form label"`
	IsMain *bool   `json:"is_main,omitempty" doc:"Main number flag"`
}

type UpdatePhoneInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Customer ID"`
	PhoneID       string `path:"phoneID" doc:"Phone ID"`
	Body          UpdatePhoneRequest
}

type PhoneIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Customer ID"`
	PhoneID       string `path:"phoneID" doc:"Phone ID"`
}

// === Handlers ===

func (s *Server) handleListCustomers(ctx context.Context, input *ListCustomersInput) (*ListCustomersOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	if input.Query != "" {
		customers, err := s.services.Customer.SearchCustomersByName(ctx, input.Query, input.Limit)
		if err != nil {
			return nil, err
		}
		return &ListCustomersOutput{Body: ListCustomersResponse{
			Customers: mapCustomerResponses(customers),
			Total:     len(customers),
		}}, nil
	}

	result, err := s.services.Customer.ListCustomers(ctx, store.PaginationParams{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &ListCustomersOutput{Body: ListCustomersResponse{
		Customers: mapCustomerResponses(result.Items),
		Total:     result.Total,
		HasMore:   result.HasMore,
	}}, nil
}

func (s *Server) handleCreateCustomer(ctx context.Context, input *CreateCustomerInput) (*CustomerOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	phones := make([]service.PhoneInput, len(input.Body.Phones))
	for i, p := range input.Body.Phones {
		phones[i] = service.PhoneInput{Value: p.Value, Label: p.Label, IsMain: p.IsMain}
	}

	c, err := s.services.Customer.CreateCustomer(ctx, service.CreateCustomerRequest{
		FullName: input.Body.FullName,
		Email:    input.Body.Email,
		Address:  input.Body.Address,
		Notes:    input.Body.Notes,
		Phones:   phones,
	})
	if err != nil {
		return nil, err
	}

	return &CustomerOutput{Body: mapCustomerResponse(c)}, nil
}

func (s *Server) handleGetCustomer(ctx context.Context, input *GetCustomerInput) (*CustomerOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Customer.GetCustomer(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &CustomerOutput{Body: mapCustomerResponse(c)}, nil
}

func (s *Server) handleUpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*CustomerOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Customer.UpdateCustomer(ctx, input.ID, service.UpdateCustomerRequest{
		FullName: input.Body.FullName,
		Email:    input.Body.Email,
		Address:  input.Body.Address,
		Notes:    input.Body.Notes,
	})
	if err != nil {
		return nil, err
	}

	return &CustomerOutput{Body: mapCustomerResponse(c)}, nil
}

func (s *Server) handleDeleteCustomer(ctx context.Context, input *GetCustomerInput) (*MessageOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Customer.DeleteCustomer(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Customer deleted"}}, nil
}

func (s *Server) handleListCustomerPhones(ctx context.Context, input *GetCustomerInput) (*ListPhonesOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Customer.GetCustomer(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ListPhonesOutput{Body: ListPhonesResponse{Phones: mapPhoneResponses(c.Phones)}}, nil
}

func (s *Server) handleAddCustomerPhone(ctx context.Context, input *AddPhoneInput) (*PhoneOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	phone, err := s.services.Customer.AddPhone(ctx, input.ID, service.PhoneInput{
		Value:  input.Body.Value,
		Label:  input.Body.Label,
		IsMain: input.Body.IsMain,
	})
	if err != nil {
		return nil, err
	}

	return &PhoneOutput{Body: mapPhoneResponse(phone)}, nil
}

func (s *Server) handleUpdateCustomerPhone(ctx context.Context, input *UpdatePhoneInput) (*PhoneOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	phone, err := s.services.Customer.UpdatePhone(ctx, input.ID, input.PhoneID, service.UpdatePhoneRequest{
		Value:  input.Body.Value,
		Label:  input.Body.Label,
		IsMain: input.Body.IsMain,
	})
	if err != nil {
		return nil, err
	}

	return &PhoneOutput{Body: mapPhoneResponse(phone)}, nil
}

func (s *Server) handleRemoveCustomerPhone(ctx context.Context, input *PhoneIDInput) (*MessageOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Customer.RemovePhone(ctx, input.ID, input.PhoneID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Phone removed"}}, nil
}

func (s *Server) handleSetMainCustomerPhone(ctx context.Context, input *PhoneIDInput) (*MessageOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Customer.SetMainPhone(ctx, input.ID, input.PhoneID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Main phone updated"}}, nil
}

// === Mappers ===

func mapPhoneResponse(p *domain.PhoneNumber) PhoneResponse {
	return PhoneResponse{
		ID:         p.ID,
		CustomerID: p.CustomerID,
		Value:      p.Value,
		Label:      p.Label,
		IsMain:     p.IsMain,
		CreatedAt:  p.CreatedAt,
	}
}

func mapPhoneResponses(phones []*domain.PhoneNumber) []PhoneResponse {
	resp := make([]PhoneResponse, len(phones))
	for i, p := range phones {
		resp[i] = mapPhoneResponse(p)
	}
	return resp
}

func mapCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		FullName:  c.FullName,
		Email:     c.Email,
		Address:   c.Address,
		Notes:     c.Notes,
		Phones:    mapPhoneResponses(c.Phones),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func mapCustomerResponses(customers []*domain.Customer) []CustomerResponse {
	resp := make([]CustomerResponse, len(customers))
	for i, c := range customers {
		resp[i] = mapCustomerResponse(c)
	}
	return resp
}
