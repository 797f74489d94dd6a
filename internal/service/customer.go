package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/errors"
	"github.com/mughouse/mughouse-server/internal/id"
	"github.com/mughouse/mughouse-server/internal/primary"
	"github.com/mughouse/mughouse-server/internal/sse"
	"github.com/mughouse/mughouse-server/internal/store"
	"github.com/mughouse/mughouse-server/internal/validation"
)

// CustomerService orchestrates customer and phone book operations. All phone
// mutations go through the primary coordinator so every customer with phones
// always has exactly one main number.
type CustomerService struct {
	store     store.Store
	phones    *primary.Coordinator
	events    EventEmitter
	logger    *slog.Logger
	validator *validation.Validator
}

// NewCustomerService creates a new customer service.
func NewCustomerService(st store.Store, events EventEmitter, logger *slog.Logger) *CustomerService {
	return &CustomerService{
		store:     st,
		phones:    primary.NewCoordinator(st.Phones(), logger),
		events:    events,
		logger:    logger,
		validator: validation.New(),
	}
}

// ListCustomers returns a paginated customer listing without phone details.
func (s *CustomerService) ListCustomers(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Customer], error) {
	params.Validate()
	return s.store.ListCustomers(ctx, params)
}

// SearchCustomersByName returns customers whose names match the query.
func (s *CustomerService) SearchCustomersByName(ctx context.Context, query string, limit int) ([]*domain.Customer, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.SearchCustomersByName(ctx, query, limit)
}

// GetCustomer returns a customer with the phone book loaded.
func (s *CustomerService) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	c, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, notFound(err, "customer "+customerID+" not found")
	}
	return c, nil
}

// PhoneInput is one phone number supplied on customer creation or phone add.
type PhoneInput struct {
	Value  string `json:"value" validate:"required,e164"`
	Label  string `json:"label" validate:"max=50"`
	IsMain bool   `json:"is_main"`
}

// CreateCustomerRequest contains fields for creating a customer.
type CreateCustomerRequest struct {
	FullName string       `json:"full_name" validate:"required,min=1,max=200"`
	Email    string       `json:"email" validate:"omitempty,email"`
	Address  string       `json:"address" validate:"max=500"`
	Notes    string       `json:"notes" validate:"max=5000"`
	Phones   []PhoneInput `json:"phones" validate:"dive"`
}

// CreateCustomer creates a customer and their initial phone book. The first
// phone becomes main unless a later one is explicitly flagged.
func (s *CustomerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*domain.Customer, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	customerID, err := id.Generate("cust")
	if err != nil {
		return nil, err
	}

	c := &domain.Customer{
		Auditable: domain.Auditable{ID: customerID},
		FullName:  req.FullName,
		Email:     req.Email,
		Address:   req.Address,
		Notes:     req.Notes,
	}
	c.InitTimestamps()

	if err := s.store.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	for _, in := range req.Phones {
		if _, err := s.addPhone(ctx, customerID, in); err != nil {
			return nil, err
		}
	}

	created, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	s.events.Emit(sse.NewCustomerCreatedEvent(created))
	s.logger.Info("customer created", "id", customerID, "phones", len(req.Phones))
	return created, nil
}

// UpdateCustomerRequest contains fields for updating a customer.
// Nil fields are left untouched.
type UpdateCustomerRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
	Notes    *string `json:"notes" validate:"omitempty,max=5000"`
}

// UpdateCustomer applies partial changes to a customer's own fields.
// The phone book has its own operations.
func (s *CustomerService) UpdateCustomer(ctx context.Context, customerID string, req UpdateCustomerRequest) (*domain.Customer, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	c, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, notFound(err, "customer "+customerID+" not found")
	}

	if req.FullName != nil {
		c.FullName = *req.FullName
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}

	c.Touch()
	if err := s.store.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}

	updated, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	s.events.Emit(sse.NewCustomerUpdatedEvent(updated))
	return updated, nil
}

// DeleteCustomer removes a customer and, by cascade, their phone book.
// Customers with order history are refused; orders are immutable records and
// keep referencing the customer row.
func (s *CustomerService) DeleteCustomer(ctx context.Context, customerID string) error {
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return notFound(err, "customer "+customerID+" not found")
	}

	orders, err := s.store.CountOrdersForCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if orders > 0 {
		return errors.EntityInUsef("customer %s has %d orders and cannot be deleted", customerID, orders)
	}

	if err := s.store.DeleteCustomer(ctx, customerID); err != nil {
		return err
	}

	s.events.Emit(sse.NewCustomerDeletedEvent(customerID))
	s.logger.Info("customer deleted", "id", customerID)
	return nil
}

// AddPhone adds a phone number to a customer's book. A customer's first phone
// becomes main regardless of the flag; flagging a later one demotes the
// current holder atomically.
func (s *CustomerService) AddPhone(ctx context.Context, customerID string, req PhoneInput) (*domain.PhoneNumber, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	phone, err := s.addPhone(ctx, customerID, req)
	if err != nil {
		return nil, err
	}

	s.emitCustomerUpdated(ctx, customerID)
	return phone, nil
}

func (s *CustomerService) addPhone(ctx context.Context, customerID string, in PhoneInput) (*domain.PhoneNumber, error) {
	phoneID, err := id.Generate("phone")
	if err != nil {
		return nil, err
	}

	item := &primary.Item{
		ID:        phoneID,
		Value:     in.Value,
		Label:     in.Label,
		CreatedAt: time.Now(),
	}
	if err := s.phones.Add(ctx, customerID, item, in.IsMain); err != nil {
		return nil, err
	}
	return phoneFromItem(item), nil
}

// UpdatePhoneRequest contains fields for updating a phone number.
// Nil fields are left untouched.
type UpdatePhoneRequest struct {
	Value  *string `json:"value" validate:"omitempty,e164"`
	Label  *string `json:"label" validate:"omitempty,max=50"`
	IsMain *bool   `json:"is_main"`
}

// UpdatePhone applies partial changes to a phone number. Un-flagging the
// customer's only phone is rejected; un-flagging the main one with siblings
// present promotes the oldest sibling in the same transaction.
func (s *CustomerService) UpdatePhone(ctx context.Context, customerID, phoneID string, req UpdatePhoneRequest) (*domain.PhoneNumber, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkPhoneOwner(ctx, customerID, phoneID); err != nil {
		return nil, err
	}

	err := s.phones.Update(ctx, phoneID, primary.Changes{
		Value: req.Value,
		Label: req.Label,
		Main:  req.IsMain,
	})
	if err != nil {
		return nil, err
	}

	item, err := s.store.GetPhone(ctx, phoneID)
	if err != nil {
		return nil, notFound(err, "phone "+phoneID+" not found")
	}

	s.emitCustomerUpdated(ctx, customerID)
	return phoneFromItem(item), nil
}

// SetMainPhone promotes a phone to the customer's main number.
func (s *CustomerService) SetMainPhone(ctx context.Context, customerID, phoneID string) error {
	if err := s.phones.SetPrimary(ctx, customerID, phoneID); err != nil {
		return err
	}
	s.emitCustomerUpdated(ctx, customerID)
	return nil
}

// RemovePhone deletes a phone number. The last remaining phone can never be
// removed; removing the main one promotes the oldest sibling.
func (s *CustomerService) RemovePhone(ctx context.Context, customerID, phoneID string) error {
	if err := s.checkPhoneOwner(ctx, customerID, phoneID); err != nil {
		return err
	}
	if err := s.phones.Remove(ctx, phoneID); err != nil {
		return err
	}
	s.emitCustomerUpdated(ctx, customerID)
	return nil
}

// checkPhoneOwner verifies the phone belongs to the customer named in the
// request path, so one customer's phone IDs cannot act on another's book.
func (s *CustomerService) checkPhoneOwner(ctx context.Context, customerID, phoneID string) error {
	item, err := s.store.GetPhone(ctx, phoneID)
	if err != nil {
		return notFound(err, "phone "+phoneID+" not found")
	}
	if item.OwnerID != customerID {
		return errors.NotFoundf("phone %s not found for customer %s", phoneID, customerID)
	}
	return nil
}

func (s *CustomerService) emitCustomerUpdated(ctx context.Context, customerID string) {
	c, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return
	}
	s.events.Emit(sse.NewCustomerUpdatedEvent(c))
}

// phoneFromItem converts a coordinator item into the phone book entry shape.
func phoneFromItem(item *primary.Item) *domain.PhoneNumber {
	return &domain.PhoneNumber{
		Auditable: domain.Auditable{
			ID:        item.ID,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.CreatedAt,
		},
		CustomerID: item.OwnerID,
		Value:      item.Value,
		Label:      item.Label,
		IsMain:     item.Main,
	}
}
