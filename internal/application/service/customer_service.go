package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/repository"
	"github.com/shopbill/shopbill-api/pkg/apperror"
	"github.com/shopbill/shopbill-api/pkg/pagination"
)

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	UserID    uuid.UUID
	Name      string
	Mobile    string
	Email     *string
	Address   *string
	GSTNumber *string
}

// CreateCustomer creates a new customer. Mobile is the dedup key: an
// existing customer with the same mobile is a conflict.
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	mobile := strings.TrimSpace(input.Mobile)
	if mobile == "" {
		return nil, apperror.NewBadRequestError("Mobile number is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperror.NewBadRequestError("Name is required")
	}

	existing, err := s.customerRepo.GetByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Customer with this mobile already exists")
	}

	customer := &entity.Customer{
		UserID:    input.UserID,
		Name:      strings.TrimSpace(input.Name),
		Mobile:    mobile,
		Email:     input.Email,
		Address:   input.Address,
		GSTNumber: input.GSTNumber,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// GetCustomerByMobile retrieves a customer by mobile number
func (s *CustomerService) GetCustomerByMobile(ctx context.Context, mobile string) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByMobile(ctx, strings.TrimSpace(mobile))
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers with search and pagination
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// UpdateCustomerInput represents the update customer input
type UpdateCustomerInput struct {
	ID        uuid.UUID
	Name      *string
	Mobile    *string
	Email     *string
	Address   *string
	GSTNumber *string
}

// UpdateCustomer updates a customer
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	if input.Mobile != nil {
		mobile := strings.TrimSpace(*input.Mobile)
		if mobile == "" {
			return nil, apperror.NewBadRequestError("Mobile number cannot be empty")
		}
		if mobile != customer.Mobile {
			existing, err := s.customerRepo.GetByMobile(ctx, mobile)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != customer.ID {
				return nil, apperror.NewConflictError("Customer with this mobile already exists")
			}
			customer.Mobile = mobile
		}
	}

	if input.Name != nil {
		customer.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if input.GSTNumber != nil {
		customer.GSTNumber = input.GSTNumber
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// DeleteCustomer deletes a customer
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if customer == nil {
		return apperror.NewNotFoundError("Customer")
	}

	return s.customerRepo.Delete(ctx, id)
}
