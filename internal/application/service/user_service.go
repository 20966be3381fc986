package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/repository"
	"github.com/shopbill/shopbill-api/pkg/apperror"
	"github.com/shopbill/shopbill-api/pkg/utils"
)

// UserService handles staff account management. All operations here
// are admin-only; the handler layer enforces the role check.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsers returns all staff and admin accounts
func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	return s.userRepo.List(ctx)
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// CreateUserInput represents the input for an admin creating a staff account
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Mobile   *string
}

// CreateUser creates a staff or admin account
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*entity.User, error) {
	role := input.Role
	if role == "" {
		role = entity.RoleStaff
	}
	if role != entity.RoleAdmin && role != entity.RoleStaff {
		return nil, apperror.NewBadRequestError("Role must be admin or staff")
	}

	emailAddr := strings.ToLower(strings.TrimSpace(input.Email))
	existing, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    emailAddr,
		Password: hashedPassword,
		Role:     role,
		Mobile:   input.Mobile,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUserRoleInput represents the input for changing a user's role
type UpdateUserRoleInput struct {
	ActorID uuid.UUID
	UserID  uuid.UUID
	Role    string
}

// UpdateUserRole promotes or demotes a user. Admins cannot demote
// themselves, so the shop always keeps at least one admin.
func (s *UserService) UpdateUserRole(ctx context.Context, input *UpdateUserRoleInput) (*entity.User, error) {
	if input.Role != entity.RoleAdmin && input.Role != entity.RoleStaff {
		return nil, apperror.NewBadRequestError("Role must be admin or staff")
	}
	if input.ActorID == input.UserID && input.Role != entity.RoleAdmin {
		return nil, apperror.NewBadRequestError("You cannot demote your own account")
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}

	user.Role = input.Role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteUser soft deletes a user. Self-deletion is rejected.
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return apperror.NewBadRequestError("You cannot delete your own account")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.ErrNotFound
	}

	return s.userRepo.Delete(ctx, userID)
}
