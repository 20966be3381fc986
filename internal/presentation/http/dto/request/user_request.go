package request

// CreateUserRequest represents an admin creating a staff account
type CreateUserRequest struct {
	Name     string  `json:"name" binding:"required,min=2,max=255"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Role     string  `json:"role" binding:"omitempty,oneof=admin staff"`
	Mobile   *string `json:"mobile" binding:"omitempty,max=20"`
}

// UpdateUserRoleRequest represents a role change request
type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin staff"`
}
