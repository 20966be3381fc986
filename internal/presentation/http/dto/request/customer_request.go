package request

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name      string  `json:"name" binding:"required,min=1,max=255"`
	Mobile    string  `json:"mobile" binding:"required,min=4,max=20"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Address   *string `json:"address"`
	GSTNumber *string `json:"gst_number" binding:"omitempty,max=50"`
}

// UpdateCustomerRequest represents a customer update request
type UpdateCustomerRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=255"`
	Mobile    *string `json:"mobile" binding:"omitempty,min=4,max=20"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Address   *string `json:"address"`
	GSTNumber *string `json:"gst_number" binding:"omitempty,max=50"`
}
