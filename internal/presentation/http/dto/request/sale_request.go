package request

import "github.com/google/uuid"

// SaleItemRequest is one cart line at checkout. Weight and WeightUnit
// are set for weight-type products only.
type SaleItemRequest struct {
	ProductID  uuid.UUID `json:"product_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,min=1"`
	Weight     *float64  `json:"weight" binding:"omitempty,gt=0"`
	WeightUnit *string   `json:"weight_unit" binding:"omitempty,oneof=kg g ltr ml"`
}

// CreateSaleRequest represents a checkout request
type CreateSaleRequest struct {
	CustomerID      *uuid.UUID        `json:"customer_id"`
	CustomerName    string            `json:"customer_name" binding:"omitempty,max=255"`
	CustomerMobile  string            `json:"customer_mobile" binding:"omitempty,max=20"`
	DiscountPercent float64           `json:"discount_percent"`
	GSTEnabled      bool              `json:"gst_enabled"`
	PaymentMethod   string            `json:"payment_method" binding:"required,oneof=cash card upi"`
	Items           []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// SaleFilterRequest represents sale list filter parameters
type SaleFilterRequest struct {
	Search        string `form:"search"`
	Status        string `form:"status" binding:"omitempty,oneof=complete cancelled"`
	CustomerID    string `form:"customer_id"`
	PaymentMethod string `form:"payment_method" binding:"omitempty,oneof=cash card upi"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	SortBy        string `form:"sort_by"`
	SortOrder     string `form:"sort_order"`
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
}
