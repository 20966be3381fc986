package request

import "github.com/google/uuid"

// CreateProductRequest represents a product creation request. Price is
// in rupees, stock amounts in base units (pieces, kg or ltr).
type CreateProductRequest struct {
	CategoryID *uuid.UUID `json:"category_id"`
	Name       string     `json:"name" binding:"required,min=2,max=255"`
	Type       string     `json:"type" binding:"required,oneof=unit weight"`
	WeightUnit *string    `json:"weight_unit" binding:"omitempty,oneof=kg g ltr ml"`
	Price      float64    `json:"price" binding:"min=0"`
	Stock      float64    `json:"stock" binding:"min=0"`
	StockAlert float64    `json:"stock_alert" binding:"min=0"`
	GSTRate    float64    `json:"gst_rate" binding:"min=0,max=100"`
	Barcode    *string    `json:"barcode" binding:"omitempty,max=100"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	CategoryID *uuid.UUID `json:"category_id"`
	Name       *string    `json:"name" binding:"omitempty,min=2,max=255"`
	Type       *string    `json:"type" binding:"omitempty,oneof=unit weight"`
	WeightUnit *string    `json:"weight_unit" binding:"omitempty,oneof=kg g ltr ml"`
	Price      *float64   `json:"price" binding:"omitempty,min=0"`
	Stock      *float64   `json:"stock" binding:"omitempty,min=0"`
	StockAlert *float64   `json:"stock_alert" binding:"omitempty,min=0"`
	GSTRate    *float64   `json:"gst_rate" binding:"omitempty,min=0,max=100"`
	Barcode    *string    `json:"barcode" binding:"omitempty,max=100"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id"`
	Type       string `form:"type" binding:"omitempty,oneof=unit weight"`
	LowStock   bool   `form:"low_stock"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// ImportProductRow is one row of a bulk product import
type ImportProductRow struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	WeightUnit   string  `json:"weight_unit"`
	Price        float64 `json:"price"`
	Stock        float64 `json:"stock"`
	StockAlert   float64 `json:"stock_alert"`
	GSTRate      float64 `json:"gst_rate"`
	Barcode      string  `json:"barcode"`
	CategoryName string  `json:"category"`
}

// ImportProductsRequest represents a bulk product import request
type ImportProductsRequest struct {
	Products []ImportProductRow `json:"products" binding:"required,min=1,dive"`
}

// CreateCategoryRequest represents a category creation request
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// UpdateCategoryRequest represents a category rename request
type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}
