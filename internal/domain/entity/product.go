package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Product is a catalog item. Monetary values are stored in paise and
// stock in thousandths of the base unit (grams/ml for weight-type
// products, units*1000 for unit-type products) so that weight
// conversion and stock comparisons are exact integer arithmetic.
type Product struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID      *uuid.UUID       `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name            string           `gorm:"size:255;not null" json:"name"`
	Type            enum.ProductType `gorm:"size:10;not null;default:'unit'" json:"type"`
	WeightUnit      *enum.WeightUnit `gorm:"size:5" json:"unit,omitempty"` // present iff Type == weight
	PricePaise      int64            `gorm:"not null;default:0" json:"-"`  // price per unit or per base-unit weight
	StockMilli      int64            `gorm:"not null;default:0" json:"-"`  // thousandths of base unit
	StockAlertMilli int64            `gorm:"not null;default:0" json:"-"`
	GSTRate         float64          `gorm:"not null;default:0" json:"gst_rate"`
	Barcode         *string          `gorm:"size:100;uniqueIndex" json:"barcode,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// PriceRupees returns the selling price in rupees.
func (p *Product) PriceRupees() float64 {
	return float64(p.PricePaise) / 100
}

// SetPriceRupees sets the selling price from a rupee value.
func (p *Product) SetPriceRupees(price float64) {
	p.PricePaise = int64(price*100 + 0.5)
}

// StockBaseUnits returns the stock in base units (kg, ltr or unit count).
func (p *Product) StockBaseUnits() float64 {
	return float64(p.StockMilli) / 1000
}

// SetStockBaseUnits sets the stock from a base-unit value.
func (p *Product) SetStockBaseUnits(stock float64) {
	p.StockMilli = int64(stock*1000 + 0.5)
}

// IsLowStock reports whether stock has fallen to or below the alert threshold.
func (p *Product) IsLowStock() bool {
	return p.StockAlertMilli > 0 && p.StockMilli <= p.StockAlertMilli
}

// ProductJSON mirrors Product with prices in rupees and stock in base units.
type ProductJSON struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"user_id"`
	CategoryID *uuid.UUID       `json:"category_id,omitempty"`
	Name       string           `json:"name"`
	Type       enum.ProductType `json:"type"`
	WeightUnit *enum.WeightUnit `json:"unit,omitempty"`
	Price      float64          `json:"price"`
	Stock      float64          `json:"stock"`
	StockAlert float64          `json:"stock_alert"`
	GSTRate    float64          `json:"gst_rate"`
	Barcode    *string          `json:"barcode,omitempty"`
	LowStock   bool             `json:"low_stock"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Category   *Category        `json:"category,omitempty"`
}

// MarshalJSON converts Product to JSON with decimal price and base-unit stock
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(ProductJSON{
		ID:         p.ID,
		UserID:     p.UserID,
		CategoryID: p.CategoryID,
		Name:       p.Name,
		Type:       p.Type,
		WeightUnit: p.WeightUnit,
		Price:      p.PriceRupees(),
		Stock:      p.StockBaseUnits(),
		StockAlert: float64(p.StockAlertMilli) / 1000,
		GSTRate:    p.GSTRate,
		Barcode:    p.Barcode,
		LowStock:   p.IsLowStock(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		Category:   p.Category,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON: it reads the decimal
// price and base-unit stock back into exact paise and milli amounts,
// so an exported backup restores without losing a paisa or a gram.
func (p *Product) UnmarshalJSON(data []byte) error {
	var in ProductJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	p.ID = in.ID
	p.UserID = in.UserID
	p.CategoryID = in.CategoryID
	p.Name = in.Name
	p.Type = in.Type
	p.WeightUnit = in.WeightUnit
	p.SetPriceRupees(in.Price)
	p.SetStockBaseUnits(in.Stock)
	p.StockAlertMilli = int64(in.StockAlert*1000 + 0.5)
	p.GSTRate = in.GSTRate
	p.Barcode = in.Barcode
	p.CreatedAt = in.CreatedAt
	p.UpdatedAt = in.UpdatedAt
	p.Category = in.Category
	return nil
}

// Category represents a product category
type Category struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string         `gorm:"size:255;unique;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Products []Product `gorm:"foreignKey:CategoryID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
