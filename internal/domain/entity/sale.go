package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Sale is an immutable record of a completed checkout. Item rows are
// snapshots: they keep the product name and price at sale time so that
// later catalog edits never change past invoices.
type Sale struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID     *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	InvoiceNo      string             `gorm:"size:100;unique;not null" json:"invoice_no"`
	Status         enum.SaleStatus    `gorm:"default:0" json:"status"`
	SubTotal       int64              `gorm:"default:0" json:"-"` // paise
	Discount       int64              `gorm:"default:0" json:"-"` // paise
	DiscountPct    float64            `gorm:"default:0" json:"discount_percent"`
	Tax            int64              `gorm:"default:0" json:"-"` // paise
	Total          int64              `gorm:"default:0" json:"-"` // paise
	PaymentMethod  enum.PaymentMethod `gorm:"size:10;not null" json:"payment_method"`
	GSTEnabled     bool               `gorm:"default:true" json:"gst_enabled"`
	CustomerName   string             `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerMobile string             `gorm:"size:20" json:"customer_mobile,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	User     User       `gorm:"foreignKey:UserID" json:"-"`
	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

// MarshalJSON converts paise amounts to decimal rupees for API responses
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	return json.Marshal(&struct {
		Alias
		SubTotal float64 `json:"sub_total"`
		Discount float64 `json:"discount"`
		Tax      float64 `json:"tax"`
		Total    float64 `json:"total"`
		Status   string  `json:"status"`
	}{
		Alias:    Alias(s),
		SubTotal: float64(s.SubTotal) / 100,
		Discount: float64(s.Discount) / 100,
		Tax:      float64(s.Tax) / 100,
		Total:    float64(s.Total) / 100,
		Status:   s.Status.String(),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON: rupee amounts come back
// as exact paise and the status string becomes the enum again, so a
// sale survives an export/import round trip unchanged.
func (s *Sale) UnmarshalJSON(data []byte) error {
	type Alias Sale
	aux := &struct {
		*Alias
		SubTotal float64 `json:"sub_total"`
		Discount float64 `json:"discount"`
		Tax      float64 `json:"tax"`
		Total    float64 `json:"total"`
		Status   string  `json:"status"`
	}{Alias: (*Alias)(s)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	status, err := enum.ParseSaleStatus(aux.Status)
	if err != nil {
		return err
	}
	s.Status = status
	s.SubTotal = paiseFromRupees(aux.SubTotal)
	s.Discount = paiseFromRupees(aux.Discount)
	s.Tax = paiseFromRupees(aux.Tax)
	s.Total = paiseFromRupees(aux.Total)
	return nil
}

// paiseFromRupees converts a non-negative decimal rupee amount to paise.
func paiseFromRupees(r float64) int64 {
	return int64(r*100 + 0.5)
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// TotalRupees returns the grand total in rupees.
func (s *Sale) TotalRupees() float64 {
	return float64(s.Total) / 100
}

// SaleItem is one line of a sale. For weight-type products Weight and
// WeightUnit record what was weighed and UnitPrice already includes the
// price-per-base-unit multiplied by the weight; LineTotal is therefore
// always UnitPrice * Quantity.
type SaleItem struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	SaleID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string           `gorm:"size:255;not null" json:"product_name"`
	Quantity    int              `gorm:"not null" json:"quantity"`
	Weight      *float64         `json:"weight,omitempty"`
	WeightUnit  *enum.WeightUnit `gorm:"size:5" json:"weight_unit,omitempty"`
	UnitPrice   int64            `gorm:"not null" json:"-"` // paise
	LineTotal   int64            `gorm:"not null" json:"-"` // paise
	GSTRate     float64          `gorm:"not null;default:0" json:"gst_rate"`
	CreatedAt   time.Time        `json:"created_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relationships
	Sale    Sale    `gorm:"foreignKey:SaleID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

// MarshalJSON converts paise amounts to decimal rupees for API responses
func (it SaleItem) MarshalJSON() ([]byte, error) {
	type Alias SaleItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		LineTotal float64 `json:"line_total"`
	}{
		Alias:     Alias(it),
		UnitPrice: float64(it.UnitPrice) / 100,
		LineTotal: float64(it.LineTotal) / 100,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON for sale line snapshots.
func (it *SaleItem) UnmarshalJSON(data []byte) error {
	type Alias SaleItem
	aux := &struct {
		*Alias
		UnitPrice float64 `json:"unit_price"`
		LineTotal float64 `json:"line_total"`
	}{Alias: (*Alias)(it)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	it.UnitPrice = paiseFromRupees(aux.UnitPrice)
	it.LineTotal = paiseFromRupees(aux.LineTotal)
	return nil
}

// BeforeCreate generates a UUID before creating a new sale item
func (it *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}
