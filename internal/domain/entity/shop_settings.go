package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShopSettings holds the shop profile printed on receipts and the
// billing defaults applied to new carts. One row per shop (UserID of
// the owning admin).
type ShopSettings struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Shop profile
	ShopName    string  `gorm:"size:255;default:'My Shop'" json:"shop_name"`
	ShopAddress *string `gorm:"type:text" json:"shop_address,omitempty"`
	ShopPhone   *string `gorm:"size:20" json:"shop_phone,omitempty"`
	GSTNumber   *string `gorm:"size:50;column:gst_number" json:"gst_number,omitempty"`

	// Billing defaults
	GSTEnabled     bool    `gorm:"default:true" json:"gst_enabled"`
	DefaultGSTRate float64 `gorm:"default:5" json:"default_gst_rate"`
	Currency       string  `gorm:"size:10;default:'INR'" json:"currency"`

	// Receipt options
	ReceiptFooter  string `gorm:"size:255;default:'Thank you, visit again!'" json:"receipt_footer"`
	LowStockAlerts bool   `gorm:"default:true" json:"low_stock_alerts"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate generates a UUID before creating new settings
func (s *ShopSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ShopSettings model
func (ShopSettings) TableName() string {
	return "shop_settings"
}
