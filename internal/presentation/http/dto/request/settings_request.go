package request

// UpdateSettingsRequest represents a shop settings update request
type UpdateSettingsRequest struct {
	ShopName       *string  `json:"shop_name" binding:"omitempty,min=1,max=255"`
	ShopAddress    *string  `json:"shop_address"`
	ShopPhone      *string  `json:"shop_phone" binding:"omitempty,max=20"`
	GSTNumber      *string  `json:"gst_number" binding:"omitempty,max=50"`
	GSTEnabled     *bool    `json:"gst_enabled"`
	DefaultGSTRate *float64 `json:"default_gst_rate" binding:"omitempty,min=0,max=100"`
	Currency       *string  `json:"currency" binding:"omitempty,max=10"`
	ReceiptFooter  *string  `json:"receipt_footer" binding:"omitempty,max=255"`
	LowStockAlerts *bool    `json:"low_stock_alerts"`
}
