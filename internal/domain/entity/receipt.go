package entity

// ReceiptHeader holds the shop header printed at the top of a receipt.
type ReceiptHeader struct {
	ShopName  string `json:"shop_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	GSTNumber string `json:"gst_number,omitempty"`
}

// ReceiptItem is a single line item on a receipt. Qty is preformatted
// ("2" for unit lines, "1.500 kg" for weight lines).
type ReceiptItem struct {
	Name      string  `json:"name"`
	Qty       string  `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
	GSTRate   float64 `json:"gst_rate"`
}

// Receipt is a value object representing a printable bill. It is NOT a
// database entity; it is composed from a Sale at print time.
type Receipt struct {
	Header        ReceiptHeader `json:"header"`
	InvoiceNo     string        `json:"invoice_no"`
	Date          string        `json:"date"`
	Cashier       string        `json:"cashier,omitempty"`
	Customer      string        `json:"customer,omitempty"`
	Mobile        string        `json:"mobile,omitempty"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	Items         []ReceiptItem `json:"items"`
	SubTotal      float64       `json:"sub_total"`
	Discount      float64       `json:"discount"`
	Tax           float64       `json:"tax"`
	GSTEnabled    bool          `json:"gst_enabled"`
	Total         float64       `json:"total"`
	Footer        string        `json:"footer,omitempty"`
}
