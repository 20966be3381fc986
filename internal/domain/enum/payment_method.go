package enum

import "fmt"

// PaymentMethod is how a sale was paid for.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

// Valid reports whether the payment method is a known value.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentUPI
}

// ParsePaymentMethod parses a payment method string.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("invalid payment method %q (use cash, card or upi)", s)
	}
	return m, nil
}
