package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewUUID generates a new UUID
func NewUUID() uuid.UUID {
	return uuid.New()
}

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// GenerateInvoiceNo generates a unique invoice number, date-prefixed so
// printed receipts sort naturally.
func GenerateInvoiceNo(now time.Time) string {
	return "INV-" + now.Format("20060102") + "-" + strings.ToUpper(uuid.New().String()[:8])
}
