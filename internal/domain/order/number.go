package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNumber builds a human-readable order number
// Format: ORD-<timestamp>-<customer short id>
func GenerateOrderNumber(customerID uuid.UUID, at time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(customerID.String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102150405"), short)
}

// GenerateInvoiceNumber builds an invoice number for a delivered order
// Format: INV-<timestamp>-<order short id>
func GenerateInvoiceNumber(orderID uuid.UUID, at time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(orderID.String(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", at.Format("20060102150405"), short)
}
