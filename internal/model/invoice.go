package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment classifications. Paid and Deferred decrement stock, Return increments it.
const (
	PaymentPaid     = "paid"
	PaymentDeferred = "deferred"
	PaymentReturn   = "return"
)

// ValidPaymentType reports whether pt is one of the three payment classifications.
func ValidPaymentType(pt string) bool {
	return pt == PaymentPaid || pt == PaymentDeferred || pt == PaymentReturn
}

// Invoice is one recorded sale, deferred sale, or return transaction.
// The bigserial ID is the navigation cursor: strictly monotonic by creation
// order, which timestamps do not guarantee.
type Invoice struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	SessionID     uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerName  *string
	CustomerPhone *string `gorm:"type:varchar(30)"`
	PaymentType   string  `gorm:"type:varchar(10);not null;index"`
	// Discount applies to the invoice header; Total is the pre-discount sum
	// of line totals and NetTotal = Total - Discount.
	Discount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NetTotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `gorm:"index"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID"`
}

// InvoiceItem is one product line on an invoice. Immutable after creation.
type InvoiceItem struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	InvoiceID uint64    `gorm:"index;not null"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity  int       `gorm:"not null"`
	// UnitPrice is a snapshot at time of sale; later catalog changes do not
	// rewrite history.
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	LineDiscount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// LineNetTotal = max(LineTotal - LineDiscount, 0), floored, never negative.
	LineNetTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
