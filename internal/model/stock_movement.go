package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock movement types. "sale" and "return" mirror the invoice payment type
// that produced them; "adjustment" covers manual corrections and intake.
const (
	MovementSale       = "sale"
	MovementReturn     = "return"
	MovementAdjustment = "adjustment"
)

// StockMovement records one inventory change on a product.
// Movements are append-only: never updated, never deleted.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Type      string    `gorm:"type:varchar(20);not null"`
	// Quantity is signed: positive = goods in, negative = goods out.
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StockBefore int             `gorm:"not null"`
	StockAfter  int             `gorm:"not null"`
	Reason      string
	// InvoiceID links back to the originating invoice when the movement was
	// produced by a sale or return line.
	InvoiceID *uint64 `gorm:"index"`
	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
