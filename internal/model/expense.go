package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a discretionary cash disbursement scoped to the session that was
// open when it was recorded. Deletable by id, never updated.
type Expense struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	SessionID uuid.UUID `gorm:"type:uuid;index;not null"`
	Receiver  *string
	Reason    string          `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
}
