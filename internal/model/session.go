package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session represents one working period of the cash register.
// At most one row with closed_at IS NULL may exist, enforced both in the
// open transaction and by a partial unique index (see infra.applySchemaPatches).
type Session struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null"`
	OpeningFloat decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// ClosingAmount is the operator-declared drawer count at close. It is
	// recorded as entered, never reconciled against the computed expectation.
	ClosingAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	OpenedAt      time.Time
	ClosedAt      *time.Time `gorm:"index"`
}

// Open reports whether the session is the currently active working period.
func (s *Session) Open() bool { return s.ClosedAt == nil }
