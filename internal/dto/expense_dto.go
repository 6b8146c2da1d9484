package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateExpenseRequest struct {
	Receiver *string         `json:"receiver"`
	Reason   string          `json:"reason" validate:"required,min=2"`
	Amount   decimal.Decimal `json:"amount" validate:"required,gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ExpenseResponse struct {
	ID        uint64          `json:"id"`
	SessionID string          `json:"session_id"`
	Receiver  *string         `json:"receiver"`
	Reason    string          `json:"reason"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt string          `json:"created_at"`
}

type ExpenseListResponse struct {
	Items []ExpenseResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
