package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	OpeningFloat decimal.Decimal `json:"opening_float" validate:"min=0"`
}

type CloseSessionRequest struct {
	ClosingAmount decimal.Decimal `json:"closing_amount" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessionResponse struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	OpeningFloat  decimal.Decimal  `json:"opening_float"`
	ClosingAmount *decimal.Decimal `json:"closing_amount"`
	OpenedAt      string           `json:"opened_at"`
	ClosedAt      *string          `json:"closed_at"`
}

// SessionSummary is the drawer reconciliation for one session:
// CashInDrawer = OpeningFloat + TotalSales - TotalReturns - TotalExpenses.
type SessionSummary struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalReturns  decimal.Decimal `json:"total_returns"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	CashInDrawer  decimal.Decimal `json:"cash_in_drawer"`
}

// CurrentSessionResponse is the payload of GET /v1/session.
// Session is null when no working period is open.
type CurrentSessionResponse struct {
	Session *SessionResponse `json:"session"`
	Summary *SessionSummary  `json:"summary,omitempty"`
}

type SessionListResponse struct {
	Data  []SessionResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
