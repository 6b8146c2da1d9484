package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type InvoiceItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
	// UnitPrice zero means "use the current catalog price".
	UnitPrice    decimal.Decimal `json:"unit_price"    validate:"min=0"`
	LineDiscount decimal.Decimal `json:"line_discount" validate:"min=0"`
}

type CreateInvoiceRequest struct {
	CustomerName  *string              `json:"customer_name"`
	CustomerPhone *string              `json:"customer_phone"`
	PaymentType   string               `json:"payment_type" validate:"required,oneof=paid deferred return"`
	Discount      decimal.Decimal      `json:"discount"     validate:"min=0"`
	Items         []InvoiceItemRequest `json:"items"        validate:"required,min=1,dive"`
}

type ReclassifyRequest struct {
	PaymentType string `json:"payment_type" validate:"required,oneof=paid deferred return"`
}

// InvoiceFilter restricts navigation queries. From/To are inclusive day
// bounds (YYYY-MM-DD). Scope "session" limits results to the open session.
type InvoiceFilter struct {
	From        string `form:"from"         validate:"omitempty,datetime=2006-01-02"`
	To          string `form:"to"           validate:"omitempty,datetime=2006-01-02"`
	PaymentType string `form:"payment_type" validate:"omitempty,oneof=paid deferred return"`
	Scope       string `form:"scope"        validate:"omitempty,oneof=all session"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InvoiceItemResponse struct {
	ProductID    string          `json:"product_id"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineDiscount decimal.Decimal `json:"line_discount"`
	LineTotal    decimal.Decimal `json:"line_total"`
	LineNetTotal decimal.Decimal `json:"line_net_total"`
}

type InvoiceResponse struct {
	ID            uint64                `json:"id"`
	SessionID     string                `json:"session_id"`
	CustomerName  *string               `json:"customer_name"`
	CustomerPhone *string               `json:"customer_phone"`
	PaymentType   string                `json:"payment_type"`
	Discount      decimal.Decimal       `json:"discount"`
	Total         decimal.Decimal       `json:"total"`
	NetTotal      decimal.Decimal       `json:"net_total"`
	Items         []InvoiceItemResponse `json:"items"`
	CreatedAt     string                `json:"created_at"`
}

// NavigationResponse answers a before/after cursor query. Invoice is null
// when no matching invoice remains in that direction. FirstID / LastID are
// the boundary markers of the filtered set so the caller knows when the
// browse position has reached an edge.
type NavigationResponse struct {
	Invoice *InvoiceResponse `json:"invoice"`
	FirstID *uint64          `json:"first_id,omitempty"`
	LastID  *uint64          `json:"last_id,omitempty"`
}
