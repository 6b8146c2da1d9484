package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Barcode     string          `json:"barcode" validate:"required,min=3"`
	Name        string          `json:"name"    validate:"required,min=2"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required,gt=0"`
	Stock       int             `json:"stock" validate:"min=0"`
}

type UpdateProductRequest struct {
	Name        string           `json:"name" validate:"omitempty,min=2"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
}

// AdjustStockRequest applies a manual signed delta to a product's stock.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

// ProductFilter is bound from the query string of GET /v1/products.
type ProductFilter struct {
	Name    string `form:"name"`
	Barcode string `form:"barcode"`
	Active  string `form:"active"` // "false" = inactive, "all" = everything, default active
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID          string          `json:"id"`
	Barcode     string          `json:"barcode"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Active      bool            `json:"active"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// PriceResponse is the payload of the public barcode price lookup.
type PriceResponse struct {
	Barcode string          `json:"barcode"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
}

type StockMovementResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Type        string          `json:"type"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	StockBefore int             `json:"stock_before"`
	StockAfter  int             `json:"stock_after"`
	Reason      string          `json:"reason"`
	InvoiceID   *uint64         `json:"invoice_id,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
