package service

import (
	"context"

	"tillpos/internal/fault"
	"tillpos/internal/model"
	"tillpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockService applies signed quantity deltas to catalog items and appends
// one immutable StockMovement per change.
//
// Policy: a negative resulting stock is allowed. The register must not block
// a sale the cashier is physically completing because the book count drifted;
// the deficit is logged and visible in the movement audit instead.
type StockService interface {
	// ApplyTx mutates stock inside the caller's transaction. invoiceID links
	// the movement to the sale or return line that produced it.
	ApplyTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int, unitPrice decimal.Decimal, movementType string, invoiceID *uint64, reason string) error
	// Adjust records a manual correction in its own unit of work.
	Adjust(ctx context.Context, productID uuid.UUID, delta int, reason string) (*model.Product, error)
	ListMovements(ctx context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error)
}

type stockService struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

func NewStockService(products repository.ProductRepository, movements repository.StockMovementRepository) StockService {
	return &stockService{products: products, movements: movements}
}

func (s *stockService) ApplyTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int, unitPrice decimal.Decimal, movementType string, invoiceID *uint64, reason string) error {
	product, err := s.products.FindByIDTx(tx, productID)
	if err != nil {
		return fault.Wrap(fault.NotFound, "product not found", err)
	}

	before := product.Stock
	after := before + delta

	if err := s.products.AdjustStockTx(tx, productID, delta); err != nil {
		return fault.Wrap(fault.Storage, "stock update failed", err)
	}

	if after < 0 {
		log.Warn().
			Str("product_id", productID.String()).
			Int("stock_after", after).
			Msg("stock went negative")
	}

	mov := &model.StockMovement{
		ProductID:   productID,
		Type:        movementType,
		Quantity:    delta,
		UnitPrice:   unitPrice,
		StockBefore: before,
		StockAfter:  after,
		Reason:      reason,
		InvoiceID:   invoiceID,
	}
	if err := s.movements.CreateTx(tx, mov); err != nil {
		return fault.Wrap(fault.Storage, "stock movement write failed", err)
	}
	return nil
}

func (s *stockService) Adjust(ctx context.Context, productID uuid.UUID, delta int, reason string) (*model.Product, error) {
	if delta == 0 {
		return nil, fault.New(fault.Validation, "delta must not be zero")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fault.Wrap(fault.NotFound, "product not found", err)
	}

	err = runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		return s.ApplyTx(ctx, tx, productID, delta, product.Price, model.MovementAdjustment, nil, reason)
	})
	if err != nil {
		return nil, err
	}

	product.Stock += delta
	return product, nil
}

func (s *stockService) ListMovements(ctx context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	movements, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, 0, fault.Wrap(fault.Storage, "failed to list stock movements", err)
	}
	return movements, total, nil
}
