package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tillpos/internal/dto"
	"tillpos/internal/fault"
	"tillpos/internal/model"
	"tillpos/internal/repository"
	"tillpos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceService creates invoices atomically with their line items and stock
// movements, and reclassifies the payment type of existing invoices.
type InvoiceService interface {
	Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	// Reclassify rewrites only the stored payment type. It does NOT re-run
	// stock adjustment: changing paid to return after creation leaves the
	// original movements untouched. The operation exists to correct a
	// data-entry label, not to reverse goods flow.
	Reclassify(ctx context.Context, id uint64, paymentType string) error
	Get(ctx context.Context, id uint64) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	invoices   repository.InvoiceRepository
	sessions   SessionService
	products   repository.ProductRepository
	stock      StockService
	dispatcher *worker.Dispatcher
}

func NewInvoiceService(
	invoices repository.InvoiceRepository,
	sessions SessionService,
	products repository.ProductRepository,
	stock StockService,
	dispatcher *worker.Dispatcher,
) InvoiceService {
	return &invoiceService{
		invoices:   invoices,
		sessions:   sessions,
		products:   products,
		stock:      stock,
		dispatcher: dispatcher,
	}
}

// ── Create ───────────────────────────────────────────────────────────────────
// One atomic unit of work:
//   1. Resolve the open session (refuse without one)
//   2. Resolve products and compute line totals (pre-flight, outside TX)
//   3. BEGIN TX: re-verify the session under lock, insert header + items,
//      apply one signed stock delta and one movement per line
//   4. COMMIT; any line failure rolls the whole invoice back
//   5. (async) enqueue receipt rendering, best effort

func (s *invoiceService) Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if len(req.Items) == 0 {
		return nil, fault.New(fault.Validation, "invoice requires at least one line item")
	}
	if !model.ValidPaymentType(req.PaymentType) {
		return nil, fault.New(fault.Validation, "payment type must be paid, deferred or return")
	}
	if req.Discount.IsNegative() {
		return nil, fault.New(fault.Validation, "discount must not be negative")
	}

	session, err := s.sessions.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fault.New(fault.Conflict, "no session is open")
	}

	// Resolve products and compute totals before touching the store.
	type resolvedLine struct {
		productID uuid.UUID
		name      string
		quantity  int
		unitPrice decimal.Decimal
		discount  decimal.Decimal
		total     decimal.Decimal
		netTotal  decimal.Decimal
	}

	resolved := make([]resolvedLine, 0, len(req.Items))
	total := decimal.Zero

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fault.New(fault.Validation, "line quantity must be positive")
		}
		if item.LineDiscount.IsNegative() {
			return nil, fault.New(fault.Validation, "line discount must not be negative")
		}
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fault.Wrap(fault.Validation, "invalid product id", err)
		}
		product, err := s.products.FindByID(ctx, pid)
		if err != nil {
			return nil, fault.Newf(fault.NotFound, "product %s not found", item.ProductID)
		}
		if !product.Active {
			return nil, fault.Newf(fault.Validation, "product %s is inactive", product.Name)
		}

		// Zero unit price means "use the current catalog price"; the chosen
		// price is snapshotted on the line either way.
		unitPrice := item.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = product.Price
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lineNet := lineTotal.Sub(item.LineDiscount)
		if lineNet.IsNegative() {
			// Floored at zero, never negative.
			lineNet = decimal.Zero
		}

		total = total.Add(lineTotal)
		resolved = append(resolved, resolvedLine{
			productID: pid,
			name:      product.Name,
			quantity:  item.Quantity,
			unitPrice: unitPrice,
			discount:  item.LineDiscount,
			total:     lineTotal,
			netTotal:  lineNet,
		})
	}

	if req.Discount.GreaterThan(total) {
		return nil, fault.New(fault.Validation, "discount exceeds invoice total")
	}
	netTotal := total.Sub(req.Discount)

	invoice := model.Invoice{
		SessionID:     session.ID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		PaymentType:   req.PaymentType,
		Discount:      req.Discount,
		Total:         total,
		NetTotal:      netTotal,
	}
	for _, line := range resolved {
		invoice.Items = append(invoice.Items, model.InvoiceItem{
			ProductID:    line.productID,
			Quantity:     line.quantity,
			UnitPrice:    line.unitPrice,
			LineDiscount: line.discount,
			LineTotal:    line.total,
			LineNetTotal: line.netTotal,
		})
	}

	txErr := runTx(ctx, s.invoices.DB(), func(tx *gorm.DB) error {
		// Re-verify under lock: a concurrent close may have committed since
		// the pre-flight resolution, and the invoice must never attach to a
		// closed session.
		open, err := s.sessions.CurrentSessionTx(tx)
		if err != nil {
			return err
		}
		if open == nil || open.ID != session.ID {
			return fault.New(fault.Conflict, "session closed while recording the invoice")
		}

		if err := s.invoices.Create(ctx, tx, &invoice); err != nil {
			return fault.Wrap(fault.Storage, "invoice write failed", err)
		}

		// Paid and Deferred move goods out, Return moves them back in.
		for _, line := range resolved {
			delta := -line.quantity
			movementType := model.MovementSale
			if req.PaymentType == model.PaymentReturn {
				delta = line.quantity
				movementType = model.MovementReturn
			}

			invoiceRef := invoice.ID
			reason := fmt.Sprintf("invoice #%d", invoice.ID)
			if err := s.stock.ApplyTx(ctx, tx, line.productID, delta, line.unitPrice, movementType, &invoiceRef, reason); err != nil {
				return fmt.Errorf("stock adjustment for %s: %w", line.name, err)
			}
		}
		return nil
	})
	if txErr != nil {
		var fe *fault.Error
		if errors.As(txErr, &fe) {
			return nil, txErr
		}
		return nil, fault.Wrap(fault.Storage, "invoice transaction failed", txErr)
	}

	// Receipt rendering is fire and forget.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueReceipt(ctx, worker.ReceiptJobPayload{InvoiceID: invoice.ID})
	}

	return invoiceToResponse(&invoice), nil
}

// ── Reclassify ───────────────────────────────────────────────────────────────

func (s *invoiceService) Reclassify(ctx context.Context, id uint64, paymentType string) error {
	if !model.ValidPaymentType(paymentType) {
		return fault.New(fault.Validation, "payment type must be paid, deferred or return")
	}
	err := s.invoices.UpdatePaymentType(ctx, id, paymentType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.Newf(fault.NotFound, "invoice %d not found", id)
	}
	if err != nil {
		return fault.Wrap(fault.Storage, "reclassify failed", err)
	}
	return nil
}

func (s *invoiceService) Get(ctx context.Context, id uint64) (*dto.InvoiceResponse, error) {
	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.Newf(fault.NotFound, "invoice %d not found", id)
		}
		return nil, fault.Wrap(fault.Storage, "invoice lookup failed", err)
	}
	return invoiceToResponse(invoice), nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func invoiceToResponse(inv *model.Invoice) *dto.InvoiceResponse {
	items := make([]dto.InvoiceItemResponse, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, dto.InvoiceItemResponse{
			ProductID:    item.ProductID.String(),
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			LineDiscount: item.LineDiscount,
			LineTotal:    item.LineTotal,
			LineNetTotal: item.LineNetTotal,
		})
	}
	return &dto.InvoiceResponse{
		ID:            inv.ID,
		SessionID:     inv.SessionID.String(),
		CustomerName:  inv.CustomerName,
		CustomerPhone: inv.CustomerPhone,
		PaymentType:   inv.PaymentType,
		Discount:      inv.Discount,
		Total:         inv.Total,
		NetTotal:      inv.NetTotal,
		Items:         items,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
	}
}
