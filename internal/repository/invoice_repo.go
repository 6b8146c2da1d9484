package repository

import (
	"context"
	"time"

	"tillpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NavFilter is the typed predicate for cursor navigation. It always compiles
// to parameterized WHERE clauses, never string concatenation.
type NavFilter struct {
	// From / To are exclusive-upper day bounds already resolved by the
	// service layer: [From, To).
	From        *time.Time
	To          *time.Time
	PaymentType string
	SessionID   *uuid.UUID
}

type InvoiceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	FindByID(ctx context.Context, id uint64) (*model.Invoice, error)
	// UpdatePaymentType rewrites only the classification label.
	// Returns gorm.ErrRecordNotFound when the invoice does not exist.
	UpdatePaymentType(ctx context.Context, id uint64, paymentType string) error
	// Before returns the filtered invoice with the greatest id strictly below
	// cursor (highest overall when cursor is nil), items preloaded, or nil.
	Before(ctx context.Context, cursor *uint64, f NavFilter) (*model.Invoice, error)
	// After is the symmetric forward query.
	After(ctx context.Context, cursor *uint64, f NavFilter) (*model.Invoice, error)
	// Bounds returns the smallest and largest matching ids, nil when the
	// filtered set is empty.
	Bounds(ctx context.Context, f NavFilter) (first, last *uint64, err error)
	// DB exposes the underlying *gorm.DB for transaction creation.
	DB() *gorm.DB
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) DB() *gorm.DB { return r.db }

func (r *invoiceRepo) Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	return tx.WithContext(ctx).Create(inv).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uint64) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Preload("Items").Preload("Items.Product").First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *invoiceRepo) UpdatePaymentType(ctx context.Context, id uint64, paymentType string) error {
	res := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("id = ?", id).Update("payment_type", paymentType)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// applyFilter translates a NavFilter into WHERE clauses on q.
func applyFilter(q *gorm.DB, f NavFilter) *gorm.DB {
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	if f.PaymentType != "" {
		q = q.Where("payment_type = ?", f.PaymentType)
	}
	if f.SessionID != nil {
		q = q.Where("session_id = ?", *f.SessionID)
	}
	return q
}

func (r *invoiceRepo) Before(ctx context.Context, cursor *uint64, f NavFilter) (*model.Invoice, error) {
	q := applyFilter(r.db.WithContext(ctx).Model(&model.Invoice{}), f)
	if cursor != nil {
		q = q.Where("id < ?", *cursor)
	}

	var invoices []model.Invoice
	// Ordering is strictly by id: ids are monotonic by creation order while
	// timestamps are not guaranteed unique.
	err := q.Preload("Items").Order("id DESC").Limit(1).Find(&invoices).Error
	if err != nil || len(invoices) == 0 {
		return nil, err
	}
	return &invoices[0], nil
}

func (r *invoiceRepo) After(ctx context.Context, cursor *uint64, f NavFilter) (*model.Invoice, error) {
	q := applyFilter(r.db.WithContext(ctx).Model(&model.Invoice{}), f)
	if cursor != nil {
		q = q.Where("id > ?", *cursor)
	}

	var invoices []model.Invoice
	err := q.Preload("Items").Order("id ASC").Limit(1).Find(&invoices).Error
	if err != nil || len(invoices) == 0 {
		return nil, err
	}
	return &invoices[0], nil
}

func (r *invoiceRepo) Bounds(ctx context.Context, f NavFilter) (*uint64, *uint64, error) {
	type bounds struct {
		First *uint64
		Last  *uint64
	}
	var b bounds
	q := applyFilter(r.db.WithContext(ctx).Model(&model.Invoice{}), f)
	err := q.Select("MIN(id) AS first, MAX(id) AS last").Scan(&b).Error
	if err != nil {
		return nil, nil, err
	}
	return b.First, b.Last, nil
}
