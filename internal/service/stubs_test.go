package service

// In-memory repository stubs. They run the services with a nil *gorm.DB,
// which runTx passes straight through, so unit tests exercise the business
// rules without a database. Transactional all-or-nothing behavior is covered
// by the integration suite against real Postgres.

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tillpos/internal/dto"
	"tillpos/internal/model"
	"tillpos/internal/repository"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ── SessionRepository stub ───────────────────────────────────────────────────

type stubSessionRepo struct {
	open   *model.Session
	closed []model.Session
	totals repository.SessionTotals
	// onLock runs before FindOpenForUpdate resolves, standing in for a
	// concurrent caller that commits between pre-flight and the row lock.
	onLock func()
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{
		totals: repository.SessionTotals{
			Sales:    decimal.Zero,
			Returns:  decimal.Zero,
			Expenses: decimal.Zero,
		},
	}
}

func (r *stubSessionRepo) Create(_ context.Context, _ *gorm.DB, s *model.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.open = s
	return nil
}

func (r *stubSessionRepo) FindOpen(_ context.Context) (*model.Session, error) {
	return r.open, nil
}

func (r *stubSessionRepo) FindOpenForUpdate(_ *gorm.DB) (*model.Session, error) {
	if r.onLock != nil {
		r.onLock()
	}
	return r.open, nil
}

func (r *stubSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	if r.open != nil && r.open.ID == id {
		return r.open, nil
	}
	for i := range r.closed {
		if r.closed[i].ID == id {
			return &r.closed[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSessionRepo) Update(_ context.Context, _ *gorm.DB, s *model.Session) error {
	if s.ClosedAt != nil {
		r.closed = append(r.closed, *s)
		r.open = nil
	}
	return nil
}

func (r *stubSessionRepo) FindOpenWithTotals(_ context.Context) (*model.Session, *repository.SessionTotals, error) {
	if r.open == nil {
		return nil, nil, nil
	}
	t := r.totals
	return r.open, &t, nil
}

func (r *stubSessionRepo) Totals(_ context.Context, _ uuid.UUID) (*repository.SessionTotals, error) {
	t := r.totals
	return &t, nil
}

func (r *stubSessionRepo) ListClosed(_ context.Context, page, limit int) ([]model.Session, int64, error) {
	total := int64(len(r.closed))
	start := (page - 1) * limit
	if start >= len(r.closed) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(r.closed) {
		end = len(r.closed)
	}
	return r.closed[start:end], total, nil
}

func (r *stubSessionRepo) DB() *gorm.DB { return nil }

var _ repository.SessionRepository = (*stubSessionRepo)(nil)

// ── InvoiceRepository stub ───────────────────────────────────────────────────

type stubInvoiceRepo struct {
	invoices map[uint64]*model.Invoice
	nextID   uint64
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{invoices: make(map[uint64]*model.Invoice), nextID: 1}
}

func (r *stubInvoiceRepo) Create(_ context.Context, _ *gorm.DB, inv *model.Invoice) error {
	inv.ID = r.nextID
	r.nextID++
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	for i := range inv.Items {
		inv.Items[i].InvoiceID = inv.ID
	}
	cloned := *inv
	r.invoices[inv.ID] = &cloned
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uint64) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (r *stubInvoiceRepo) UpdatePaymentType(_ context.Context, id uint64, paymentType string) error {
	inv, ok := r.invoices[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inv.PaymentType = paymentType
	return nil
}

func (r *stubInvoiceRepo) matches(inv *model.Invoice, f repository.NavFilter) bool {
	if f.From != nil && inv.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !inv.CreatedAt.Before(*f.To) {
		return false
	}
	if f.PaymentType != "" && inv.PaymentType != f.PaymentType {
		return false
	}
	if f.SessionID != nil && inv.SessionID != *f.SessionID {
		return false
	}
	return true
}

func (r *stubInvoiceRepo) sortedIDs() []uint64 {
	ids := make([]uint64, 0, len(r.invoices))
	for id := range r.invoices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *stubInvoiceRepo) Before(_ context.Context, cursor *uint64, f repository.NavFilter) (*model.Invoice, error) {
	ids := r.sortedIDs()
	for i := len(ids) - 1; i >= 0; i-- {
		if cursor != nil && ids[i] >= *cursor {
			continue
		}
		if inv := r.invoices[ids[i]]; r.matches(inv, f) {
			return inv, nil
		}
	}
	return nil, nil
}

func (r *stubInvoiceRepo) After(_ context.Context, cursor *uint64, f repository.NavFilter) (*model.Invoice, error) {
	for _, id := range r.sortedIDs() {
		if cursor != nil && id <= *cursor {
			continue
		}
		if inv := r.invoices[id]; r.matches(inv, f) {
			return inv, nil
		}
	}
	return nil, nil
}

func (r *stubInvoiceRepo) Bounds(_ context.Context, f repository.NavFilter) (*uint64, *uint64, error) {
	var first, last *uint64
	for _, id := range r.sortedIDs() {
		if !r.matches(r.invoices[id], f) {
			continue
		}
		id := id
		if first == nil {
			first = &id
		}
		last = &id
	}
	return first, last, nil
}

func (r *stubInvoiceRepo) DB() *gorm.DB { return nil }

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

// ── ExpenseRepository stub ───────────────────────────────────────────────────

type stubExpenseRepo struct {
	expenses []*model.Expense
	nextID   uint64
}

func newStubExpenseRepo() *stubExpenseRepo {
	return &stubExpenseRepo{nextID: 1}
}

func (r *stubExpenseRepo) Create(_ context.Context, e *model.Expense) error {
	e.ID = r.nextID
	r.nextID++
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	cloned := *e
	r.expenses = append(r.expenses, &cloned)
	return nil
}

func (r *stubExpenseRepo) List(_ context.Context, page, limit int) ([]model.Expense, int64, error) {
	total := int64(len(r.expenses))
	out := make([]model.Expense, 0, len(r.expenses))
	for i := len(r.expenses) - 1; i >= 0; i-- {
		out = append(out, *r.expenses[i])
	}
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *stubExpenseRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.Expense, error) {
	var out []model.Expense
	for _, e := range r.expenses {
		if e.SessionID == sessionID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *stubExpenseRepo) Delete(_ context.Context, id uint64) error {
	for i, e := range r.expenses {
		if e.ID == id {
			r.expenses = append(r.expenses[:i], r.expenses[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

var _ repository.ExpenseRepository = (*stubExpenseRepo)(nil)

// ── ProductRepository stub ───────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	// adjustErr, when set, fails AdjustStockTx for the given product id.
	adjustErr    error
	adjustErrFor uuid.UUID
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(name string, price decimal.Decimal, stock int) *model.Product {
	p := &model.Product{
		ID:      uuid.New(),
		Barcode: uuid.NewString()[:12],
		Name:    name,
		Price:   price,
		Stock:   stock,
		Active:  true,
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Barcode == barcode && p.Active {
			cloned := *p
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = true
	}
	return nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubProductRepo) AdjustStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	if r.adjustErr != nil && r.adjustErrFor == id {
		return r.adjustErr
	}
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += delta
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── StockMovementRepository stub ─────────────────────────────────────────────

type stubMovementRepo struct {
	movements []*model.StockMovement
	createErr error
}

func newStubMovementRepo() *stubMovementRepo { return &stubMovementRepo{} }

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if r.createErr != nil {
		return r.createErr
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	cloned := *m
	r.movements = append(r.movements, &cloned)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

// errBoom stands in for an arbitrary driver failure.
var errBoom = errors.New("boom")
