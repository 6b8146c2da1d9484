package repository

import (
	"context"

	"tillpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionTotals aggregates the ledger activity of one session. All sums are
// zero when no rows exist.
type SessionTotals struct {
	Sales    decimal.Decimal
	Returns  decimal.Decimal
	Expenses decimal.Decimal
}

type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Session) error
	// FindOpen returns (nil, nil) when no session is open.
	FindOpen(ctx context.Context) (*model.Session, error)
	// FindOpenForUpdate row-locks the open session inside tx so two
	// concurrent open/close attempts serialize on it.
	FindOpenForUpdate(tx *gorm.DB) (*model.Session, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	Update(ctx context.Context, tx *gorm.DB, s *model.Session) error
	// FindOpenWithTotals reads the open session and its ledger sums inside a
	// single transaction, so a concurrently committing invoice can never be
	// half-counted. Returns (nil, nil, nil) when no session is open.
	FindOpenWithTotals(ctx context.Context) (*model.Session, *SessionTotals, error)
	Totals(ctx context.Context, sessionID uuid.UUID) (*SessionTotals, error)
	ListClosed(ctx context.Context, page, limit int) ([]model.Session, int64, error)
	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) DB() *gorm.DB { return r.db }

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Session) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) FindOpen(ctx context.Context) (*model.Session, error) {
	var sessions []model.Session
	err := r.db.WithContext(ctx).Where("closed_at IS NULL").Limit(1).Find(&sessions).Error
	if err != nil || len(sessions) == 0 {
		return nil, err
	}
	return &sessions[0], nil
}

func (r *sessionRepo) FindOpenForUpdate(tx *gorm.DB) (*model.Session, error) {
	var sessions []model.Session
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("closed_at IS NULL").Limit(1).Find(&sessions).Error
	if err != nil || len(sessions) == 0 {
		return nil, err
	}
	return &sessions[0], nil
}

func (r *sessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var s model.Session
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *sessionRepo) Update(ctx context.Context, tx *gorm.DB, s *model.Session) error {
	return tx.WithContext(ctx).Save(s).Error
}

func (r *sessionRepo) FindOpenWithTotals(ctx context.Context) (*model.Session, *SessionTotals, error) {
	var session *model.Session
	var totals *SessionTotals

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sessions []model.Session
		if err := tx.Where("closed_at IS NULL").Limit(1).Find(&sessions).Error; err != nil {
			return err
		}
		if len(sessions) == 0 {
			return nil
		}
		session = &sessions[0]

		t, err := sumTotals(tx, session.ID)
		if err != nil {
			return err
		}
		totals = t
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return session, totals, nil
}

func (r *sessionRepo) Totals(ctx context.Context, sessionID uuid.UUID) (*SessionTotals, error) {
	return sumTotals(r.db.WithContext(ctx), sessionID)
}

// sumTotals runs the three aggregate queries that feed drawer reconciliation.
// COALESCE keeps the sums at zero instead of NULL for empty sessions.
func sumTotals(tx *gorm.DB, sessionID uuid.UUID) (*SessionTotals, error) {
	t := &SessionTotals{
		Sales:    decimal.Zero,
		Returns:  decimal.Zero,
		Expenses: decimal.Zero,
	}

	if err := tx.Model(&model.Invoice{}).
		Where("session_id = ? AND payment_type = ?", sessionID, model.PaymentPaid).
		Select("COALESCE(SUM(net_total), 0)").Scan(&t.Sales).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&model.Invoice{}).
		Where("session_id = ? AND payment_type = ?", sessionID, model.PaymentReturn).
		Select("COALESCE(SUM(net_total), 0)").Scan(&t.Returns).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&model.Expense{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(SUM(amount), 0)").Scan(&t.Expenses).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (r *sessionRepo) ListClosed(ctx context.Context, page, limit int) ([]model.Session, int64, error) {
	var sessions []model.Session
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Session{}).Where("closed_at IS NOT NULL")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("closed_at DESC").Offset(offset).Limit(limit).Find(&sessions).Error
	return sessions, total, err
}
