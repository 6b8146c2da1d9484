package service

import (
	"context"
	"errors"
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

// SessionService owns the open/close lifecycle of the daily session and the
// drawer reconciliation summary.
type SessionService interface {
	Open(ctx context.Context, userID uuid.UUID, openingFloat decimal.Decimal) (*dto.SessionResponse, error)
	Close(ctx context.Context, closingAmount decimal.Decimal) (*dto.SessionResponse, error)
	// GetOpenWithSummary returns a response with a nil Session when no
	// working period is open.
	GetOpenWithSummary(ctx context.Context) (*dto.CurrentSessionResponse, error)
	// CurrentSession resolves the open session for collaborating services.
	// Returns (nil, nil) when none is open.
	CurrentSession(ctx context.Context) (*model.Session, error)
	// CurrentSessionTx re-resolves the open session under a row lock inside
	// the caller's transaction, so a concurrent close cannot commit between
	// the check and the caller's writes. Returns (nil, nil) when none is open.
	CurrentSessionTx(tx *gorm.DB) (*model.Session, error)
	History(ctx context.Context, page, limit int) (*dto.SessionListResponse, error)
}

type sessionService struct {
	repo       repository.SessionRepository
	dispatcher *worker.Dispatcher
}

func NewSessionService(repo repository.SessionRepository, dispatcher *worker.Dispatcher) SessionService {
	return &sessionService{repo: repo, dispatcher: dispatcher}
}

// ── Open ─────────────────────────────────────────────────────────────────────

func (s *sessionService) Open(ctx context.Context, userID uuid.UUID, openingFloat decimal.Decimal) (*dto.SessionResponse, error) {
	if openingFloat.IsNegative() {
		return nil, fault.New(fault.Validation, "opening float must not be negative")
	}

	session := &model.Session{
		UserID:       userID,
		OpeningFloat: openingFloat,
		OpenedAt:     time.Now(),
	}

	// The row lock on the open session serializes concurrent open attempts;
	// the partial unique index (infra schema patch) backstops the invariant
	// at the storage level.
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		existing, err := s.repo.FindOpenForUpdate(tx)
		if err != nil {
			return fault.Wrap(fault.Storage, "open-session lookup failed", err)
		}
		if existing != nil {
			return fault.New(fault.Conflict, "a session is already open")
		}
		return s.repo.Create(ctx, tx, session)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fault.New(fault.Conflict, "a session is already open")
		}
		var fe *fault.Error
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, fault.Wrap(fault.Storage, "failed to open session", err)
	}

	return sessionToResponse(session), nil
}

// ── Close ────────────────────────────────────────────────────────────────────
// Records the operator-declared closing amount as given. The declared figure
// is compared against the computed expectation later, never validated here.

func (s *sessionService) Close(ctx context.Context, closingAmount decimal.Decimal) (*dto.SessionResponse, error) {
	if closingAmount.IsNegative() {
		return nil, fault.New(fault.Validation, "closing amount must not be negative")
	}

	var session *model.Session
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		open, err := s.repo.FindOpenForUpdate(tx)
		if err != nil {
			return fault.Wrap(fault.Storage, "open-session lookup failed", err)
		}
		if open == nil {
			return fault.New(fault.Conflict, "no session is open")
		}
		now := time.Now()
		open.ClosedAt = &now
		open.ClosingAmount = &closingAmount
		session = open
		return s.repo.Update(ctx, tx, open)
	})
	if err != nil {
		var fe *fault.Error
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, fault.Wrap(fault.Storage, "failed to close session", err)
	}

	// Close-of-day summary mail is best effort; a queue failure must not
	// undo the close.
	if s.dispatcher != nil {
		if totals, err := s.repo.Totals(ctx, session.ID); err == nil {
			_ = s.dispatcher.EnqueueSummary(ctx, worker.SummaryJobPayload{
				SessionID:     session.ID.String(),
				OpeningFloat:  session.OpeningFloat.StringFixed(2),
				ClosingAmount: closingAmount.StringFixed(2),
				TotalSales:    totals.Sales.StringFixed(2),
				TotalReturns:  totals.Returns.StringFixed(2),
				TotalExpenses: totals.Expenses.StringFixed(2),
				CashInDrawer:  cashInDrawer(session.OpeningFloat, totals).StringFixed(2),
			})
		}
	}

	return sessionToResponse(session), nil
}

// ── GetOpenWithSummary ───────────────────────────────────────────────────────

func (s *sessionService) GetOpenWithSummary(ctx context.Context) (*dto.CurrentSessionResponse, error) {
	session, totals, err := s.repo.FindOpenWithTotals(ctx)
	if err != nil {
		return nil, fault.Wrap(fault.Storage, "summary computation failed", err)
	}
	if session == nil {
		return &dto.CurrentSessionResponse{Session: nil}, nil
	}

	return &dto.CurrentSessionResponse{
		Session: sessionToResponse(session),
		Summary: &dto.SessionSummary{
			TotalSales:    totals.Sales,
			TotalReturns:  totals.Returns,
			TotalExpenses: totals.Expenses,
			CashInDrawer:  cashInDrawer(session.OpeningFloat, totals),
		},
	}, nil
}

func (s *sessionService) CurrentSession(ctx context.Context) (*model.Session, error) {
	session, err := s.repo.FindOpen(ctx)
	if err != nil {
		return nil, fault.Wrap(fault.Storage, "open-session lookup failed", err)
	}
	return session, nil
}

func (s *sessionService) CurrentSessionTx(tx *gorm.DB) (*model.Session, error) {
	session, err := s.repo.FindOpenForUpdate(tx)
	if err != nil {
		return nil, fault.Wrap(fault.Storage, "open-session lookup failed", err)
	}
	return session, nil
}

func (s *sessionService) History(ctx context.Context, page, limit int) (*dto.SessionListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sessions, total, err := s.repo.ListClosed(ctx, page, limit)
	if err != nil {
		return nil, fault.Wrap(fault.Storage, "failed to list sessions", err)
	}
	data := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		data = append(data, *sessionToResponse(&sessions[i]))
	}
	return &dto.SessionListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// cashInDrawer is the reconciliation identity:
// openingFloat + totalSales - totalReturns - totalExpenses.
func cashInDrawer(openingFloat decimal.Decimal, t *repository.SessionTotals) decimal.Decimal {
	return openingFloat.Add(t.Sales).Sub(t.Returns).Sub(t.Expenses)
}

func sessionToResponse(s *model.Session) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:            s.ID.String(),
		UserID:        s.UserID.String(),
		OpeningFloat:  s.OpeningFloat,
		ClosingAmount: s.ClosingAmount,
		OpenedAt:      s.OpenedAt.Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
