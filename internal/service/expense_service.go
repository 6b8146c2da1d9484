package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"tillpos/internal/dto"
	"tillpos/internal/fault"
	"tillpos/internal/model"
	"tillpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpenseService records discretionary cash disbursements against the
// currently open session.
type ExpenseService interface {
	Create(ctx context.Context, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error)
	List(ctx context.Context, page, limit int) (*dto.ExpenseListResponse, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]dto.ExpenseResponse, error)
	// ListCurrentSession returns an empty list when no session is open.
	ListCurrentSession(ctx context.Context) ([]dto.ExpenseResponse, error)
	Delete(ctx context.Context, id uint64) error
}

type expenseService struct {
	repo     repository.ExpenseRepository
	sessions SessionService
}

func NewExpenseService(repo repository.ExpenseRepository, sessions SessionService) ExpenseService {
	return &expenseService{repo: repo, sessions: sessions}
}

func (s *expenseService) Create(ctx context.Context, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, fault.New(fault.Validation, "reason is required")
	}
	if !req.Amount.IsPositive() {
		return nil, fault.New(fault.Validation, "amount must be greater than zero")
	}

	session, err := s.sessions.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fault.New(fault.Conflict, "no session is open")
	}

	expense := &model.Expense{
		SessionID: session.ID,
		Receiver:  req.Receiver,
		Reason:    strings.TrimSpace(req.Reason),
		Amount:    req.Amount,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, fault.Wrap(fault.Storage, "expense write failed", err)
	}
	return expenseToResponse(expense), nil
}

func (s *expenseService) List(ctx context.Context, page, limit int) (*dto.ExpenseListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	expenses, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, fault.Wrap(fault.Storage, "failed to list expenses", err)
	}
	items := make([]dto.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		items = append(items, *expenseToResponse(&expenses[i]))
	}
	return &dto.ExpenseListResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *expenseService) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]dto.ExpenseResponse, error) {
	expenses, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fault.Wrap(fault.Storage, "failed to list expenses", err)
	}
	items := make([]dto.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		items = append(items, *expenseToResponse(&expenses[i]))
	}
	return items, nil
}

func (s *expenseService) ListCurrentSession(ctx context.Context) ([]dto.ExpenseResponse, error) {
	session, err := s.sessions.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return []dto.ExpenseResponse{}, nil
	}
	return s.ListBySession(ctx, session.ID)
}

func (s *expenseService) Delete(ctx context.Context, id uint64) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.Newf(fault.NotFound, "expense %d not found", id)
	}
	if err != nil {
		return fault.Wrap(fault.Storage, "expense delete failed", err)
	}
	return nil
}

func expenseToResponse(e *model.Expense) *dto.ExpenseResponse {
	return &dto.ExpenseResponse{
		ID:        e.ID,
		SessionID: e.SessionID.String(),
		Receiver:  e.Receiver,
		Reason:    e.Reason,
		Amount:    e.Amount,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}
