package service

import (
	"context"
	"time"

	"tillpos/internal/dto"
	"tillpos/internal/fault"
	"tillpos/internal/model"
	"tillpos/internal/repository"
)

// NavigatorService answers "previous matching invoice" / "next matching
// invoice" queries against a cursor position. It carries no state of its own:
// the invoice id is the cursor and callers hold it between requests.
type NavigatorService interface {
	// Before steps backwards. A nil cursor starts from the newest matching
	// invoice. The response carries the first matching id so the caller can
	// tell it has reached the start of the filtered set.
	Before(ctx context.Context, cursor *uint64, filter dto.InvoiceFilter) (*dto.NavigationResponse, error)
	// After steps forwards; symmetric with Before, carrying the last
	// matching id.
	After(ctx context.Context, cursor *uint64, filter dto.InvoiceFilter) (*dto.NavigationResponse, error)
}

type navigatorService struct {
	invoices repository.InvoiceRepository
	sessions SessionService
}

func NewNavigatorService(invoices repository.InvoiceRepository, sessions SessionService) NavigatorService {
	return &navigatorService{invoices: invoices, sessions: sessions}
}

func (s *navigatorService) Before(ctx context.Context, cursor *uint64, filter dto.InvoiceFilter) (*dto.NavigationResponse, error) {
	nav, empty, err := s.resolveFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	if empty {
		return &dto.NavigationResponse{}, nil
	}

	invoice, err := s.invoices.Before(ctx, cursor, nav)
	if err != nil {
		return nil, fault.Wrap(fault.Storage, "navigation query failed", err)
	}
	first, _, err := s.invoices.Bounds(ctx, nav)
	if err != nil {
		return nil, fault.Wrap(fault.Storage, "boundary query failed", err)
	}

	resp := &dto.NavigationResponse{FirstID: first}
	if invoice != nil {
		resp.Invoice = invoiceToResponse(invoice)
	}
	return resp, nil
}

func (s *navigatorService) After(ctx context.Context, cursor *uint64, filter dto.InvoiceFilter) (*dto.NavigationResponse, error) {
	nav, empty, err := s.resolveFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	if empty {
		return &dto.NavigationResponse{}, nil
	}

	invoice, err := s.invoices.After(ctx, cursor, nav)
	if err != nil {
		return nil, fault.Wrap(fault.Storage, "navigation query failed", err)
	}
	_, last, err := s.invoices.Bounds(ctx, nav)
	if err != nil {
		return nil, fault.Wrap(fault.Storage, "boundary query failed", err)
	}

	resp := &dto.NavigationResponse{LastID: last}
	if invoice != nil {
		resp.Invoice = invoiceToResponse(invoice)
	}
	return resp, nil
}

// resolveFilter turns the caller-facing filter into a repository predicate.
// The returned empty flag is true when scope=session and no session is open:
// the filtered set is empty by definition, no query needed.
func (s *navigatorService) resolveFilter(ctx context.Context, filter dto.InvoiceFilter) (repository.NavFilter, bool, error) {
	nav := repository.NavFilter{PaymentType: filter.PaymentType}

	if filter.PaymentType != "" && !model.ValidPaymentType(filter.PaymentType) {
		return nav, false, fault.New(fault.Validation, "payment type must be paid, deferred or return")
	}

	// From/To are inclusive day bounds: [from 00:00, to+1d 00:00).
	if filter.From != "" {
		from, err := time.ParseInLocation("2006-01-02", filter.From, time.Local)
		if err != nil {
			return nav, false, fault.Wrap(fault.Validation, "invalid from date", err)
		}
		nav.From = &from
	}
	if filter.To != "" {
		to, err := time.ParseInLocation("2006-01-02", filter.To, time.Local)
		if err != nil {
			return nav, false, fault.Wrap(fault.Validation, "invalid to date", err)
		}
		upper := to.AddDate(0, 0, 1)
		nav.To = &upper
	}
	if nav.From != nil && nav.To != nil && !nav.From.Before(*nav.To) {
		return nav, false, fault.New(fault.Validation, "date range is empty")
	}

	if filter.Scope == "session" {
		session, err := s.sessions.CurrentSession(ctx)
		if err != nil {
			return nav, false, err
		}
		if session == nil {
			return nav, true, nil
		}
		nav.SessionID = &session.ID
	}
	return nav, false, nil
}
