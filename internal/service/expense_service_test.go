package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpos/internal/dto"
	"tillpos/internal/fault"
)

type expenseFixture struct {
	expenses  *stubExpenseRepo
	sessions  *stubSessionRepo
	svc       ExpenseService
	sessionID uuid.UUID
}

func newExpenseFixture(t *testing.T, withSession bool) *expenseFixture {
	t.Helper()
	f := &expenseFixture{
		expenses: newStubExpenseRepo(),
		sessions: newStubSessionRepo(),
	}
	sessionSvc := NewSessionService(f.sessions, nil)
	f.svc = NewExpenseService(f.expenses, sessionSvc)
	if withSession {
		opened, err := sessionSvc.Open(context.Background(), uuid.New(), d("100.00"))
		require.NoError(t, err)
		f.sessionID = uuid.MustParse(opened.ID)
	}
	return f
}

func TestCreateExpense(t *testing.T) {
	f := newExpenseFixture(t, true)
	receiver := "courier"

	resp, err := f.svc.Create(context.Background(), dto.CreateExpenseRequest{
		Receiver: &receiver,
		Reason:   "parcel delivery",
		Amount:   d("35.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), resp.ID)
	assert.Equal(t, f.sessionID.String(), resp.SessionID)
	assert.Equal(t, "parcel delivery", resp.Reason)
	require.NotNil(t, resp.Receiver)
	assert.Equal(t, "courier", *resp.Receiver)
	assert.True(t, d("35.00").Equal(resp.Amount))
	require.Len(t, f.expenses.expenses, 1)
}

func TestCreateExpenseTrimsReason(t *testing.T) {
	f := newExpenseFixture(t, true)

	resp, err := f.svc.Create(context.Background(), dto.CreateExpenseRequest{
		Reason: "  window cleaning  ",
		Amount: d("12.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "window cleaning", resp.Reason)
}

func TestCreateExpenseBlankReason(t *testing.T) {
	f := newExpenseFixture(t, true)

	_, err := f.svc.Create(context.Background(), dto.CreateExpenseRequest{
		Reason: "   ",
		Amount: d("10.00"),
	})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Validation))
}

func TestCreateExpenseNonPositiveAmount(t *testing.T) {
	f := newExpenseFixture(t, true)

	for _, amount := range []string{"0", "-5.00"} {
		_, err := f.svc.Create(context.Background(), dto.CreateExpenseRequest{
			Reason: "supplies",
			Amount: d(amount),
		})
		require.Error(t, err, amount)
		assert.True(t, fault.Is(err, fault.Validation), amount)
	}
}

func TestCreateExpenseNoSession(t *testing.T) {
	f := newExpenseFixture(t, false)

	_, err := f.svc.Create(context.Background(), dto.CreateExpenseRequest{
		Reason: "supplies",
		Amount: d("10.00"),
	})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Conflict))
}

func TestDeleteExpense(t *testing.T) {
	f := newExpenseFixture(t, true)
	resp, err := f.svc.Create(context.Background(), dto.CreateExpenseRequest{
		Reason: "supplies",
		Amount: d("10.00"),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), resp.ID))
	assert.Empty(t, f.expenses.expenses)

	err = f.svc.Delete(context.Background(), resp.ID)
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.NotFound))
}

func TestListExpensesCurrentSessionNoneOpen(t *testing.T) {
	f := newExpenseFixture(t, false)

	items, err := f.svc.ListCurrentSession(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestListExpensesCurrentSession(t *testing.T) {
	f := newExpenseFixture(t, true)
	ctx := context.Background()
	for _, reason := range []string{"ice", "bags"} {
		_, err := f.svc.Create(ctx, dto.CreateExpenseRequest{Reason: reason, Amount: d("5.00")})
		require.NoError(t, err)
	}

	items, err := f.svc.ListCurrentSession(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, f.sessionID.String(), items[0].SessionID)
}

func TestListExpensesPagination(t *testing.T) {
	f := newExpenseFixture(t, true)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, dto.CreateExpenseRequest{Reason: "supplies", Amount: d("5.00")})
		require.NoError(t, err)
	}

	resp, err := f.svc.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 2, resp.Limit)

	// Out-of-range pages clamp rather than fail
	resp, err = f.svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 50, resp.Limit)
	assert.Len(t, resp.Items, 3)
}
