package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpos/internal/fault"
	"tillpos/internal/model"
	"tillpos/internal/repository"
)

func TestAdjustStock(t *testing.T) {
	products := newStubProductRepo()
	movements := newStubMovementRepo()
	svc := NewStockService(products, movements)

	p := products.add("flour 1kg", d("3.20"), 10)

	updated, err := svc.Adjust(context.Background(), p.ID, -4, "spoilage")
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Stock)
	assert.Equal(t, 6, products.products[p.ID].Stock)

	require.Len(t, movements.movements, 1)
	m := movements.movements[0]
	assert.Equal(t, model.MovementAdjustment, m.Type)
	assert.Equal(t, -4, m.Quantity)
	assert.Equal(t, 10, m.StockBefore)
	assert.Equal(t, 6, m.StockAfter)
	assert.Equal(t, "spoilage", m.Reason)
	assert.Nil(t, m.InvoiceID)
	assert.True(t, d("3.20").Equal(m.UnitPrice))
}

func TestAdjustStockZeroDelta(t *testing.T) {
	products := newStubProductRepo()
	svc := NewStockService(products, newStubMovementRepo())
	p := products.add("flour 1kg", d("3.20"), 10)

	_, err := svc.Adjust(context.Background(), p.ID, 0, "noop")
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Validation))
}

func TestAdjustStockUnknownProduct(t *testing.T) {
	svc := NewStockService(newStubProductRepo(), newStubMovementRepo())

	_, err := svc.Adjust(context.Background(), uuid.New(), 5, "recount")
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.NotFound))
}

func TestAdjustStockAllowsNegativeResult(t *testing.T) {
	products := newStubProductRepo()
	movements := newStubMovementRepo()
	svc := NewStockService(products, movements)
	p := products.add("flour 1kg", d("3.20"), 2)

	updated, err := svc.Adjust(context.Background(), p.ID, -5, "recount")
	require.NoError(t, err)
	assert.Equal(t, -3, updated.Stock)
	require.Len(t, movements.movements, 1)
	assert.Equal(t, -3, movements.movements[0].StockAfter)
}

func TestAdjustStockMovementWriteFails(t *testing.T) {
	products := newStubProductRepo()
	movements := newStubMovementRepo()
	movements.createErr = errBoom
	svc := NewStockService(products, movements)
	p := products.add("flour 1kg", d("3.20"), 10)

	_, err := svc.Adjust(context.Background(), p.ID, 2, "recount")
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Storage))
}

func TestListMovementsFiltered(t *testing.T) {
	products := newStubProductRepo()
	movements := newStubMovementRepo()
	svc := NewStockService(products, movements)
	p1 := products.add("flour 1kg", d("3.20"), 10)
	p2 := products.add("sugar 1kg", d("2.80"), 10)

	ctx := context.Background()
	_, err := svc.Adjust(ctx, p1.ID, -1, "recount")
	require.NoError(t, err)
	_, err = svc.Adjust(ctx, p2.ID, 3, "delivery")
	require.NoError(t, err)

	out, total, err := svc.ListMovements(ctx, repository.StockMovementFilter{ProductID: &p1.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, out, 1)
	assert.Equal(t, p1.ID, out[0].ProductID)
}
