package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpos/internal/dto"
	"tillpos/internal/fault"
	"tillpos/internal/model"
)

type invoiceFixture struct {
	invoices  *stubInvoiceRepo
	sessions  *stubSessionRepo
	products  *stubProductRepo
	movements *stubMovementRepo
	svc       InvoiceService
	sessionID uuid.UUID
}

func newInvoiceFixture(t *testing.T, withSession bool) *invoiceFixture {
	t.Helper()
	f := &invoiceFixture{
		invoices:  newStubInvoiceRepo(),
		sessions:  newStubSessionRepo(),
		products:  newStubProductRepo(),
		movements: newStubMovementRepo(),
	}
	sessionSvc := NewSessionService(f.sessions, nil)
	stockSvc := NewStockService(f.products, f.movements)
	f.svc = NewInvoiceService(f.invoices, sessionSvc, f.products, stockSvc, nil)

	if withSession {
		resp, err := sessionSvc.Open(context.Background(), uuid.New(), d("100.00"))
		require.NoError(t, err)
		f.sessionID = uuid.MustParse(resp.ID)
	}
	return f
}

func lineReq(productID uuid.UUID, qty int) dto.InvoiceItemRequest {
	return dto.InvoiceItemRequest{ProductID: productID.String(), Quantity: qty}
}

func TestCreateInvoicePaid(t *testing.T) {
	f := newInvoiceFixture(t, true)
	cola := f.products.add("Cola 500ml", d("2.50"), 10)
	chips := f.products.add("Chips", d("4.00"), 5)

	resp, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentPaid,
		Items: []dto.InvoiceItemRequest{
			lineReq(cola.ID, 4),
			lineReq(chips.ID, 2),
		},
	})
	require.NoError(t, err)

	// 4 x 2.50 + 2 x 4.00
	assert.True(t, d("18.00").Equal(resp.Total))
	assert.True(t, d("18.00").Equal(resp.NetTotal))
	assert.Equal(t, f.sessionID.String(), resp.SessionID)
	assert.Len(t, resp.Items, 2)

	// Stock moved out
	assert.Equal(t, 6, f.products.products[cola.ID].Stock)
	assert.Equal(t, 3, f.products.products[chips.ID].Stock)

	// One movement per line, linked back to the invoice
	require.Len(t, f.movements.movements, 2)
	for _, m := range f.movements.movements {
		assert.Equal(t, model.MovementSale, m.Type)
		assert.Negative(t, m.Quantity)
		require.NotNil(t, m.InvoiceID)
		assert.Equal(t, resp.ID, *m.InvoiceID)
	}
}

func TestCreateInvoiceDeferredDecrementsStock(t *testing.T) {
	f := newInvoiceFixture(t, true)
	p := f.products.add("Bread", d("1.20"), 8)

	_, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentDeferred,
		Items:       []dto.InvoiceItemRequest{lineReq(p.ID, 3)},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, f.products.products[p.ID].Stock)
}

func TestCreateInvoiceReturnIncrementsStock(t *testing.T) {
	f := newInvoiceFixture(t, true)
	p := f.products.add("Milk", d("3.00"), 2)

	resp, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentReturn,
		Items:       []dto.InvoiceItemRequest{lineReq(p.ID, 4)},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, f.products.products[p.ID].Stock)

	require.Len(t, f.movements.movements, 1)
	assert.Equal(t, model.MovementReturn, f.movements.movements[0].Type)
	assert.Equal(t, 4, f.movements.movements[0].Quantity)
	assert.True(t, d("12.00").Equal(resp.NetTotal))
}

func TestCreateInvoiceNoSession(t *testing.T) {
	f := newInvoiceFixture(t, false)
	p := f.products.add("Gum", d("0.50"), 10)

	_, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentPaid,
		Items:       []dto.InvoiceItemRequest{lineReq(p.ID, 1)},
	})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Conflict))
}

func TestCreateInvoiceValidation(t *testing.T) {
	f := newInvoiceFixture(t, true)
	p := f.products.add("Soap", d("2.00"), 10)

	cases := []struct {
		name string
		req  dto.CreateInvoiceRequest
	}{
		{"no items", dto.CreateInvoiceRequest{PaymentType: model.PaymentPaid}},
		{"bad payment type", dto.CreateInvoiceRequest{
			PaymentType: "credit",
			Items:       []dto.InvoiceItemRequest{lineReq(p.ID, 1)},
		}},
		{"zero quantity", dto.CreateInvoiceRequest{
			PaymentType: model.PaymentPaid,
			Items:       []dto.InvoiceItemRequest{{ProductID: p.ID.String(), Quantity: 0}},
		}},
		{"negative discount", dto.CreateInvoiceRequest{
			PaymentType: model.PaymentPaid,
			Discount:    d("-1.00"),
			Items:       []dto.InvoiceItemRequest{lineReq(p.ID, 1)},
		}},
		{"negative line discount", dto.CreateInvoiceRequest{
			PaymentType: model.PaymentPaid,
			Items: []dto.InvoiceItemRequest{{
				ProductID: p.ID.String(), Quantity: 1, LineDiscount: d("-0.50"),
			}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, fault.Is(err, fault.Validation))
		})
	}
}

func TestCreateInvoiceUnknownProduct(t *testing.T) {
	f := newInvoiceFixture(t, true)

	_, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentPaid,
		Items:       []dto.InvoiceItemRequest{lineReq(uuid.New(), 1)},
	})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.NotFound))
}

func TestCreateInvoiceInactiveProduct(t *testing.T) {
	f := newInvoiceFixture(t, true)
	p := f.products.add("Old stock", d("1.00"), 3)
	p.Active = false

	_, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentPaid,
		Items:       []dto.InvoiceItemRequest{lineReq(p.ID, 1)},
	})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Validation))
}

func TestCreateInvoiceZeroPriceUsesCatalog(t *testing.T) {
	f := newInvoiceFixture(t, true)
	p := f.products.add("Juice", d("5.25"), 10)

	resp, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentPaid,
		Items:       []dto.InvoiceItemRequest{lineReq(p.ID, 2)},
	})
	require.NoError(t, err)
	assert.True(t, d("5.25").Equal(resp.Items[0].UnitPrice))
	assert.True(t, d("10.50").Equal(resp.Total))
}

func TestCreateInvoiceOverridePrice(t *testing.T) {
	f := newInvoiceFixture(t, true)
	p := f.products.add("Juice", d("5.25"), 10)

	resp, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentPaid,
		Items: []dto.InvoiceItemRequest{{
			ProductID: p.ID.String(), Quantity: 2, UnitPrice: d("4.00"),
		}},
	})
	require.NoError(t, err)
	assert.True(t, d("4.00").Equal(resp.Items[0].UnitPrice))
	assert.True(t, d("8.00").Equal(resp.Total))
}

func TestCreateInvoiceLineDiscountFloorsAtZero(t *testing.T) {
	f := newInvoiceFixture(t, true)
	p := f.products.add("Sample", d("2.00"), 10)

	resp, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentPaid,
		Items: []dto.InvoiceItemRequest{{
			ProductID: p.ID.String(), Quantity: 1, LineDiscount: d("5.00"),
		}},
	})
	require.NoError(t, err)
	// Line discount larger than the line total clamps the net to zero; the
	// pre-discount total keeps the full line amount.
	assert.True(t, resp.Items[0].LineNetTotal.IsZero())
	assert.True(t, d("2.00").Equal(resp.Total))
}

func TestCreateInvoiceHeaderDiscount(t *testing.T) {
	f := newInvoiceFixture(t, true)
	p := f.products.add("Combo", d("10.00"), 10)

	resp, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentPaid,
		Discount:    d("3.00"),
		Items:       []dto.InvoiceItemRequest{lineReq(p.ID, 2)},
	})
	require.NoError(t, err)
	assert.True(t, d("20.00").Equal(resp.Total))
	assert.True(t, d("17.00").Equal(resp.NetTotal))
}

func TestCreateInvoiceDiscountExceedsTotal(t *testing.T) {
	f := newInvoiceFixture(t, true)
	p := f.products.add("Cheap", d("1.00"), 10)

	_, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentPaid,
		Discount:    d("2.00"),
		Items:       []dto.InvoiceItemRequest{lineReq(p.ID, 1)},
	})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Validation))
}

func TestCreateInvoiceAllowsNegativeStock(t *testing.T) {
	f := newInvoiceFixture(t, true)
	p := f.products.add("Scarce", d("2.00"), 1)

	_, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentPaid,
		Items:       []dto.InvoiceItemRequest{lineReq(p.ID, 3)},
	})
	require.NoError(t, err)
	assert.Equal(t, -2, f.products.products[p.ID].Stock)
}

func TestCreateInvoiceStockFailurePropagates(t *testing.T) {
	f := newInvoiceFixture(t, true)
	good := f.products.add("Good", d("1.00"), 5)
	bad := f.products.add("Bad", d("1.00"), 5)
	f.products.adjustErr = errBoom
	f.products.adjustErrFor = bad.ID

	_, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentPaid,
		Items: []dto.InvoiceItemRequest{
			lineReq(good.ID, 1),
			lineReq(bad.ID, 1),
		},
	})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Storage))
}

func TestReclassify(t *testing.T) {
	f := newInvoiceFixture(t, true)
	p := f.products.add("Thing", d("2.00"), 5)

	resp, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentPaid,
		Items:       []dto.InvoiceItemRequest{lineReq(p.ID, 1)},
	})
	require.NoError(t, err)
	stockAfterSale := f.products.products[p.ID].Stock

	require.NoError(t, f.svc.Reclassify(context.Background(), resp.ID, model.PaymentDeferred))

	got, err := f.svc.Get(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentDeferred, got.PaymentType)

	// The label changed; goods flow did not.
	assert.Equal(t, stockAfterSale, f.products.products[p.ID].Stock)
	assert.Len(t, f.movements.movements, 1)
}

func TestCreateInvoiceSessionClosedBeforeCommit(t *testing.T) {
	f := newInvoiceFixture(t, true)
	p := f.products.add("Cola 500ml", d("2.50"), 10)

	// A concurrent close commits after pre-flight resolution but before the
	// invoice transaction takes the row lock.
	f.sessions.onLock = func() { f.sessions.open = nil }

	_, err := f.svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PaymentType: model.PaymentPaid,
		Items:       []dto.InvoiceItemRequest{lineReq(p.ID, 2)},
	})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Conflict))

	// Nothing attached to the closed session
	assert.Empty(t, f.invoices.invoices)
	assert.Empty(t, f.movements.movements)
	assert.Equal(t, 10, f.products.products[p.ID].Stock)
}

func TestReclassifyUnknownInvoice(t *testing.T) {
	f := newInvoiceFixture(t, true)

	err := f.svc.Reclassify(context.Background(), 999, model.PaymentReturn)
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.NotFound))
}

func TestReclassifyBadType(t *testing.T) {
	f := newInvoiceFixture(t, true)

	err := f.svc.Reclassify(context.Background(), 1, "cash")
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Validation))
}
