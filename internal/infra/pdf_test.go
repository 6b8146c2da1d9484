package infra

import (
	"os"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpos/internal/model"
)

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "Cola 500ml", truncateName("Cola 500ml", 22))

	long := truncateName("Extra long product name that overflows", 22)
	assert.Equal(t, 22, len([]rune(long)))
	assert.True(t, utf8.ValidString(long))

	// Multibyte names stay valid UTF-8, never cut mid-rune.
	multibyte := truncateName("Café con leche grande tamaño doble", 22)
	assert.Equal(t, 22, len([]rune(multibyte)))
	assert.True(t, utf8.ValidString(multibyte))
}

func TestRenderReceipt(t *testing.T) {
	r := NewReceiptRenderer(t.TempDir(), "TillPOS Test")

	price := decimal.RequireFromString("5.25")
	name := "Café con leche grande tamaño doble"
	inv := &model.Invoice{
		ID:          7,
		SessionID:   uuid.New(),
		PaymentType: model.PaymentPaid,
		Discount:    decimal.Zero,
		Total:       price,
		NetTotal:    price,
		CreatedAt:   time.Now(),
		Items: []model.InvoiceItem{{
			ProductID:    uuid.New(),
			Quantity:     1,
			UnitPrice:    price,
			LineTotal:    price,
			LineNetTotal: price,
			Product:      &model.Product{Name: name},
		}},
	}

	path, err := r.Render(inv)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
