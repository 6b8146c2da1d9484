package worker

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"tillpos/internal/infra"
	"tillpos/internal/repository"
)

// ReceiptWorker renders a thermal receipt PDF for each finalized invoice.
type ReceiptWorker struct {
	invoices repository.InvoiceRepository
	renderer *infra.ReceiptRenderer
}

func NewReceiptWorker(invoices repository.InvoiceRepository, renderer *infra.ReceiptRenderer) *ReceiptWorker {
	return &ReceiptWorker{invoices: invoices, renderer: renderer}
}

func (w *ReceiptWorker) Process(ctx context.Context, payload json.RawMessage) {
	var job ReceiptJobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		log.Error().Err(err).Msg("receipt worker: bad payload")
		return
	}

	invoice, err := w.invoices.FindByID(ctx, job.InvoiceID)
	if err != nil {
		log.Error().Uint64("invoice_id", job.InvoiceID).Err(err).Msg("receipt worker: invoice lookup failed")
		return
	}

	path, err := w.renderer.Render(invoice)
	if err != nil {
		log.Error().Uint64("invoice_id", job.InvoiceID).Err(err).Msg("receipt worker: render failed")
		return
	}

	log.Info().Uint64("invoice_id", job.InvoiceID).Str("path", path).Msg("receipt rendered")
}
