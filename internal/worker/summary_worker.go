package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"tillpos/internal/infra"
)

// SummaryWorker mails the reconciliation summary after a session closes.
type SummaryWorker struct {
	mailer    *infra.Mailer
	storeName string
	recipient string
}

func NewSummaryWorker(mailer *infra.Mailer, storeName, recipient string) *SummaryWorker {
	return &SummaryWorker{mailer: mailer, storeName: storeName, recipient: recipient}
}

func (w *SummaryWorker) Process(ctx context.Context, payload json.RawMessage) {
	var job SummaryJobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		log.Error().Err(err).Msg("summary worker: bad payload")
		return
	}

	if w.recipient == "" {
		log.Warn().Str("session_id", job.SessionID).Msg("summary worker: no report recipient configured, skipping mail")
		return
	}

	subject := fmt.Sprintf("%s: session close summary", w.storeName)
	body := fmt.Sprintf(
		"Session %s closed.\n\n"+
			"Opening float:   %s\n"+
			"Total sales:     %s\n"+
			"Total returns:   %s\n"+
			"Total expenses:  %s\n"+
			"Expected drawer: %s\n"+
			"Counted drawer:  %s\n",
		job.SessionID,
		job.OpeningFloat,
		job.TotalSales,
		job.TotalReturns,
		job.TotalExpenses,
		job.CashInDrawer,
		job.ClosingAmount,
	)

	if err := w.mailer.Send(w.recipient, subject, body); err != nil {
		log.Error().Str("session_id", job.SessionID).Err(err).Msg("summary worker: send failed")
		return
	}

	log.Info().Str("session_id", job.SessionID).Str("to", w.recipient).Msg("session summary mailed")
}
