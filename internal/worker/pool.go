package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipt = "jobs:receipt"
	QueueSummary = "jobs:summary"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// ReceiptJobPayload asks the receipt worker to render one invoice PDF.
type ReceiptJobPayload struct {
	InvoiceID uint64 `json:"invoice_id"`
}

// SummaryJobPayload carries a closed session's reconciliation figures to the
// summary mail worker. Amounts travel as fixed-point strings so the payload
// never round-trips through binary floats.
type SummaryJobPayload struct {
	SessionID     string `json:"session_id"`
	OpeningFloat  string `json:"opening_float"`
	ClosingAmount string `json:"closing_amount"`
	TotalSales    string `json:"total_sales"`
	TotalReturns  string `json:"total_returns"`
	TotalExpenses string `json:"total_expenses"`
	CashInDrawer  string `json:"cash_in_drawer"`
}

// EnqueueReceipt pushes a receipt rendering job to Redis.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, payload ReceiptJobPayload) error {
	return d.enqueue(ctx, QueueReceipt, "receipt", payload)
}

// EnqueueSummary pushes a close-of-day summary mail job to Redis.
func (d *Dispatcher) EnqueueSummary(ctx context.Context, payload SummaryJobPayload) error {
	return d.enqueue(ctx, QueueSummary, "summary", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers holds the per-queue job processors, wired at the composition root.
type Handlers struct {
	Receipt *ReceiptWorker
	Summary *SummaryWorker
}

// StartPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP across the queues.
func StartPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	queues := []string{QueueReceipt, QueueSummary}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop with a timeout so ctx cancellation is observed
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	switch queue {
	case QueueReceipt:
		if handlers.Receipt != nil {
			handlers.Receipt.Process(ctx, job.Payload)
		}
	case QueueSummary:
		if handlers.Summary != nil {
			handlers.Summary.Process(ctx, job.Payload)
		}
	default:
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("job from unknown queue")
	}
}
