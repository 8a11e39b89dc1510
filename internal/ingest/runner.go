package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/mail"
	"github.com/spec-kit/helpdesk/internal/observability"
)

// Mailbox is the slice of the IMAP client the runner needs.
type Mailbox interface {
	FetchUnseen(ctx context.Context, since time.Time, limit int) ([]mail.RawMessage, error)
	MarkSeen(ctx context.Context, uid uint32) error
}

// Summary aggregates the outcome of one poll run.
type Summary struct {
	Processed int
	Skipped   int
	Errors    int
	Total     int
}

// Runner drives one poll cycle: fetch a batch, push every message
// through the engine, mark finalized messages as seen. Failures are
// isolated per message so one bad email never blocks the batch.
type Runner struct {
	mailbox Mailbox
	engine  *Engine
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewRunner(mailbox Mailbox, engine *Engine, metrics *observability.Metrics, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{mailbox: mailbox, engine: engine, metrics: metrics, logger: logger}
}

// Run fetches up to limit unseen messages newer than since and processes
// them. A fetch failure aborts the run; per-message failures are counted
// and the message stays unseen for the next poll.
func (r *Runner) Run(ctx context.Context, since time.Time, limit int) (Summary, error) {
	raws, err := r.mailbox.FetchUnseen(ctx, since, limit)
	if err != nil {
		return Summary{}, fmt.Errorf("fetching unseen messages: %w", err)
	}

	summary := Summary{Total: len(raws)}
	for i := range raws {
		raw := &raws[i]
		result, err := r.processOne(ctx, raw)
		if err != nil {
			summary.Errors++
			r.metrics.RecordIngest("error")
			r.logger.Error("processing email failed",
				zap.Uint32("uid", raw.UID),
				zap.String("message_id", raw.MessageID),
				zap.Error(err))
			continue
		}

		r.metrics.RecordIngest(string(result.Outcome))
		switch result.Outcome {
		case OutcomeCreated, OutcomeAppended:
			summary.Processed++
		case OutcomeDuplicate, OutcomeUnrouteable:
			summary.Skipped++
		}

		// Seen is only set once the outcome is final, so a crash before
		// this point leaves the message for the next poll.
		if err := r.mailbox.MarkSeen(ctx, raw.UID); err != nil {
			r.logger.Warn("marking message seen failed",
				zap.Uint32("uid", raw.UID), zap.Error(err))
		}

		r.logger.Info("email handled",
			zap.Uint32("uid", raw.UID),
			zap.String("outcome", string(result.Outcome)),
			zap.String("ticket_id", result.TicketID))
	}

	r.logger.Info("mailbox poll finished",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
		zap.Int("total", summary.Total))
	return summary, nil
}

// processOne normalizes and ingests a single message, converting panics
// into errors so a malformed payload cannot take down the batch.
func (r *Runner) processOne(ctx context.Context, raw *mail.RawMessage) (result Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic processing message uid %d: %v", raw.UID, rec)
		}
	}()

	msg, err := Normalize(raw)
	if err != nil {
		if errors.Is(err, ErrMalformedMessage) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("normalizing message uid %d: %w", raw.UID, err)
	}
	return r.engine.Process(ctx, msg)
}
