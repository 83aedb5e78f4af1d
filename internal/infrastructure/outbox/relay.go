package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/greystone/lending-api/pkg/events"
)

// Relay moves unpublished outbox entries to the broker. Delivery is at least
// once: an entry published but not yet marked is sent again on the next run.
type Relay struct {
	repo      events.OutboxRepository
	publisher events.Publisher
	topic     string
	batchSize int
	logger    *slog.Logger
	cron      *cron.Cron
}

// NewRelay wires dependencies. batchSize below 1 falls back to 100.
func NewRelay(repo events.OutboxRepository, publisher events.Publisher, topic string, batchSize int, logger *slog.Logger) *Relay {
	if batchSize < 1 {
		batchSize = 100
	}
	return &Relay{
		repo:      repo,
		publisher: publisher,
		topic:     topic,
		batchSize: batchSize,
		logger:    logger,
	}
}

// RunOnce relays a single batch and returns how many entries were published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	entries, err := r.repo.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if err := r.publisher.Publish(ctx, r.topic, entries...); err != nil {
		return 0, err
	}

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := r.repo.MarkPublished(ctx, ids); err != nil {
		return 0, fmt.Errorf("mark published: %w", err)
	}
	return len(entries), nil
}

// Drain relays batches until the outbox is empty or a run fails.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := r.RunOnce(ctx)
		total += n
		if err != nil || n < r.batchSize || ctx.Err() != nil {
			return total, err
		}
	}
}

// Start schedules Drain on a cron spec such as "@every 10s". Overlapping
// runs are skipped. ctx bounds each run.
func (r *Relay) Start(ctx context.Context, spec string) error {
	logger := cronLogger{r.logger}
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	_, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		n, err := r.Drain(runCtx)
		if err != nil {
			r.logger.ErrorContext(runCtx, "outbox relay failed", "error", err, "published", n)
			return
		}
		if n > 0 {
			r.logger.InfoContext(runCtx, "outbox relayed", "published", n, "topic", r.topic)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule outbox relay %q: %w", spec, err)
	}

	r.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule and waits for a running relay to finish.
func (r *Relay) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
