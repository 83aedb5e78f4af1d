package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/greystone/lending-api/pkg/events"
	pgutil "github.com/greystone/lending-api/pkg/postgres"
)

// OutboxRepo implements events.OutboxRepository.
type OutboxRepo struct {
	db pgutil.Querier
}

// NewOutboxRepo creates a new PostgreSQL-backed outbox repository.
func NewOutboxRepo(db pgutil.Querier) *OutboxRepo {
	return &OutboxRepo{db: db}
}

var _ events.OutboxRepository = (*OutboxRepo)(nil)

// Store appends entries outside of any aggregate transaction.
func (r *OutboxRepo) Store(ctx context.Context, entries []events.OutboxEntry) error {
	return storeOutbox(ctx, r.db, entries)
}

// FetchUnpublished returns the oldest unpublished entries first.
func (r *OutboxRepo) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at, published_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var result []events.OutboxEntry
	for rows.Next() {
		var e events.OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Payload, &e.CreatedAt, &e.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return result, nil
}

// MarkPublished stamps the given entries so they are not relayed again.
func (r *OutboxRepo) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`UPDATE outbox SET published_at = now() WHERE id = ANY($1::uuid[]) AND published_at IS NULL`,
		uuidStrings(ids),
	)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

func storeOutbox(ctx context.Context, q pgutil.Querier, entries []events.OutboxEntry) error {
	query := `
		INSERT INTO outbox (id, aggregate_id, aggregate_type, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	for _, e := range entries {
		if _, err := q.Exec(ctx, query, e.ID, e.AggregateID, e.AggregateType, e.EventType, e.Payload, e.CreatedAt); err != nil {
			return fmt.Errorf("store outbox entry %s: %w", e.EventType, err)
		}
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
