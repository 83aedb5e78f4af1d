package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/greystone/lending-api/internal/domain/event"
	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/port"
	"github.com/greystone/lending-api/internal/domain/valueobject"
	"github.com/greystone/lending-api/pkg/events"
	pgutil "github.com/greystone/lending-api/pkg/postgres"
)

// UserRepo implements port.UserRepository.
type UserRepo struct {
	db pgutil.DB
}

// NewUserRepo creates a new PostgreSQL-backed user repository.
func NewUserRepo(db pgutil.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ port.UserRepository = (*UserRepo)(nil)

// Save upserts the user and records its pending events in the outbox within
// one transaction.
func (r *UserRepo) Save(ctx context.Context, user model.User) error {
	query := `
		INSERT INTO users (id, email, full_name, hashed_password, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			full_name       = EXCLUDED.full_name,
			hashed_password = EXCLUDED.hashed_password,
			is_active       = EXCLUDED.is_active,
			updated_at      = EXCLUDED.updated_at
	`
	return pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			user.ID(), user.Email().String(), nullable(user.FullName()), user.HashedPassword(),
			user.IsActive(), user.CreatedAt(), user.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("save user: %w", translateWriteError(err))
		}
		return storeOutbox(ctx, tx, events.NewOutboxEntries(user.DomainEvents()))
	})
}

// deleteUserLoansQuery removes every loan of a user and returns their ids.
const deleteUserLoansQuery = `
	WITH gone AS (DELETE FROM loans WHERE user_id = $1 RETURNING id)
	SELECT COALESCE(array_agg(id::text), '{}') FROM gone
`

// Delete removes the user and the user's loans in one transaction. Each
// removed loan gets a lending.loan.deleted entry ahead of the user's own
// events. The user row is locked first so no loan can be added in between.
func (r *UserRepo) Delete(ctx context.Context, user model.User) error {
	return pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, user.ID()).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		var loanIDs []string
		if err := tx.QueryRow(ctx, deleteUserLoansQuery, user.ID()).Scan(&loanIDs); err != nil {
			return fmt.Errorf("delete user loans: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID())
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrUserNotFound
		}

		pending := make([]events.DomainEvent, 0, len(loanIDs)+len(user.DomainEvents()))
		at := time.Now().UTC()
		for _, raw := range loanIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("parse loan id %q: %w", raw, err)
			}
			pending = append(pending, event.NewLoanDeleted(id, user.ID(), at))
		}
		pending = append(pending, user.DomainEvents()...)
		return storeOutbox(ctx, tx, events.NewOutboxEntries(pending))
	})
}

// FindByID retrieves a user by ID.
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// FindByEmail retrieves a user by normalized email address.
func (r *UserRepo) FindByEmail(ctx context.Context, email valueobject.Email) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email.String()))
}

// List returns a page of users in creation order.
func (r *UserRepo) List(ctx context.Context, page port.Page) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id OFFSET $1 LIMIT $2`
	rows, err := r.db.Query(ctx, query, page.Skip, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	result := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return result, nil
}
