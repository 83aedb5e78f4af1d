package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/port"
	"github.com/greystone/lending-api/pkg/events"
	pgutil "github.com/greystone/lending-api/pkg/postgres"
)

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	db pgutil.DB
}

// NewLoanRepo creates a new PostgreSQL-backed loan repository.
func NewLoanRepo(db pgutil.DB) *LoanRepo {
	return &LoanRepo{db: db}
}

var _ port.LoanRepository = (*LoanRepo)(nil)

// Save upserts the loan terms and records pending events in the outbox.
// Schedules are derived on read and never stored.
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	query := `
		INSERT INTO loans (
			id, user_id, principal, annual_interest_rate, term_months,
			start_date, name, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			principal            = EXCLUDED.principal,
			annual_interest_rate = EXCLUDED.annual_interest_rate,
			term_months          = EXCLUDED.term_months,
			start_date           = EXCLUDED.start_date,
			name                 = EXCLUDED.name,
			updated_at           = EXCLUDED.updated_at
	`
	return pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			loan.ID(), loan.UserID(), loan.Principal(), loan.AnnualRate(), loan.TermMonths(),
			loan.StartDate(), nullable(loan.Name()), loan.CreatedAt(), loan.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("save loan: %w", translateWriteError(err))
		}
		return storeOutbox(ctx, tx, events.NewOutboxEntries(loan.DomainEvents()))
	})
}

// Delete removes the loan and records the deletion event.
func (r *LoanRepo) Delete(ctx context.Context, loan model.Loan) error {
	return pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM loans WHERE id = $1`, loan.ID())
		if err != nil {
			return fmt.Errorf("delete loan: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrLoanNotFound
		}
		return storeOutbox(ctx, tx, events.NewOutboxEntries(loan.DomainEvents()))
	})
}

// FindByID retrieves a loan by ID.
func (r *LoanRepo) FindByID(ctx context.Context, id uuid.UUID) (model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	return scanLoan(r.db.QueryRow(ctx, query, id))
}

// List returns a page of loans across all users in creation order.
func (r *LoanRepo) List(ctx context.Context, page port.Page) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans ORDER BY created_at, id OFFSET $1 LIMIT $2`
	return r.scanMany(ctx, query, page.Skip, page.Limit)
}

// ListByUser returns every loan owned by userID.
func (r *LoanRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE user_id = $1 ORDER BY created_at, id`
	return r.scanMany(ctx, query, userID)
}

func (r *LoanRepo) scanMany(ctx context.Context, query string, args ...any) ([]model.Loan, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	result := make([]model.Loan, 0)
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loans: %w", err)
	}
	return result, nil
}
