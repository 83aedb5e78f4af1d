package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/valueobject"
)

// Page is an offset/limit window over a listing ordered by creation time.
type Page struct {
	Skip  int
	Limit int
}

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// UserRepository persists and retrieves users. Save and Delete also store
// the aggregate's pending domain events in the outbox.
type UserRepository interface {
	// Save inserts or updates the user. A clash on email returns
	// model.ErrEmailAlreadyRegistered.
	Save(ctx context.Context, user model.User) error
	// Delete removes the user and, by cascade, every loan the user owns.
	Delete(ctx context.Context, user model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (model.User, error)
	FindByEmail(ctx context.Context, email valueobject.Email) (model.User, error)
	List(ctx context.Context, page Page) ([]model.User, error)
}

// LoanRepository persists and retrieves loans.
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	Delete(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, id uuid.UUID) (model.Loan, error)
	List(ctx context.Context, page Page) ([]model.Loan, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Loan, error)
}

// ---------------------------------------------------------------------------
// Service ports
// ---------------------------------------------------------------------------

// PasswordHasher turns plaintext passwords into one-way hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// ScheduleCache stores computed schedules keyed by their inputs. The engine
// is deterministic, so a hit never needs revalidation.
type ScheduleCache interface {
	Get(ctx context.Context, in model.AmortizationInput) (model.AmortizationSchedule, bool, error)
	Set(ctx context.Context, in model.AmortizationInput, s model.AmortizationSchedule) error
}
