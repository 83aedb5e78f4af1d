package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/valueobject"
)

// Postgres error codes and constraint names the repositories translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"

	constraintUsersEmail = "users_email_key"
	constraintLoansUser  = "loans_user_id_fkey"
)

const userColumns = `id, email, full_name, hashed_password, is_active, created_at, updated_at`

const loanColumns = `id, user_id, principal, annual_interest_rate, term_months, start_date, name, created_at, updated_at`

type scannable interface {
	Scan(dest ...any) error
}

func scanUser(s scannable) (model.User, error) {
	var (
		id             uuid.UUID
		email          string
		fullName       *string
		hashedPassword string
		isActive       bool
		createdAt      time.Time
		updatedAt      time.Time
	)
	if err := s.Scan(&id, &email, &fullName, &hashedPassword, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}

	addr, err := valueobject.NewEmail(email)
	if err != nil {
		return model.User{}, fmt.Errorf("scan user %s: %w", id, err)
	}

	return model.ReconstructUser(id, addr, deref(fullName), hashedPassword, isActive, createdAt, updatedAt), nil
}

func scanLoan(s scannable) (model.Loan, error) {
	var (
		id         uuid.UUID
		userID     uuid.UUID
		principal  decimal.Decimal
		annualRate decimal.Decimal
		termMonths int
		startDate  time.Time
		name       *string
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := s.Scan(&id, &userID, &principal, &annualRate, &termMonths, &startDate, &name, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Loan{}, model.ErrLoanNotFound
		}
		return model.Loan{}, fmt.Errorf("scan loan: %w", err)
	}

	return model.ReconstructLoan(id, userID, principal, annualRate, termMonths, startDate, deref(name), createdAt, updatedAt), nil
}

// translateWriteError maps constraint violations onto domain errors.
func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == constraintUsersEmail:
		return model.ErrEmailAlreadyRegistered
	case pgErr.Code == codeForeignKeyViolation && pgErr.ConstraintName == constraintLoansUser:
		return model.ErrUserNotFound
	default:
		return err
	}
}

// nullable stores empty optional text as NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
