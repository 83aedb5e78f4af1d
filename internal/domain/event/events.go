package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greystone/lending-api/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// Aggregate type names.
const (
	AggregateUser = "User"
	AggregateLoan = "Loan"
)

// Event type names published on the lending topic.
const (
	TypeUserRegistered = "lending.user.registered"
	TypeUserUpdated    = "lending.user.updated"
	TypeUserDeleted    = "lending.user.deleted"
	TypeLoanCreated    = "lending.loan.created"
	TypeLoanUpdated    = "lending.loan.updated"
	TypeLoanDeleted    = "lending.loan.deleted"
)

// newEvent encodes body as the event payload. Bodies are plain structs of
// strings, numbers and decimals, which always marshal.
func newEvent(eventType string, aggregateID uuid.UUID, aggregateType string, body any) events.BaseEvent {
	payload, _ := json.Marshal(body)
	return events.NewBaseEvent(eventType, aggregateID, aggregateType, payload)
}

// ---------------------------------------------------------------------------
// User events
// ---------------------------------------------------------------------------

// UserSnapshot is the public state of a user carried by user events. It
// never includes the password hash.
type UserSnapshot struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	IsActive bool   `json:"is_active"`
}

func NewUserRegistered(userID uuid.UUID, s UserSnapshot) DomainEvent {
	return newEvent(TypeUserRegistered, userID, AggregateUser, s)
}

// UserUpdated lists the changed fields alongside the new state.
type UserUpdated struct {
	UserSnapshot
	Changed         []string `json:"changed"`
	PasswordChanged bool     `json:"password_changed"`
}

func NewUserUpdated(userID uuid.UUID, body UserUpdated) DomainEvent {
	return newEvent(TypeUserUpdated, userID, AggregateUser, body)
}

type userDeleted struct {
	UserID    string    `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

func NewUserDeleted(userID uuid.UUID, at time.Time) DomainEvent {
	return newEvent(TypeUserDeleted, userID, AggregateUser, userDeleted{UserID: userID.String(), DeletedAt: at})
}

// ---------------------------------------------------------------------------
// Loan events
// ---------------------------------------------------------------------------

// LoanSnapshot is the state of a loan carried by loan events.
type LoanSnapshot struct {
	LoanID     string          `json:"loan_id"`
	UserID     string          `json:"user_id"`
	Principal  decimal.Decimal `json:"principal"`
	AnnualRate decimal.Decimal `json:"annual_interest_rate"`
	TermMonths int             `json:"term_months"`
	StartDate  string          `json:"start_date"`
	Name       string          `json:"name,omitempty"`
}

func NewLoanCreated(loanID uuid.UUID, s LoanSnapshot) DomainEvent {
	return newEvent(TypeLoanCreated, loanID, AggregateLoan, s)
}

// LoanUpdated lists the changed fields alongside the new state.
type LoanUpdated struct {
	LoanSnapshot
	Changed []string `json:"changed"`
}

func NewLoanUpdated(loanID uuid.UUID, body LoanUpdated) DomainEvent {
	return newEvent(TypeLoanUpdated, loanID, AggregateLoan, body)
}

type loanDeleted struct {
	LoanID    string    `json:"loan_id"`
	UserID    string    `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

func NewLoanDeleted(loanID, userID uuid.UUID, at time.Time) DomainEvent {
	return newEvent(TypeLoanDeleted, loanID, AggregateLoan, loanDeleted{
		LoanID:    loanID.String(),
		UserID:    userID.String(),
		DeletedAt: at,
	})
}
