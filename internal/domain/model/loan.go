package model

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greystone/lending-api/internal/domain/event"
	"github.com/greystone/lending-api/pkg/money"
)

const maxLoanNameLength = 255

var (
	// NUMERIC(18,2) and NUMERIC(7,4) upper bounds.
	maxPrincipal = decimal.New(1, 16)
	maxRate      = decimal.NewFromInt(1000)
)

// ---------------------------------------------------------------------------
// Loan aggregate root
// ---------------------------------------------------------------------------

// Loan is an immutable aggregate. Mutations return a new copy.
type Loan struct {
	id           uuid.UUID
	userID       uuid.UUID
	principal    decimal.Decimal
	annualRate   decimal.Decimal
	termMonths   int
	startDate    time.Time
	name         string
	createdAt    time.Time
	updatedAt    time.Time
	domainEvents []event.DomainEvent
}

// LoanUpdate carries the fields of a partial update; nil means unchanged.
type LoanUpdate struct {
	Principal  *decimal.Decimal
	AnnualRate *decimal.Decimal
	TermMonths *int
	StartDate  *time.Time
	Name       *string
}

// ValidateTerms applies the engine preconditions plus the stored precision of
// principal (two fractional digits) and rate (four).
func ValidateTerms(in AmortizationInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if !money.FitsScale(in.Principal, money.Scale) {
		return invalid("principal", "must have at most 2 decimal places")
	}
	if in.Principal.GreaterThanOrEqual(maxPrincipal) {
		return invalid("principal", "is too large")
	}
	if !money.FitsScale(in.AnnualRate, money.RateScale) {
		return invalid("annual_interest_rate", "must have at most 4 decimal places")
	}
	if in.AnnualRate.GreaterThanOrEqual(maxRate) {
		return invalid("annual_interest_rate", "is too large")
	}
	if in.StartDate.IsZero() {
		return invalid("start_date", "is required")
	}
	return nil
}

func validateLoanName(name string) error {
	if utf8.RuneCountInString(name) > maxLoanNameLength {
		return invalid("name", "must be at most 255 characters")
	}
	return nil
}

// NewLoan creates a loan owned by userID.
func NewLoan(userID uuid.UUID, terms AmortizationInput, name string, now time.Time) (Loan, error) {
	if userID == uuid.Nil {
		return Loan{}, invalid("user_id", "is required")
	}
	if err := ValidateTerms(terms); err != nil {
		return Loan{}, err
	}
	if err := validateLoanName(name); err != nil {
		return Loan{}, err
	}

	l := Loan{
		id:         uuid.New(),
		userID:     userID,
		principal:  terms.Principal,
		annualRate: terms.AnnualRate,
		termMonths: terms.TermMonths,
		startDate:  DateOnly(terms.StartDate),
		name:       name,
		createdAt:  now,
		updatedAt:  now,
	}
	l.domainEvents = append(l.domainEvents, event.NewLoanCreated(l.id, l.snapshot()))
	return l, nil
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(
	id, userID uuid.UUID,
	principal, annualRate decimal.Decimal,
	termMonths int,
	startDate time.Time,
	name string,
	createdAt, updatedAt time.Time,
) Loan {
	return Loan{
		id:         id,
		userID:     userID,
		principal:  principal,
		annualRate: annualRate,
		termMonths: termMonths,
		startDate:  DateOnly(startDate),
		name:       name,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Apply returns the loan with upd applied after re-validating the resulting
// terms. An update that changes nothing records no event.
func (l Loan) Apply(upd LoanUpdate, now time.Time) (Loan, error) {
	next := l
	var changed []string

	if upd.Principal != nil && !upd.Principal.Equal(l.principal) {
		next.principal = *upd.Principal
		changed = append(changed, "principal")
	}
	if upd.AnnualRate != nil && !upd.AnnualRate.Equal(l.annualRate) {
		next.annualRate = *upd.AnnualRate
		changed = append(changed, "annual_interest_rate")
	}
	if upd.TermMonths != nil && *upd.TermMonths != l.termMonths {
		next.termMonths = *upd.TermMonths
		changed = append(changed, "term_months")
	}
	if upd.StartDate != nil && !DateOnly(*upd.StartDate).Equal(l.startDate) {
		next.startDate = DateOnly(*upd.StartDate)
		changed = append(changed, "start_date")
	}
	if upd.Name != nil && *upd.Name != l.name {
		if err := validateLoanName(*upd.Name); err != nil {
			return l, err
		}
		next.name = *upd.Name
		changed = append(changed, "name")
	}

	if len(changed) == 0 {
		return l, nil
	}
	if err := ValidateTerms(next.Terms()); err != nil {
		return l, err
	}

	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanUpdated(l.id, event.LoanUpdated{
		LoanSnapshot: next.snapshot(),
		Changed:      changed,
	}))
	return next, nil
}

// MarkDeleted records the deletion event.
func (l Loan) MarkDeleted(now time.Time) Loan {
	next := l
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanDeleted(l.id, l.userID, now))
	return next
}

// Terms returns the engine input for this loan, using the stored values unchanged.
func (l Loan) Terms() AmortizationInput {
	return AmortizationInput{
		Principal:  l.principal,
		AnnualRate: l.annualRate,
		TermMonths: l.termMonths,
		StartDate:  l.startDate,
	}
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() uuid.UUID { return l.id }
func (l Loan) UserID() uuid.UUID { return l.userID }
func (l Loan) Principal() decimal.Decimal { return l.principal }
func (l Loan) AnnualRate() decimal.Decimal { return l.annualRate }
func (l Loan) TermMonths() int { return l.termMonths }
func (l Loan) StartDate() time.Time { return l.startDate }
func (l Loan) Name() string { return l.name }
func (l Loan) CreatedAt() time.Time { return l.createdAt }
func (l Loan) UpdatedAt() time.Time { return l.updatedAt }
func (l Loan) DomainEvents() []event.DomainEvent { return l.domainEvents }

// ClearDomainEvents returns a copy of the loan with no pending events.
func (l Loan) ClearDomainEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}

func (l Loan) snapshot() event.LoanSnapshot {
	return event.LoanSnapshot{
		LoanID:     l.id.String(),
		UserID:     l.userID.String(),
		Principal:  l.principal,
		AnnualRate: l.annualRate,
		TermMonths: l.termMonths,
		StartDate:  l.startDate.Format(time.DateOnly),
		Name:       l.name,
	}
}
