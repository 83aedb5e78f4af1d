package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// ListRequest is an offset/limit page request.
type ListRequest struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// CreateUserRequest carries the data needed to register a user.
type CreateUserRequest struct {
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
	IsActive *bool   `json:"is_active"`
	Password string  `json:"password"`
}

// UpdateUserRequest is a partial update; absent fields are left unchanged.
type UpdateUserRequest struct {
	UserID   uuid.UUID `json:"-"`
	FullName *string   `json:"full_name"`
	IsActive *bool     `json:"is_active"`
	Password *string   `json:"password"`
}

// CreateLoanRequest carries the data needed to open a loan.
type CreateLoanRequest struct {
	UserID             uuid.UUID       `json:"user_id"`
	Principal          decimal.Decimal `json:"principal"`
	AnnualInterestRate decimal.Decimal `json:"annual_interest_rate"`
	TermMonths         int             `json:"term_months"`
	StartDate          Date            `json:"start_date"`
	Name               *string         `json:"name"`
}

// UpdateLoanRequest is a partial update; absent fields are left unchanged.
type UpdateLoanRequest struct {
	LoanID             uuid.UUID        `json:"-"`
	Principal          *decimal.Decimal `json:"principal"`
	AnnualInterestRate *decimal.Decimal `json:"annual_interest_rate"`
	TermMonths         *int             `json:"term_months"`
	StartDate          *Date            `json:"start_date"`
	Name               *string          `json:"name"`
}

// AmortizationRequest carries ad-hoc loan terms.
type AmortizationRequest struct {
	Principal          decimal.Decimal `json:"principal"`
	AnnualInterestRate decimal.Decimal `json:"annual_interest_rate"`
	TermMonths         int             `json:"term_months"`
	StartDate          Date            `json:"start_date"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// UserResponse is the external representation of a user. The password hash
// is never exposed.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoanResponse is the external representation of a loan. Amounts are
// fixed-point strings.
type LoanResponse struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Principal          string    `json:"principal"`
	AnnualInterestRate string    `json:"annual_interest_rate"`
	TermMonths         int       `json:"term_months"`
	StartDate          Date      `json:"start_date"`
	Name               *string   `json:"name"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// AmortizationEntryResponse is one schedule row.
type AmortizationEntryResponse struct {
	Period    int    `json:"period"`
	Date      Date   `json:"date"`
	Payment   string `json:"payment"`
	Principal string `json:"principal"`
	Interest  string `json:"interest"`
	Balance   string `json:"balance"`
}

// AmortizationScheduleResponse is a full repayment plan.
type AmortizationScheduleResponse struct {
	MonthlyPayment string                      `json:"monthly_payment"`
	TotalInterest  string                      `json:"total_interest"`
	TotalPaid      string                      `json:"total_paid"`
	Schedule       []AmortizationEntryResponse `json:"schedule"`
}
