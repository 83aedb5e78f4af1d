package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/greystone/lending-api/pkg/money"
)

// MaxTermMonths bounds the schedule length. Each period is one entry and the
// payment formula raises a term-sized power, so the bound caps both.
const MaxTermMonths = 1200

var monthsPerYear = decimal.NewFromInt(12)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// AmortizationInput holds the terms of a fixed-rate loan.
type AmortizationInput struct {
	Principal  decimal.Decimal
	AnnualRate decimal.Decimal // 0.065 means 6.5% per year
	TermMonths int
	StartDate  time.Time
}

// AmortizationEntry is one row of a payment schedule.
type AmortizationEntry struct {
	Period      int
	PaymentDate time.Time
	Payment     decimal.Decimal
	Principal   decimal.Decimal
	Interest    decimal.Decimal
	Balance     decimal.Decimal
}

// AmortizationSchedule is the full repayment plan of a loan.
type AmortizationSchedule struct {
	MonthlyPayment decimal.Decimal
	TotalInterest  decimal.Decimal
	TotalPaid      decimal.Decimal
	Entries        []AmortizationEntry
}

// Validate checks the engine preconditions.
func (in AmortizationInput) Validate() error {
	if !in.Principal.IsPositive() {
		return invalid("principal", "must be greater than 0")
	}
	if in.AnnualRate.IsNegative() {
		return invalid("annual_interest_rate", "must be greater than or equal to 0")
	}
	if in.TermMonths <= 0 {
		return invalid("term_months", "must be greater than 0")
	}
	if in.TermMonths > MaxTermMonths {
		return invalid("term_months", "must be at most 1200")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

// ComputeSchedule builds the amortization schedule for in.
//
// The nominal payment is rounded once. Each period's interest is rounded on
// the running balance and the principal portion is the remainder of the
// payment. The final period pays off whatever balance is left, so its
// payment may differ from the nominal one by a few cents.
func ComputeSchedule(in AmortizationInput) (AmortizationSchedule, error) {
	if err := in.Validate(); err != nil {
		return AmortizationSchedule{}, err
	}

	n := in.TermMonths
	payment := MonthlyPayment(in.Principal, in.AnnualRate, n)
	start := DateOnly(in.StartDate)

	entries := make([]AmortizationEntry, 0, n)
	balance := in.Principal
	totalInterest := decimal.Zero
	totalPaid := decimal.Zero

	for k := 1; k <= n; k++ {
		interest := periodInterest(balance, in.AnnualRate)

		actual := payment
		principal := payment.Sub(interest)
		if k == n {
			principal = balance
			actual = principal.Add(interest)
		}

		balance = money.Round(balance.Sub(principal))

		reported := balance
		if reported.IsNegative() {
			reported = decimal.Zero
		}

		entries = append(entries, AmortizationEntry{
			Period:      k,
			PaymentDate: AddMonths(start, k-1),
			Payment:     actual,
			Principal:   principal,
			Interest:    interest,
			Balance:     reported,
		})

		totalInterest = totalInterest.Add(interest)
		totalPaid = totalPaid.Add(actual)
	}

	return AmortizationSchedule{
		MonthlyPayment: payment,
		TotalInterest:  money.Round(totalInterest),
		TotalPaid:      money.Round(totalPaid),
		Entries:        entries,
	}, nil
}

// periodInterest is one month of interest on balance, rounded half up to
// cents from the exact product balance * annual / 12.
func periodInterest(balance, annual decimal.Decimal) decimal.Decimal {
	return balance.Mul(annual).DivRound(monthsPerYear, money.Scale)
}

// MonthlyPayment returns the level payment that amortizes principal over n
// months at the annual rate, rounded half up to cents. A zero rate splits
// the principal evenly.
//
// With r = a/12 the annuity formula P*r*(1+r)^n / ((1+r)^n - 1) is
// rearranged to P*a*(12+a)^n / (12*((12+a)^n - 12^n)), which stays exact in
// decimal and leaves a single rounding step.
func MonthlyPayment(principal, annual decimal.Decimal, n int) decimal.Decimal {
	if annual.IsZero() {
		return principal.DivRound(decimal.NewFromInt(int64(n)), money.Scale)
	}

	growth := pow(monthsPerYear.Add(annual), n)
	numerator := principal.Mul(annual).Mul(growth)
	denominator := monthsPerYear.Mul(growth.Sub(pow(monthsPerYear, n)))
	return numerator.DivRound(denominator, money.Scale)
}

// pow raises base to a non-negative integer power by repeated squaring,
// without rounding.
func pow(base decimal.Decimal, exp int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base)
		}
		exp >>= 1
		if exp > 0 {
			base = base.Mul(base)
		}
	}
	return result
}
