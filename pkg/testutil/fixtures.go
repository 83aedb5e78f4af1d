package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fixed UUIDs for deterministic testing
var (
	TestUserID1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestUserID2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	TestLoanID1 = uuid.MustParse("00000000-0000-0000-0000-000000000101")
)

// Now is a fixed clock reading for tests that stamp aggregates.
var Now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
