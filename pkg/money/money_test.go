package money

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Round
// ---------------------------------------------------------------------------

func TestRound_HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.005", "0.01"},
		{"0.025", "0.03"},
		{"0.015", "0.02"},
		{"-0.005", "-0.01"},
		{"1006.005", "1006.01"},
		{"5.004999", "5"},
		{"8606.6434", "8606.64"},
		{"100", "100"},
	}
	for _, tt := range tests {
		got := Round(decimal.RequireFromString(tt.in))
		want := decimal.RequireFromString(tt.want)
		if !got.Equal(want) {
			t.Errorf("Round(%s) = %s, want %s", tt.in, got, want)
		}
	}
}

func TestRoundTo(t *testing.T) {
	got := RoundTo(decimal.RequireFromString("0.06499"), 4)
	if !got.Equal(decimal.RequireFromString("0.065")) {
		t.Errorf("RoundTo = %s, want 0.065", got)
	}
}

// ---------------------------------------------------------------------------
// Format
// ---------------------------------------------------------------------------

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"1000", "1000.00"},
		{"8606.6", "8606.60"},
		{"-12.5", "-12.50"},
	}
	for _, tt := range tests {
		if got := Format(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("Format(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	if got := FormatRate(decimal.RequireFromString("0.065")); got != "0.0650" {
		t.Errorf("FormatRate = %q, want 0.0650", got)
	}
	if got := FormatRate(decimal.Zero); got != "0.0000" {
		t.Errorf("FormatRate(0) = %q, want 0.0000", got)
	}
}

// ---------------------------------------------------------------------------
// Parse / FitsScale
// ---------------------------------------------------------------------------

func TestParse_Valid(t *testing.T) {
	tests := []string{"100", "100.5", "100.50", " 0.01 ", "-3.20"}
	for _, s := range tests {
		if _, err := Parse(s); err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", s, err)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"letters", "abc"},
		{"too precise", "10.001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.in); err == nil {
				t.Errorf("Parse(%q) expected error, got nil", tt.in)
			}
		})
	}
}

func TestFitsScale(t *testing.T) {
	if !FitsScale(decimal.RequireFromString("0.0650"), RateScale) {
		t.Error("0.0650 should fit four places")
	}
	if FitsScale(decimal.RequireFromString("0.06505"), RateScale) {
		t.Error("0.06505 should not fit four places")
	}
}

// ---------------------------------------------------------------------------
// Sum
// ---------------------------------------------------------------------------

func TestSum(t *testing.T) {
	got := Sum(
		decimal.RequireFromString("333.33"),
		decimal.RequireFromString("333.33"),
		decimal.RequireFromString("333.34"),
	)
	if !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Sum = %s, want 1000", got)
	}
	if !Sum().IsZero() {
		t.Error("Sum() should be zero")
	}
}

// TestRound_Concurrent rounds a shared value from many goroutines; decimal
// values are immutable so every result must match and the input stays intact.
func TestRound_Concurrent(t *testing.T) {
	base := decimal.RequireFromString("459.465")
	const goroutines = 100

	results := make([]decimal.Decimal, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(idx int) {
			defer wg.Done()
			results[idx] = Round(base)
		}(i)
	}
	wg.Wait()

	if !base.Equal(decimal.RequireFromString("459.465")) {
		t.Errorf("input mutated: %s", base)
	}
	want := decimal.RequireFromString("459.47")
	for i, r := range results {
		if !r.Equal(want) {
			t.Errorf("goroutine %d: Round = %s, want %s", i, r, want)
		}
	}
}
