package valueobject

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// ErrInvalidEmail is returned for malformed addresses.
var ErrInvalidEmail = errors.New("invalid email address")

// ---------------------------------------------------------------------------
// Email – immutable value object
// ---------------------------------------------------------------------------

// Email is a normalised (trimmed, lower-cased) mailbox address.
type Email struct {
	value string
}

// NewEmail validates and normalises raw. Display names ("Ada <ada@x.io>")
// are rejected; only a bare address is accepted.
func NewEmail(raw string) (Email, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || len(s) > 320 {
		return Email{}, ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return Email{}, fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}
	at := strings.LastIndexByte(s, '@')
	if at < 1 || !strings.Contains(s[at+1:], ".") {
		return Email{}, fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}
	return Email{value: s}, nil
}

// MustEmail is NewEmail that panics on error. For tests and fixtures.
func MustEmail(raw string) Email {
	e, err := NewEmail(raw)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Email) String() string { return e.value }
func (e Email) IsZero() bool { return e.value == "" }
func (e Email) Equal(other Email) bool { return e.value == other.value }
