package model

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/greystone/lending-api/internal/domain/event"
	"github.com/greystone/lending-api/internal/domain/valueobject"
)

// Password length bounds. The upper bound is bcrypt's input limit in bytes.
const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72
)

const maxFullNameLength = 255

// ---------------------------------------------------------------------------
// User aggregate root
// ---------------------------------------------------------------------------

// User is an immutable aggregate. Mutations return a new copy.
type User struct {
	id             uuid.UUID
	email          valueobject.Email
	fullName       string
	hashedPassword string
	isActive       bool
	createdAt      time.Time
	updatedAt      time.Time
	domainEvents   []event.DomainEvent
}

// UserUpdate carries the fields of a partial update; nil means unchanged.
type UserUpdate struct {
	FullName       *string
	IsActive       *bool
	HashedPassword *string
}

// ValidatePassword checks the plaintext password policy.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return invalid("password", "must be at least 6 characters")
	}
	if len(password) > MaxPasswordBytes {
		return invalid("password", "must be at most 72 bytes")
	}
	return nil
}

func validateFullName(name string) error {
	if utf8.RuneCountInString(name) > maxFullNameLength {
		return invalid("full_name", "must be at most 255 characters")
	}
	return nil
}

// NewUser registers a user. hashedPassword must already be a hash, never the
// plaintext.
func NewUser(email valueobject.Email, fullName, hashedPassword string, isActive bool, now time.Time) (User, error) {
	if email.IsZero() {
		return User{}, invalid("email", "is required")
	}
	if hashedPassword == "" {
		return User{}, errors.New("hashed password is required")
	}
	if err := validateFullName(fullName); err != nil {
		return User{}, err
	}

	u := User{
		id:             uuid.New(),
		email:          email,
		fullName:       fullName,
		hashedPassword: hashedPassword,
		isActive:       isActive,
		createdAt:      now,
		updatedAt:      now,
	}
	u.domainEvents = append(u.domainEvents, event.NewUserRegistered(u.id, u.snapshot()))
	return u, nil
}

// ReconstructUser rebuilds a User aggregate from persistence.
func ReconstructUser(
	id uuid.UUID,
	email valueobject.Email,
	fullName, hashedPassword string,
	isActive bool,
	createdAt, updatedAt time.Time,
) User {
	return User{
		id:             id,
		email:          email,
		fullName:       fullName,
		hashedPassword: hashedPassword,
		isActive:       isActive,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Apply returns the user with upd applied. An update that changes nothing
// returns the user unchanged and records no event.
func (u User) Apply(upd UserUpdate, now time.Time) (User, error) {
	next := u
	var changed []string
	passwordChanged := false

	if upd.FullName != nil && *upd.FullName != u.fullName {
		if err := validateFullName(*upd.FullName); err != nil {
			return u, err
		}
		next.fullName = *upd.FullName
		changed = append(changed, "full_name")
	}
	if upd.IsActive != nil && *upd.IsActive != u.isActive {
		next.isActive = *upd.IsActive
		changed = append(changed, "is_active")
	}
	if upd.HashedPassword != nil {
		if *upd.HashedPassword == "" {
			return u, errors.New("hashed password is required")
		}
		next.hashedPassword = *upd.HashedPassword
		passwordChanged = true
	}

	if len(changed) == 0 && !passwordChanged {
		return u, nil
	}

	next.updatedAt = now
	next.domainEvents = copyEvents(u.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewUserUpdated(u.id, event.UserUpdated{
		UserSnapshot:    next.snapshot(),
		Changed:         changed,
		PasswordChanged: passwordChanged,
	}))
	return next, nil
}

// MarkDeleted records the deletion event. The repository removes the row
// along with the user's loans.
func (u User) MarkDeleted(now time.Time) User {
	next := u
	next.domainEvents = copyEvents(u.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewUserDeleted(u.id, now))
	return next
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (u User) ID() uuid.UUID { return u.id }
func (u User) Email() valueobject.Email { return u.email }
func (u User) FullName() string { return u.fullName }
func (u User) HashedPassword() string { return u.hashedPassword }
func (u User) IsActive() bool { return u.isActive }
func (u User) CreatedAt() time.Time { return u.createdAt }
func (u User) UpdatedAt() time.Time { return u.updatedAt }
func (u User) DomainEvents() []event.DomainEvent { return u.domainEvents }

// ClearDomainEvents returns a copy of the user with no pending events.
func (u User) ClearDomainEvents() User {
	next := u
	next.domainEvents = nil
	return next
}

func (u User) snapshot() event.UserSnapshot {
	return event.UserSnapshot{
		UserID:   u.id.String(),
		Email:    u.email.String(),
		FullName: u.fullName,
		IsActive: u.isActive,
	}
}

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if len(src) == 0 {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
