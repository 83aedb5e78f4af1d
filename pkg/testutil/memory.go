package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/greystone/lending-api/internal/domain/event"
	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/port"
	"github.com/greystone/lending-api/internal/domain/valueobject"
	"github.com/greystone/lending-api/pkg/events"
)

// MemoryStore backs in-memory user and loan repositories that honour the
// same constraints as the PostgreSQL schema: unique email, loans owned by an
// existing user, cascade on user delete with a loan deletion event per
// removed loan, and an outbox per write.
type MemoryStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]model.User
	loans  map[uuid.UUID]model.Loan
	outbox []events.OutboxEntry
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[uuid.UUID]model.User),
		loans: make(map[uuid.UUID]model.Loan),
	}
}

// Users returns a port.UserRepository over the store.
func (s *MemoryStore) Users() port.UserRepository { return memoryUsers{s} }

// Loans returns a port.LoanRepository over the store.
func (s *MemoryStore) Loans() port.LoanRepository { return memoryLoans{s} }

// Outbox returns a copy of every entry written so far.
func (s *MemoryStore) Outbox() []events.OutboxEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]events.OutboxEntry(nil), s.outbox...)
}

// OutboxTypes lists the event types written so far, in order.
func (s *MemoryStore) OutboxTypes() []string {
	entries := s.Outbox()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.EventType
	}
	return out
}

func (s *MemoryStore) record(evts []events.DomainEvent) {
	s.outbox = append(s.outbox, events.NewOutboxEntries(evts)...)
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Save(_ context.Context, user model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		if id != user.ID() && u.Email().Equal(user.Email()) {
			return model.ErrEmailAlreadyRegistered
		}
	}
	r.s.users[user.ID()] = user.ClearDomainEvents()
	r.s.record(user.DomainEvents())
	return nil
}

func (r memoryUsers) Delete(_ context.Context, user model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID()]; !ok {
		return model.ErrUserNotFound
	}
	delete(r.s.users, user.ID())

	var owned []model.Loan
	for id, l := range r.s.loans {
		if l.UserID() == user.ID() {
			owned = append(owned, l)
			delete(r.s.loans, id)
		}
	}
	sortLoans(owned)

	at := time.Now().UTC()
	pending := make([]events.DomainEvent, 0, len(owned)+len(user.DomainEvents()))
	for _, l := range owned {
		pending = append(pending, event.NewLoanDeleted(l.ID(), user.ID(), at))
	}
	r.s.record(append(pending, user.DomainEvents()...))
	return nil
}

func (r memoryUsers) FindByID(_ context.Context, id uuid.UUID) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (r memoryUsers) FindByEmail(_ context.Context, email valueobject.Email) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email().Equal(email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (r memoryUsers) List(_ context.Context, page port.Page) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt().Equal(all[j].CreatedAt()) {
			return all[i].CreatedAt().Before(all[j].CreatedAt())
		}
		return all[i].ID().String() < all[j].ID().String()
	})
	return window(all, page), nil
}

type memoryLoans struct{ s *MemoryStore }

func (r memoryLoans) Save(_ context.Context, loan model.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[loan.UserID()]; !ok {
		return model.ErrUserNotFound
	}
	r.s.loans[loan.ID()] = loan.ClearDomainEvents()
	r.s.record(loan.DomainEvents())
	return nil
}

func (r memoryLoans) Delete(_ context.Context, loan model.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.loans[loan.ID()]; !ok {
		return model.ErrLoanNotFound
	}
	delete(r.s.loans, loan.ID())
	r.s.record(loan.DomainEvents())
	return nil
}

func (r memoryLoans) FindByID(_ context.Context, id uuid.UUID) (model.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.loans[id]
	if !ok {
		return model.Loan{}, model.ErrLoanNotFound
	}
	return l, nil
}

func (r memoryLoans) List(_ context.Context, page port.Page) ([]model.Loan, error) {
	return window(r.sorted(func(model.Loan) bool { return true }), page), nil
}

func (r memoryLoans) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Loan, error) {
	return r.sorted(func(l model.Loan) bool { return l.UserID() == userID }), nil
}

func (r memoryLoans) sorted(keep func(model.Loan) bool) []model.Loan {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Loan, 0, len(r.s.loans))
	for _, l := range r.s.loans {
		if keep(l) {
			out = append(out, l)
		}
	}
	sortLoans(out)
	return out
}

func sortLoans(loans []model.Loan) {
	sort.Slice(loans, func(i, j int) bool {
		if !loans[i].CreatedAt().Equal(loans[j].CreatedAt()) {
			return loans[i].CreatedAt().Before(loans[j].CreatedAt())
		}
		return loans[i].ID().String() < loans[j].ID().String()
	})
}

func window[T any](all []T, page port.Page) []T {
	if page.Skip >= len(all) {
		return []T{}
	}
	end := len(all)
	if page.Limit > 0 && page.Skip+page.Limit < end {
		end = page.Skip + page.Limit
	}
	return all[page.Skip:end]
}
