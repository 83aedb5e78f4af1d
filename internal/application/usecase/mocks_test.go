package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/greystone/lending-api/internal/application/usecase"
	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/port"
	"github.com/greystone/lending-api/internal/domain/valueobject"
)

// --- Mocks ---

type mockUserRepository struct {
	saveFunc        func(ctx context.Context, user model.User) error
	findByIDFunc    func(ctx context.Context, id uuid.UUID) (model.User, error)
	findByEmailFunc func(ctx context.Context, email valueobject.Email) (model.User, error)
	listFunc        func(ctx context.Context, page port.Page) ([]model.User, error)
	savedUsers      []model.User
	deletedUsers    []model.User
}

func (m *mockUserRepository) Save(ctx context.Context, user model.User) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, user)
	}
	m.savedUsers = append(m.savedUsers, user)
	return nil
}

func (m *mockUserRepository) Delete(_ context.Context, user model.User) error {
	m.deletedUsers = append(m.deletedUsers, user)
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.User{}, model.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email valueobject.Email) (model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return model.User{}, model.ErrUserNotFound
}

func (m *mockUserRepository) List(ctx context.Context, page port.Page) ([]model.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, page)
	}
	return nil, nil
}

type mockLoanRepository struct {
	saveFunc       func(ctx context.Context, loan model.Loan) error
	findByIDFunc   func(ctx context.Context, id uuid.UUID) (model.Loan, error)
	listFunc       func(ctx context.Context, page port.Page) ([]model.Loan, error)
	listByUserFunc func(ctx context.Context, userID uuid.UUID) ([]model.Loan, error)
	savedLoans     []model.Loan
	deletedLoans   []model.Loan
}

func (m *mockLoanRepository) Save(ctx context.Context, loan model.Loan) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, loan)
	}
	m.savedLoans = append(m.savedLoans, loan)
	return nil
}

func (m *mockLoanRepository) Delete(_ context.Context, loan model.Loan) error {
	m.deletedLoans = append(m.deletedLoans, loan)
	return nil
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (model.Loan, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Loan{}, model.ErrLoanNotFound
}

func (m *mockLoanRepository) List(ctx context.Context, page port.Page) ([]model.Loan, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, page)
	}
	return nil, nil
}

func (m *mockLoanRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Loan, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID)
	}
	return nil, nil
}

type mockHasher struct {
	err    error
	hashed []string
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.hashed = append(m.hashed, password)
	return "hashed:" + password, nil
}

type mockScheduleCache struct {
	getErr  error
	setErr  error
	entries map[string]model.AmortizationSchedule
	gets    int
	sets    int
}

func newMockScheduleCache() *mockScheduleCache {
	return &mockScheduleCache{entries: make(map[string]model.AmortizationSchedule)}
}

func (m *mockScheduleCache) Get(_ context.Context, in model.AmortizationInput) (model.AmortizationSchedule, bool, error) {
	m.gets++
	if m.getErr != nil {
		return model.AmortizationSchedule{}, false, m.getErr
	}
	s, ok := m.entries[cacheKey(in)]
	return s, ok, nil
}

func (m *mockScheduleCache) Set(_ context.Context, in model.AmortizationInput, s model.AmortizationSchedule) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[cacheKey(in)] = s
	return nil
}

func cacheKey(in model.AmortizationInput) string {
	return fmt.Sprintf("%s|%s|%d|%s", in.Principal, in.AnnualRate, in.TermMonths, in.StartDate.Format("2006-01-02"))
}

var errDatabase = errors.New("connection reset")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newScheduler(cache port.ScheduleCache) *usecase.Scheduler {
	return usecase.NewScheduler(cache, discardLogger(), noop.NewMeterProvider().Meter("test"))
}
