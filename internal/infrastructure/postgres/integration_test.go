//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greystone/lending-api/internal/domain/event"
	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/port"
	"github.com/greystone/lending-api/internal/domain/valueobject"
	"github.com/greystone/lending-api/internal/infrastructure/postgres"
	pgutil "github.com/greystone/lending-api/pkg/postgres"
	"github.com/greystone/lending-api/pkg/testutil"
)

type repos struct {
	pg     *testutil.PostgresContainer
	users  *postgres.UserRepo
	loans  *postgres.LoanRepo
	outbox *postgres.OutboxRepo
}

func setupRepos(t *testing.T) repos {
	t.Helper()
	ctx := context.Background()

	pg := testutil.NewPostgresContainer(ctx, t)
	pg.Migrate(t, testutil.MigrationsDir())

	return repos{
		pg:     pg,
		users:  postgres.NewUserRepo(pg.Pool),
		loans:  postgres.NewLoanRepo(pg.Pool),
		outbox: postgres.NewOutboxRepo(pg.Pool),
	}
}

func registerUser(t *testing.T, r repos, email string, at time.Time) model.User {
	t.Helper()
	u, err := model.NewUser(valueobject.MustEmail(email), "Ada Lovelace", "$2a$10$hash", true, at)
	require.NoError(t, err)
	require.NoError(t, r.users.Save(context.Background(), u))
	return u
}

func openLoan(t *testing.T, r repos, owner uuid.UUID, at time.Time) model.Loan {
	t.Helper()
	l, err := model.NewLoan(owner, model.AmortizationInput{
		Principal:  testutil.Dec("100000.00"),
		AnnualRate: testutil.Dec("0.0600"),
		TermMonths: 12,
		StartDate:  testutil.Date(2024, time.January, 31),
	}, "Renovation", at)
	require.NoError(t, err)
	require.NoError(t, r.loans.Save(context.Background(), l))
	return l
}

func unpublishedTypes(t *testing.T, r repos) []string {
	t.Helper()
	entries, err := r.outbox.FetchUnpublished(context.Background(), 100)
	require.NoError(t, err)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.EventType
	}
	return out
}

func TestPostgresRepositories(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	now := testutil.Now

	t.Run("migrations are at the latest version", func(t *testing.T) {
		version, dirty, err := pgutil.MigrationVersion(r.pg.DSN, testutil.MigrationsDir())
		require.NoError(t, err)
		assert.Equal(t, uint(3), version)
		assert.False(t, dirty)

		require.NoError(t, pgutil.RunMigrations(r.pg.DSN, testutil.MigrationsDir()), "re-applying is a no-op")
	})

	t.Run("user round trip and upsert", func(t *testing.T) {
		r.pg.Truncate(t, "users", "outbox")
		u := registerUser(t, r, "ada@example.com", now)

		got, err := r.users.FindByEmail(ctx, valueobject.MustEmail("ADA@example.com"))
		require.NoError(t, err)
		assert.Equal(t, u.ID(), got.ID())
		assert.Equal(t, "Ada Lovelace", got.FullName())

		inactive := false
		updated, err := got.Apply(model.UserUpdate{IsActive: &inactive}, now.Add(time.Hour))
		require.NoError(t, err)
		require.NoError(t, r.users.Save(ctx, updated))

		got, err = r.users.FindByID(ctx, u.ID())
		require.NoError(t, err)
		assert.False(t, got.IsActive())
		assert.Equal(t, []string{event.TypeUserRegistered, event.TypeUserUpdated}, unpublishedTypes(t, r))
	})

	t.Run("duplicate email maps to ErrEmailAlreadyRegistered", func(t *testing.T) {
		r.pg.Truncate(t, "users", "outbox")
		registerUser(t, r, "grace@example.com", now)

		dup, err := model.NewUser(valueobject.MustEmail("grace@example.com"), "", "$2a$10$other", true, now)
		require.NoError(t, err)
		err = r.users.Save(ctx, dup)
		assert.ErrorIs(t, err, model.ErrEmailAlreadyRegistered)
		assert.Len(t, unpublishedTypes(t, r), 1, "failed save leaves no outbox row")
	})

	t.Run("loan with missing owner maps to ErrUserNotFound", func(t *testing.T) {
		r.pg.Truncate(t, "users", "outbox")

		orphan, err := model.NewLoan(uuid.New(), model.AmortizationInput{
			Principal:  testutil.Dec("5000"),
			AnnualRate: testutil.Dec("0.05"),
			TermMonths: 24,
			StartDate:  testutil.Date(2025, time.March, 1),
		}, "", now)
		require.NoError(t, err)
		assert.ErrorIs(t, r.loans.Save(ctx, orphan), model.ErrUserNotFound)
		assert.Empty(t, unpublishedTypes(t, r))
	})

	t.Run("loan numeric and date columns round trip", func(t *testing.T) {
		r.pg.Truncate(t, "users", "outbox")
		u := registerUser(t, r, "linus@example.com", now)
		l := openLoan(t, r, u.ID(), now)

		got, err := r.loans.FindByID(ctx, l.ID())
		require.NoError(t, err)
		testutil.AssertDecimal(t, "100000.00", got.Principal())
		testutil.AssertDecimal(t, "0.06", got.AnnualRate())
		assert.Equal(t, 12, got.TermMonths())
		assert.Equal(t, testutil.Date(2024, time.January, 31), got.StartDate().UTC())
		assert.Equal(t, "Renovation", got.Name())

		s, err := model.ComputeSchedule(got.Terms())
		require.NoError(t, err)
		testutil.AssertDecimal(t, "8606.64", s.MonthlyPayment)

		_, err = r.loans.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, model.ErrLoanNotFound)
	})

	t.Run("list pages in creation order", func(t *testing.T) {
		r.pg.Truncate(t, "users", "outbox")
		first := registerUser(t, r, "first@example.com", now)
		second := registerUser(t, r, "second@example.com", now.Add(time.Minute))
		registerUser(t, r, "third@example.com", now.Add(2*time.Minute))

		page, err := r.users.List(ctx, port.Page{Skip: 0, Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, first.ID(), page[0].ID())
		assert.Equal(t, second.ID(), page[1].ID())

		loans, err := r.loans.ListByUser(ctx, first.ID())
		require.NoError(t, err)
		assert.Empty(t, loans)
	})

	t.Run("deleting a user removes loans and records their deletion", func(t *testing.T) {
		r.pg.Truncate(t, "users", "outbox")
		u := registerUser(t, r, "owner@example.com", now)
		a := openLoan(t, r, u.ID(), now)
		b := openLoan(t, r, u.ID(), now.Add(time.Minute))

		stored, err := r.users.FindByID(ctx, u.ID())
		require.NoError(t, err)
		require.NoError(t, r.users.Delete(ctx, stored.MarkDeleted(now.Add(time.Hour))))

		for _, id := range []uuid.UUID{a.ID(), b.ID()} {
			_, err := r.loans.FindByID(ctx, id)
			assert.ErrorIs(t, err, model.ErrLoanNotFound)
		}

		entries, err := r.outbox.FetchUnpublished(ctx, 100)
		require.NoError(t, err)
		deleted := map[uuid.UUID]string{}
		for _, e := range entries {
			if e.EventType == event.TypeLoanDeleted || e.EventType == event.TypeUserDeleted {
				deleted[e.AggregateID] = e.EventType
			}
		}
		assert.Equal(t, map[uuid.UUID]string{
			a.ID(): event.TypeLoanDeleted,
			b.ID(): event.TypeLoanDeleted,
			u.ID(): event.TypeUserDeleted,
		}, deleted)

		assert.ErrorIs(t, r.users.Delete(ctx, stored.MarkDeleted(now)), model.ErrUserNotFound)
	})

	t.Run("outbox marks entries published", func(t *testing.T) {
		r.pg.Truncate(t, "users", "outbox")
		registerUser(t, r, "relay@example.com", now)

		entries, err := r.outbox.FetchUnpublished(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		require.NoError(t, r.outbox.MarkPublished(ctx, []uuid.UUID{entries[0].ID}))
		assert.Empty(t, unpublishedTypes(t, r))
	})
}
