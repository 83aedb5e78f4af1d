package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greystone/lending-api/internal/domain/model"
)

type fakeKV struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value any, exp time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func terms(principal, rate string) model.AmortizationInput {
	return model.AmortizationInput{
		Principal:  decimal.RequireFromString(principal),
		AnnualRate: decimal.RequireFromString(rate),
		TermMonths: 12,
		StartDate:  time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestKey(t *testing.T) {
	a := Key(terms("100000", "0.06"))
	b := Key(terms("100000.00", "0.0600"))
	c := Key(terms("100000", "0.061"))

	assert.Equal(t, a, b, "equal amounts at different scales share a key")
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, keyPrefix)

	shifted := terms("100000", "0.06")
	shifted.StartDate = time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, a, Key(shifted), "time of day is ignored")
}

func TestScheduleCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newFakeKV()
	c := NewScheduleCache(store, time.Hour)
	in := terms("1000", "0.12")

	_, ok, err := c.Get(ctx, in)
	require.NoError(t, err)
	assert.False(t, ok)

	schedule, err := model.ComputeSchedule(in)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, in, schedule))
	assert.Equal(t, time.Hour, store.ttls[Key(in)])

	got, ok, err := c.Get(ctx, in)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, schedule.MonthlyPayment.Equal(got.MonthlyPayment))
	assert.True(t, schedule.TotalInterest.Equal(got.TotalInterest))
	require.Len(t, got.Entries, len(schedule.Entries))
	last := got.Entries[len(got.Entries)-1]
	assert.True(t, last.Balance.IsZero())
	assert.True(t, last.PaymentDate.Equal(schedule.Entries[len(schedule.Entries)-1].PaymentDate))
}

func TestScheduleCache_Errors(t *testing.T) {
	ctx := context.Background()
	in := terms("1000", "0.12")

	store := newFakeKV()
	store.getErr = errors.New("connection refused")
	_, ok, err := NewScheduleCache(store, 0).Get(ctx, in)
	assert.Error(t, err)
	assert.False(t, ok)

	store = newFakeKV()
	store.data[Key(in)] = []byte("{not json")
	_, ok, err = NewScheduleCache(store, 0).Get(ctx, in)
	assert.ErrorContains(t, err, "decode cached schedule")
	assert.False(t, ok)

	store = newFakeKV()
	store.setErr = errors.New("READONLY")
	err = NewScheduleCache(store, 0).Set(ctx, in, model.AmortizationSchedule{})
	assert.ErrorContains(t, err, "READONLY")
}
