package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmukasa/savings-challenge-engine/internal/domain"
	"github.com/jmukasa/savings-challenge-engine/internal/storage/memory"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func midYear(year int) time.Time {
	return time.Date(year, time.June, 15, 0, 0, 0, 0, time.UTC)
}

func TestRecorder_DepositChainsAllocation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	recorder := NewRecorder(store, nil)
	accountID := uuid.New()

	first, err := recorder.RecordDeposit(ctx, accountID, money("10000"), midYear(2025))
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 2, first.NextWeek)
	assert.True(t, first.CarryForward.IsZero())
	require.Len(t, first.CoveredWeeks, 1)
	assert.Equal(t, 1, first.CoveredWeeks[0].Week)

	// 25,000 covers week 2 (20,000) and keeps 5,000 whole as carry.
	second, err := recorder.RecordDeposit(ctx, accountID, money("25000"), midYear(2025))
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, 3, second.NextWeek)
	assert.True(t, second.CarryForward.Equal(money("5000")), "carry = %s", second.CarryForward)
	assert.True(t, second.CumulativeTotal.Equal(money("35000")))
}

func TestRecorder_DepositReceiptReferencesAreUnique(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	recorder := NewRecorder(store, nil)
	accountID := uuid.New()

	seen := make(map[string]bool)
	for range 5 {
		entry, err := recorder.RecordDeposit(ctx, accountID, money("10000"), midYear(2025))
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.NotEmpty(t, entry.Reference)
		assert.False(t, seen[entry.Reference], "duplicate receipt %s", entry.Reference)
		seen[entry.Reference] = true
	}
}

func TestRecorder_InterestDepositReplayIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	recorder := NewRecorder(store, nil)
	accountID := uuid.New()
	ref := domain.AnnualInterestReference(2025)

	first, err := recorder.RecordInterestDeposit(ctx, accountID, money("1500"), midYear(2025), ref)
	require.NoError(t, err)
	require.NotNil(t, first)

	replay, err := recorder.RecordInterestDeposit(ctx, accountID, money("1500"), midYear(2025), ref)
	require.NoError(t, err)
	assert.Nil(t, replay)

	entries, err := store.EntriesByAccount(ctx, accountID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecorder_SameReferenceDifferentAccounts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	recorder := NewRecorder(store, nil)
	ref := domain.AnnualInterestReference(2025)

	a, err := recorder.RecordInterestDeposit(ctx, uuid.New(), money("100"), midYear(2025), ref)
	require.NoError(t, err)
	assert.NotNil(t, a)

	b, err := recorder.RecordInterestDeposit(ctx, uuid.New(), money("100"), midYear(2025), ref)
	require.NoError(t, err)
	assert.NotNil(t, b, "reference uniqueness is scoped per account")
}

func TestRecorder_OutflowReplayIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	recorder := NewRecorder(store, nil)
	accountID := uuid.New()
	ref := uuid.NewString()

	first, err := recorder.RecordWithdrawal(ctx, accountID, money("5000"), midYear(2025), ref)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, domain.EntryKindWithdrawal, first.Kind)
	assert.True(t, first.CarryForward.IsZero())
	assert.Empty(t, first.CoveredWeeks)

	replay, err := recorder.RecordWithdrawal(ctx, accountID, money("5000"), midYear(2025), ref)
	require.NoError(t, err)
	assert.Nil(t, replay)
}

func TestRecorder_RejectsInvalidAmounts(t *testing.T) {
	ctx := context.Background()
	recorder := NewRecorder(memory.NewStore(), nil)
	accountID := uuid.New()

	_, err := recorder.RecordDeposit(ctx, accountID, money("-10"), midYear(2025))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = recorder.RecordDeposit(ctx, accountID, money("100.555"), midYear(2025))
	assert.ErrorIs(t, err, domain.ErrExcessPrecision)

	_, err = recorder.RecordWithdrawal(ctx, accountID, money("0"), midYear(2025), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestRecorder_YearBoundaryResetsAllocation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	recorder := NewRecorder(store, nil)
	accountID := uuid.New()

	dec := time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC)
	old, err := recorder.RecordDeposit(ctx, accountID, money("35000"), dec)
	require.NoError(t, err)
	require.Equal(t, 3, old.NextWeek)
	require.True(t, old.CarryForward.Equal(money("5000")))

	// A new challenge year starts from week 1 with no carry.
	jan := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	fresh, err := recorder.RecordDeposit(ctx, accountID, money("10000"), jan)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.NextWeek)
	assert.True(t, fresh.CarryForward.IsZero())
	assert.True(t, fresh.CumulativeTotal.Equal(money("10000")))
}

func TestRecorder_ConcurrentDepositsConserveAllocation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	recorder := NewRecorder(store, nil)
	accountID := uuid.New()

	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := recorder.RecordDeposit(ctx, accountID, money("10000"), midYear(2025))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := store.EntriesByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, entries, workers)

	prior, err := store.LatestDepositInYear(ctx, accountID, 2025)
	require.NoError(t, err)
	require.NotNil(t, prior)

	// 20 deposits of 10,000 fund weeks 1-5 (150,000) with 50,000 carried.
	assert.True(t, prior.CumulativeTotal.Equal(money("200000")), "cumulative = %s", prior.CumulativeTotal)
	assert.Equal(t, 6, prior.NextWeek)
	assert.True(t, prior.CarryForward.Equal(money("50000")), "carry = %s", prior.CarryForward)

	covered := 0
	for _, e := range entries {
		covered += len(e.CoveredWeeks)
	}
	assert.Equal(t, 5, covered, "each week funded exactly once")
}
