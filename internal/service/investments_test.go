package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmukasa/savings-challenge-engine/internal/domain"
	"github.com/jmukasa/savings-challenge-engine/internal/storage/memory"
)

func setupInvestmentTest(t *testing.T) (*memory.Store, *Recorder, *InvestmentService) {
	t.Helper()
	store := memory.NewStore()
	recorder := NewRecorder(store, nil)
	svc := NewInvestmentService(store, recorder, nil, 4)
	return store, recorder, svc
}

func TestInvestmentService_Open(t *testing.T) {
	ctx := context.Background()
	store, _, svc := setupInvestmentTest(t)
	accountID := uuid.New()

	inv, err := svc.Open(ctx, accountID, money("1000000"), money("30"), 8, midYear(2025))
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusFixed, inv.Status)
	assert.False(t, inv.InterestPosted)
	assert.True(t, inv.TotalInterestExpected().Equal(money("200000")))

	stored, err := store.InvestmentByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, stored.ID)

	// Opening never writes to the ledger.
	entries, err := store.EntriesByAccount(ctx, accountID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInvestmentService_OpenValidation(t *testing.T) {
	ctx := context.Background()
	_, _, svc := setupInvestmentTest(t)
	accountID := uuid.New()

	_, err := svc.Open(ctx, accountID, money("0"), money("30"), 8, midYear(2025))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Open(ctx, accountID, money("1000"), money("120"), 8, midYear(2025))
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = svc.Open(ctx, accountID, money("1000"), money("30"), 0, midYear(2025))
	assert.ErrorIs(t, err, domain.ErrInvalidTerm)
}

func TestInvestmentService_CheckMaturityPostsInterestOnce(t *testing.T) {
	ctx := context.Background()
	store, _, svc := setupInvestmentTest(t)
	accountID := uuid.New()
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	inv, err := svc.Open(ctx, accountID, money("1000000"), money("30"), 8, start)
	require.NoError(t, err)
	maturity := inv.MaturityDate()

	t.Run("before maturity is a no-op", func(t *testing.T) {
		entry, err := svc.CheckMaturity(ctx, inv.ID, maturity.AddDate(0, 0, -1))
		require.NoError(t, err)
		assert.Nil(t, entry)

		stored, err := store.InvestmentByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.InvestmentStatusFixed, stored.Status)
	})

	t.Run("at maturity posts the full expected interest", func(t *testing.T) {
		entry, err := svc.CheckMaturity(ctx, inv.ID, maturity)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.True(t, entry.Amount.Equal(money("200000")), "interest = %s", entry.Amount)
		assert.Equal(t, domain.InvestmentInterestReference(inv.ID), entry.Reference)
		assert.Equal(t, maturity, entry.EntryDate)

		stored, err := store.InvestmentByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.InvestmentStatusMatured, stored.Status)
		assert.True(t, stored.InterestPosted)
	})

	t.Run("second check is a no-op", func(t *testing.T) {
		entry, err := svc.CheckMaturity(ctx, inv.ID, maturity.AddDate(0, 1, 0))
		require.NoError(t, err)
		assert.Nil(t, entry)

		entries, err := store.EntriesByAccount(ctx, accountID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestInvestmentService_CheckMaturityRecoversFromPartialFailure(t *testing.T) {
	ctx := context.Background()
	store, recorder, svc := setupInvestmentTest(t)
	accountID := uuid.New()
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	inv, err := svc.Open(ctx, accountID, money("1000000"), money("30"), 8, start)
	require.NoError(t, err)
	maturity := inv.MaturityDate()

	// Simulate a crash between posting the interest and marking the
	// investment: the ledger entry exists but the flag was never set.
	_, err = recorder.RecordInterestDeposit(ctx, accountID, inv.TotalInterestExpected(), maturity, domain.InvestmentInterestReference(inv.ID))
	require.NoError(t, err)

	entry, err := svc.CheckMaturity(ctx, inv.ID, maturity)
	require.NoError(t, err)
	assert.Nil(t, entry, "replayed posting is absorbed")

	stored, err := store.InvestmentByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusMatured, stored.Status)
	assert.True(t, stored.InterestPosted)

	entries, err := store.EntriesByAccount(ctx, accountID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestInvestmentService_SweepMaturity(t *testing.T) {
	ctx := context.Background()
	store, _, svc := setupInvestmentTest(t)
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)

	matured := make([]*domain.Investment, 0, 3)
	for range 3 {
		inv, err := svc.Open(ctx, uuid.New(), money("500000"), money("20"), 6, start)
		require.NoError(t, err)
		matured = append(matured, inv)
	}
	// Still mid-term at asOf.
	young, err := svc.Open(ctx, uuid.New(), money("500000"), money("20"), 12, start)
	require.NoError(t, err)

	report, err := svc.SweepMaturity(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Checked)
	assert.Equal(t, 3, report.Matured)
	assert.Empty(t, report.Failures)

	for _, inv := range matured {
		stored, err := store.InvestmentByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.InvestmentStatusMatured, stored.Status)
	}
	stored, err := store.InvestmentByID(ctx, young.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusFixed, stored.Status)

	// Re-running the sweep changes nothing.
	again, err := svc.SweepMaturity(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Checked, "only the still-fixed investment remains")
	assert.Equal(t, 0, again.Matured)
}

// flakyInvestmentStore fails lookups for one investment to prove a single
// bad record cannot halt the sweep.
type flakyInvestmentStore struct {
	*memory.Store
	failID uuid.UUID
}

func (f *flakyInvestmentStore) InvestmentByID(ctx context.Context, id uuid.UUID) (*domain.Investment, error) {
	if id == f.failID {
		return nil, errors.New("storage hiccup")
	}
	return f.Store.InvestmentByID(ctx, id)
}

func TestInvestmentService_SweepIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	recorder := NewRecorder(store, nil)
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)

	seed := NewInvestmentService(store, recorder, nil, 1)
	bad, err := seed.Open(ctx, uuid.New(), money("500000"), money("20"), 6, start)
	require.NoError(t, err)
	good, err := seed.Open(ctx, uuid.New(), money("500000"), money("20"), 6, start)
	require.NoError(t, err)

	flaky := &flakyInvestmentStore{Store: store, failID: bad.ID}
	svc := NewInvestmentService(flaky, recorder, nil, 2)

	report, err := svc.SweepMaturity(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 1, report.Matured)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, bad.ID, report.Failures[0].InvestmentID)

	stored, err := store.InvestmentByID(ctx, good.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusMatured, stored.Status)
}
