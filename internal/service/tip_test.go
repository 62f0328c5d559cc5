package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/cache"
)

type tipGeneratorMock struct {
	mock.Mock
}

func (m *tipGeneratorMock) GenerateTip(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func newTipFixture(now time.Time) (*tipService, *tipGeneratorMock, *cache.MemoryCache) {
	gen := new(tipGeneratorMock)
	c := cache.NewMemoryCache()
	svc := NewTipService(gen, c, time.FixedZone("CET", 3600), quietLogger()).(*tipService)
	svc.now = func() time.Time { return now }
	return svc, gen, c
}

func TestTipService_Today(t *testing.T) {
	ctx := context.Background()
	// 23:30 UTC is already the next day at UTC+1.
	now := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)

	t.Run("generates once per day", func(t *testing.T) {
		svc, gen, c := newTipFixture(now)
		gen.On("GenerateTip", ctx).Return("  Use context cancellation.  ", nil).Once()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tip, err := svc.Today(ctx)
				assert.NoError(t, err)
				assert.Equal(t, "Use context cancellation.", tip.Tip)
				assert.Equal(t, "2024-03-10", tip.Date)
			}()
		}
		wg.Wait()
		gen.AssertExpectations(t)

		b, err := c.Get(ctx, "tip:2024-03-10")
		require.NoError(t, err)
		assert.Equal(t, "Use context cancellation.", string(b))
	})

	t.Run("reads tip refreshed by another process", func(t *testing.T) {
		svc, gen, c := newTipFixture(now)
		require.NoError(t, c.Set(ctx, "tip:2024-03-10", []byte("From the worker"), time.Hour))

		tip, err := svc.Today(ctx)
		require.NoError(t, err)
		assert.Equal(t, "From the worker", tip.Tip)
		gen.AssertNotCalled(t, "GenerateTip", mock.Anything)
	})

	t.Run("stale tip on provider failure", func(t *testing.T) {
		svc, gen, _ := newTipFixture(now)
		gen.On("GenerateTip", ctx).Return("Yesterday's tip", nil).Once()
		gen.On("GenerateTip", ctx).Return("", errors.New("rate limited"))

		_, err := svc.Today(ctx)
		require.NoError(t, err)

		svc.now = func() time.Time { return now.Add(24 * time.Hour) }
		tip, err := svc.Today(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Yesterday's tip", tip.Tip)
		assert.Equal(t, "2024-03-10", tip.Date)
	})

	t.Run("no tip at all", func(t *testing.T) {
		svc, gen, _ := newTipFixture(now)
		gen.On("GenerateTip", ctx).Return("", errors.New("rate limited"))

		_, err := svc.Today(ctx)
		assert.ErrorIs(t, err, ErrProvider)
	})
}

func TestTipService_RefreshReachesOtherInstances(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)
	shared := cache.NewMemoryCache()

	apiGen, workerGen := new(tipGeneratorMock), new(tipGeneratorMock)
	api := NewTipService(apiGen, shared, time.UTC, quietLogger()).(*tipService)
	worker := NewTipService(workerGen, shared, time.UTC, quietLogger()).(*tipService)
	api.now = func() time.Time { return now }
	worker.now = func() time.Time { return now }
	apiGen.On("GenerateTip", ctx).Return("old tip", nil).Once()
	workerGen.On("GenerateTip", ctx).Return("refreshed tip", nil).Once()

	tip, err := api.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old tip", tip.Tip)

	_, err = worker.Refresh(ctx)
	require.NoError(t, err)

	api.now = func() time.Time { return now.Add(tipSyncInterval) }
	tip, err = api.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refreshed tip", tip.Tip)
	apiGen.AssertExpectations(t)
}

func TestTipService_KeepsSlotWhenCacheLosesTip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)
	svc, gen, c := newTipFixture(now)
	gen.On("GenerateTip", ctx).Return("only once", nil).Once()

	_, err := svc.Today(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, "tip:2024-03-09"))

	svc.now = func() time.Time { return now.Add(2 * tipSyncInterval) }
	tip, err := svc.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, "only once", tip.Tip)
	gen.AssertExpectations(t)
}

func TestTipService_Refresh(t *testing.T) {
	ctx := context.Background()
	svc, gen, _ := newTipFixture(time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC))
	gen.On("GenerateTip", ctx).Return("first", nil).Once()
	gen.On("GenerateTip", ctx).Return("second", nil).Once()

	_, err := svc.Today(ctx)
	require.NoError(t, err)
	tip, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", tip.Tip)

	tip, err = svc.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", tip.Tip)
}
