package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/medflow/payroll-backend/internal/payroll/repository"
	"github.com/medflow/payroll-backend/internal/payroll/service"
	"github.com/medflow/payroll-backend/pkg/logger"
	"github.com/medflow/payroll-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
)

// countingStore counts labor-law lookups
type countingStore struct {
	*repository.MemoryStore
	lookups atomic.Int32
}

func (c *countingStore) GetActiveLaborLaw(ctx context.Context, date time.Time) (*domain.LaborLawVersion, error) {
	c.lookups.Add(1)
	return c.MemoryStore.GetActiveLaborLaw(ctx, date)
}

func TestRateResolver_CachesForTTL(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStore: repository.NewMemoryStore()}
	store.AddLaborLaw(testutil.ActiveLaborLaw("law-2025", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	r := service.NewRateResolver(store, time.Hour, logger.Nop()).
		WithClock(func() time.Time { return now })

	law, fallback := r.GetLaborLaw(ctx)
	assert.Equal(t, "law-2025", law.ID)
	assert.False(t, fallback)

	// a newer version is not seen until the cached one expires
	store.AddLaborLaw(testutil.ActiveLaborLaw("law-2025-04", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))

	now = now.Add(30 * time.Minute)
	law, _ = r.GetLaborLaw(ctx)
	assert.Equal(t, "law-2025", law.ID)
	assert.Equal(t, int32(1), store.lookups.Load())

	now = now.Add(31 * time.Minute)
	law, _ = r.GetLaborLaw(ctx)
	assert.Equal(t, "law-2025-04", law.ID)
	assert.Equal(t, int32(2), store.lookups.Load())
}

func TestRateResolver_FallsBackWithoutCaching(t *testing.T) {
	ctx := context.Background()

	t.Run("no version in force", func(t *testing.T) {
		store := &countingStore{MemoryStore: repository.NewMemoryStore()}
		store.AddLaborLaw(testutil.ActiveLaborLaw("future", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))

		now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
		r := service.NewRateResolver(store, time.Hour, logger.Nop()).
			WithClock(func() time.Time { return now })

		law, fallback := r.GetLaborLaw(ctx)
		assert.True(t, fallback)
		assert.Equal(t, domain.DefaultLaborLawID, law.ID)
		assert.True(t, law.OvertimeRate.Equal(domain.DefaultLaborLaw.OvertimeRate))

		r.GetLaborLaw(ctx)
		assert.Equal(t, int32(2), store.lookups.Load())
	})

	t.Run("store failure", func(t *testing.T) {
		store := repository.NewMemoryStore()
		store.LawErr = errors.New("connection refused")

		r := service.NewRateResolver(store, time.Hour, logger.Nop())

		law, fallback := r.GetLaborLaw(ctx)
		assert.True(t, fallback)
		assert.Equal(t, domain.DefaultLaborLawID, law.ID)
	})

	t.Run("draft versions are ignored", func(t *testing.T) {
		store := repository.NewMemoryStore()
		draft := testutil.ActiveLaborLaw("draft", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
		draft.Status = domain.LawStatusDraft
		store.AddLaborLaw(draft)

		r := service.NewRateResolver(store, time.Hour, logger.Nop())

		law, fallback := r.GetLaborLaw(ctx)
		assert.True(t, fallback)
		assert.Equal(t, domain.DefaultLaborLawID, law.ID)
	})
}
