package service

import (
	"context"
	"sync"
	"time"

	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/medflow/payroll-backend/pkg/logger"
)

// DefaultLawCacheTTL is how long a resolved labor-law version is reused
const DefaultLawCacheTTL = time.Hour

// RateResolver resolves the labor-law version in force today. A resolved
// version is cached for the TTL and is not invalidated when laws change.
// When the store has no version or fails, the built-in default is used and
// not cached, so the next call retries the store.
type RateResolver struct {
	store  PayrollDataStore
	ttl    time.Duration
	now    func() time.Time
	logger *logger.Logger

	mu        sync.Mutex
	cached    *domain.LaborLawVersion
	expiresAt time.Time
}

// NewRateResolver creates a resolver. A non-positive ttl uses DefaultLawCacheTTL.
func NewRateResolver(store PayrollDataStore, ttl time.Duration, log *logger.Logger) *RateResolver {
	if ttl <= 0 {
		ttl = DefaultLawCacheTTL
	}
	return &RateResolver{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: log.WithComponent("rate_resolver"),
	}
}

// WithClock replaces the resolver's clock
func (r *RateResolver) WithClock(now func() time.Time) *RateResolver {
	r.now = now
	return r
}

// GetLaborLaw returns the version in force and whether the built-in default
// had to be used instead.
func (r *RateResolver) GetLaborLaw(ctx context.Context) (domain.LaborLawVersion, bool) {
	now := r.now()

	r.mu.Lock()
	if r.cached != nil && now.Before(r.expiresAt) {
		law := *r.cached
		r.mu.Unlock()
		return law, false
	}
	r.mu.Unlock()

	law, err := r.store.GetActiveLaborLaw(ctx, now)
	if err != nil || law == nil {
		ev := r.logger.Warn().Str("labor_law_version_id", domain.DefaultLaborLawID)
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("no active labor law resolved, using built-in default")
		return domain.DefaultLaborLaw, true
	}

	r.mu.Lock()
	r.cached = law
	r.expiresAt = now.Add(r.ttl)
	r.mu.Unlock()

	return *law, false
}
