package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medflow/payroll-backend/internal/payroll/calc"
	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/medflow/payroll-backend/pkg/errors"
	"github.com/medflow/payroll-backend/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// SalaryPolicy holds the configurable parts of a payroll run
type SalaryPolicy struct {
	Options         calc.Options
	BulkConcurrency int
	Location        *time.Location
}

// DefaultSalaryPolicy runs bulk calculations sequentially in UTC
func DefaultSalaryPolicy() SalaryPolicy {
	return SalaryPolicy{
		Options:         calc.DefaultOptions(),
		BulkConcurrency: 1,
		Location:        time.UTC,
	}
}

// SalaryService computes salary records and moves them through their lifecycle
type SalaryService struct {
	store  PayrollDataStore
	rates  *RateResolver
	events EventPublisher
	policy SalaryPolicy
	now    func() time.Time
	logger *logger.Logger
}

// NewSalaryService creates a new salary service. events may be nil.
func NewSalaryService(
	store PayrollDataStore,
	rates *RateResolver,
	events EventPublisher,
	policy SalaryPolicy,
	log *logger.Logger,
) *SalaryService {
	if policy.BulkConcurrency < 1 {
		policy.BulkConcurrency = 1
	}
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &SalaryService{
		store:  store,
		rates:  rates,
		events: events,
		policy: policy,
		now:    time.Now,
		logger: log.WithComponent("salary_service"),
	}
}

// WithClock replaces the service's clock
func (s *SalaryService) WithClock(now func() time.Time) *SalaryService {
	s.now = now
	return s
}

// CalculateMonthlySalary computes and stores the PENDING record for one
// staff member and month. A CONFIRMED or PAID record is never overwritten.
func (s *SalaryService) CalculateMonthlySalary(ctx context.Context, staffID string, year, month int) (*domain.SalaryCalculation, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}

	existing, err := s.store.GetSalaryCalculation(ctx, staffID, year, month)
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.Recomputable() {
		return nil, errors.Conflict(fmt.Sprintf("salary for %04d-%02d is already %s", year, month, existing.Status))
	}

	contract, err := s.store.GetActiveContract(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, errors.ContractNotFound(staffID)
	}

	rows, err := s.store.GetAttendance(ctx, staffID, year, month)
	if err != nil {
		return nil, err
	}

	law, fallback := s.rates.GetLaborLaw(ctx)

	result := calc.Compute(contract, rows, law, s.policy.Options)

	now := s.now().UTC()
	result.ID = uuid.New().String()
	result.CreatedAt = now
	if existing != nil {
		result.ID = existing.ID
		result.CreatedAt = existing.CreatedAt
	}
	result.Year = year
	result.Month = month
	result.Status = domain.SalaryStatusPending
	result.UsedDefaultLaborLaw = fallback
	result.UpdatedAt = now
	payDate := domain.PaymentDateFor(year, month, contract.SalaryConfig.PaymentDate, s.policy.Location)
	result.PaymentDate = &payDate

	if err := s.store.SaveSalaryCalculation(ctx, &result); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.PublishSalaryCalculated(ctx, &result)
	}

	return &result, nil
}

// CalculateBulkSalaries computes every rostered staff member of a company.
// A failing staff member is logged and skipped; the rest are returned in
// roster order. Once ctx is done no further staff are started, and the
// records already stored are returned with ctx.Err().
func (s *SalaryService) CalculateBulkSalaries(ctx context.Context, companyID string, year, month int) ([]*domain.SalaryCalculation, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}

	staff, err := s.store.ListActiveStaff(ctx, companyID)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithPeriod(year, month)
	results := make([]*domain.SalaryCalculation, len(staff))

	var g errgroup.Group
	g.SetLimit(s.policy.BulkConcurrency)
	for i, staffID := range staff {
		i, staffID := i, staffID
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res, err := s.CalculateMonthlySalary(ctx, staffID, year, month)
			if err != nil {
				log.Warn().Err(err).Str("staff_id", staffID).Msg("salary calculation skipped")
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*domain.SalaryCalculation, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}

	log.Info().
		Str("company_id", companyID).
		Int("roster", len(staff)).
		Int("calculated", len(out)).
		Msg("bulk salary calculation finished")

	return out, ctx.Err()
}

// ConfirmSalary moves a DRAFT or PENDING record to CONFIRMED
func (s *SalaryService) ConfirmSalary(ctx context.Context, id, confirmedBy string) (*domain.SalaryCalculation, error) {
	if confirmedBy == "" {
		return nil, errors.BadRequest("confirmed_by is required")
	}

	rec, err := s.store.GetSalaryCalculationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := rec.Status
	if err := rec.Confirm(confirmedBy, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.store.UpdateSalaryStatus(ctx, rec, from); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.PublishSalaryConfirmed(ctx, rec)
	}

	return rec, nil
}

// MarkAsPaid moves a CONFIRMED record to PAID
func (s *SalaryService) MarkAsPaid(ctx context.Context, id string) (*domain.SalaryCalculation, error) {
	rec, err := s.store.GetSalaryCalculationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := rec.Status
	if err := rec.MarkPaid(s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.store.UpdateSalaryStatus(ctx, rec, from); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.PublishSalaryPaid(ctx, rec)
	}

	return rec, nil
}

// GetSalary gets a salary record by ID
func (s *SalaryService) GetSalary(ctx context.Context, id string) (*domain.SalaryCalculation, error) {
	return s.store.GetSalaryCalculationByID(ctx, id)
}

// ListSalaries lists a company's salary records for a month
func (s *SalaryService) ListSalaries(ctx context.Context, companyID string, year, month int) ([]*domain.SalaryCalculation, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}
	return s.store.ListSalaryCalculations(ctx, companyID, year, month)
}

// LaborLaw returns the labor-law version a calculation would use right now
func (s *SalaryService) LaborLaw(ctx context.Context) (domain.LaborLawVersion, bool) {
	return s.rates.GetLaborLaw(ctx)
}

func validatePeriod(year, month int) error {
	details := make(map[string]string)
	if year < 2000 || year > 9999 {
		details["year"] = "must be between 2000 and 9999"
	}
	if month < 1 || month > 12 {
		details["month"] = "must be between 1 and 12"
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}
