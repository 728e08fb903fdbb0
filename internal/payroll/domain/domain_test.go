package domain

import (
	"testing"
	"time"

	"github.com/medflow/payroll-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContract() *Contract {
	return &Contract{
		ID:      "c1",
		StaffID: "s1",
		Status:  ContractStatusActive,
		SalaryConfig: SalaryConfig{
			BaseSalaryType:   BaseSalaryHourly,
			BaseSalaryAmount: 10_000,
		},
		StandardHoursPerWeek: decimal.NewFromInt(40),
		StandardHoursPerDay:  decimal.NewFromInt(8),
	}
}

func TestContract_Validate(t *testing.T) {
	t.Run("valid contract", func(t *testing.T) {
		require.NoError(t, validContract().Validate())
	})

	t.Run("zero standard hours rejected", func(t *testing.T) {
		c := validContract()
		c.StandardHoursPerDay = decimal.Zero

		err := c.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))

		var appErr *errors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Contains(t, appErr.Details, "standard_hours_per_day")
	})

	t.Run("unknown base salary type rejected", func(t *testing.T) {
		c := validContract()
		c.SalaryConfig.BaseSalaryType = "WEEKLY"

		var appErr *errors.AppError
		require.True(t, errors.As(c.Validate(), &appErr))
		assert.Contains(t, appErr.Details, "SalaryConfig.BaseSalaryType")
	})

	t.Run("negative dependents rejected", func(t *testing.T) {
		c := validContract()
		n := -1
		c.DeductionConfig.Dependents = &n

		assert.Error(t, c.Validate())
	})
}

func TestFlagDefaults(t *testing.T) {
	off := false
	meal := Money(100_000)

	a := AllowanceConfig{Overtime: &off, Meal: &meal}
	assert.False(t, a.OvertimeEnabled())
	assert.True(t, a.NightEnabled())
	assert.True(t, a.WeeklyHolidayPayEnabled())
	assert.Equal(t, Money(100_000), a.MealAmount())
	assert.Equal(t, Money(0), a.TransportAmount())

	d := DeductionConfig{IncomeTax: &off}
	assert.False(t, d.IncomeTaxEnabled())
	assert.True(t, d.NationalPensionEnabled())
	assert.Equal(t, DefaultDependents, d.DependentCount())
}

func TestSalaryConfig_JSONColumn(t *testing.T) {
	off := false
	in := SalaryConfig{
		BaseSalaryType:   BaseSalaryMonthly,
		BaseSalaryAmount: 2_090_000,
		Allowances:       AllowanceConfig{Night: &off},
		PaymentDate:      25,
	}

	v, err := in.Value()
	require.NoError(t, err)

	var out SalaryConfig
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in.BaseSalaryType, out.BaseSalaryType)
	assert.False(t, out.Allowances.NightEnabled())
	assert.True(t, out.Allowances.OvertimeEnabled())
}

func TestAttendanceRecord_Countable(t *testing.T) {
	tests := []struct {
		status AttendanceStatus
		want   bool
	}{
		{AttendancePresent, true},
		{AttendanceLate, true},
		{AttendanceOvertime, true},
		{AttendanceAbsent, false},
		{AttendanceUnscheduled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			r := AttendanceRecord{Status: tt.status}
			assert.Equal(t, tt.want, r.Countable())
		})
	}
}

func TestLaborLawVersion_InForce(t *testing.T) {
	v := LaborLawVersion{
		EffectiveDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:        LawStatusActive,
	}

	assert.True(t, v.InForce(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, v.InForce(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, v.Mutable())

	v.Status = LawStatusVerified
	assert.False(t, v.InForce(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSalaryCalculation_Lifecycle(t *testing.T) {
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	s := &SalaryCalculation{Status: SalaryStatusPending}

	err := s.MarkPaid(now)
	assert.True(t, errors.Is(err, errors.ErrInvalidTransition))

	require.NoError(t, s.Confirm("admin-1", now))
	assert.Equal(t, SalaryStatusConfirmed, s.Status)
	assert.Equal(t, "admin-1", *s.ConfirmedBy)
	assert.False(t, s.Recomputable())

	err = s.Confirm("admin-2", now)
	assert.True(t, errors.Is(err, errors.ErrInvalidTransition))

	require.NoError(t, s.MarkPaid(now))
	assert.Equal(t, SalaryStatusPaid, s.Status)
	assert.Equal(t, now, *s.PaidAt)
}

func TestPaymentDateFor(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		day   int
		want  time.Time
	}{
		{"mid month", 2025, 3, 10, time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)},
		{"zero is last day", 2025, 3, 0, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)},
		{"clamped to february", 2025, 1, 31, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"december rolls year", 2025, 12, 25, time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentDateFor(tt.year, tt.month, tt.day, time.UTC))
		})
	}
}
