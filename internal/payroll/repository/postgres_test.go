package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/medflow/payroll-backend/internal/payroll/repository"
	apperrors "github.com/medflow/payroll-backend/pkg/errors"
	"github.com/medflow/payroll-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contractCols = []string{
	"id", "staff_id", "company_id", "status", "salary_config", "deduction_config",
	"standard_hours_per_week", "standard_hours_per_day",
}

func newMockStore(t *testing.T) (*repository.PostgresStore, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })
	return repository.NewPostgresStore(mockDB.Wrapped()), mockDB
}

func TestPostgresStore_GetActiveContract(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		store, mockDB := newMockStore(t)
		mockDB.ExpectQuery("FROM contracts").
			WithArgs("s1").
			WillReturnRows(testutil.MockRows(contractCols...))

		c, err := store.GetActiveContract(ctx, "s1")
		require.NoError(t, err)
		assert.Nil(t, c)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("decodes configuration", func(t *testing.T) {
		store, mockDB := newMockStore(t)
		mockDB.ExpectQuery("FROM contracts").
			WithArgs("s1").
			WillReturnRows(testutil.MockRows(contractCols...).AddRow(
				"c1", "s1", "company-1", "ACTIVE",
				[]byte(`{"base_salary_type":"MONTHLY","base_salary_amount":2090000,"allowances":{"night":false,"meal":100000},"payment_date":25}`),
				[]byte(`{"income_tax":false,"dependents":3}`),
				"40.00", "8.00",
			))

		c, err := store.GetActiveContract(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, c)

		assert.Equal(t, domain.BaseSalaryMonthly, c.SalaryConfig.BaseSalaryType)
		assert.Equal(t, domain.Money(2_090_000), c.SalaryConfig.BaseSalaryAmount)
		assert.False(t, c.SalaryConfig.Allowances.NightEnabled())
		assert.True(t, c.SalaryConfig.Allowances.OvertimeEnabled())
		assert.Equal(t, domain.Money(100_000), c.SalaryConfig.Allowances.MealAmount())
		assert.False(t, c.DeductionConfig.IncomeTaxEnabled())
		assert.Equal(t, 3, c.DeductionConfig.DependentCount())
		assert.Equal(t, "8", c.StandardHoursPerDay.String())
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("more than one active", func(t *testing.T) {
		store, mockDB := newMockStore(t)
		cfg := []byte(`{"base_salary_type":"HOURLY","base_salary_amount":10000}`)
		mockDB.ExpectQuery("FROM contracts").
			WillReturnRows(testutil.MockRows(contractCols...).
				AddRow("c1", "s1", "company-1", "ACTIVE", cfg, []byte(`{}`), "40", "8").
				AddRow("c2", "s1", "company-1", "ACTIVE", cfg, []byte(`{}`), "40", "8"))

		_, err := store.GetActiveContract(ctx, "s1")
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	})

	t.Run("invalid stored contract", func(t *testing.T) {
		store, mockDB := newMockStore(t)
		mockDB.ExpectQuery("FROM contracts").
			WillReturnRows(testutil.MockRows(contractCols...).AddRow(
				"c1", "s1", "company-1", "ACTIVE",
				[]byte(`{"base_salary_type":"HOURLY","base_salary_amount":10000}`), []byte(`{}`),
				"40", "0",
			))

		_, err := store.GetActiveContract(ctx, "s1")
		assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	})
}

func TestPostgresStore_GetActiveLaborLaw(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{
		"id", "effective_date", "minimum_wage_hourly", "overtime_rate", "night_rate",
		"holiday_rate", "national_pension_rate", "health_insurance_rate",
		"long_term_care_rate", "employment_insurance_rate", "status",
	}

	t.Run("none in force", func(t *testing.T) {
		store, mockDB := newMockStore(t)
		mockDB.ExpectQuery("FROM labor_law_versions").
			WithArgs(date).
			WillReturnRows(testutil.MockRows(cols...))

		law, err := store.GetActiveLaborLaw(ctx, date)
		require.NoError(t, err)
		assert.Nil(t, law)
	})

	t.Run("found", func(t *testing.T) {
		store, mockDB := newMockStore(t)
		mockDB.ExpectQuery("FROM labor_law_versions").
			WithArgs(date).
			WillReturnRows(testutil.MockRows(cols...).AddRow(
				"law-2025", date, int64(10_030), "1.5", "0.5", "1.5",
				"0.045", "0.03545", "0.1295", "0.009", "ACTIVE",
			))

		law, err := store.GetActiveLaborLaw(ctx, date)
		require.NoError(t, err)
		require.NotNil(t, law)
		assert.Equal(t, "law-2025", law.ID)
		assert.Equal(t, domain.Money(10_030), law.MinimumWageHourly)
		assert.True(t, law.HealthInsuranceRate.Equal(domain.DefaultLaborLaw.HealthInsuranceRate))
		assert.Equal(t, domain.LawStatusActive, law.Status)
	})
}

func TestPostgresStore_ListActiveStaff(t *testing.T) {
	store, mockDB := newMockStore(t)
	mockDB.ExpectQuery("FROM staff").
		WithArgs("company-1", sqlmock.AnyArg()).
		WillReturnRows(testutil.MockRows("id").AddRow("s1").AddRow("s2"))

	ids, err := store.ListActiveStaff(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, ids)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_GetSalaryCalculationByID_NotFound(t *testing.T) {
	store, mockDB := newMockStore(t)
	mockDB.ExpectQuery("FROM salary_calculations").
		WithArgs("missing").
		WillReturnRows(testutil.MockRows("id"))

	_, err := store.GetSalaryCalculationByID(context.Background(), "missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestPostgresStore_SaveSalaryCalculation(t *testing.T) {
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	calc := &domain.SalaryCalculation{
		ID: "sal-1", StaffID: "s1", CompanyID: "company-1", ContractID: "c1",
		Year: 2025, Month: 3, Status: domain.SalaryStatusPending,
		CreatedAt: now, UpdatedAt: now,
	}

	t.Run("upserted", func(t *testing.T) {
		store, mockDB := newMockStore(t)
		mockDB.ExpectExec("INSERT INTO salary_calculations").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.SaveSalaryCalculation(context.Background(), calc))
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("locked record", func(t *testing.T) {
		store, mockDB := newMockStore(t)
		mockDB.ExpectExec("INSERT INTO salary_calculations").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.SaveSalaryCalculation(context.Background(), calc)
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	})
}

func TestPostgresStore_UpdateSalaryStatus(t *testing.T) {
	now := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	by := "admin-1"
	calc := &domain.SalaryCalculation{
		ID: "sal-1", Status: domain.SalaryStatusConfirmed,
		ConfirmedBy: &by, ConfirmedAt: &now, UpdatedAt: now,
	}

	t.Run("updated", func(t *testing.T) {
		store, mockDB := newMockStore(t)
		mockDB.Mock.ExpectBegin()
		mockDB.ExpectQuery("FOR UPDATE").
			WithArgs("sal-1").
			WillReturnRows(testutil.MockRows("status").AddRow("PENDING"))
		mockDB.ExpectExec("UPDATE salary_calculations").
			WithArgs("sal-1", "CONFIRMED", "admin-1", now, nil, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mockDB.Mock.ExpectCommit()

		require.NoError(t, store.UpdateSalaryStatus(context.Background(), calc, domain.SalaryStatusPending))
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("status changed since read", func(t *testing.T) {
		store, mockDB := newMockStore(t)
		mockDB.Mock.ExpectBegin()
		mockDB.ExpectQuery("FOR UPDATE").
			WithArgs("sal-1").
			WillReturnRows(testutil.MockRows("status").AddRow("CONFIRMED"))
		mockDB.Mock.ExpectRollback()

		err := store.UpdateSalaryStatus(context.Background(), calc, domain.SalaryStatusPending)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("missing", func(t *testing.T) {
		store, mockDB := newMockStore(t)
		mockDB.Mock.ExpectBegin()
		mockDB.ExpectQuery("FOR UPDATE").
			WithArgs("sal-1").
			WillReturnRows(testutil.MockRows("status"))
		mockDB.Mock.ExpectRollback()

		err := store.UpdateSalaryStatus(context.Background(), calc, domain.SalaryStatusPending)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
		mockDB.ExpectationsWereMet(t)
	})
}
