//go:build integration

package repository_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/medflow/payroll-backend/internal/payroll/repository"
	"github.com/medflow/payroll-backend/internal/payroll/service"
	apperrors "github.com/medflow/payroll-backend/pkg/errors"
	"github.com/medflow/payroll-backend/pkg/logger"
	"github.com/medflow/payroll-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	suite, err = testutil.NewIntegrationSuite(ctx, repository.Schema)
	if err != nil {
		log.Fatalf("failed to create integration suite: %v", err)
	}

	code := m.Run()

	suite.Cleanup()
	testutil.TerminateContainer(ctx)
	os.Exit(code)
}

var payrollTables = []string{"salary_calculations", "attendance_records", "contracts", "labor_law_versions", "staff"}

func seedStaff(t *testing.T, ctx context.Context, id, companyID, role string) {
	t.Helper()
	_, err := suite.DB.ExecContext(ctx,
		`INSERT INTO staff (id, company_id, role, status) VALUES ($1, $2, $3, 'ACTIVE')`,
		id, companyID, role)
	require.NoError(t, err)
}

func seedContract(t *testing.T, ctx context.Context, c domain.Contract) {
	t.Helper()
	_, err := suite.DB.ExecContext(ctx, `
		INSERT INTO contracts (id, staff_id, company_id, status, salary_config, deduction_config,
			standard_hours_per_week, standard_hours_per_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.StaffID, c.CompanyID, c.Status, c.SalaryConfig, c.DeductionConfig,
		c.StandardHoursPerWeek, c.StandardHoursPerDay)
	require.NoError(t, err)
}

func seedAttendance(t *testing.T, ctx context.Context, rows []domain.AttendanceRecord) {
	t.Helper()
	for _, r := range rows {
		_, err := suite.DB.NamedExecContext(ctx, `
			INSERT INTO attendance_records (id, staff_id, work_date, work_hours, overtime_hours,
				night_hours, holiday_hours, actual_check_in, actual_check_out, status)
			VALUES (:id, :staff_id, :work_date, :work_hours, :overtime_hours,
				:night_hours, :holiday_hours, :actual_check_in, :actual_check_out, :status)`, r)
		require.NoError(t, err)
	}
}

func seedLaborLaw(t *testing.T, ctx context.Context, v domain.LaborLawVersion) {
	t.Helper()
	_, err := suite.DB.NamedExecContext(ctx, `
		INSERT INTO labor_law_versions (id, effective_date, minimum_wage_hourly, overtime_rate,
			night_rate, holiday_rate, national_pension_rate, health_insurance_rate,
			long_term_care_rate, employment_insurance_rate, status)
		VALUES (:id, :effective_date, :minimum_wage_hourly, :overtime_rate,
			:night_rate, :holiday_rate, :national_pension_rate, :health_insurance_rate,
			:long_term_care_rate, :employment_insurance_rate, :status)`, v)
	require.NoError(t, err)
}

func TestPostgresStore_PayrollLifecycle(t *testing.T) {
	ctx := context.Background()
	suite.Truncate(t, ctx, payrollTables...)

	store := repository.NewPostgresStore(suite.DB)

	seedLaborLaw(t, ctx, testutil.ActiveLaborLaw("law-2025", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	for _, id := range []string{"s1", "s2", "s3"} {
		seedStaff(t, ctx, id, "company-1", "staff")
	}
	seedStaff(t, ctx, "owner", "company-1", "owner")

	seedContract(t, ctx, testutil.HourlyContract("s1", 10_000))
	seedContract(t, ctx, testutil.MonthlyContract("s3", 2_090_000))
	seedAttendance(t, ctx, testutil.WorkDays("s1", 2025, time.March, "8", "0"))

	svc := service.NewSalaryService(
		store,
		service.NewRateResolver(store, time.Hour, logger.Nop()),
		nil,
		service.DefaultSalaryPolicy(),
		logger.Nop(),
	)

	results, err := svc.CalculateBulkSalaries(ctx, "company-1", 2025, 3)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "s1", results[0].StaffID)
	assert.Equal(t, "s3", results[1].StaffID)
	assert.Equal(t, "law-2025", results[0].LaborLawVersionID)
	assert.False(t, results[0].UsedDefaultLaborLaw)

	// 21 weekdays of 8 hours at 10,000
	assert.Equal(t, domain.Money(1_680_000), results[0].BaseSalary)
	assert.Equal(t, domain.Money(2_090_000), results[1].BaseSalary)

	stored, err := store.GetSalaryCalculation(ctx, "s1", 2025, 3)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, results[0].ID, stored.ID)
	assert.Equal(t, results[0].NetPay, stored.NetPay)
	assert.Len(t, stored.WeeklyBreakdown, len(results[0].WeeklyBreakdown))

	recomputed, err := svc.CalculateMonthlySalary(ctx, "s1", 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, recomputed.ID)

	_, err = svc.ConfirmSalary(ctx, stored.ID, "admin-1")
	require.NoError(t, err)

	_, err = svc.CalculateMonthlySalary(ctx, "s1", 2025, 3)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	// the store refuses the overwrite even when the service check is bypassed
	err = store.SaveSalaryCalculation(ctx, recomputed)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	paid, err := svc.MarkAsPaid(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SalaryStatusPaid, paid.Status)

	list, err := store.ListSalaryCalculations(ctx, "company-1", 2025, 3)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
