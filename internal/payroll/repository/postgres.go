package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/medflow/payroll-backend/pkg/database"
	"github.com/medflow/payroll-backend/pkg/errors"
)

// RosterRoles are the staff roles included in bulk payroll runs
var RosterRoles = []string{"staff", "manager", "store_manager", "team_leader"}

const contractColumns = `
	id, staff_id, company_id, status, salary_config, deduction_config,
	standard_hours_per_week, standard_hours_per_day`

const attendanceColumns = `
	id, staff_id, work_date, work_hours, overtime_hours, night_hours,
	holiday_hours, actual_check_in, actual_check_out, status`

const laborLawColumns = `
	id, effective_date, minimum_wage_hourly, overtime_rate, night_rate,
	holiday_rate, national_pension_rate, health_insurance_rate,
	long_term_care_rate, employment_insurance_rate, status`

const salaryColumns = `
	id, staff_id, company_id, contract_id, year, month,
	work_days, total_hours, regular_hours, overtime_hours, night_hours,
	holiday_hours, weekly_breakdown,
	base_salary, overtime_pay, night_pay, holiday_pay, weekly_holiday_pay,
	meal_allowance, transport_allowance, position_allowance, total_gross_pay,
	national_pension, health_insurance, long_term_care, employment_insurance,
	income_tax, local_income_tax, total_deductions, net_pay,
	labor_law_version_id, used_default_labor_law, status, payment_date,
	confirmed_by, confirmed_at, paid_at, created_at, updated_at`

// PostgresStore implements the payroll data store on PostgreSQL
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a new PostgreSQL payroll store
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetActiveContract gets the single ACTIVE contract of a staff member
func (s *PostgresStore) GetActiveContract(ctx context.Context, staffID string) (*domain.Contract, error) {
	query := `SELECT` + contractColumns + `
		FROM contracts
		WHERE staff_id = $1 AND status = 'ACTIVE'
		ORDER BY created_at DESC
		LIMIT 2`

	var contracts []domain.Contract
	if err := s.db.SelectContext(ctx, &contracts, query, staffID); err != nil {
		return nil, err
	}

	switch len(contracts) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, errors.Conflict("staff member has more than one active contract")
	}

	c := &contracts[0]
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// GetAttendance lists a month's countable attendance rows ordered by date
func (s *PostgresStore) GetAttendance(ctx context.Context, staffID string, year, month int) ([]domain.AttendanceRecord, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	query := `SELECT` + attendanceColumns + `
		FROM attendance_records
		WHERE staff_id = $1
		  AND work_date >= $2 AND work_date < $3
		  AND status <> ALL($4)
		ORDER BY work_date`

	var rows []domain.AttendanceRecord
	if err := s.db.SelectContext(ctx, &rows, query, staffID, start, end, pq.Array(excludedStatuses())); err != nil {
		return nil, err
	}
	return rows, nil
}

func excludedStatuses() []string {
	out := make([]string, 0, len(domain.ExcludedAttendanceStatuses))
	for _, s := range domain.ExcludedAttendanceStatuses {
		out = append(out, string(s))
	}
	return out
}

// GetActiveLaborLaw gets the latest ACTIVE version effective on date
func (s *PostgresStore) GetActiveLaborLaw(ctx context.Context, date time.Time) (*domain.LaborLawVersion, error) {
	query := `SELECT` + laborLawColumns + `
		FROM labor_law_versions
		WHERE status = 'ACTIVE' AND effective_date <= $1
		ORDER BY effective_date DESC
		LIMIT 1`

	var law domain.LaborLawVersion
	err := s.db.GetContext(ctx, &law, query, date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &law, nil
}

// ListActiveStaff lists the rostered staff IDs of a company
func (s *PostgresStore) ListActiveStaff(ctx context.Context, companyID string) ([]string, error) {
	query := `
		SELECT id FROM staff
		WHERE company_id = $1 AND status = 'ACTIVE' AND role = ANY($2)
		ORDER BY created_at, id`

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, query, companyID, pq.Array(RosterRoles)); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetSalaryCalculation gets the record of a staff member's month, or nil
func (s *PostgresStore) GetSalaryCalculation(ctx context.Context, staffID string, year, month int) (*domain.SalaryCalculation, error) {
	query := `SELECT` + salaryColumns + `
		FROM salary_calculations
		WHERE staff_id = $1 AND year = $2 AND month = $3`

	var calc domain.SalaryCalculation
	err := s.db.GetContext(ctx, &calc, query, staffID, year, month)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &calc, nil
}

// GetSalaryCalculationByID gets a salary record by ID
func (s *PostgresStore) GetSalaryCalculationByID(ctx context.Context, id string) (*domain.SalaryCalculation, error) {
	query := `SELECT` + salaryColumns + `
		FROM salary_calculations
		WHERE id = $1`

	var calc domain.SalaryCalculation
	err := s.db.GetContext(ctx, &calc, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("salary calculation")
	}
	if err != nil {
		return nil, err
	}
	return &calc, nil
}

// ListSalaryCalculations lists a company's records for a month
func (s *PostgresStore) ListSalaryCalculations(ctx context.Context, companyID string, year, month int) ([]*domain.SalaryCalculation, error) {
	query := `SELECT` + salaryColumns + `
		FROM salary_calculations
		WHERE company_id = $1 AND year = $2 AND month = $3
		ORDER BY staff_id`

	var calcs []*domain.SalaryCalculation
	if err := s.db.SelectContext(ctx, &calcs, query, companyID, year, month); err != nil {
		return nil, err
	}
	return calcs, nil
}

// SaveSalaryCalculation upserts a record by (staff, year, month). The
// update only applies while the stored row is DRAFT or PENDING.
func (s *PostgresStore) SaveSalaryCalculation(ctx context.Context, calc *domain.SalaryCalculation) error {
	query := `
		INSERT INTO salary_calculations (` + salaryColumns + `
		) VALUES (
			:id, :staff_id, :company_id, :contract_id, :year, :month,
			:work_days, :total_hours, :regular_hours, :overtime_hours, :night_hours,
			:holiday_hours, :weekly_breakdown,
			:base_salary, :overtime_pay, :night_pay, :holiday_pay, :weekly_holiday_pay,
			:meal_allowance, :transport_allowance, :position_allowance, :total_gross_pay,
			:national_pension, :health_insurance, :long_term_care, :employment_insurance,
			:income_tax, :local_income_tax, :total_deductions, :net_pay,
			:labor_law_version_id, :used_default_labor_law, :status, :payment_date,
			:confirmed_by, :confirmed_at, :paid_at, :created_at, :updated_at
		)
		ON CONFLICT (staff_id, year, month) DO UPDATE SET
			contract_id = EXCLUDED.contract_id,
			work_days = EXCLUDED.work_days,
			total_hours = EXCLUDED.total_hours,
			regular_hours = EXCLUDED.regular_hours,
			overtime_hours = EXCLUDED.overtime_hours,
			night_hours = EXCLUDED.night_hours,
			holiday_hours = EXCLUDED.holiday_hours,
			weekly_breakdown = EXCLUDED.weekly_breakdown,
			base_salary = EXCLUDED.base_salary,
			overtime_pay = EXCLUDED.overtime_pay,
			night_pay = EXCLUDED.night_pay,
			holiday_pay = EXCLUDED.holiday_pay,
			weekly_holiday_pay = EXCLUDED.weekly_holiday_pay,
			meal_allowance = EXCLUDED.meal_allowance,
			transport_allowance = EXCLUDED.transport_allowance,
			position_allowance = EXCLUDED.position_allowance,
			total_gross_pay = EXCLUDED.total_gross_pay,
			national_pension = EXCLUDED.national_pension,
			health_insurance = EXCLUDED.health_insurance,
			long_term_care = EXCLUDED.long_term_care,
			employment_insurance = EXCLUDED.employment_insurance,
			income_tax = EXCLUDED.income_tax,
			local_income_tax = EXCLUDED.local_income_tax,
			total_deductions = EXCLUDED.total_deductions,
			net_pay = EXCLUDED.net_pay,
			labor_law_version_id = EXCLUDED.labor_law_version_id,
			used_default_labor_law = EXCLUDED.used_default_labor_law,
			status = EXCLUDED.status,
			payment_date = EXCLUDED.payment_date,
			updated_at = EXCLUDED.updated_at
		WHERE salary_calculations.status IN ('DRAFT', 'PENDING')`

	result, err := s.db.NamedExecContext(ctx, query, calc)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Conflict("salary calculation is confirmed or paid and cannot be recomputed")
	}
	return nil
}

// UpdateSalaryStatus persists a lifecycle transition. The row is locked and
// its status compared with from before the update.
func (s *PostgresStore) UpdateSalaryStatus(ctx context.Context, calc *domain.SalaryCalculation, from domain.SalaryStatus) error {
	return s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		var current domain.SalaryStatus
		err := tx.GetContext(ctx, &current,
			`SELECT status FROM salary_calculations WHERE id = $1 FOR UPDATE`, calc.ID)
		if err == sql.ErrNoRows {
			return errors.NotFound("salary calculation")
		}
		if err != nil {
			return err
		}
		if current != from {
			return errors.InvalidTransition(string(current), string(calc.Status))
		}

		query := `
			UPDATE salary_calculations
			SET status = $2, confirmed_by = $3, confirmed_at = $4, paid_at = $5, updated_at = $6
			WHERE id = $1`

		if _, err := tx.ExecContext(ctx, query,
			calc.ID, calc.Status, calc.ConfirmedBy, calc.ConfirmedAt, calc.PaidAt, calc.UpdatedAt,
		); err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return err
		}
		return nil
	})
}
