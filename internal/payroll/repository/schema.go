package repository

import (
	"context"
	"fmt"

	"github.com/medflow/payroll-backend/pkg/database"
)

// Schema creates the payroll tables. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS staff (
	id          TEXT PRIMARY KEY,
	company_id  TEXT NOT NULL,
	role        TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'ACTIVE',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS staff_company_idx ON staff (company_id, status);

CREATE TABLE IF NOT EXISTS contracts (
	id                       TEXT PRIMARY KEY,
	staff_id                 TEXT NOT NULL REFERENCES staff (id),
	company_id               TEXT NOT NULL,
	status                   TEXT NOT NULL,
	salary_config            JSONB NOT NULL,
	deduction_config         JSONB NOT NULL DEFAULT '{}',
	standard_hours_per_week  NUMERIC(5,2) NOT NULL,
	standard_hours_per_day   NUMERIC(5,2) NOT NULL,
	created_at               TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS contracts_one_active_per_staff
	ON contracts (staff_id) WHERE status = 'ACTIVE';

CREATE TABLE IF NOT EXISTS attendance_records (
	id                TEXT PRIMARY KEY,
	staff_id          TEXT NOT NULL REFERENCES staff (id),
	work_date         DATE NOT NULL,
	work_hours        NUMERIC(5,2) NOT NULL DEFAULT 0,
	overtime_hours    NUMERIC(5,2) NOT NULL DEFAULT 0,
	night_hours       NUMERIC(5,2) NOT NULL DEFAULT 0,
	holiday_hours     NUMERIC(5,2) NOT NULL DEFAULT 0,
	actual_check_in   TIMESTAMPTZ,
	actual_check_out  TIMESTAMPTZ,
	status            TEXT NOT NULL,
	CONSTRAINT attendance_staff_date UNIQUE (staff_id, work_date)
);

CREATE TABLE IF NOT EXISTS labor_law_versions (
	id                         TEXT PRIMARY KEY,
	effective_date             DATE NOT NULL,
	minimum_wage_hourly        BIGINT NOT NULL,
	overtime_rate              NUMERIC(8,5) NOT NULL,
	night_rate                 NUMERIC(8,5) NOT NULL,
	holiday_rate               NUMERIC(8,5) NOT NULL,
	national_pension_rate      NUMERIC(8,5) NOT NULL,
	health_insurance_rate      NUMERIC(8,5) NOT NULL,
	long_term_care_rate        NUMERIC(8,5) NOT NULL,
	employment_insurance_rate  NUMERIC(8,5) NOT NULL,
	status                     TEXT NOT NULL,
	CONSTRAINT labor_law_status_valid CHECK (status IN ('DRAFT', 'VERIFIED', 'ACTIVE', 'ARCHIVED'))
);

CREATE TABLE IF NOT EXISTS salary_calculations (
	id                      TEXT PRIMARY KEY,
	staff_id                TEXT NOT NULL,
	company_id              TEXT NOT NULL,
	contract_id             TEXT NOT NULL,
	year                    INT NOT NULL,
	month                   INT NOT NULL,
	work_days               INT NOT NULL,
	total_hours             NUMERIC(7,2) NOT NULL,
	regular_hours           NUMERIC(7,2) NOT NULL,
	overtime_hours          NUMERIC(7,2) NOT NULL,
	night_hours             NUMERIC(7,2) NOT NULL,
	holiday_hours           NUMERIC(7,2) NOT NULL,
	weekly_breakdown        JSONB NOT NULL DEFAULT '[]',
	base_salary             BIGINT NOT NULL,
	overtime_pay            BIGINT NOT NULL,
	night_pay               BIGINT NOT NULL,
	holiday_pay             BIGINT NOT NULL,
	weekly_holiday_pay      BIGINT NOT NULL,
	meal_allowance          BIGINT NOT NULL,
	transport_allowance     BIGINT NOT NULL,
	position_allowance      BIGINT NOT NULL,
	total_gross_pay         BIGINT NOT NULL,
	national_pension        BIGINT NOT NULL,
	health_insurance        BIGINT NOT NULL,
	long_term_care          BIGINT NOT NULL,
	employment_insurance    BIGINT NOT NULL,
	income_tax              BIGINT NOT NULL,
	local_income_tax        BIGINT NOT NULL,
	total_deductions        BIGINT NOT NULL,
	net_pay                 BIGINT NOT NULL,
	labor_law_version_id    TEXT NOT NULL,
	used_default_labor_law  BOOLEAN NOT NULL DEFAULT false,
	status                  TEXT NOT NULL,
	payment_date            DATE,
	confirmed_by            TEXT,
	confirmed_at            TIMESTAMPTZ,
	paid_at                 TIMESTAMPTZ,
	created_at              TIMESTAMPTZ NOT NULL,
	updated_at              TIMESTAMPTZ NOT NULL,
	CONSTRAINT salary_calculations_staff_period UNIQUE (staff_id, year, month),
	CONSTRAINT salary_status_valid CHECK (status IN ('DRAFT', 'PENDING', 'CONFIRMED', 'PAID')),
	CONSTRAINT salary_month_range CHECK (month BETWEEN 1 AND 12)
);

CREATE INDEX IF NOT EXISTS salary_calculations_company_period_idx
	ON salary_calculations (company_id, year, month);
`

// Migrate applies Schema
func Migrate(ctx context.Context, db *database.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply payroll schema: %w", err)
	}
	return nil
}
