package domain

import (
	"database/sql/driver"
	"time"

	"github.com/medflow/payroll-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// SalaryStatus is the lifecycle state of a salary record
type SalaryStatus string

const (
	SalaryStatusDraft     SalaryStatus = "DRAFT"
	SalaryStatusPending   SalaryStatus = "PENDING"
	SalaryStatusConfirmed SalaryStatus = "CONFIRMED"
	SalaryStatusPaid      SalaryStatus = "PAID"
)

// WeeklyHours is one week bucket of a month's attendance
type WeeklyHours struct {
	Week                int             `json:"week"`
	Hours               decimal.Decimal `json:"hours"`
	HasWeeklyHolidayPay bool            `json:"has_weekly_holiday_pay"`
}

// WeeklyBreakdown is stored as JSONB alongside the salary record
type WeeklyBreakdown []WeeklyHours

// Scan implements sql.Scanner
func (b *WeeklyBreakdown) Scan(src any) error { return scanJSON(src, b) }

// Value implements driver.Valuer
func (b WeeklyBreakdown) Value() (driver.Value, error) {
	if b == nil {
		return valueJSON([]WeeklyHours{})
	}
	return valueJSON([]WeeklyHours(b))
}

// AllowanceBreakdown is the gross side of a salary record
type AllowanceBreakdown struct {
	BaseSalary         Money `db:"base_salary" json:"base_salary"`
	OvertimePay        Money `db:"overtime_pay" json:"overtime_pay"`
	NightPay           Money `db:"night_pay" json:"night_pay"`
	HolidayPay         Money `db:"holiday_pay" json:"holiday_pay"`
	WeeklyHolidayPay   Money `db:"weekly_holiday_pay" json:"weekly_holiday_pay"`
	MealAllowance      Money `db:"meal_allowance" json:"meal_allowance"`
	TransportAllowance Money `db:"transport_allowance" json:"transport_allowance"`
	PositionAllowance  Money `db:"position_allowance" json:"position_allowance"`
	TotalGrossPay      Money `db:"total_gross_pay" json:"total_gross_pay"`
}

// NonTaxable returns the flat allowances excluded from a reduced insurance base
func (a AllowanceBreakdown) NonTaxable() Money {
	return a.MealAllowance + a.TransportAllowance
}

// DeductionBreakdown is the withholding side of a salary record
type DeductionBreakdown struct {
	NationalPension     Money `db:"national_pension" json:"national_pension"`
	HealthInsurance     Money `db:"health_insurance" json:"health_insurance"`
	LongTermCare        Money `db:"long_term_care" json:"long_term_care"`
	EmploymentInsurance Money `db:"employment_insurance" json:"employment_insurance"`
	IncomeTax           Money `db:"income_tax" json:"income_tax"`
	LocalIncomeTax      Money `db:"local_income_tax" json:"local_income_tax"`
	TotalDeductions     Money `db:"total_deductions" json:"total_deductions"`
}

// SalaryCalculation is the itemized payroll record for one staff member and month
type SalaryCalculation struct {
	ID         string `db:"id" json:"id"`
	StaffID    string `db:"staff_id" json:"staff_id"`
	CompanyID  string `db:"company_id" json:"company_id"`
	ContractID string `db:"contract_id" json:"contract_id"`
	Year       int    `db:"year" json:"year"`
	Month      int    `db:"month" json:"month"`

	WorkDays        int             `db:"work_days" json:"work_days"`
	TotalHours      decimal.Decimal `db:"total_hours" json:"total_hours"`
	RegularHours    decimal.Decimal `db:"regular_hours" json:"regular_hours"`
	OvertimeHours   decimal.Decimal `db:"overtime_hours" json:"overtime_hours"`
	NightHours      decimal.Decimal `db:"night_hours" json:"night_hours"`
	HolidayHours    decimal.Decimal `db:"holiday_hours" json:"holiday_hours"`
	WeeklyBreakdown WeeklyBreakdown `db:"weekly_breakdown" json:"weekly_breakdown"`

	AllowanceBreakdown
	DeductionBreakdown
	NetPay Money `db:"net_pay" json:"net_pay"`

	LaborLawVersionID   string `db:"labor_law_version_id" json:"labor_law_version_id"`
	UsedDefaultLaborLaw bool   `db:"used_default_labor_law" json:"used_default_labor_law"`

	Status      SalaryStatus `db:"status" json:"status"`
	PaymentDate *time.Time   `db:"payment_date" json:"payment_date,omitempty"`
	ConfirmedBy *string      `db:"confirmed_by" json:"confirmed_by,omitempty"`
	ConfirmedAt *time.Time   `db:"confirmed_at" json:"confirmed_at,omitempty"`
	PaidAt      *time.Time   `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// Recomputable reports whether the pipeline may overwrite the record
func (s *SalaryCalculation) Recomputable() bool {
	return s.Status == SalaryStatusDraft || s.Status == SalaryStatusPending
}

// Confirm moves a DRAFT or PENDING record to CONFIRMED
func (s *SalaryCalculation) Confirm(by string, at time.Time) error {
	if !s.Recomputable() {
		return errors.InvalidTransition(string(s.Status), string(SalaryStatusConfirmed))
	}
	s.Status = SalaryStatusConfirmed
	s.ConfirmedBy = &by
	s.ConfirmedAt = &at
	s.UpdatedAt = at
	return nil
}

// MarkPaid moves a CONFIRMED record to PAID
func (s *SalaryCalculation) MarkPaid(at time.Time) error {
	if s.Status != SalaryStatusConfirmed {
		return errors.InvalidTransition(string(s.Status), string(SalaryStatusPaid))
	}
	s.Status = SalaryStatusPaid
	s.PaidAt = &at
	s.UpdatedAt = at
	return nil
}

// PaymentDateFor places the contract's pay day in the month after the period.
// Day 0, or a day past the end of that month, resolves to the month's last day.
func PaymentDateFor(year, month, day int, loc *time.Location) time.Time {
	first := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1).Day()
	if day <= 0 || day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
}
