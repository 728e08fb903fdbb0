package domain

import (
	"database/sql/driver"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/medflow/payroll-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// BaseSalaryType is the unit basis of a contract's pay
type BaseSalaryType string

const (
	BaseSalaryHourly  BaseSalaryType = "HOURLY"
	BaseSalaryDaily   BaseSalaryType = "DAILY"
	BaseSalaryMonthly BaseSalaryType = "MONTHLY"
)

// ContractStatus values
const (
	ContractStatusDraft      = "DRAFT"
	ContractStatusActive     = "ACTIVE"
	ContractStatusTerminated = "TERMINATED"
)

// DefaultDependents is used when a contract does not state a dependents count
const DefaultDependents = 1

// Contract is a signed employment contract as seen by payroll
type Contract struct {
	ID                   string          `db:"id" json:"id"`
	StaffID              string          `db:"staff_id" json:"staff_id" validate:"required"`
	CompanyID            string          `db:"company_id" json:"company_id"`
	Status               string          `db:"status" json:"status"`
	SalaryConfig         SalaryConfig    `db:"salary_config" json:"salary_config"`
	DeductionConfig      DeductionConfig `db:"deduction_config" json:"deduction_config"`
	StandardHoursPerWeek decimal.Decimal `db:"standard_hours_per_week" json:"standard_hours_per_week"`
	StandardHoursPerDay  decimal.Decimal `db:"standard_hours_per_day" json:"standard_hours_per_day"`
}

// SalaryConfig describes how base pay is computed
type SalaryConfig struct {
	BaseSalaryType   BaseSalaryType  `json:"base_salary_type" validate:"required,oneof=HOURLY DAILY MONTHLY"`
	BaseSalaryAmount Money           `json:"base_salary_amount" validate:"gte=0"`
	Allowances       AllowanceConfig `json:"allowances"`
	// PaymentDate is the day of month salaries are paid; 0 means the last day.
	PaymentDate int `json:"payment_date" validate:"gte=0,lte=31"`
}

// AllowanceConfig holds differential opt-outs and flat allowances.
// A nil flag means enabled.
type AllowanceConfig struct {
	Overtime         *bool  `json:"overtime,omitempty"`
	Night            *bool  `json:"night,omitempty"`
	Holiday          *bool  `json:"holiday,omitempty"`
	WeeklyHolidayPay *bool  `json:"weekly_holiday_pay,omitempty"`
	Meal             *Money `json:"meal,omitempty" validate:"omitempty,gte=0"`
	Transport        *Money `json:"transport,omitempty" validate:"omitempty,gte=0"`
	Position         *Money `json:"position,omitempty" validate:"omitempty,gte=0"`
}

func (a AllowanceConfig) OvertimeEnabled() bool         { return enabled(a.Overtime) }
func (a AllowanceConfig) NightEnabled() bool            { return enabled(a.Night) }
func (a AllowanceConfig) HolidayEnabled() bool          { return enabled(a.Holiday) }
func (a AllowanceConfig) WeeklyHolidayPayEnabled() bool { return enabled(a.WeeklyHolidayPay) }
func (a AllowanceConfig) MealAmount() Money             { return amount(a.Meal) }
func (a AllowanceConfig) TransportAmount() Money        { return amount(a.Transport) }
func (a AllowanceConfig) PositionAmount() Money         { return amount(a.Position) }

// DeductionConfig holds statutory deduction opt-outs. A nil flag means enabled.
// Long-term care insurance follows HealthInsurance; local income tax follows IncomeTax.
type DeductionConfig struct {
	NationalPension     *bool `json:"national_pension,omitempty"`
	HealthInsurance     *bool `json:"health_insurance,omitempty"`
	EmploymentInsurance *bool `json:"employment_insurance,omitempty"`
	IncomeTax           *bool `json:"income_tax,omitempty"`
	Dependents          *int  `json:"dependents,omitempty" validate:"omitempty,gte=0"`
}

func (d DeductionConfig) NationalPensionEnabled() bool     { return enabled(d.NationalPension) }
func (d DeductionConfig) HealthInsuranceEnabled() bool     { return enabled(d.HealthInsurance) }
func (d DeductionConfig) EmploymentInsuranceEnabled() bool { return enabled(d.EmploymentInsurance) }
func (d DeductionConfig) IncomeTaxEnabled() bool           { return enabled(d.IncomeTax) }

// DependentCount returns the stated dependents, or DefaultDependents
func (d DeductionConfig) DependentCount() int {
	if d.Dependents == nil {
		return DefaultDependents
	}
	return *d.Dependents
}

func enabled(flag *bool) bool {
	return flag == nil || *flag
}

func amount(m *Money) Money {
	if m == nil {
		return 0
	}
	return *m
}

// Scan implements sql.Scanner for the salary_config JSONB column
func (c *SalaryConfig) Scan(src any) error { return scanJSON(src, c) }

// Value implements driver.Valuer for the salary_config JSONB column
func (c SalaryConfig) Value() (driver.Value, error) { return valueJSON(c) }

// Scan implements sql.Scanner for the deduction_config JSONB column
func (d *DeductionConfig) Scan(src any) error { return scanJSON(src, d) }

// Value implements driver.Valuer for the deduction_config JSONB column
func (d DeductionConfig) Value() (driver.Value, error) { return valueJSON(d) }

var validate = validator.New()

// Validate checks a contract at the collaborator boundary so the
// computation never has to guard against malformed configuration.
func (c *Contract) Validate() error {
	details := make(map[string]string)

	if err := validate.Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, e := range verrs {
			details[strings.TrimPrefix(e.Namespace(), "Contract.")] = formatFieldError(e)
		}
	}

	if !c.StandardHoursPerDay.IsPositive() {
		details["standard_hours_per_day"] = "must be greater than zero"
	}
	if !c.StandardHoursPerWeek.IsPositive() {
		details["standard_hours_per_week"] = "must be greater than zero"
	}

	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be at least " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	default:
		return "invalid value"
	}
}
