package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LawStatus is the review state of a labor-law parameter set
type LawStatus string

const (
	LawStatusDraft    LawStatus = "DRAFT"
	LawStatusVerified LawStatus = "VERIFIED"
	LawStatusActive   LawStatus = "ACTIVE"
	LawStatusArchived LawStatus = "ARCHIVED"
)

// LaborLawVersion is an effective-dated set of statutory payroll parameters.
// A version is immutable once it leaves DRAFT.
type LaborLawVersion struct {
	ID                      string          `db:"id" json:"id"`
	EffectiveDate           time.Time       `db:"effective_date" json:"effective_date"`
	MinimumWageHourly       Money           `db:"minimum_wage_hourly" json:"minimum_wage_hourly"`
	OvertimeRate            decimal.Decimal `db:"overtime_rate" json:"overtime_rate"`
	NightRate               decimal.Decimal `db:"night_rate" json:"night_rate"`
	HolidayRate             decimal.Decimal `db:"holiday_rate" json:"holiday_rate"`
	NationalPensionRate     decimal.Decimal `db:"national_pension_rate" json:"national_pension_rate"`
	HealthInsuranceRate     decimal.Decimal `db:"health_insurance_rate" json:"health_insurance_rate"`
	LongTermCareRate        decimal.Decimal `db:"long_term_care_rate" json:"long_term_care_rate"`
	EmploymentInsuranceRate decimal.Decimal `db:"employment_insurance_rate" json:"employment_insurance_rate"`
	Status                  LawStatus       `db:"status" json:"status"`
}

// Mutable reports whether the version may still be edited
func (v *LaborLawVersion) Mutable() bool {
	return v.Status == LawStatusDraft
}

// InForce reports whether the version may be selected for the given date
func (v *LaborLawVersion) InForce(date time.Time) bool {
	return v.Status == LawStatusActive && !v.EffectiveDate.After(date)
}

// DefaultLaborLawID identifies the built-in parameter set in salary records
const DefaultLaborLawID = "builtin-default"

// DefaultLaborLaw is the built-in parameter set used when no ACTIVE version
// can be resolved. Records computed with it carry UsedDefaultLaborLaw.
var DefaultLaborLaw = LaborLawVersion{
	ID:                      DefaultLaborLawID,
	EffectiveDate:           time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	MinimumWageHourly:       10_030,
	OvertimeRate:            decimal.RequireFromString("1.5"),
	NightRate:               decimal.RequireFromString("0.5"),
	HolidayRate:             decimal.RequireFromString("1.5"),
	NationalPensionRate:     decimal.RequireFromString("0.045"),
	HealthInsuranceRate:     decimal.RequireFromString("0.03545"),
	LongTermCareRate:        decimal.RequireFromString("0.1295"),
	EmploymentInsuranceRate: decimal.RequireFromString("0.009"),
	Status:                  LawStatusActive,
}
