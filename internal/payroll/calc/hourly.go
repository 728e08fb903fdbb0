// Package calc holds the pure payroll arithmetic: hourly rates, attendance
// aggregation, allowances and statutory deductions. Nothing here performs I/O.
package calc

import (
	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/shopspring/decimal"
)

var (
	// StatutoryWeeklyHours is the legal standard working week
	StatutoryWeeklyHours = decimal.NewFromInt(40)
	// PaidWeeklyHolidayHours is the paid rest day folded into a monthly salary
	PaidWeeklyHolidayHours = decimal.NewFromInt(8)
	// WeeksPerMonth is the average number of weeks in a month (365 / 12 / 7)
	WeeksPerMonth = decimal.RequireFromString("4.345")

	// MonthlyWorkHours converts a monthly salary into an hourly rate (209)
	MonthlyWorkHours = StatutoryWeeklyHours.Add(PaidWeeklyHolidayHours).Mul(WeeksPerMonth).Round(0)
)

// RoundMoney rounds half away from zero to the smallest currency unit
func RoundMoney(d decimal.Decimal) domain.Money {
	return domain.Money(d.Round(0).IntPart())
}

// Dec lifts an amount into decimal arithmetic
func Dec(m domain.Money) decimal.Decimal {
	return decimal.NewFromInt(m.Int64())
}

// HourlyRate derives the canonical hourly rate of a contract. The result is
// not rounded; rounding happens when the rate is multiplied by hours.
func HourlyRate(c *domain.Contract) decimal.Decimal {
	amount := Dec(c.SalaryConfig.BaseSalaryAmount)

	switch c.SalaryConfig.BaseSalaryType {
	case domain.BaseSalaryHourly:
		return amount
	case domain.BaseSalaryDaily:
		if !c.StandardHoursPerDay.IsPositive() {
			return amount
		}
		return amount.Div(c.StandardHoursPerDay)
	case domain.BaseSalaryMonthly:
		return amount.Div(MonthlyWorkHours)
	default:
		return amount
	}
}
