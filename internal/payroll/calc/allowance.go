package calc

import (
	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/shopspring/decimal"
)

// ComputeAllowances turns hours and the hourly rate into the gross side of
// a salary record. Every component is rounded on its own.
func ComputeAllowances(c *domain.Contract, rate decimal.Decimal, sum AttendanceSummary, law domain.LaborLawVersion) domain.AllowanceBreakdown {
	cfg := c.SalaryConfig.Allowances

	a := domain.AllowanceBreakdown{
		BaseSalary:         BaseSalary(c, rate, sum.RegularHours),
		MealAllowance:      cfg.MealAmount(),
		TransportAllowance: cfg.TransportAmount(),
		PositionAllowance:  cfg.PositionAmount(),
	}
	if cfg.OvertimeEnabled() {
		a.OvertimePay = Differential(rate, law.OvertimeRate, sum.OvertimeHours)
	}
	if cfg.NightEnabled() {
		a.NightPay = Differential(rate, law.NightRate, sum.NightHours)
	}
	if cfg.HolidayEnabled() {
		a.HolidayPay = Differential(rate, law.HolidayRate, sum.HolidayHours)
	}
	if cfg.WeeklyHolidayPayEnabled() {
		a.WeeklyHolidayPay = WeeklyHolidayPay(sum.Weeks, rate, c.StandardHoursPerDay)
	}

	a.TotalGrossPay = a.BaseSalary +
		a.OvertimePay +
		a.NightPay +
		a.HolidayPay +
		a.WeeklyHolidayPay +
		a.MealAllowance +
		a.TransportAllowance +
		a.PositionAllowance

	return a
}

// BaseSalary is the fixed amount for monthly contracts and regular hours
// priced at the contract rate otherwise.
func BaseSalary(c *domain.Contract, rate, regularHours decimal.Decimal) domain.Money {
	switch c.SalaryConfig.BaseSalaryType {
	case domain.BaseSalaryMonthly:
		return c.SalaryConfig.BaseSalaryAmount
	case domain.BaseSalaryDaily:
		if !c.StandardHoursPerDay.IsPositive() {
			return 0
		}
		days := regularHours.Div(c.StandardHoursPerDay)
		return RoundMoney(Dec(c.SalaryConfig.BaseSalaryAmount).Mul(days))
	default:
		return RoundMoney(rate.Mul(regularHours))
	}
}

// Differential prices hours at rate × multiplier
func Differential(rate, multiplier, hours decimal.Decimal) domain.Money {
	return RoundMoney(rate.Mul(multiplier).Mul(hours))
}

// WeekHolidayPay is one week's paid rest day, prorated by hours over the
// statutory week. Weeks under the threshold earn nothing.
func WeekHolidayPay(weeklyHours, rate, standardDailyHours decimal.Decimal) domain.Money {
	if weeklyHours.LessThan(WeeklyHolidayThreshold) {
		return 0
	}
	ratio := decimal.Min(weeklyHours.Div(StatutoryWeeklyHours), decimal.NewFromInt(1))
	return RoundMoney(rate.Mul(standardDailyHours).Mul(ratio))
}

// WeeklyHolidayPay sums WeekHolidayPay over the qualifying weeks
func WeeklyHolidayPay(weeks domain.WeeklyBreakdown, rate, standardDailyHours decimal.Decimal) domain.Money {
	var total domain.Money
	for _, w := range weeks {
		if !w.HasWeeklyHolidayPay {
			continue
		}
		total += WeekHolidayPay(w.Hours, rate, standardDailyHours)
	}
	return total
}
