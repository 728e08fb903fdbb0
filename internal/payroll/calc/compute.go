package calc

import (
	"github.com/medflow/payroll-backend/internal/payroll/domain"
)

// Options are the policy switches of a payroll run
type Options struct {
	WeekStrategy WeekStrategy
	Insurance    InsurancePolicy
}

// DefaultOptions uses calendar weeks and gross-based insurance
func DefaultOptions() Options {
	return Options{
		WeekStrategy: WeekCalendarOfMonth,
		Insurance:    DefaultInsurancePolicy(),
	}
}

// Compute runs the pipeline for one contract and month of attendance.
// It is a pure function of its inputs; identity, period, status and
// timestamps are left for the caller to stamp.
func Compute(c *domain.Contract, rows []domain.AttendanceRecord, law domain.LaborLawVersion, opts Options) domain.SalaryCalculation {
	rate := HourlyRate(c)
	sum := Summarize(rows, opts.WeekStrategy)
	allowances := ComputeAllowances(c, rate, sum, law)
	deductions := ComputeDeductions(c, allowances, law, opts.Insurance)

	return domain.SalaryCalculation{
		StaffID:            c.StaffID,
		CompanyID:          c.CompanyID,
		ContractID:         c.ID,
		WorkDays:           sum.WorkDays,
		TotalHours:         sum.TotalHours,
		RegularHours:       sum.RegularHours,
		OvertimeHours:      sum.OvertimeHours,
		NightHours:         sum.NightHours,
		HolidayHours:       sum.HolidayHours,
		WeeklyBreakdown:    sum.Weeks,
		AllowanceBreakdown: allowances,
		DeductionBreakdown: deductions,
		NetPay:             allowances.TotalGrossPay - deductions.TotalDeductions,
		LaborLawVersionID:  law.ID,
	}
}
