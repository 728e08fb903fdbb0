package testutil

import (
	"fmt"
	"time"

	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/shopspring/decimal"
)

// HourlyContract returns an ACTIVE hourly contract on a 40h/8h schedule
func HourlyContract(staffID string, rate domain.Money) domain.Contract {
	return domain.Contract{
		ID:        "contract-" + staffID,
		StaffID:   staffID,
		CompanyID: "company-1",
		Status:    domain.ContractStatusActive,
		SalaryConfig: domain.SalaryConfig{
			BaseSalaryType:   domain.BaseSalaryHourly,
			BaseSalaryAmount: rate,
			PaymentDate:      10,
		},
		StandardHoursPerWeek: decimal.NewFromInt(40),
		StandardHoursPerDay:  decimal.NewFromInt(8),
	}
}

// MonthlyContract returns an ACTIVE monthly contract on a 40h/8h schedule
func MonthlyContract(staffID string, amount domain.Money) domain.Contract {
	c := HourlyContract(staffID, amount)
	c.SalaryConfig.BaseSalaryType = domain.BaseSalaryMonthly
	return c
}

// WorkDays returns one row per weekday of the month, each with the given
// work and overtime hours.
func WorkDays(staffID string, year int, month time.Month, workHours, overtimeHours string) []domain.AttendanceRecord {
	var rows []domain.AttendanceRecord
	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		rows = append(rows, domain.AttendanceRecord{
			ID:            fmt.Sprintf("att-%s-%s", staffID, d.Format("20060102")),
			StaffID:       staffID,
			WorkDate:      d,
			WorkHours:     decimal.RequireFromString(workHours),
			OvertimeHours: decimal.RequireFromString(overtimeHours),
			NightHours:    decimal.Zero,
			HolidayHours:  decimal.Zero,
			Status:        domain.AttendancePresent,
		})
	}
	return rows
}

// ActiveLaborLaw returns the built-in parameters as an ACTIVE stored version
func ActiveLaborLaw(id string, effective time.Time) domain.LaborLawVersion {
	v := domain.DefaultLaborLaw
	v.ID = id
	v.EffectiveDate = effective
	return v
}
