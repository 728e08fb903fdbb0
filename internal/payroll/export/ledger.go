// Package export renders salary records as spreadsheet ledgers.
package export

import (
	"fmt"
	"io"

	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/xuri/excelize/v2"
)

// LedgerSheet is the name of the ledger worksheet
const LedgerSheet = "Payroll"

// ContentType is the media type of the ledger file
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ledgerColumn struct {
	header string
	width  float64
	value  func(c *domain.SalaryCalculation) any
	money  bool
}

var ledgerColumns = []ledgerColumn{
	{header: "Staff ID", width: 38, value: func(c *domain.SalaryCalculation) any { return c.StaffID }},
	{header: "Status", width: 12, value: func(c *domain.SalaryCalculation) any { return string(c.Status) }},
	{header: "Work Days", width: 10, value: func(c *domain.SalaryCalculation) any { return c.WorkDays }},
	{header: "Total Hours", width: 12, value: func(c *domain.SalaryCalculation) any { return c.TotalHours.InexactFloat64() }},
	{header: "Overtime Hours", width: 14, value: func(c *domain.SalaryCalculation) any { return c.OvertimeHours.InexactFloat64() }},
	{header: "Base Salary", money: true, value: func(c *domain.SalaryCalculation) any { return c.BaseSalary }},
	{header: "Overtime Pay", money: true, value: func(c *domain.SalaryCalculation) any { return c.OvertimePay }},
	{header: "Night Pay", money: true, value: func(c *domain.SalaryCalculation) any { return c.NightPay }},
	{header: "Holiday Pay", money: true, value: func(c *domain.SalaryCalculation) any { return c.HolidayPay }},
	{header: "Weekly Holiday Pay", money: true, value: func(c *domain.SalaryCalculation) any { return c.WeeklyHolidayPay }},
	{header: "Allowances", money: true, value: func(c *domain.SalaryCalculation) any {
		return c.MealAllowance + c.TransportAllowance + c.PositionAllowance
	}},
	{header: "Gross Pay", money: true, value: func(c *domain.SalaryCalculation) any { return c.TotalGrossPay }},
	{header: "National Pension", money: true, value: func(c *domain.SalaryCalculation) any { return c.NationalPension }},
	{header: "Health Insurance", money: true, value: func(c *domain.SalaryCalculation) any { return c.HealthInsurance }},
	{header: "Long-term Care", money: true, value: func(c *domain.SalaryCalculation) any { return c.LongTermCare }},
	{header: "Employment Insurance", money: true, value: func(c *domain.SalaryCalculation) any { return c.EmploymentInsurance }},
	{header: "Income Tax", money: true, value: func(c *domain.SalaryCalculation) any { return c.IncomeTax }},
	{header: "Local Income Tax", money: true, value: func(c *domain.SalaryCalculation) any { return c.LocalIncomeTax }},
	{header: "Total Deductions", money: true, value: func(c *domain.SalaryCalculation) any { return c.TotalDeductions }},
	{header: "Net Pay", money: true, value: func(c *domain.SalaryCalculation) any { return c.NetPay }},
}

// WriteLedger writes one row per record followed by a totals row summing
// every money column.
func WriteLedger(w io.Writer, calcs []*domain.SalaryCalculation) error {
	f, err := BuildLedger(calcs)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// BuildLedger builds the ledger workbook in memory
func BuildLedger(calcs []*domain.SalaryCalculation) (*excelize.File, error) {
	f := excelize.NewFile()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, LedgerSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeLedgerRows(f, calcs); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeLedgerRows(f *excelize.File, calcs []*domain.SalaryCalculation) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	moneyFormat := "#,##0"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat})
	if err != nil {
		return fmt.Errorf("create money style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &moneyFormat})
	if err != nil {
		return fmt.Errorf("create total style: %w", err)
	}

	for i, col := range ledgerColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		width := col.width
		if width == 0 {
			width = 16
		}
		if err := f.SetColWidth(LedgerSheet, name, name, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
		if err := setCell(f, i+1, 1, col.header, headerStyle); err != nil {
			return err
		}
	}

	for r, c := range calcs {
		row := r + 2
		for i, col := range ledgerColumns {
			v := col.value(c)
			style := 0
			if col.money {
				v = v.(domain.Money).Int64()
				style = moneyStyle
			}
			if err := setCell(f, i+1, row, v, style); err != nil {
				return err
			}
		}
	}

	totalRow := len(calcs) + 2
	if err := setCell(f, 1, totalRow, "Total", totalStyle); err != nil {
		return err
	}
	for i, col := range ledgerColumns {
		if !col.money {
			continue
		}
		var sum int64
		for _, c := range calcs {
			sum += col.value(c).(domain.Money).Int64()
		}
		if err := setCell(f, i+1, totalRow, sum, totalStyle); err != nil {
			return err
		}
	}

	return f.SetPanes(LedgerSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setCell(f *excelize.File, col, row int, value any, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(LedgerSheet, cell, value); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	if style != 0 {
		if err := f.SetCellStyle(LedgerSheet, cell, cell, style); err != nil {
			return fmt.Errorf("style %s: %w", cell, err)
		}
	}
	return nil
}
