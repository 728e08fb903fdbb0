package calc

import (
	"fmt"

	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/shopspring/decimal"
)

// InsuranceBase selects the amount social insurance is charged on
type InsuranceBase string

const (
	// InsuranceBaseGross charges insurance on total gross pay
	InsuranceBaseGross InsuranceBase = "gross"
	// InsuranceBaseExcludingNonTaxable removes meal and transport allowances first
	InsuranceBaseExcludingNonTaxable InsuranceBase = "gross_excluding_nontaxable"
)

// DefaultHighEarnerCeiling is the monthly income above which the exemption applies
const DefaultHighEarnerCeiling domain.Money = 5_530_000

// InsurancePolicy captures the two points where payroll practice diverges:
// what insurance is charged on, and whether high earners skip pension and
// health insurance.
type InsurancePolicy struct {
	Base                InsuranceBase
	HighEarnerExemption bool
	HighEarnerCeiling   domain.Money
}

// DefaultInsurancePolicy charges insurance on gross pay with no exemption
func DefaultInsurancePolicy() InsurancePolicy {
	return InsurancePolicy{
		Base:              InsuranceBaseGross,
		HighEarnerCeiling: DefaultHighEarnerCeiling,
	}
}

// ParseInsuranceBase validates a configured base. Empty selects gross.
func ParseInsuranceBase(s string) (InsuranceBase, error) {
	switch InsuranceBase(s) {
	case "":
		return InsuranceBaseGross, nil
	case InsuranceBaseGross, InsuranceBaseExcludingNonTaxable:
		return InsuranceBase(s), nil
	default:
		return "", fmt.Errorf("unknown insurance base %q", s)
	}
}

func (p InsurancePolicy) base(a domain.AllowanceBreakdown) domain.Money {
	if p.Base == InsuranceBaseExcludingNonTaxable {
		if b := a.TotalGrossPay - a.NonTaxable(); b > 0 {
			return b
		}
		return 0
	}
	return a.TotalGrossPay
}

func (p InsurancePolicy) exempt(gross domain.Money) bool {
	return p.HighEarnerExemption && gross > p.HighEarnerCeiling
}

var (
	// DependentDeduction is subtracted from gross per dependent before income tax
	DependentDeduction domain.Money = 150_000
	// LocalIncomeTaxRate is charged on the income tax amount
	LocalIncomeTaxRate = decimal.RequireFromString("0.1")
)

type taxBracket struct {
	upTo domain.Money
	rate decimal.Decimal
}

// a gross amount selects the first bracket whose upper bound it does not exceed
var taxBrackets = []taxBracket{
	{1_060_000, decimal.Zero},
	{1_500_000, decimal.RequireFromString("0.06")},
	{3_000_000, decimal.RequireFromString("0.15")},
	{4_500_000, decimal.RequireFromString("0.24")},
	{8_800_000, decimal.RequireFromString("0.35")},
}

var topTaxRate = decimal.RequireFromString("0.38")

// IncomeTaxRate selects the single flat rate for a gross amount
func IncomeTaxRate(gross domain.Money) decimal.Decimal {
	for _, b := range taxBrackets {
		if gross <= b.upTo {
			return b.rate
		}
	}
	return topTaxRate
}

// IncomeTax applies the bracket rate of gross to gross less dependents
func IncomeTax(gross domain.Money, dependents int) domain.Money {
	taxable := gross - DependentDeduction*domain.Money(dependents)
	if taxable < 0 {
		taxable = 0
	}
	return RoundMoney(Dec(taxable).Mul(IncomeTaxRate(gross)))
}

// ComputeDeductions derives statutory withholding from the gross breakdown
func ComputeDeductions(c *domain.Contract, a domain.AllowanceBreakdown, law domain.LaborLawVersion, policy InsurancePolicy) domain.DeductionBreakdown {
	cfg := c.DeductionConfig
	base := Dec(policy.base(a))
	exempt := policy.exempt(a.TotalGrossPay)

	var d domain.DeductionBreakdown
	if cfg.NationalPensionEnabled() && !exempt {
		d.NationalPension = RoundMoney(base.Mul(law.NationalPensionRate))
	}
	if cfg.HealthInsuranceEnabled() && !exempt {
		d.HealthInsurance = RoundMoney(base.Mul(law.HealthInsuranceRate))
		// long-term care compounds on the health insurance amount
		d.LongTermCare = RoundMoney(Dec(d.HealthInsurance).Mul(law.LongTermCareRate))
	}
	if cfg.EmploymentInsuranceEnabled() {
		d.EmploymentInsurance = RoundMoney(base.Mul(law.EmploymentInsuranceRate))
	}
	if cfg.IncomeTaxEnabled() {
		d.IncomeTax = IncomeTax(a.TotalGrossPay, cfg.DependentCount())
		d.LocalIncomeTax = RoundMoney(Dec(d.IncomeTax).Mul(LocalIncomeTaxRate))
	}

	d.TotalDeductions = d.NationalPension +
		d.HealthInsurance +
		d.LongTermCare +
		d.EmploymentInsurance +
		d.IncomeTax +
		d.LocalIncomeTax

	return d
}
