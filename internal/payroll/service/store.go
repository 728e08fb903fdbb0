package service

import (
	"context"
	"time"

	"github.com/medflow/payroll-backend/internal/payroll/domain"
)

// PayrollDataStore is everything the payroll pipeline reads and writes
type PayrollDataStore interface {
	// GetActiveContract returns nil, nil when the staff member has no ACTIVE contract.
	GetActiveContract(ctx context.Context, staffID string) (*domain.Contract, error)
	// GetAttendance returns the month's countable attendance rows.
	GetAttendance(ctx context.Context, staffID string, year, month int) ([]domain.AttendanceRecord, error)
	// GetActiveLaborLaw returns nil, nil when no version is in force on date.
	GetActiveLaborLaw(ctx context.Context, date time.Time) (*domain.LaborLawVersion, error)
	// ListActiveStaff returns the payroll roster of a company in a stable order.
	ListActiveStaff(ctx context.Context, companyID string) ([]string, error)

	// GetSalaryCalculation returns nil, nil when the period has not been computed.
	GetSalaryCalculation(ctx context.Context, staffID string, year, month int) (*domain.SalaryCalculation, error)
	GetSalaryCalculationByID(ctx context.Context, id string) (*domain.SalaryCalculation, error)
	ListSalaryCalculations(ctx context.Context, companyID string, year, month int) ([]*domain.SalaryCalculation, error)
	// SaveSalaryCalculation upserts by (staff, year, month) and fails with a
	// conflict when the stored record is no longer recomputable.
	SaveSalaryCalculation(ctx context.Context, calc *domain.SalaryCalculation) error
	// UpdateSalaryStatus persists a lifecycle transition only while the stored
	// status is still from, and fails with an invalid transition otherwise.
	UpdateSalaryStatus(ctx context.Context, calc *domain.SalaryCalculation, from domain.SalaryStatus) error
}

// EventPublisher announces salary lifecycle changes. Publishing is best effort.
type EventPublisher interface {
	PublishSalaryCalculated(ctx context.Context, calc *domain.SalaryCalculation)
	PublishSalaryConfirmed(ctx context.Context, calc *domain.SalaryCalculation)
	PublishSalaryPaid(ctx context.Context, calc *domain.SalaryCalculation)
}
