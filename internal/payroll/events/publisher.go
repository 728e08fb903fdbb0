package events

import (
	"context"

	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/medflow/payroll-backend/pkg/logger"
	"github.com/medflow/payroll-backend/pkg/messaging"
)

// ServiceName is the event source of everything this package publishes
const ServiceName = "payroll-service"

// Publisher sends a typed event payload
type Publisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

// SalaryEventPublisher publishes salary lifecycle events
type SalaryEventPublisher struct {
	publisher Publisher
	logger    *logger.Logger
}

// NewSalaryEventPublisher creates a publisher on the payroll events exchange
func NewSalaryEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*SalaryEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangePayrollEvents, ServiceName, log)
	if err != nil {
		return nil, err
	}

	return NewWithPublisher(publisher, log), nil
}

// NewWithPublisher creates a salary event publisher over any Publisher
func NewWithPublisher(publisher Publisher, log *logger.Logger) *SalaryEventPublisher {
	return &SalaryEventPublisher{
		publisher: publisher,
		logger:    log,
	}
}

// PublishSalaryCalculated publishes a salary calculated event
func (p *SalaryEventPublisher) PublishSalaryCalculated(ctx context.Context, calc *domain.SalaryCalculation) {
	data := messaging.SalaryCalculatedEvent{
		SalaryID:            calc.ID,
		StaffID:             calc.StaffID,
		CompanyID:           calc.CompanyID,
		Year:                calc.Year,
		Month:               calc.Month,
		TotalGrossPay:       calc.TotalGrossPay.Int64(),
		TotalDeductions:     calc.TotalDeductions.Int64(),
		NetPay:              calc.NetPay.Int64(),
		LaborLawVersionID:   calc.LaborLawVersionID,
		UsedDefaultLaborLaw: calc.UsedDefaultLaborLaw,
	}

	if err := p.publisher.Publish(ctx, messaging.EventSalaryCalculated, data); err != nil {
		p.logger.Error().Err(err).Str("salary_id", calc.ID).Msg("failed to publish salary calculated event")
	}
}

// PublishSalaryConfirmed publishes a salary confirmed event
func (p *SalaryEventPublisher) PublishSalaryConfirmed(ctx context.Context, calc *domain.SalaryCalculation) {
	data := messaging.SalaryConfirmedEvent{
		SalaryID: calc.ID,
		StaffID:  calc.StaffID,
		Year:     calc.Year,
		Month:    calc.Month,
	}
	if calc.ConfirmedBy != nil {
		data.ConfirmedBy = *calc.ConfirmedBy
	}
	if calc.ConfirmedAt != nil {
		data.ConfirmedAt = *calc.ConfirmedAt
	}

	if err := p.publisher.Publish(ctx, messaging.EventSalaryConfirmed, data); err != nil {
		p.logger.Error().Err(err).Str("salary_id", calc.ID).Msg("failed to publish salary confirmed event")
	}
}

// PublishSalaryPaid publishes a salary paid event
func (p *SalaryEventPublisher) PublishSalaryPaid(ctx context.Context, calc *domain.SalaryCalculation) {
	data := messaging.SalaryPaidEvent{
		SalaryID: calc.ID,
		StaffID:  calc.StaffID,
		NetPay:   calc.NetPay.Int64(),
	}
	if calc.PaidAt != nil {
		data.PaidAt = *calc.PaidAt
	}

	if err := p.publisher.Publish(ctx, messaging.EventSalaryPaid, data); err != nil {
		p.logger.Error().Err(err).Str("salary_id", calc.ID).Msg("failed to publish salary paid event")
	}
}
