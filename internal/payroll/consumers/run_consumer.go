package consumers

import (
	"context"
	"net/http"

	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/medflow/payroll-backend/pkg/actor"
	"github.com/medflow/payroll-backend/pkg/errors"
	"github.com/medflow/payroll-backend/pkg/logger"
	"github.com/medflow/payroll-backend/pkg/messaging"
)

// BulkCalculator runs a company's payroll for one month
type BulkCalculator interface {
	CalculateBulkSalaries(ctx context.Context, companyID string, year, month int) ([]*domain.SalaryCalculation, error)
}

// PayrollRunConsumer consumes payroll run requests
type PayrollRunConsumer struct {
	consumer *messaging.Consumer
	salaries BulkCalculator
	logger   *logger.Logger
}

// NewPayrollRunConsumer creates a consumer bound to run requests on the
// payroll events exchange
func NewPayrollRunConsumer(rmq *messaging.RabbitMQ, serviceName string, salaries BulkCalculator, log *logger.Logger) (*PayrollRunConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, messaging.RunQueueName(serviceName), log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangePayrollEvents, messaging.EventPayrollRunRequested); err != nil {
		return nil, err
	}

	c := NewRunHandler(salaries, log)
	c.consumer = consumer
	consumer.RegisterHandler(messaging.EventPayrollRunRequested, c.HandleRunRequested)

	return c, nil
}

// NewRunHandler creates a consumer without a queue, for calling the handler directly
func NewRunHandler(salaries BulkCalculator, log *logger.Logger) *PayrollRunConsumer {
	return &PayrollRunConsumer{
		salaries: salaries,
		logger:   log.WithComponent("payroll_run_consumer"),
	}
}

// Start starts consuming messages
func (c *PayrollRunConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// HandleRunRequested computes the requested month. Requests the service
// rejects as invalid are logged and acknowledged; other failures are
// returned so the message is retried.
func (c *PayrollRunConsumer) HandleRunRequested(ctx context.Context, event *messaging.Event) error {
	var data messaging.PayrollRunRequestedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	requester := actor.OrSystem(data.RequestedBy)
	ctx = actor.WithActor(ctx, requester)

	log := c.logger.WithPeriod(data.Year, data.Month).WithCorrelationID(event.CorrelationID)
	log.Info().
		Str("company_id", data.CompanyID).
		Str("requested_by", requester.String()).
		Msg("received payroll run request")

	results, err := c.salaries.CalculateBulkSalaries(ctx, data.CompanyID, data.Year, data.Month)
	if err != nil {
		var appErr *errors.AppError
		if errors.As(err, &appErr) && appErr.StatusCode < http.StatusInternalServerError {
			log.Warn().Err(err).Str("company_id", data.CompanyID).Msg("payroll run request rejected")
			return nil
		}
		return err
	}

	log.Info().
		Str("company_id", data.CompanyID).
		Int("calculated", len(results)).
		Msg("payroll run completed")

	return nil
}
