package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Salary lifecycle events
	EventSalaryCalculated = "payroll.salary.calculated"
	EventSalaryConfirmed  = "payroll.salary.confirmed"
	EventSalaryPaid       = "payroll.salary.paid"

	// Run requests from the scheduler or the admin console
	EventPayrollRunRequested = "payroll.run.requested"
)

// Exchange names
const (
	ExchangePayrollEvents = "payroll.events"
	ExchangeDeadLetter    = "payroll.dlx"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data any) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v any) error {
	return json.Unmarshal(e.Data, v)
}

// SalaryCalculatedEvent is published after a salary record is computed and stored
type SalaryCalculatedEvent struct {
	SalaryID            string `json:"salary_id"`
	StaffID             string `json:"staff_id"`
	CompanyID           string `json:"company_id"`
	Year                int    `json:"year"`
	Month               int    `json:"month"`
	TotalGrossPay       int64  `json:"total_gross_pay"`
	TotalDeductions     int64  `json:"total_deductions"`
	NetPay              int64  `json:"net_pay"`
	LaborLawVersionID   string `json:"labor_law_version_id"`
	UsedDefaultLaborLaw bool   `json:"used_default_labor_law"`
}

// SalaryConfirmedEvent is published when a salary record is confirmed
type SalaryConfirmedEvent struct {
	SalaryID    string    `json:"salary_id"`
	StaffID     string    `json:"staff_id"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	ConfirmedBy string    `json:"confirmed_by"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// SalaryPaidEvent is published when a salary record is marked as paid
type SalaryPaidEvent struct {
	SalaryID string    `json:"salary_id"`
	StaffID  string    `json:"staff_id"`
	NetPay   int64     `json:"net_pay"`
	PaidAt   time.Time `json:"paid_at"`
}

// PayrollRunRequestedEvent asks the service to compute a company's month
type PayrollRunRequestedEvent struct {
	CompanyID   string `json:"company_id"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return uuid.New().String()
}
