package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/medflow/payroll-backend/internal/payroll/calc"
	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/medflow/payroll-backend/pkg/errors"
)

// StaffMember is a roster entry of the in-memory store
type StaffMember struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
}

type periodKey struct {
	staffID string
	year    int
	month   int
}

// MemoryStore is a PayrollDataStore held in process memory. It backs local
// development and tests; records are copied in and out.
type MemoryStore struct {
	mu         sync.RWMutex
	staff      []StaffMember
	contracts  map[string][]domain.Contract
	attendance map[string][]domain.AttendanceRecord
	laws       []domain.LaborLawVersion
	salaries   map[string]*domain.SalaryCalculation
	byPeriod   map[periodKey]string

	// LawErr, when set, is returned by GetActiveLaborLaw
	LawErr error
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contracts:  make(map[string][]domain.Contract),
		attendance: make(map[string][]domain.AttendanceRecord),
		salaries:   make(map[string]*domain.SalaryCalculation),
		byPeriod:   make(map[periodKey]string),
	}
}

// AddStaff appends a member to the roster
func (m *MemoryStore) AddStaff(member StaffMember) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staff = append(m.staff, member)
}

// AddContract stores a contract after validating it
func (m *MemoryStore) AddContract(c domain.Contract) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts[c.StaffID] = append(m.contracts[c.StaffID], c)
	return nil
}

// AddAttendance stores attendance rows
func (m *MemoryStore) AddAttendance(rows ...domain.AttendanceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		m.attendance[r.StaffID] = append(m.attendance[r.StaffID], r)
	}
}

// RecordPunch derives an attendance row from check-in and check-out times and stores it
func (m *MemoryStore) RecordPunch(staffID string, checkIn, checkOut time.Time, breakMinutes int, isHoliday bool) (domain.AttendanceRecord, error) {
	rec, err := calc.BuildAttendanceRecord(checkIn, checkIn, checkOut, breakMinutes, isHoliday)
	if err != nil {
		return domain.AttendanceRecord{}, err
	}
	rec.StaffID = staffID
	rec.ID = uuid.New().String()
	m.AddAttendance(rec)
	return rec, nil
}

// AddLaborLaw stores a labor-law version
func (m *MemoryStore) AddLaborLaw(v domain.LaborLawVersion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.laws = append(m.laws, v)
}

// GetActiveContract implements PayrollDataStore
func (m *MemoryStore) GetActiveContract(_ context.Context, staffID string) (*domain.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active []domain.Contract
	for _, c := range m.contracts[staffID] {
		if c.Status == domain.ContractStatusActive {
			active = append(active, c)
		}
	}

	switch len(active) {
	case 0:
		return nil, nil
	case 1:
		c := active[0]
		return &c, nil
	default:
		return nil, errors.Conflict("staff member has more than one active contract")
	}
}

// GetAttendance implements PayrollDataStore
func (m *MemoryStore) GetAttendance(_ context.Context, staffID string, year, month int) ([]domain.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []domain.AttendanceRecord
	for _, r := range m.attendance[staffID] {
		if r.WorkDate.Year() != year || int(r.WorkDate.Month()) != month || !r.Countable() {
			continue
		}
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].WorkDate.Before(rows[j].WorkDate) })
	return rows, nil
}

// GetActiveLaborLaw implements PayrollDataStore
func (m *MemoryStore) GetActiveLaborLaw(_ context.Context, date time.Time) (*domain.LaborLawVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.LawErr != nil {
		return nil, m.LawErr
	}

	var best *domain.LaborLawVersion
	for i := range m.laws {
		v := &m.laws[i]
		if !v.InForce(date) {
			continue
		}
		if best == nil || v.EffectiveDate.After(best.EffectiveDate) {
			best = v
		}
	}
	if best == nil {
		return nil, nil
	}
	law := *best
	return &law, nil
}

// ListActiveStaff implements PayrollDataStore
func (m *MemoryStore) ListActiveStaff(_ context.Context, companyID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for _, s := range m.staff {
		if s.CompanyID == companyID && s.Active && rostered(s.Role) {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}

func rostered(role string) bool {
	for _, r := range RosterRoles {
		if r == role {
			return true
		}
	}
	return false
}

// GetSalaryCalculation implements PayrollDataStore
func (m *MemoryStore) GetSalaryCalculation(_ context.Context, staffID string, year, month int) (*domain.SalaryCalculation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byPeriod[periodKey{staffID, year, month}]
	if !ok {
		return nil, nil
	}
	rec := *m.salaries[id]
	return &rec, nil
}

// GetSalaryCalculationByID implements PayrollDataStore
func (m *MemoryStore) GetSalaryCalculationByID(_ context.Context, id string) (*domain.SalaryCalculation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.salaries[id]
	if !ok {
		return nil, errors.NotFound("salary calculation")
	}
	rec := *stored
	return &rec, nil
}

// ListSalaryCalculations implements PayrollDataStore
func (m *MemoryStore) ListSalaryCalculations(_ context.Context, companyID string, year, month int) ([]*domain.SalaryCalculation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.SalaryCalculation
	for _, s := range m.salaries {
		if s.CompanyID == companyID && s.Year == year && s.Month == month {
			rec := *s
			out = append(out, &rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StaffID < out[j].StaffID })
	return out, nil
}

// SaveSalaryCalculation implements PayrollDataStore
func (m *MemoryStore) SaveSalaryCalculation(_ context.Context, sc *domain.SalaryCalculation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := periodKey{sc.StaffID, sc.Year, sc.Month}
	if id, ok := m.byPeriod[key]; ok {
		stored := m.salaries[id]
		if !stored.Recomputable() {
			return errors.Conflict("salary calculation is confirmed or paid and cannot be recomputed")
		}
		if id != sc.ID {
			delete(m.salaries, id)
		}
	}

	rec := *sc
	m.salaries[rec.ID] = &rec
	m.byPeriod[key] = rec.ID
	return nil
}

// UpdateSalaryStatus implements PayrollDataStore
func (m *MemoryStore) UpdateSalaryStatus(_ context.Context, sc *domain.SalaryCalculation, from domain.SalaryStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.salaries[sc.ID]
	if !ok {
		return errors.NotFound("salary calculation")
	}
	if stored.Status != from {
		return errors.InvalidTransition(string(stored.Status), string(sc.Status))
	}
	stored.Status = sc.Status
	stored.ConfirmedBy = sc.ConfirmedBy
	stored.ConfirmedAt = sc.ConfirmedAt
	stored.PaidAt = sc.PaidAt
	stored.UpdatedAt = sc.UpdatedAt
	return nil
}
