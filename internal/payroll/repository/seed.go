package repository

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/medflow/payroll-backend/internal/payroll/domain"
)

// Seed is the fixture document a MemoryStore can be loaded from
type Seed struct {
	Staff      []StaffMember             `json:"staff"`
	Contracts  []domain.Contract         `json:"contracts"`
	Attendance []domain.AttendanceRecord `json:"attendance"`
	LaborLaws  []domain.LaborLawVersion  `json:"labor_laws"`
}

// LoadSeed reads a JSON Seed into the store. Contracts are validated; the
// first invalid one aborts the load.
func (m *MemoryStore) LoadSeed(r io.Reader) error {
	var seed Seed
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&seed); err != nil {
		return fmt.Errorf("failed to decode payroll seed: %w", err)
	}

	for _, s := range seed.Staff {
		m.AddStaff(s)
	}
	for _, c := range seed.Contracts {
		if err := m.AddContract(c); err != nil {
			return fmt.Errorf("invalid seed contract for staff %s: %w", c.StaffID, err)
		}
	}
	m.AddAttendance(seed.Attendance...)
	for _, law := range seed.LaborLaws {
		m.AddLaborLaw(law)
	}
	return nil
}

// LoadSeedFile reads a JSON Seed from path
func (m *MemoryStore) LoadSeedFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open payroll seed: %w", err)
	}
	defer f.Close()
	return m.LoadSeed(f)
}
