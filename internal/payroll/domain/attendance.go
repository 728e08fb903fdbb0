package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AttendanceStatus classifies an attendance row
type AttendanceStatus string

const (
	AttendancePresent     AttendanceStatus = "PRESENT"
	AttendanceLate        AttendanceStatus = "LATE"
	AttendanceEarlyLeave  AttendanceStatus = "EARLY_LEAVE"
	AttendanceOvertime    AttendanceStatus = "OVERTIME"
	AttendanceHoliday     AttendanceStatus = "HOLIDAY"
	AttendanceAbsent      AttendanceStatus = "ABSENT"
	AttendanceUnscheduled AttendanceStatus = "UNSCHEDULED"
)

// ExcludedAttendanceStatuses never contribute hours. An UNSCHEDULED row
// counts only after it has been reclassified to OVERTIME.
var ExcludedAttendanceStatuses = []AttendanceStatus{AttendanceAbsent, AttendanceUnscheduled}

// AttendanceRecord is one staff member's attendance for a single work date
type AttendanceRecord struct {
	ID             string           `db:"id" json:"id"`
	StaffID        string           `db:"staff_id" json:"staff_id"`
	WorkDate       time.Time        `db:"work_date" json:"work_date"`
	WorkHours      decimal.Decimal  `db:"work_hours" json:"work_hours"`
	OvertimeHours  decimal.Decimal  `db:"overtime_hours" json:"overtime_hours"`
	NightHours     decimal.Decimal  `db:"night_hours" json:"night_hours"`
	HolidayHours   decimal.Decimal  `db:"holiday_hours" json:"holiday_hours"`
	ActualCheckIn  *time.Time       `db:"actual_check_in" json:"actual_check_in,omitempty"`
	ActualCheckOut *time.Time       `db:"actual_check_out" json:"actual_check_out,omitempty"`
	Status         AttendanceStatus `db:"status" json:"status"`
}

// Countable reports whether the row contributes to payroll hours
func (r *AttendanceRecord) Countable() bool {
	for _, s := range ExcludedAttendanceStatuses {
		if r.Status == s {
			return false
		}
	}
	return true
}
