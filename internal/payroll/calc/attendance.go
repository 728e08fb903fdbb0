package calc

import (
	"fmt"
	"sort"
	"time"

	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/medflow/payroll-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// WeekStrategy decides which week bucket a work date falls into
type WeekStrategy string

const (
	// WeekCalendarOfMonth groups Sunday..Saturday weeks, so the first and
	// last buckets of a month may be partial.
	WeekCalendarOfMonth WeekStrategy = "calendar_week_of_month"
	// WeekRolling7Day groups days 1-7, 8-14, ... regardless of weekday.
	WeekRolling7Day WeekStrategy = "rolling_7_day"
)

// ParseWeekStrategy validates a configured strategy name. Empty selects the default.
func ParseWeekStrategy(s string) (WeekStrategy, error) {
	switch WeekStrategy(s) {
	case "":
		return WeekCalendarOfMonth, nil
	case WeekCalendarOfMonth, WeekRolling7Day:
		return WeekStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown week strategy %q", s)
	}
}

// WeekOf returns the 1-based week-of-month number for date
func (s WeekStrategy) WeekOf(date time.Time) int {
	day := date.Day()
	if s == WeekRolling7Day {
		return (day-1)/7 + 1
	}
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	offset := int(first.Weekday()) // Sunday = 0
	return (day + offset + 6) / 7
}

// WeeklyHolidayThreshold is the minimum weekly hours for weekly holiday pay
var WeeklyHolidayThreshold = decimal.NewFromInt(15)

// StatutoryDailyHours caps regular hours per day
var StatutoryDailyHours = decimal.NewFromInt(8)

// AttendanceSummary is a month of attendance reduced to hour buckets
type AttendanceSummary struct {
	WorkDays      int
	TotalHours    decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	NightHours    decimal.Decimal
	HolidayHours  decimal.Decimal
	Weeks         domain.WeeklyBreakdown
}

// Summarize aggregates attendance rows. Rows that are not countable are skipped.
func Summarize(rows []domain.AttendanceRecord, strategy WeekStrategy) AttendanceSummary {
	sum := AttendanceSummary{
		TotalHours:    decimal.Zero,
		RegularHours:  decimal.Zero,
		OvertimeHours: decimal.Zero,
		NightHours:    decimal.Zero,
		HolidayHours:  decimal.Zero,
	}
	weekly := make(map[int]decimal.Decimal)

	for i := range rows {
		r := &rows[i]
		if !r.Countable() {
			continue
		}

		sum.WorkDays++
		sum.TotalHours = sum.TotalHours.Add(r.WorkHours)
		sum.RegularHours = sum.RegularHours.Add(decimal.Min(r.WorkHours, StatutoryDailyHours))
		sum.OvertimeHours = sum.OvertimeHours.Add(r.OvertimeHours)
		sum.NightHours = sum.NightHours.Add(r.NightHours)
		sum.HolidayHours = sum.HolidayHours.Add(r.HolidayHours)

		week := strategy.WeekOf(r.WorkDate)
		weekly[week] = weekly[week].Add(r.WorkHours)
	}

	weeks := make([]int, 0, len(weekly))
	for w := range weekly {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	sum.Weeks = make(domain.WeeklyBreakdown, 0, len(weeks))
	for _, w := range weeks {
		hours := weekly[w]
		sum.Weeks = append(sum.Weeks, domain.WeeklyHours{
			Week:                w,
			Hours:               hours,
			HasWeeklyHolidayPay: hours.GreaterThanOrEqual(WeeklyHolidayThreshold),
		})
	}

	return sum
}

// NightHours measures the part of [checkIn, checkOut) that falls on clock
// hours 22:00-06:00, walking the interval one clock hour at a time.
func NightHours(checkIn, checkOut time.Time) decimal.Decimal {
	var night time.Duration

	cursor := checkIn
	for cursor.Before(checkOut) {
		next := time.Date(cursor.Year(), cursor.Month(), cursor.Day(), cursor.Hour()+1, 0, 0, 0, cursor.Location())
		if next.After(checkOut) {
			next = checkOut
		}
		if h := cursor.Hour(); h >= 22 || h < 6 {
			night += next.Sub(cursor)
		}
		cursor = next
	}

	return hoursOf(night)
}

// BuildAttendanceRecord derives a row's hour fields from raw punches.
// Hours beyond the statutory daily cap are overtime; on a holiday every
// worked hour is also holiday time.
func BuildAttendanceRecord(date, checkIn, checkOut time.Time, breakMinutes int, isHoliday bool) (domain.AttendanceRecord, error) {
	if !checkOut.After(checkIn) {
		return domain.AttendanceRecord{}, errors.BadRequest("check-out must be after check-in")
	}
	if breakMinutes < 0 {
		return domain.AttendanceRecord{}, errors.BadRequest("break minutes must not be negative")
	}

	worked := checkOut.Sub(checkIn) - time.Duration(breakMinutes)*time.Minute
	if worked < 0 {
		worked = 0
	}
	work := hoursOf(worked)

	rec := domain.AttendanceRecord{
		WorkDate:       time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		WorkHours:      work,
		OvertimeHours:  decimal.Max(work.Sub(StatutoryDailyHours), decimal.Zero),
		NightHours:     NightHours(checkIn, checkOut),
		HolidayHours:   decimal.Zero,
		ActualCheckIn:  &checkIn,
		ActualCheckOut: &checkOut,
		Status:         domain.AttendancePresent,
	}
	if isHoliday {
		rec.HolidayHours = work
		rec.Status = domain.AttendanceHoliday
	} else if rec.OvertimeHours.IsPositive() {
		rec.Status = domain.AttendanceOvertime
	}

	return rec, nil
}

func hoursOf(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d / time.Second)).Div(decimal.NewFromInt(3600)).Round(2)
}
