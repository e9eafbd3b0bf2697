// Package hijri converts between the Gregorian and the tabular Islamic (Hijri)
// calendars and provides the month arithmetic needed for Hawl calculations.
//
// The tabular calendar uses the 30-year leap cycle (leap years 2, 5, 7, 10, 13,
// 16, 18, 21, 24, 26 and 29) counted from the Thursday epoch, 15 July 622 CE
// (Julian). Odd months have 30 days, even months 29, and Dhul Hijjah gains a
// 30th day in leap years.
package hijri

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// epochJDN is the Julian Day Number of 1 Muharram 1 AH.
	epochJDN = 1948439
	// unixEpochJDN is the Julian Day Number of 1970-01-01.
	unixEpochJDN = 2440588

	// MonthsPerYear is the number of lunar months in a Hijri year.
	MonthsPerYear = 12
)

// ErrInvalidDate is returned when a Hijri date string cannot be parsed.
var ErrInvalidDate = errors.New("invalid hijri date")

var monthNames = [MonthsPerYear]string{
	"Muharram",
	"Safar",
	"Rabi' al-Awwal",
	"Rabi' al-Thani",
	"Jumada al-Ula",
	"Jumada al-Thani",
	"Rajab",
	"Sha'ban",
	"Ramadan",
	"Shawwal",
	"Dhul Qi'dah",
	"Dhul Hijjah",
}

// Date is a calendar date in the Hijri calendar. The zero value is not a valid date.
type Date struct {
	Year  int
	Month int
	Day   int
}

// IsLeapYear reports whether the Hijri year has 355 days.
func IsLeapYear(year int) bool {
	return (14+11*year)%30 < 11
}

// DaysInMonth returns the length of the given Hijri month.
func DaysInMonth(year, month int) int {
	if month%2 == 1 || (month == MonthsPerYear && IsLeapYear(year)) {
		return 30
	}
	return 29
}

// Valid reports whether d names an existing day in the supported range.
func (d Date) Valid() bool {
	if d.Year < 1 || d.Month < 1 || d.Month > MonthsPerYear || d.Day < 1 {
		return false
	}
	return d.Day <= DaysInMonth(d.Year, d.Month)
}

// Before reports whether d falls on an earlier day than other.
func (d Date) Before(other Date) bool {
	return d.jdn() < other.jdn()
}

// FromGregorian converts the calendar day of t (in t's location) to a Hijri date.
// Days before the Hijri epoch yield the zero Date.
func FromGregorian(t time.Time) Date {
	jdn := gregorianJDN(t)
	if jdn < epochJDN {
		return Date{}
	}
	return fromJDN(jdn)
}

// ToGregorian converts d to midnight UTC of the matching Gregorian day.
func ToGregorian(d Date) time.Time {
	days := d.jdn() - unixEpochJDN
	return time.Unix(int64(days)*secondsPerDay, 0).UTC()
}

// AddMonths moves d by n whole Hijri months (n may be negative), wrapping
// across year boundaries. When the target month has no day d.Day the result
// is clamped to day 29.
func AddMonths(d Date, n int) Date {
	index := d.Year*MonthsPerYear + (d.Month - 1) + n
	year := index / MonthsPerYear
	month := index%MonthsPerYear + 1
	if index < 0 && index%MonthsPerYear != 0 {
		year--
		month += MonthsPerYear
	}

	day := d.Day
	if day > DaysInMonth(year, month) {
		day = 29
	}
	return Date{Year: year, Month: month, Day: day}
}

// HawlDueDate returns the date one full Hawl (12 Hijri months) after start,
// in both calendars.
func HawlDueDate(start time.Time) (time.Time, Date) {
	due := AddMonths(FromGregorian(start), MonthsPerYear)
	return ToGregorian(due), due
}

// String formats d as "YYYY-MM-DD", the form used for persistence.
func (d Date) String() string {
	return fmt.Sprintf("%d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Long formats d for display, e.g. "12 Jumada al-Thani 1446".
func (d Date) Long() string {
	if d.Month < 1 || d.Month > MonthsPerYear {
		return d.String()
	}
	return fmt.Sprintf("%d %s %d", d.Day, monthNames[d.Month-1], d.Year)
}

// FormatDual renders a Gregorian day next to its Hijri equivalent,
// e.g. "Dec 13, 2024 / 12 Jumada al-Thani 1446".
func FormatDual(t time.Time) string {
	return t.Format("Jan 2, 2006") + " / " + FromGregorian(t).Long()
}

// MonthName returns the canonical name of a Hijri month (1-12).
func MonthName(month int) string {
	if month < 1 || month > MonthsPerYear {
		return ""
	}
	return monthNames[month-1]
}

// Parse reads a date in the "YYYY-MM-DD" form produced by Date.String.
func Parse(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	var fields [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		fields[i] = n
	}

	d := Date{Year: fields[0], Month: fields[1], Day: fields[2]}
	if !d.Valid() {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// MustParse is like Parse but panics on malformed input. Intended for fixtures.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

const secondsPerDay = 24 * 60 * 60

func (d Date) jdn() int {
	return d.Day +
		(59*(d.Month-1)+1)/2 +
		(d.Year-1)*354 +
		(3+11*d.Year)/30 +
		epochJDN - 1
}

func fromJDN(jdn int) Date {
	year := (30*(jdn-epochJDN) + 10646) / 10631
	for year > 1 && jdn < (Date{Year: year, Month: 1, Day: 1}).jdn() {
		year--
	}
	for jdn >= (Date{Year: year + 1, Month: 1, Day: 1}).jdn() {
		year++
	}

	month := 1
	for month < MonthsPerYear && jdn >= (Date{Year: year, Month: month + 1, Day: 1}).jdn() {
		month++
	}

	day := jdn - (Date{Year: year, Month: month, Day: 1}).jdn() + 1
	return Date{Year: year, Month: month, Day: day}
}

func gregorianJDN(t time.Time) int {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(midnight.Unix()/secondsPerDay) + unixEpochJDN
}
