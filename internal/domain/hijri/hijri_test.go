package hijri

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gregorian(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFromGregorian_KnownDates(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want Date
	}{
		{"hawl start example", gregorian(2024, time.December, 13), Date{1446, 6, 12}},
		{"mid dhul hijjah", gregorian(2025, time.June, 15), Date{1446, 12, 19}},
		{"y2k", gregorian(2000, time.January, 1), Date{1420, 9, 25}},
		{"new year 1447", gregorian(2025, time.June, 26), Date{1447, 1, 1}},
		{"ramadan 1446", gregorian(2025, time.March, 1), Date{1446, 9, 2}},
		{"unix epoch", gregorian(1970, time.January, 1), Date{1389, 10, 23}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromGregorian(tt.in))
		})
	}
}

func TestFromGregorian_IgnoresTimeOfDay(t *testing.T) {
	late := time.Date(2024, time.December, 13, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, Date{1446, 6, 12}, FromGregorian(late))
}

func TestFromGregorian_BeforeEpoch(t *testing.T) {
	assert.Equal(t, Date{}, FromGregorian(gregorian(600, time.January, 1)))
}

func TestToGregorian_KnownDates(t *testing.T) {
	assert.Equal(t, gregorian(2025, time.February, 28), ToGregorian(Date{1446, 9, 1}))
	assert.Equal(t, gregorian(2024, time.July, 6), ToGregorian(Date{1445, 12, 30}))
	assert.Equal(t, gregorian(2025, time.December, 2), ToGregorian(Date{1447, 6, 12}))
}

func TestRoundTrip_Gregorian(t *testing.T) {
	start := gregorian(1900, time.January, 1)
	end := gregorian(2200, time.January, 1)

	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		h := FromGregorian(d)
		require.True(t, h.Valid(), "invalid hijri date %v for %s", h, d.Format(time.DateOnly))
		require.Equal(t, d, ToGregorian(h), "round trip failed for %s", d.Format(time.DateOnly))
	}
}

func TestRoundTrip_ShortFormat(t *testing.T) {
	for year := 1300; year <= 1600; year++ {
		for month := 1; month <= MonthsPerYear; month++ {
			for day := 1; day <= DaysInMonth(year, month); day++ {
				h := Date{Year: year, Month: month, Day: day}
				parsed, err := Parse(h.String())
				require.NoError(t, err)
				require.Equal(t, h, parsed)
			}
		}
	}
}

func TestIsLeapYear(t *testing.T) {
	var leaps []int
	for year := 1440; year <= 1451; year++ {
		if IsLeapYear(year) {
			leaps = append(leaps, year)
		}
	}
	assert.Equal(t, []int{1442, 1445, 1447, 1450}, leaps)
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 30, DaysInMonth(1446, 1))
	assert.Equal(t, 29, DaysInMonth(1446, 2))
	assert.Equal(t, 29, DaysInMonth(1446, 12))
	assert.Equal(t, 30, DaysInMonth(1445, 12))
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		in   Date
		n    int
		want Date
	}{
		{"same year", Date{1446, 3, 10}, 2, Date{1446, 5, 10}},
		{"wraps year", Date{1446, 11, 5}, 3, Date{1447, 2, 5}},
		{"full year", Date{1446, 6, 12}, 12, Date{1447, 6, 12}},
		{"negative", Date{1446, 2, 1}, -3, Date{1445, 11, 1}},
		{"negative full year", Date{1446, 1, 1}, -12, Date{1445, 1, 1}},
		{"zero", Date{1446, 7, 7}, 0, Date{1446, 7, 7}},
		// 30 Muharram into Safar, which never has a 30th.
		{"clamps into short month", Date{1446, 1, 30}, 1, Date{1446, 2, 29}},
		// Leap Dhul Hijjah into a common year.
		{"clamps leap day", Date{1445, 12, 30}, 12, Date{1446, 12, 29}},
		// 30-day month keeps day 30.
		{"keeps day 30", Date{1446, 1, 30}, 2, Date{1446, 3, 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.in, tt.n))
		})
	}
}

func TestHawlDueDate(t *testing.T) {
	dueGregorian, dueHijri := HawlDueDate(gregorian(2024, time.December, 13))

	assert.Equal(t, Date{1447, 6, 12}, dueHijri)
	assert.Equal(t, gregorian(2025, time.December, 2), dueGregorian)
	assert.Equal(t, 354, int(dueGregorian.Sub(gregorian(2024, time.December, 13)).Hours()/24))
}

func TestHawlDueDate_SameMonthAndDay(t *testing.T) {
	start := gregorian(2000, time.January, 1)
	end := gregorian(2100, time.January, 1)

	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		h := FromGregorian(d)
		// The clamp applies to the leap day of Dhul Hijjah.
		if h.Month == MonthsPerYear && h.Day == 30 {
			continue
		}

		dueGregorian, dueHijri := HawlDueDate(d)
		require.Equal(t, Date{h.Year + 1, h.Month, h.Day}, dueHijri)

		days := int(dueGregorian.Sub(d).Hours() / 24)
		require.GreaterOrEqual(t, days, 354)
		require.LessOrEqual(t, days, 356)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "1446-13-01", "1446-02-30", "1446/01/01", "abc-01-01", "1446-01"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.ErrorIs(t, err, ErrInvalidDate)
		})
	}
}

func TestFormatting(t *testing.T) {
	d := Date{1446, 6, 12}
	assert.Equal(t, "1446-06-12", d.String())
	assert.Equal(t, "12 Jumada al-Thani 1446", d.Long())
	assert.Equal(t, "Dhul Hijjah", MonthName(12))
	assert.Equal(t, "", MonthName(0))
}

func TestFormatDual(t *testing.T) {
	assert.Equal(t, "Dec 13, 2024 / 12 Jumada al-Thani 1446", FormatDual(gregorian(2024, time.December, 13)))
}

func TestBefore(t *testing.T) {
	assert.True(t, Date{1446, 1, 1}.Before(Date{1446, 1, 2}))
	assert.False(t, Date{1446, 1, 2}.Before(Date{1446, 1, 2}))
}
