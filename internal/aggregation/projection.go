package aggregation

import (
	"time"

	"tablesense/domain/report"
)

// IsBusinessDay reports whether t falls outside the Friday/Saturday weekend
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Friday, time.Saturday:
		return false
	}
	return true
}

// MonthBounds returns the first and last calendar day of the month holding t
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, -1)
	return start, end
}

// BusinessDays counts business days in [from, to], both inclusive
func BusinessDays(from, to time.Time) int {
	from = truncateDay(from)
	to = truncateDay(to)
	n := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			n++
		}
	}
	return n
}

// ProjectPeriod projects the end-of-month total from the cumulative total so
// far. Today counts as passed. With no business day passed yet the
// projection is 0.
func ProjectPeriod(now time.Time, cumulative float64) report.Projection {
	start, end := MonthBounds(now)
	total := BusinessDays(start, end)
	passed := BusinessDays(start, now)

	p := report.Projection{
		PeriodStart:           start,
		PeriodEnd:             end,
		BusinessDaysPassed:    passed,
		BusinessDaysRemaining: total - passed,
		TotalBusinessDays:     total,
		CumulativeTotal:       cumulative,
	}
	if passed > 0 {
		p.ProjectedTotal = cumulative / float64(passed) * float64(total)
	}
	return p
}

// InPeriod reports whether t falls in the month holding now
func InPeriod(t, now time.Time) bool {
	return t.Year() == now.Year() && t.Month() == now.Month()
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
