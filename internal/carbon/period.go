package carbon

import "time"

// Period selects how far back an emissions listing reaches.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Periods in filter-bar order.
var Periods = []Period{PeriodAll, PeriodWeek, PeriodMonth, PeriodYear}

// ParsePeriod maps unknown or empty input to PeriodAll.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return Period(s)
	default:
		return PeriodAll
	}
}

// Days returns the look-back window, 0 for PeriodAll.
func (p Period) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	case PeriodYear:
		return 365
	default:
		return 0
	}
}

// Cutoff returns the exclusive lower bound for records in p, relative to now.
func (p Period) Cutoff(now time.Time) (time.Time, bool) {
	d := p.Days()
	if d == 0 {
		return time.Time{}, false
	}
	return now.Add(-time.Duration(d) * 24 * time.Hour), true
}

func (p Period) String() string { return string(p) }
