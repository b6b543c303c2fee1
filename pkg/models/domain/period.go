package domain

import (
	"fmt"
	"time"
)

// PeriodRange is a closed time range. The zero value means "cleared".
type PeriodRange struct {
	Start time.Time
	End   time.Time
}

func NewPeriodRange(start, end time.Time) (PeriodRange, error) {
	if start.After(end) {
		return PeriodRange{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange,
			start.Format(WallClockLayout), end.Format(WallClockLayout))
	}
	return PeriodRange{Start: start, End: end}, nil
}

func (r PeriodRange) IsCleared() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func (r PeriodRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// WallClockLayout is the local wall-clock format the backend expects, without offset.
const WallClockLayout = "2006-01-02T15:04:05"

type Granularity int

const (
	GranularityHourly Granularity = iota
	GranularityDaily
	GranularityMonthly
	GranularityYearly
)

var granularityNames = map[Granularity]string{
	GranularityHourly:  "hourly",
	GranularityDaily:   "daily",
	GranularityMonthly: "monthly",
	GranularityYearly:  "yearly",
}

func (g Granularity) String() string {
	if name, ok := granularityNames[g]; ok {
		return name
	}
	return fmt.Sprintf("granularity(%d)", int(g))
}

func ParseGranularity(s string) (Granularity, error) {
	for g, name := range granularityNames {
		if name == s {
			return g, nil
		}
	}
	return GranularityDaily, fmt.Errorf("unknown period type %q", s)
}

type ComparisonMode string

const (
	ComparisonYearOverYear ComparisonMode = "year-over-year"
	ComparisonMonthOnMonth ComparisonMode = "month-on-month"
	ComparisonFree         ComparisonMode = "free-comparison"
	ComparisonNone         ComparisonMode = "none-comparison"
)

func ParseComparisonMode(s string) (ComparisonMode, error) {
	switch m := ComparisonMode(s); m {
	case ComparisonYearOverYear, ComparisonMonthOnMonth, ComparisonFree, ComparisonNone:
		return m, nil
	}
	return ComparisonNone, fmt.Errorf("unknown comparison type %q", s)
}
