package period

import (
	"time"

	"github.com/de-tools/ems-atlas/pkg/models/domain"
)

const day = 24 * time.Hour

// Escalation thresholds in elapsed range length.
const (
	monthSpan  = 30 * day
	halfYear   = 6 * 30 * day
	threeYears = 3 * 365 * day
)

// Escalate picks the granularity for a range of the given length starting from
// current. It never returns a finer level than current.
func Escalate(current domain.Granularity, start, end time.Time) domain.Granularity {
	d := end.Sub(start)
	switch current {
	case domain.GranularityHourly:
		switch {
		case d > threeYears:
			return domain.GranularityYearly
		case d > halfYear:
			return domain.GranularityMonthly
		case d > monthSpan:
			return domain.GranularityDaily
		}
	case domain.GranularityDaily:
		switch {
		case d >= threeYears:
			return domain.GranularityYearly
		case d >= halfYear:
			return domain.GranularityMonthly
		}
	case domain.GranularityMonthly:
		if d >= threeYears {
			return domain.GranularityYearly
		}
	}
	return current
}

// SnapEndOfDay moves an end instant whose clock reads 00:00:00 to the last millisecond
// of that day. Sub-second digits are not looked at.
func SnapEndOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	h, m, s := t.Clock()
	if h != 0 || m != 0 || s != 0 {
		return t
	}
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// AddMonths shifts t by n calendar months, clamping the day to the end of the target month.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	h, mi, s := t.Clock()

	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, h, mi, s, t.Nanosecond(), t.Location())
}

// BaseFor derives the comparison base of reporting under mode. Modes without an
// offset, and a cleared reporting range, give a cleared base.
func BaseFor(mode domain.ComparisonMode, reporting domain.PeriodRange) domain.PeriodRange {
	if reporting.IsCleared() {
		return domain.PeriodRange{}
	}

	var shift func(time.Time) time.Time
	switch mode {
	case domain.ComparisonYearOverYear:
		shift = func(t time.Time) time.Time { return AddMonths(t, -12) }
	case domain.ComparisonMonthOnMonth:
		shift = func(t time.Time) time.Time { return AddMonths(t, -1) }
	case domain.ComparisonFree:
		shift = func(t time.Time) time.Time { return t.AddDate(0, 0, -1) }
	default:
		return domain.PeriodRange{}
	}
	return domain.PeriodRange{Start: shift(reporting.Start), End: shift(reporting.End)}
}
