package period

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/de-tools/ems-atlas/pkg/models/domain"
)

// Query parameter names understood by the reporting backend.
const (
	ParamPeriodType     = "periodtype"
	ParamBaseStart      = "baseperiodstartdatetime"
	ParamBaseEnd        = "baseperiodenddatetime"
	ParamReportingStart = "reportingperiodstartdatetime"
	ParamReportingEnd   = "reportingperiodenddatetime"
	ParamLanguage       = "language"
)

const (
	defaultComparisonMode   = domain.ComparisonMonthOnMonth
	defaultGranularityLevel = domain.GranularityDaily
)

// State is a copy of the controls for rendering.
type State struct {
	Reporting    domain.PeriodRange
	Base         domain.PeriodRange
	Comparison   domain.ComparisonMode
	Granularity  domain.Granularity
	BaseEditable bool
}

// Controls holds the reporting and base periods, the comparison mode and the granularity.
type Controls struct {
	mu          sync.RWMutex
	reporting   domain.PeriodRange
	base        domain.PeriodRange
	mode        domain.ComparisonMode
	granularity domain.Granularity
}

// New starts with the current month up to now, compared month on month, daily.
func New(now time.Time) *Controls {
	y, m, _ := now.Date()
	reporting := domain.PeriodRange{
		Start: time.Date(y, m, 1, 0, 0, 0, 0, now.Location()),
		End:   now,
	}
	return &Controls{
		reporting:   reporting,
		base:        BaseFor(defaultComparisonMode, reporting),
		mode:        defaultComparisonMode,
		granularity: defaultGranularityLevel,
	}
}

func (c *Controls) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		Reporting:    c.reporting,
		Base:         c.base,
		Comparison:   c.mode,
		Granularity:  c.granularity,
		BaseEditable: c.mode == domain.ComparisonFree,
	}
}

// SetReportingPeriod installs r, escalates the granularity for its length and
// rederives the base for year-over-year and month-on-month.
func (c *Controls) SetReportingPeriod(r domain.PeriodRange) error {
	if r.IsCleared() {
		c.ClearReportingPeriod()
		return nil
	}

	r, err := domain.NewPeriodRange(r.Start, SnapEndOfDay(r.End))
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reporting = r
	c.granularity = Escalate(c.granularity, r.Start, r.End)
	switch c.mode {
	case domain.ComparisonYearOverYear, domain.ComparisonMonthOnMonth:
		c.base = BaseFor(c.mode, r)
	}
	return nil
}

func (c *Controls) ClearReportingPeriod() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reporting = domain.PeriodRange{}
}

// SetBasePeriod is only allowed in free comparison mode.
func (c *Controls) SetBasePeriod(r domain.PeriodRange) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != domain.ComparisonFree {
		return domain.ErrBasePeriodLocked
	}
	if r.IsCleared() {
		c.base = domain.PeriodRange{}
		return nil
	}

	r, err := domain.NewPeriodRange(r.Start, SnapEndOfDay(r.End))
	if err != nil {
		return err
	}
	c.base = r
	return nil
}

func (c *Controls) ClearBasePeriod() error {
	return c.SetBasePeriod(domain.PeriodRange{})
}

// SetComparisonMode rederives the base from the reporting period.
func (c *Controls) SetComparisonMode(mode domain.ComparisonMode) error {
	if _, err := domain.ParseComparisonMode(string(mode)); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
	c.base = BaseFor(mode, c.reporting)
	return nil
}

// SetGranularity is a direct user choice and is never escalated.
func (c *Controls) SetGranularity(g domain.Granularity) error {
	if g < domain.GranularityHourly || g > domain.GranularityYearly {
		return fmt.Errorf("unknown period type %s", g)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.granularity = g
	return nil
}

// QueryParams renders the period part of a report request. Cleared base bounds are
// sent as empty strings.
func (c *Controls) QueryParams(withPeriodType, withBase bool) (url.Values, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.reporting.IsCleared() {
		return nil, fmt.Errorf("%w: reporting period is not set", domain.ErrInvalidRange)
	}

	params := url.Values{}
	if withPeriodType {
		params.Set(ParamPeriodType, c.granularity.String())
	}
	if withBase {
		params.Set(ParamBaseStart, formatWallClock(c.base.Start))
		params.Set(ParamBaseEnd, formatWallClock(c.base.End))
	}
	params.Set(ParamReportingStart, formatWallClock(c.reporting.Start))
	params.Set(ParamReportingEnd, formatWallClock(c.reporting.End))
	return params, nil
}

func formatWallClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.WallClockLayout)
}
