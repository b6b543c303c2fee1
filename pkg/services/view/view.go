package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/de-tools/ems-atlas/pkg/i18n"
	"github.com/de-tools/ems-atlas/pkg/metrics"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/services/export"
	"github.com/de-tools/ems-atlas/pkg/services/filter"
	"github.com/de-tools/ems-atlas/pkg/services/hierarchy"
	"github.com/de-tools/ems-atlas/pkg/services/period"
	"github.com/de-tools/ems-atlas/pkg/services/report"
	"github.com/de-tools/ems-atlas/pkg/services/session"
	"github.com/de-tools/ems-atlas/pkg/store/client"
	"github.com/rs/zerolog"
)

var ErrClosed = errors.New("view is closed")

type slot struct {
	param    string
	selector *hierarchy.Selector
	filter   *filter.Filter
}

// View composes the session guard, one space selector and entity filter per entity
// parameter, the period controls and the fetcher of a single report type.
type View struct {
	def        report.Definition
	guard      *session.Guard
	translator i18n.Translator
	slots      []slot
	periods    *period.Controls
	fetcher    *report.Fetcher

	mu            sync.Mutex
	session       domain.Session
	opened        bool
	closed        bool
	treesLoaded   bool
	stopWatch     context.CancelFunc
	notifications []domain.Notification
}

type Config struct {
	Definition report.Definition
	Backend    client.BackendClient
	Guard      *session.Guard
	Translator i18n.Translator
	Now        time.Time
}

func New(cfg Config) *View {
	v := &View{
		def:        cfg.Definition,
		guard:      cfg.Guard,
		translator: cfg.Translator,
		periods:    period.New(cfg.Now),
		fetcher:    report.NewFetcher(cfg.Backend, cfg.Definition),
	}
	for _, param := range cfg.Definition.Params {
		f := filter.New()
		v.slots = append(v.slots, slot{
			param:    param,
			selector: hierarchy.NewSelector(cfg.Backend, cfg.Definition.EntityKind, f),
			filter:   f,
		})
	}
	return v
}

func (v *View) Definition() report.Definition {
	return v.def
}

// Open validates the session, starts the session watch and loads the space tree of
// every slot. Tree failures are reported as notifications; only session problems
// are returned.
func (v *View) Open(ctx context.Context) error {
	logger := zerolog.Ctx(ctx).With().Str("report", v.def.Type).Logger()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.opened {
		v.mu.Unlock()
		return nil
	}
	v.mu.Unlock()

	s, err := v.guard.Check(ctx)
	if err != nil {
		return fmt.Errorf("failed to open %s view: %w", v.def.Type, err)
	}

	watchCtx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	v.mu.Lock()
	v.session = s
	v.opened = true
	v.stopWatch = cancel
	v.mu.Unlock()
	go v.guard.Watch(watchCtx)

	ready := true
	for i, sl := range v.slots {
		if err := sl.selector.LoadTree(ctx, s.Credentials()); err != nil {
			logger.Warn().Err(err).Int("slot", i).Msg("failed to load space tree")
			v.notify(err)
			ready = false
		}
	}
	v.mu.Lock()
	v.treesLoaded = ready
	v.mu.Unlock()

	if v.def.AutoSubmit && ready && v.selectionsReady() {
		logger.Debug().Msg("submitting after first entity load")
		_ = v.Submit(ctx)
	}
	return nil
}

// TreesLoaded reports whether Open loaded the space tree of every slot.
func (v *View) TreesLoaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.treesLoaded
}

// Expired reports whether the session watch has redirected to login.
func (v *View) Expired() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.opened || v.closed {
		return false
	}
	select {
	case <-v.guard.Done():
		return true
	default:
		return false
	}
}

func (v *View) Snapshot() domain.ViewSnapshot {
	periods := v.periods.State()
	fetch := v.fetcher.State()

	snapshot := domain.ViewSnapshot{
		ReportType:     v.def.Type,
		Slots:          make([]domain.SlotSnapshot, 0, len(v.slots)),
		Reporting:      periods.Reporting,
		Base:           periods.Base,
		BaseEditable:   periods.BaseEditable,
		Comparison:     periods.Comparison,
		Granularity:    periods.Granularity,
		SubmitEnabled:  fetch.SubmitEnabled && v.selectionsReady(),
		Busy:           fetch.Busy,
		ResultsVisible: fetch.ResultsVisible,
		ExportVisible:  fetch.ExportVisible,
		Result:         fetch.Result,
	}
	for _, sl := range v.slots {
		ss := domain.SlotSnapshot{
			Param:      sl.param,
			Tree:       sl.selector.Tree(),
			Path:       sl.selector.Path(),
			ScopeLabel: sl.selector.Label(),
			Keyword:    sl.filter.Keyword(),
			Entities:   sl.filter.Filtered(),
		}
		if e, ok := sl.filter.Selected(); ok {
			ss.Selected = &e
		}
		snapshot.Slots = append(snapshot.Slots, ss)
	}

	v.mu.Lock()
	snapshot.Notifications = append([]domain.Notification(nil), v.notifications...)
	v.mu.Unlock()
	return snapshot
}

// DrainNotifications returns the pending notifications in order and forgets them.
func (v *View) DrainNotifications() []domain.Notification {
	v.mu.Lock()
	defer v.mu.Unlock()
	drained := v.notifications
	v.notifications = nil
	return drained
}

func (v *View) SetScope(ctx context.Context, slotIndex int, path []int64) error {
	sl, creds, err := v.slot(slotIndex)
	if err != nil {
		return err
	}
	return v.notify(sl.selector.OnScopeChange(ctx, creds, path))
}

func (v *View) Search(slotIndex int, keyword string) ([]domain.Entity, error) {
	sl, _, err := v.slot(slotIndex)
	if err != nil {
		return nil, err
	}
	return sl.filter.Search(keyword), nil
}

// Suggest returns the entity of the slot whose name is closest to keyword.
func (v *View) Suggest(slotIndex int, keyword string) (domain.Entity, bool, error) {
	sl, _, err := v.slot(slotIndex)
	if err != nil {
		return domain.Entity{}, false, err
	}
	e, ok := sl.filter.Suggest(keyword)
	return e, ok, nil
}

func (v *View) Select(slotIndex int, id int64) error {
	sl, _, err := v.slot(slotIndex)
	if err != nil {
		return err
	}
	return v.notify(sl.filter.Select(id))
}

func (v *View) SetReportingPeriod(r domain.PeriodRange) error {
	if err := v.live(); err != nil {
		return err
	}
	if r.IsCleared() {
		v.periods.ClearReportingPeriod()
		return nil
	}
	return v.notify(v.periods.SetReportingPeriod(r))
}

func (v *View) SetBasePeriod(r domain.PeriodRange) error {
	if err := v.live(); err != nil {
		return err
	}
	if r.IsCleared() {
		return v.notify(v.periods.ClearBasePeriod())
	}
	return v.notify(v.periods.SetBasePeriod(r))
}

func (v *View) SetComparisonMode(mode domain.ComparisonMode) error {
	if err := v.live(); err != nil {
		return err
	}
	return v.notify(v.periods.SetComparisonMode(mode))
}

func (v *View) SetGranularity(g domain.Granularity) error {
	if err := v.live(); err != nil {
		return err
	}
	return v.notify(v.periods.SetGranularity(g))
}

// Submit fetches the report for the current selections and periods.
func (v *View) Submit(ctx context.Context) error {
	if err := v.live(); err != nil {
		return err
	}

	ids := make([]int64, 0, len(v.slots))
	for _, sl := range v.slots {
		e, ok := sl.filter.Selected()
		if !ok {
			return v.notify(fmt.Errorf("%w: %s", domain.ErrNoSelection, sl.param))
		}
		ids = append(ids, e.ID)
	}

	params, err := v.periods.QueryParams(v.def.PeriodType, v.def.BasePeriod)
	if err != nil {
		return v.notify(err)
	}

	v.mu.Lock()
	creds := v.session.Credentials()
	v.mu.Unlock()

	_, err = v.fetcher.Submit(ctx, creds, report.Request{EntityIDs: ids, Period: params}, v.translator)
	return v.notify(err)
}

// Export decodes the spreadsheet of the last successful fetch.
func (v *View) Export() (export.File, error) {
	if err := v.live(); err != nil {
		return export.File{}, err
	}
	payload, err := v.fetcher.Export()
	if err != nil {
		return export.File{}, v.notify(err)
	}
	file, err := export.Export(payload)
	if err != nil {
		return export.File{}, v.notify(err)
	}
	metrics.ExportsTotal.WithLabelValues(v.def.Type).Inc()
	return file, nil
}

// Close stops the session watch and abandons any submission in flight.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	stop := v.stopWatch
	v.mu.Unlock()

	v.fetcher.Cancel()
	if stop != nil {
		stop()
		<-v.guard.Done()
	}
}

func (v *View) slot(i int) (slot, domain.Credentials, error) {
	if err := v.live(); err != nil {
		return slot{}, domain.Credentials{}, err
	}
	if i < 0 || i >= len(v.slots) {
		return slot{}, domain.Credentials{}, fmt.Errorf("%w: %s has no selection slot %d", domain.ErrInvalidScope, v.def.Type, i)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.slots[i], v.session.Credentials(), nil
}

func (v *View) live() error {
	if v.Expired() {
		return domain.ErrSessionInvalid
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.closed:
		return ErrClosed
	case !v.opened:
		return domain.ErrSessionInvalid
	}
	return nil
}

func (v *View) selectionsReady() bool {
	for _, sl := range v.slots {
		if !sl.filter.CanSubmit() {
			return false
		}
	}
	return true
}

// notify records a localized notification for err and returns it unchanged.
func (v *View) notify(err error) error {
	if err == nil {
		return nil
	}
	key := domain.NotificationKey(err)
	n := domain.Notification{
		Level:   domain.NotificationError,
		Key:     key,
		Message: v.translator.T(key),
	}

	v.mu.Lock()
	v.notifications = append(v.notifications, n)
	v.mu.Unlock()
	return err
}
