package view

import (
	"context"
	"sync"
	"time"

	"github.com/de-tools/ems-atlas/pkg/i18n"
	"github.com/de-tools/ems-atlas/pkg/services/report"
	"github.com/de-tools/ems-atlas/pkg/services/session"
	"github.com/de-tools/ems-atlas/pkg/store/client"
	"github.com/rs/zerolog"
)

// GuardFactory builds the session guard of a new view.
type GuardFactory func() *session.Guard

type ManagerConfig struct {
	Registry   report.Registry
	Backend    client.BackendClient
	Translator i18n.Translator
	Guards     GuardFactory
	Now        func() time.Time
}

// Manager keeps one open view per report type.
type Manager struct {
	config ManagerConfig

	mu    sync.Mutex
	views map[string]*View
}

func NewManager(config ManagerConfig) *Manager {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Manager{
		config: config,
		views:  make(map[string]*View),
	}
}

func (m *Manager) Definitions() []report.Definition {
	return m.config.Registry.List()
}

// Open returns the view of reportType, opening a new one when none is open, the
// previous one lost its session or it could not load its space trees. Views are
// opened outside the lock so a slow backend only blocks callers of the same report.
func (m *Manager) Open(ctx context.Context, reportType string) (*View, error) {
	def, err := m.config.Registry.Get(reportType)
	if err != nil {
		return nil, err
	}
	logger := zerolog.Ctx(ctx).With().Str("report", reportType).Logger()

	cached, stale := m.lookup(reportType)
	if cached != nil {
		return cached, nil
	}
	if stale != nil {
		logger.Info().Bool("expired", stale.Expired()).Msg("reopening view")
		stale.Close()
	}

	v := New(Config{
		Definition: def,
		Backend:    m.config.Backend,
		Guard:      m.config.Guards(),
		Translator: m.config.Translator,
		Now:        m.config.Now(),
	})
	if err := v.Open(ctx); err != nil {
		v.Close()
		return nil, err
	}

	m.mu.Lock()
	current, ok := m.views[reportType]
	if ok && usable(current) {
		m.mu.Unlock()
		v.Close()
		return current, nil
	}
	m.views[reportType] = v
	m.mu.Unlock()

	if ok {
		current.Close()
	}
	return v, nil
}

// lookup returns the usable cached view of reportType, or removes and returns the
// unusable one.
func (m *Manager) lookup(reportType string) (cached, stale *View) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.views[reportType]
	if !ok {
		return nil, nil
	}
	if usable(v) {
		return v, nil
	}
	delete(m.views, reportType)
	return nil, v
}

func usable(v *View) bool {
	return !v.Expired() && v.TreesLoaded()
}

// Close closes every open view.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for t, v := range m.views {
		v.Close()
		delete(m.views, t)
	}
}
