package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/de-tools/ems-atlas/pkg/i18n"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/runtime/terminal/export"
	exportsvc "github.com/de-tools/ems-atlas/pkg/services/export"
	"github.com/de-tools/ems-atlas/pkg/services/report"
	"github.com/de-tools/ems-atlas/pkg/services/view"
	"github.com/de-tools/ems-atlas/pkg/store/client"
)

// Sessions is the part of the session guard the commands drive.
type Sessions interface {
	Check(ctx context.Context) (domain.Session, error)
	Login(ctx context.Context, s domain.Session) error
	Logout(ctx context.Context) error
}

type ReportView interface {
	Snapshot() domain.ViewSnapshot
	DrainNotifications() []domain.Notification
	SetScope(ctx context.Context, slot int, path []int64) error
	Search(slot int, keyword string) ([]domain.Entity, error)
	Suggest(slot int, keyword string) (domain.Entity, bool, error)
	Select(slot int, id int64) error
	SetReportingPeriod(r domain.PeriodRange) error
	SetBasePeriod(r domain.PeriodRange) error
	SetComparisonMode(mode domain.ComparisonMode) error
	SetGranularity(g domain.Granularity) error
	Submit(ctx context.Context) error
	Export() (exportsvc.File, error)
}

type Views interface {
	Definitions() []report.Definition
	Open(ctx context.Context, reportType string) (ReportView, error)
}

type managerViews struct {
	manager *view.Manager
}

func FromManager(m *view.Manager) Views {
	return &managerViews{manager: m}
}

func (m *managerViews) Definitions() []report.Definition {
	return m.manager.Definitions()
}

func (m *managerViews) Open(ctx context.Context, reportType string) (ReportView, error) {
	v, err := m.manager.Open(ctx, reportType)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Redirects hands out the login redirect the session guard requested.
type Redirects interface {
	Consume() (string, bool)
}

// Deps is filled in by the root command before any subcommand runs.
type Deps struct {
	Backend    client.BackendClient
	Sessions   Sessions
	Views      Views
	Translator i18n.Translator
	Reporter   *export.Reporter
	Redirects  Redirects
}

// describe turns err into the localized message a user sees, keeping the cause.
func (d *Deps) describe(err error) error {
	if err == nil {
		return nil
	}
	msg := d.Translator.T(domain.NotificationKey(err))
	if errors.Is(err, domain.ErrSessionInvalid) {
		return fmt.Errorf("%s (ems login, redirect %s): %w", msg, d.redirectTarget(), err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (d *Deps) redirectTarget() string {
	if d.Redirects != nil {
		if url, ok := d.Redirects.Consume(); ok && url != "" {
			return url
		}
	}
	return domain.LoginRedirectURL
}

func (d *Deps) printNotifications(w io.Writer, v ReportView) {
	for _, n := range v.DrainNotifications() {
		_, _ = fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Message)
	}
}
