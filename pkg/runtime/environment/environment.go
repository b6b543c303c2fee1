package environment

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/de-tools/ems-atlas/pkg/i18n"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/services/config"
	"github.com/de-tools/ems-atlas/pkg/services/report"
	"github.com/de-tools/ems-atlas/pkg/services/session"
	"github.com/de-tools/ems-atlas/pkg/services/view"
	"github.com/de-tools/ems-atlas/pkg/store/client"
	sessionstore "github.com/de-tools/ems-atlas/pkg/store/session"
	"github.com/de-tools/ems-atlas/pkg/store/sqlite"
	"github.com/rs/zerolog"
)

const profilesFile = ".emscfg"

// Environment holds everything a surface (CLI or web) needs to drive report views.
type Environment struct {
	Settings   *config.Settings
	Profile    domain.BackendProfile
	Backend    client.BackendClient
	Catalog    *i18n.Catalog
	Translator i18n.Translator
	Reports    report.Registry
	Sessions   sessionstore.Store
	Redirect   *session.RedirectState

	db *sql.DB
}

type Options struct {
	ConfigPath string
	// Profile overrides the profile named in the settings.
	Profile string
}

func Load(ctx context.Context, opts Options) (*Environment, error) {
	logger := zerolog.Ctx(ctx)

	settings, err := config.LoadSettings(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Profile != "" {
		settings.Profile = opts.Profile
	}

	profile, err := resolveProfile(ctx, settings)
	if err != nil {
		return nil, err
	}
	language := settings.Language
	if profile.Language != "" {
		language = profile.Language
	}
	logger.Debug().Str("profile", profile.String()).Str("host", profile.Host).Msg("using backend profile")

	backend, err := client.NewBackendClient(client.Config{
		BaseURL:          profile.Host,
		Timeout:          settings.HTTP.Timeout,
		BreakerFailures:  settings.HTTP.BreakerFailures,
		BreakerOpenDelay: settings.HTTP.BreakerOpenDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	catalog, err := i18n.NewCatalog(settings.LocalesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	reports, err := report.NewDefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to register reports: %w", err)
	}

	db, err := sqlite.NewDB(sqlite.Settings{DbPath: settings.Session.DBPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	sessions, err := sessionstore.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	return &Environment{
		Settings:   settings,
		Profile:    profile,
		Backend:    backend,
		Catalog:    catalog,
		Translator: catalog.For(language),
		Reports:    reports,
		Sessions:   sessions,
		Redirect:   &session.RedirectState{},
		db:         db,
	}, nil
}

func (e *Environment) NewGuard() *session.Guard {
	return session.NewGuard(e.Sessions, e.Redirect, session.SystemClock(), session.GuardConfig{
		TTL:           e.Settings.Session.TTL,
		CheckInterval: e.Settings.Session.CheckInterval,
	})
}

func (e *Environment) NewManager() *view.Manager {
	return view.NewManager(view.ManagerConfig{
		Registry:   e.Reports,
		Backend:    e.Backend,
		Translator: e.Translator,
		Guards:     e.NewGuard,
		Now:        time.Now,
	})
}

func (e *Environment) Close() error {
	return e.db.Close()
}

// resolveProfile reads the profiles file when one is configured or present in the
// home directory, and falls back to api_base_url otherwise.
func resolveProfile(ctx context.Context, settings *config.Settings) (domain.BackendProfile, error) {
	path := settings.ProfilesPath
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, profilesFile)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}

	var registry config.Registry
	if path == "" {
		registry = config.NewStaticRegistry(settings.APIBaseURL, settings.Language)
	} else {
		fileRegistry, err := config.NewRegistry(path)
		if err != nil {
			return domain.BackendProfile{}, fmt.Errorf("failed to read profiles from %s: %w", path, err)
		}
		registry = fileRegistry
	}

	profile, err := registry.GetProfile(ctx, settings.Profile)
	if err != nil {
		return domain.BackendProfile{}, fmt.Errorf("failed to resolve backend profile: %w", err)
	}
	return profile, nil
}
