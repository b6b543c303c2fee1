package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/de-tools/ems-atlas/pkg/models/domain"
	sessionstore "github.com/de-tools/ems-atlas/pkg/store/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var sessionKeys = []string{
	domain.SessionKeyLoggedIn,
	domain.SessionKeyUserName,
	domain.SessionKeyDisplayName,
	domain.SessionKeyUserUUID,
	domain.SessionKeyToken,
}

type GuardConfig struct {
	TTL           time.Duration
	CheckInterval time.Duration
}

func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		TTL:           60 * time.Minute,
		CheckInterval: time.Second,
	}
}

// Guard validates the stored session and keeps it alive.
type Guard struct {
	store      sessionstore.Store
	redirector Redirector
	clock      Clock
	config     GuardConfig

	mu         sync.Mutex
	redirected bool
	watchOnce  sync.Once
	done       chan struct{}
}

func NewGuard(store sessionstore.Store, redirector Redirector, clock Clock, config GuardConfig) *Guard {
	if clock == nil {
		clock = SystemClock()
	}
	defaults := DefaultGuardConfig()
	if config.TTL <= 0 {
		config.TTL = defaults.TTL
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = defaults.CheckInterval
	}
	return &Guard{
		store:      store,
		redirector: redirector,
		clock:      clock,
		config:     config,
		done:       make(chan struct{}),
	}
}

// Check reads the session. An invalid session requests the login redirect and returns
// domain.ErrSessionInvalid; a valid one has all of its attributes rewritten with a fresh TTL.
func (g *Guard) Check(ctx context.Context) (domain.Session, error) {
	logger := zerolog.Ctx(ctx)

	s, err := g.read(ctx)
	if err != nil {
		return domain.Session{}, err
	}

	if !s.Valid() {
		logger.Warn().Msg("session is not valid, redirecting to login")
		g.requestRedirect()
		return domain.Session{}, domain.ErrSessionInvalid
	}

	if err := g.store.Put(ctx, attributes(s), g.config.TTL); err != nil {
		return domain.Session{}, fmt.Errorf("failed to extend session: %w", err)
	}
	logger.Debug().Str("user", s.UserName).Dur("ttl", g.config.TTL).Msg("session extended")
	return s, nil
}

// Watch re-checks the login flag on every tick until ctx is cancelled or the flag is gone.
// Only the first call runs the loop.
func (g *Guard) Watch(ctx context.Context) {
	g.watchOnce.Do(func() {
		g.watch(ctx)
	})
}

func (g *Guard) watch(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	defer close(g.done)

	ticker := g.clock.NewTicker(g.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("session watch stopped")
			return
		case <-ticker.C():
			v, ok, err := g.store.Get(ctx, domain.SessionKeyLoggedIn)
			if err != nil {
				logger.Warn().Err(err).Msg("failed to read login flag")
				continue
			}
			if !ok || !parseFlag(v) {
				logger.Info().Msg("login flag cleared, redirecting to login")
				g.requestRedirect()
				return
			}
		}
	}
}

func (g *Guard) Done() <-chan struct{} {
	return g.done
}

// Login persists s. The user uuid must be a valid UUID.
func (g *Guard) Login(ctx context.Context, s domain.Session) error {
	if _, err := uuid.Parse(s.UserUUID); err != nil {
		return fmt.Errorf("invalid user uuid %q: %w", s.UserUUID, err)
	}
	if s.Token == "" {
		return fmt.Errorf("token must not be empty")
	}
	s.LoggedIn = true
	if err := g.store.Put(ctx, attributes(s), g.config.TTL); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	g.clearRedirect()
	zerolog.Ctx(ctx).Info().Str("user", s.UserName).Msg("logged in")
	return nil
}

func (g *Guard) Logout(ctx context.Context) error {
	if err := g.store.Delete(ctx, sessionKeys...); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// requestRedirect signals the redirector once until the next successful Login.
func (g *Guard) requestRedirect() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.redirected || g.redirector == nil {
		return
	}
	g.redirected = true
	g.redirector.SetRedirectURL(domain.LoginRedirectURL)
	g.redirector.SetRedirect(true)
}

func (g *Guard) clearRedirect() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.redirected = false
	if g.redirector == nil {
		return
	}
	g.redirector.SetRedirect(false)
	g.redirector.SetRedirectURL("")
}

func (g *Guard) read(ctx context.Context) (domain.Session, error) {
	values := make(map[string]string, len(sessionKeys))
	for _, k := range sessionKeys {
		v, ok, err := g.store.Get(ctx, k)
		if err != nil {
			return domain.Session{}, fmt.Errorf("failed to read session: %w", err)
		}
		if ok {
			values[k] = v
		}
	}

	return domain.Session{
		LoggedIn:    parseFlag(values[domain.SessionKeyLoggedIn]),
		UserName:    values[domain.SessionKeyUserName],
		DisplayName: values[domain.SessionKeyDisplayName],
		UserUUID:    values[domain.SessionKeyUserUUID],
		Token:       values[domain.SessionKeyToken],
	}, nil
}

func attributes(s domain.Session) map[string]string {
	return map[string]string{
		domain.SessionKeyLoggedIn:    strconv.FormatBool(s.LoggedIn),
		domain.SessionKeyUserName:    s.UserName,
		domain.SessionKeyDisplayName: s.DisplayName,
		domain.SessionKeyUserUUID:    s.UserUUID,
		domain.SessionKeyToken:       s.Token,
	}
}

func parseFlag(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
