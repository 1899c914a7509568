package google

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/meetsched/internal/instrumentation"
	"github.com/teemow/meetsched/internal/logging"
	"github.com/teemow/meetsched/internal/schedule"
)

// refreshMargin is the safety margin before the recorded expiry at which a
// token is no longer trusted for a calendar call.
const refreshMargin = 60 * time.Second

// RefreshFunc performs a refresh-token grant against the provider and
// returns the resulting credential set.
type RefreshFunc func(ctx context.Context, refreshToken string) (*Credentials, error)

// ManagerConfig carries the dependencies for a token lifecycle manager.
type ManagerConfig struct {
	OAuth OAuthConfig
	Store Store

	// Refresh overrides the refresh-token grant, used by tests. Defaults to
	// the oauth2 token source backed by the configured client.
	Refresh RefreshFunc

	// Now is the clock used for expiry checks. Defaults to time.Now.
	Now func() time.Time

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// Manager owns the access/refresh credential and decides when to refresh.
// It hands out tokens valid for the duration of one request; callers must
// not cache them, so every request re-checks expiry.
//
// The credential set is the only mutable shared state in the engine. The
// whole load-check-refresh-persist sequence runs under one mutex so that
// near-simultaneous requests cannot race to persist conflicting token
// generations.
type Manager struct {
	mu      sync.Mutex
	conf    *oauth2.Config
	store   Store
	refresh RefreshFunc
	now     func() time.Time
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewManager creates a token lifecycle manager.
func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{
		conf:    cfg.OAuth.oauth2Config(),
		store:   cfg.Store,
		refresh: cfg.Refresh,
		now:     cfg.Now,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
	if m.refresh == nil {
		m.refresh = m.refreshGrant
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Token returns an access token usable for one request. If the stored
// credential expires within the safety margin, a refresh-token grant runs
// first and its result is persisted before the token is returned.
//
// Absent credentials and refresh failures both yield
// schedule.ErrNotConnected: from the caller's perspective the remedy is the
// same reconnect flow, so the underlying provider error is logged rather
// than propagated.
func (m *Manager) Token(ctx context.Context) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.store.Load()
	if err != nil {
		m.logger.Warn("failed to load stored credentials", logging.Err(err))
		return nil, schedule.ErrNotConnected
	}
	if creds == nil || creds.AccessToken == "" {
		return nil, schedule.ErrNotConnected
	}

	if !m.now().Before(creds.Expiry.Add(-refreshMargin)) {
		refreshed, err := m.refresh(ctx, creds.RefreshToken)
		if m.metrics != nil {
			if err != nil {
				m.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultFailure)
			} else {
				m.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultSuccess)
			}
		}
		if err != nil {
			m.logger.Warn("token refresh failed", logging.Err(err))
			return nil, schedule.ErrNotConnected
		}
		// Google omits the refresh token from refresh responses; carry the
		// previous one forward.
		if refreshed.RefreshToken == "" {
			refreshed.RefreshToken = creds.RefreshToken
		}
		if err := m.store.Save(refreshed); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed credentials: %w", err)
		}
		m.logger.Info("access token refreshed",
			"expiry", refreshed.Expiry.Format(time.RFC3339),
			"token", logging.SanitizeToken(refreshed.AccessToken),
		)
		creds = refreshed
	}

	return &oauth2.Token{
		AccessToken:  creds.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.Expiry,
	}, nil
}

// Connected reports whether a stored credential exists. It does not verify
// the credential against the provider.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.store.Load()
	return err == nil && creds != nil && creds.AccessToken != ""
}

// AuthURL returns the provider consent URL for the initial connection.
func (m *Manager) AuthURL() string {
	return m.conf.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for a credential set and persists it.
func (m *Manager) Exchange(ctx context.Context, code string) error {
	tok, err := m.conf.Exchange(ctx, code)
	if m.metrics != nil {
		if err != nil {
			m.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		} else {
			m.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(credentialsFromToken(tok)); err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}
	m.logger.Info("calendar connected", "expiry", tok.Expiry.Format(time.RFC3339))
	return nil
}

// Disconnect clears the stored credential set.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	m.logger.Info("calendar disconnected")
	return nil
}

// refreshGrant is the production refresh implementation: a token source
// seeded with only the refresh token forces a refresh-token grant.
func (m *Manager) refreshGrant(ctx context.Context, refreshToken string) (*Credentials, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("no refresh token available")
	}
	ts := m.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh grant failed: %w", err)
	}
	return credentialsFromToken(tok), nil
}

func credentialsFromToken(tok *oauth2.Token) *Credentials {
	return &Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}
