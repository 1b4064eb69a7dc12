package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultSafetyMargin is how long before expiry a token is treated as expired.
const DefaultSafetyMargin = 60 * time.Second

// State is the lifecycle state of the cached credential.
type State int

const (
	// StateUninitialized means the store has not been read yet.
	StateUninitialized State = iota
	// StateLoading means the store is being read.
	StateLoading
	// StateValid means the access token is usable.
	StateValid
	// StateExpired means the access token needs a refresh.
	StateExpired
	// StateAuthRequired means only an interactive authorization can recover.
	StateAuthRequired
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateValid:
		return "valid"
	case StateExpired:
		return "expired"
	case StateAuthRequired:
		return "auth_required"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// CredentialStore persists the single credential record.
type CredentialStore interface {
	Load() (*TokenRecord, error)
	Save(record *TokenRecord) error
}

// OAuthProvider performs the OAuth2 exchanges.
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

// Metrics receives refresh results.
type Metrics interface {
	RecordTokenRefresh(status string)
}

// Manager owns the credential lifecycle. All API calls obtain their bearer
// token through ValidToken. At most one refresh exchange runs at a time and
// concurrent callers reuse its result.
type Manager struct {
	store    CredentialStore
	provider OAuthProvider
	logger   *zap.Logger
	margin   time.Duration
	now      func() time.Time
	metrics  Metrics

	mutex    sync.Mutex // guards state, record and rejected
	state    State
	record   *TokenRecord
	rejected string // refresh token the provider refused

	refreshMutex sync.Mutex // held around check-then-refresh
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithSafetyMargin sets how long before expiry a token is refreshed.
func WithSafetyMargin(margin time.Duration) ManagerOption {
	return func(m *Manager) {
		m.margin = margin
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// WithMetrics reports refresh results to metrics.
func WithMetrics(metrics Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// NewManager creates a Manager. The store is read lazily on first use.
func NewManager(store CredentialStore, provider OAuthProvider, logger *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		provider: provider,
		logger:   logger,
		margin:   DefaultSafetyMargin,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ValidToken returns an access token that stays valid for at least the safety
// margin, refreshing it first when needed.
func (m *Manager) ValidToken(ctx context.Context) (*oauth2.Token, error) {
	record, err := m.current()
	if err != nil {
		return nil, err
	}
	if record.Valid(m.now(), m.margin) {
		return record.Token(), nil
	}

	m.refreshMutex.Lock()
	defer m.refreshMutex.Unlock()

	// Another caller may have refreshed while we waited.
	record, err = m.current()
	if err != nil {
		return nil, err
	}
	if record.Valid(m.now(), m.margin) {
		return record.Token(), nil
	}

	return m.refresh(ctx, record)
}

// Refresh exchanges the cached refresh token even if the access token is still valid.
func (m *Manager) Refresh(ctx context.Context) (*oauth2.Token, error) {
	m.refreshMutex.Lock()
	defer m.refreshMutex.Unlock()

	record, err := m.current()
	if err != nil {
		return nil, err
	}
	return m.refresh(ctx, record)
}

// Store persists record and makes it the current credential.
func (m *Manager) Store(_ context.Context, record *TokenRecord) error {
	if record == nil || record.AccessToken == "" {
		return errors.New("cannot store empty token record")
	}

	m.refreshMutex.Lock()
	defer m.refreshMutex.Unlock()

	if err := m.store.Save(record); err != nil {
		return fmt.Errorf("saving token record: %w", err)
	}

	m.mutex.Lock()
	m.record = record.Clone()
	m.rejected = ""
	m.state = m.stateOf(m.record)
	m.mutex.Unlock()

	m.logger.Info("Stored new credential", zap.Time("expiresAt", record.ExpiresAt))
	return nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.record != nil && m.state == StateValid && !m.record.Valid(m.now(), m.margin) {
		return StateExpired
	}
	return m.state
}

// Record returns a copy of the current record, loading it if needed.
func (m *Manager) Record() (*TokenRecord, error) {
	return m.current()
}

// TokenSource adapts the manager to oauth2.TokenSource.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, manager: m}
}

type tokenSource struct {
	ctx     context.Context
	manager *Manager
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	return s.manager.ValidToken(s.ctx)
}

// current returns a copy of the cached record, loading the store on first use.
// While authorization is required it re-reads the store so an external login
// (another process running the authorization flow) is picked up.
func (m *Manager) current() (*TokenRecord, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	switch m.state {
	case StateUninitialized:
		m.load()
	case StateAuthRequired:
		m.reload()
	}

	if m.state == StateAuthRequired || m.record == nil {
		return nil, fmt.Errorf("%w: no usable credential cached", ErrAuthenticationRequired)
	}

	m.state = m.stateOf(m.record)
	return m.record.Clone(), nil
}

// load must be called with m.mutex held.
func (m *Manager) load() {
	m.state = StateLoading

	record, err := m.store.Load()
	switch {
	case err != nil:
		m.logger.Warn("Token cache unreadable, authorization required", zap.Error(err))
		m.state = StateAuthRequired
	case record == nil || record.AccessToken == "":
		m.logger.Info("No cached credential, authorization required")
		m.state = StateAuthRequired
	default:
		m.record = record
		m.state = m.stateOf(record)
		m.logger.Debug("Loaded cached credential",
			zap.Stringer("state", m.state),
			zap.Time("expiresAt", record.ExpiresAt))
	}
}

// reload must be called with m.mutex held.
func (m *Manager) reload() {
	record, err := m.store.Load()
	if err != nil || record == nil || record.AccessToken == "" {
		return
	}
	if m.rejected != "" && record.RefreshToken == m.rejected {
		return
	}
	if m.rejected == "" && m.record != nil && record.RefreshToken == m.record.RefreshToken {
		return
	}

	m.logger.Info("Picked up new credential from store")
	m.record = record
	m.rejected = ""
	m.state = m.stateOf(record)
}

func (m *Manager) stateOf(record *TokenRecord) State {
	if record.Valid(m.now(), m.margin) {
		return StateValid
	}
	return StateExpired
}

// refresh must be called with m.refreshMutex held.
func (m *Manager) refresh(ctx context.Context, record *TokenRecord) (*oauth2.Token, error) {
	if record.RefreshToken == "" {
		m.requireAuth(record.RefreshToken)
		return nil, fmt.Errorf("%w: no refresh token cached", ErrAuthenticationRequired)
	}

	m.logger.Info("Refreshing access token", zap.Time("expiresAt", record.ExpiresAt))

	token, err := m.provider.Refresh(ctx, record.Token())
	if err != nil {
		if isRejectedGrant(err) {
			m.logger.Warn("Refresh token rejected, authorization required", zap.Error(err))
			m.requireAuth(record.RefreshToken)
			return nil, fmt.Errorf("%w: refresh token rejected: %v", ErrAuthenticationRequired, err)
		}
		m.recordRefresh("error")
		m.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, fmt.Errorf("refreshing access token: %w", err)
	}

	next := RecordFromToken(token)
	if next.RefreshToken == "" {
		next.RefreshToken = record.RefreshToken
	}
	if len(next.Scopes) == 0 {
		next.Scopes = record.Scopes
	}
	if !next.Valid(m.now(), m.margin) {
		m.recordRefresh("error")
		return nil, fmt.Errorf("refreshed token expires at %s, inside the safety margin", next.ExpiresAt)
	}

	// A token that cannot be cached is still used by this process.
	status := "ok"
	if err := m.store.Save(next); err != nil {
		status = "persist_error"
		m.logger.Error("Failed to persist refreshed token", zap.Error(err))
	}

	m.mutex.Lock()
	m.record = next.Clone()
	m.state = StateValid
	m.mutex.Unlock()

	m.recordRefresh(status)
	m.logger.Info("Access token refreshed", zap.Time("expiresAt", next.ExpiresAt))
	return next.Token(), nil
}

func (m *Manager) requireAuth(rejected string) {
	m.mutex.Lock()
	m.state = StateAuthRequired
	m.rejected = rejected
	m.mutex.Unlock()
	m.recordRefresh("auth_required")
}

func (m *Manager) recordRefresh(status string) {
	if m.metrics != nil {
		m.metrics.RecordTokenRefresh(status)
	}
}

// isRejectedGrant reports whether the token endpoint refused the refresh token
// or client, as opposed to a transport failure.
func isRejectedGrant(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return false
	}
	switch retrieveErr.ErrorCode {
	case "invalid_grant", "invalid_client", "unauthorized_client":
		return true
	}
	if retrieveErr.Response != nil {
		switch retrieveErr.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized:
			return true
		}
	}
	return false
}
