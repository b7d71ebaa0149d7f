// Package session owns the client-side authentication state: who is signed
// in, which linked accounts are reachable, and the durable session token.
//
// The Manager is the only writer. It moves through three states:
// Initializing (loading=true, exactly once, until CheckAuth resolves),
// then Anonymous or Authenticated for the rest of the process lifetime.
// Readers take immutable Snapshots and must gate on Loading before trusting
// IsAuthenticated.
//
// Error propagation is a per-operation contract, not an accident:
// Login, CheckAuth and SwitchAccount swallow every failure after emitting a
// notification; Register notifies and then rethrows so the registration
// form can stay open; Logout never fails.
package session

import (
	"context"
	"strings"
	"sync"

	"badyet/internal/api"
	"badyet/internal/core"
	"badyet/internal/log"
	"badyet/internal/notify"
)

// TokenStore is the durable single-slot credential storage consumed by the
// Manager. An empty token with nil error means "nothing stored".
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Snapshot is an immutable view of the session for readers.
type Snapshot struct {
	CurrentUser     *core.User
	IsAuthenticated bool
	ActiveAccounts  []core.LinkedAccount
	Loading         bool
}

// Manager is the session state machine.
type Manager struct {
	store        TokenStore
	remote       api.SessionAPI
	sink         notify.Sink
	logger       *log.Logger
	avatarOrigin string

	mu            sync.Mutex
	currentUser   *core.User
	authenticated bool
	accounts      []core.LinkedAccount
	loading       bool

	checkOnce sync.Once
}

// NewManager creates a Manager in the Initializing state. avatarOrigin is
// the origin prefixed onto relative avatar paths (normally the API base
// URL). CheckAuth must be called once before the session is served.
func NewManager(store TokenStore, remote api.SessionAPI, sink notify.Sink, avatarOrigin string, logger *log.Logger) *Manager {
	if sink == nil {
		sink = notify.Discard{}
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentSession)
	}
	return &Manager{
		store:        store,
		remote:       remote,
		sink:         sink,
		logger:       logger,
		avatarOrigin: strings.TrimRight(avatarOrigin, "/"),
		loading:      true,
	}
}

// Snapshot returns a copy of the current session state. The copy is safe to
// hold across renders; it never mutates.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		IsAuthenticated: m.authenticated,
		Loading:         m.loading,
	}
	if m.currentUser != nil {
		u := *m.currentUser
		snap.CurrentUser = &u
	}
	if len(m.accounts) > 0 {
		snap.ActiveAccounts = make([]core.LinkedAccount, len(m.accounts))
		copy(snap.ActiveAccounts, m.accounts)
	}
	return snap
}

// CheckAuth resolves the Initializing state from the stored credential.
// It runs its body exactly once; later calls return immediately. All
// failures resolve to Anonymous — startup never blocks on a bad token.
func (m *Manager) CheckAuth(ctx context.Context) {
	m.checkOnce.Do(func() { m.checkAuth(ctx) })
}

func (m *Manager) checkAuth(ctx context.Context) {
	// Whatever happens below, the loading flag drops exactly once.
	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	token, err := m.store.Token(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "Credential store unreadable at startup",
			log.FieldOperation, log.OpCheckAuth, log.FieldError, err.Error())
		return
	}
	if token == "" {
		m.logger.InfoContext(ctx, "No stored credential, starting anonymous",
			log.FieldOperation, log.OpCheckAuth)
		return
	}

	user, err := m.remote.CurrentUser(ctx)
	if err != nil {
		// Expired or revoked token: drop it so the next startup is clean.
		m.logger.WarnContext(ctx, "Stored credential rejected, clearing it",
			log.FieldOperation, log.OpCheckAuth, log.FieldError, err.Error())
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.logger.ErrorContext(ctx, "Failed to clear rejected credential",
				log.FieldOperation, log.OpCheckAuth, log.FieldError, clearErr.Error())
		}
		return
	}

	m.normalizeAvatar(&user)

	m.mu.Lock()
	m.currentUser = &user
	m.authenticated = true
	m.mu.Unlock()

	// Linked accounts are best-effort at startup; a failure here does not
	// roll back authentication.
	accounts, err := m.remote.ActiveAccounts(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "Could not fetch linked accounts",
			log.FieldOperation, log.OpCheckAuth, log.FieldError, err.Error())
	} else {
		m.mu.Lock()
		m.accounts = accounts
		m.mu.Unlock()
	}

	m.logger.InfoContext(ctx, "Session restored from stored credential",
		log.FieldOperation, log.OpCheckAuth,
		log.FieldUserID, user.ID, log.FieldUserEmail, user.Email)
}

// Login authenticates with email/password. Every failure is swallowed after
// a "Login Failed" notification; on success the token is persisted, the
// user profile loaded, and a welcome notification emitted.
func (m *Manager) Login(ctx context.Context, email, password string) {
	result, err := m.remote.Login(ctx, email, password)
	if err != nil {
		m.loginFailed(ctx, err)
		return
	}
	if result.Token == "" {
		m.loginFailed(ctx, ErrNoToken)
		return
	}

	// Persist first: the profile fetch below authenticates with the
	// stored token.
	if err := m.store.Save(ctx, result.Token); err != nil {
		m.loginFailed(ctx, err)
		return
	}

	user, err := m.remote.CurrentUser(ctx)
	if err != nil {
		// The token was written but the login did not complete; remove it
		// so the store only ever holds credentials of finished logins.
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.logger.ErrorContext(ctx, "Failed to roll back credential",
				log.FieldOperation, log.OpLogin, log.FieldError, clearErr.Error())
		}
		m.loginFailed(ctx, err)
		return
	}

	m.normalizeAvatar(&user)

	m.mu.Lock()
	m.currentUser = &user
	m.authenticated = true
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "Login succeeded",
		log.FieldOperation, log.OpLogin,
		log.FieldUserID, user.ID, log.FieldUserEmail, user.Email)
	m.sink.Notify(ctx, notify.Success("Login Successful", "Welcome back, "+user.Name+"!"))
}

func (m *Manager) loginFailed(ctx context.Context, err error) {
	// The underlying error is diagnostic only; the user always sees the
	// same generic message.
	m.logger.WarnContext(ctx, "Login failed",
		log.FieldOperation, log.OpLogin, log.FieldError, err.Error())
	m.sink.Notify(ctx, notify.Failure("Login Failed", "Invalid email or password. Please try again."))
}

// Register creates a new account. On success the session is authenticated
// as the fresh user and the linked-account list is seeded with exactly that
// account — no server round-trip, registration guarantees a single account.
// On failure the error is returned to the caller after the notification, so
// the registration form can keep itself open.
func (m *Manager) Register(ctx context.Context, email, password, name string) error {
	result, err := m.remote.Register(ctx, email, password, name)
	if err != nil {
		return m.registerFailed(ctx, err)
	}
	if result.Token == "" {
		return m.registerFailed(ctx, ErrNoToken)
	}
	if result.User == nil {
		return m.registerFailed(ctx, ErrNoUser)
	}

	if err := m.store.Save(ctx, result.Token); err != nil {
		return m.registerFailed(ctx, err)
	}

	user := *result.User
	m.normalizeAvatar(&user)

	m.mu.Lock()
	m.currentUser = &user
	m.authenticated = true
	m.accounts = []core.LinkedAccount{{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Avatar:   user.Avatar,
		IsActive: true,
	}}
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "Registration succeeded",
		log.FieldOperation, log.OpRegister,
		log.FieldUserID, user.ID, log.FieldUserEmail, user.Email)
	m.sink.Notify(ctx, notify.Success("Registration Successful", "Your account has been created successfully!"))
	return nil
}

func (m *Manager) registerFailed(ctx context.Context, err error) error {
	m.logger.WarnContext(ctx, "Registration failed",
		log.FieldOperation, log.OpRegister, log.FieldError, err.Error())
	m.sink.Notify(ctx, notify.Failure("Registration Failed", "Could not create your account. Please try again."))
	return err
}

// Logout ends the session. The server call is best-effort: local state and
// the stored token are cleared no matter what, so logout can never get
// stuck behind a flaky backend. Calling it while anonymous is a no-op that
// still succeeds.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.remote.Logout(ctx); err != nil {
		m.logger.WarnContext(ctx, "Server-side logout failed, clearing local session anyway",
			log.FieldOperation, log.OpLogout, log.FieldError, err.Error())
	}

	if err := m.store.Clear(ctx); err != nil {
		m.logger.ErrorContext(ctx, "Failed to clear stored credential",
			log.FieldOperation, log.OpLogout, log.FieldError, err.Error())
	}

	m.mu.Lock()
	m.currentUser = nil
	m.authenticated = false
	m.accounts = nil
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "Logged out", log.FieldOperation, log.OpLogout)
	m.sink.Notify(ctx, notify.Success("Logout Successful", "You have been logged out successfully."))
}

// SwitchAccount exchanges the current token for one scoped to accountID and
// reloads the current user. The linked-account list is deliberately not
// refreshed: the server is its source of truth per login, and the set of
// reachable accounts does not change by switching between them. Failures
// are swallowed after an "Account Switch Failed" notification.
func (m *Manager) SwitchAccount(ctx context.Context, accountID string) {
	result, err := m.remote.SwitchAccount(ctx, accountID)
	if err != nil {
		m.switchFailed(ctx, accountID, err)
		return
	}
	if result.Token == "" {
		m.switchFailed(ctx, accountID, ErrNoToken)
		return
	}

	if err := m.store.Save(ctx, result.Token); err != nil {
		m.switchFailed(ctx, accountID, err)
		return
	}

	user, err := m.remote.CurrentUser(ctx)
	if err != nil {
		// The exchanged token is live on the server side, so it stays in
		// the store; only the in-memory principal is stale until the next
		// successful operation.
		m.switchFailed(ctx, accountID, err)
		return
	}

	m.normalizeAvatar(&user)

	m.mu.Lock()
	m.currentUser = &user
	m.authenticated = true
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "Switched account",
		log.FieldOperation, log.OpSwitchAccount,
		log.FieldAccountID, accountID, log.FieldUserID, user.ID)
	m.sink.Notify(ctx, notify.Success("Account Switched", "You are now using "+user.Name+"'s account."))
}

func (m *Manager) switchFailed(ctx context.Context, accountID string, err error) {
	m.logger.WarnContext(ctx, "Account switch failed",
		log.FieldOperation, log.OpSwitchAccount,
		log.FieldAccountID, accountID, log.FieldError, err.Error())
	m.sink.Notify(ctx, notify.Failure("Account Switch Failed", "Could not switch accounts. Please try again."))
}

// UpdateCurrentUser replaces the in-memory profile after an out-of-band
// update (profile edit, preference change). It only applies while
// authenticated, so the user-present-iff-authenticated invariant holds.
func (m *Manager) UpdateCurrentUser(user core.User) {
	m.normalizeAvatar(&user)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.authenticated {
		return
	}
	m.currentUser = &user
}

// normalizeAvatar makes a relative avatar path absolute against the
// configured origin. Avatars held in the session are always full URLs.
func (m *Manager) normalizeAvatar(u *core.User) {
	if u.Avatar == "" || hasURLScheme(u.Avatar) {
		return
	}
	path := u.Avatar
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Avatar = m.avatarOrigin + path
}

func hasURLScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
