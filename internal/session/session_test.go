package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"badyet/internal/api"
	"badyet/internal/core"
	"badyet/internal/notify"
)

// memStore is an in-memory TokenStore for tests.
type memStore struct {
	mu      sync.Mutex
	token   string
	saveErr error
	readErr error
}

func (s *memStore) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return "", s.readErr
	}
	return s.token, nil
}

func (s *memStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.token = token
	return nil
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *memStore) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// fakeAPI is a scriptable SessionAPI.
type fakeAPI struct {
	loginResult    api.AuthResult
	loginErr       error
	registerResult api.AuthResult
	registerErr    error
	logoutErr      error
	user           core.User
	userErr        error
	accounts       []core.LinkedAccount
	accountsErr    error
	switchResult   api.SwitchResult
	switchErr      error

	logoutCalls   int
	accountsCalls int
}

func (f *fakeAPI) Login(context.Context, string, string) (api.AuthResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeAPI) Register(context.Context, string, string, string) (api.AuthResult, error) {
	return f.registerResult, f.registerErr
}

func (f *fakeAPI) Logout(context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAPI) CurrentUser(context.Context) (core.User, error) {
	return f.user, f.userErr
}

func (f *fakeAPI) ActiveAccounts(context.Context) ([]core.LinkedAccount, error) {
	f.accountsCalls++
	return f.accounts, f.accountsErr
}

func (f *fakeAPI) SwitchAccount(context.Context, string) (api.SwitchResult, error) {
	return f.switchResult, f.switchErr
}

func newTestManager(store TokenStore, remote api.SessionAPI, sink notify.Sink) *Manager {
	return NewManager(store, remote, sink, "http://localhost:8000", nil)
}

func lastNotification(t *testing.T, f *notify.Flash) notify.Notification {
	t.Helper()
	got := f.Drain()
	if len(got) == 0 {
		t.Fatal("no notification emitted")
	}
	return got[len(got)-1]
}

func TestSnapshotStartsLoading(t *testing.T) {
	m := newTestManager(&memStore{}, &fakeAPI{}, nil)

	snap := m.Snapshot()
	if !snap.Loading {
		t.Error("new manager should be loading")
	}
	if snap.IsAuthenticated || snap.CurrentUser != nil {
		t.Error("new manager should not be authenticated")
	}
}

func TestCheckAuthNoToken(t *testing.T) {
	m := newTestManager(&memStore{}, &fakeAPI{}, nil)

	m.CheckAuth(context.Background())

	snap := m.Snapshot()
	if snap.Loading {
		t.Error("loading should be resolved")
	}
	if snap.IsAuthenticated {
		t.Error("no token must resolve to anonymous")
	}
}

func TestCheckAuthValidToken(t *testing.T) {
	store := &memStore{token: "tok-1"}
	remote := &fakeAPI{
		user: core.User{ID: "u1", Email: "ann@example.com", Name: "Ann", Avatar: "/media/ann.png"},
		accounts: []core.LinkedAccount{
			{ID: "u1", Email: "ann@example.com", Name: "Ann", IsActive: true},
			{ID: "u2", Email: "ben@example.com", Name: "Ben"},
		},
	}
	m := newTestManager(store, remote, nil)

	m.CheckAuth(context.Background())

	snap := m.Snapshot()
	if snap.Loading {
		t.Error("loading should be resolved")
	}
	if !snap.IsAuthenticated || snap.CurrentUser == nil {
		t.Fatal("valid token must authenticate")
	}
	if snap.CurrentUser.Avatar != "http://localhost:8000/media/ann.png" {
		t.Errorf("avatar = %q, want absolute URL", snap.CurrentUser.Avatar)
	}
	if len(snap.ActiveAccounts) != 2 {
		t.Errorf("accounts = %d, want 2", len(snap.ActiveAccounts))
	}
	if store.current() != "tok-1" {
		t.Errorf("token = %q, want kept", store.current())
	}
}

func TestCheckAuthRejectedTokenIsCleared(t *testing.T) {
	store := &memStore{token: "stale"}
	remote := &fakeAPI{userErr: &api.Error{StatusCode: 401, Message: "Invalid token."}}
	m := newTestManager(store, remote, nil)

	m.CheckAuth(context.Background())

	snap := m.Snapshot()
	if snap.IsAuthenticated {
		t.Error("rejected token must resolve to anonymous")
	}
	if snap.Loading {
		t.Error("loading should be resolved")
	}
	if store.current() != "" {
		t.Errorf("token = %q, want cleared", store.current())
	}
}

func TestCheckAuthRunsOnce(t *testing.T) {
	store := &memStore{token: "tok-1"}
	remote := &fakeAPI{user: core.User{ID: "u1", Name: "Ann"}}
	m := newTestManager(store, remote, nil)

	ctx := context.Background()
	m.CheckAuth(ctx)
	m.CheckAuth(ctx)
	m.CheckAuth(ctx)

	if remote.accountsCalls != 1 {
		t.Errorf("accounts fetched %d times, want 1", remote.accountsCalls)
	}
}

func TestCheckAuthAccountsFailureKeepsSession(t *testing.T) {
	store := &memStore{token: "tok-1"}
	remote := &fakeAPI{
		user:        core.User{ID: "u1", Name: "Ann"},
		accountsErr: errors.New("boom"),
	}
	m := newTestManager(store, remote, nil)

	m.CheckAuth(context.Background())

	snap := m.Snapshot()
	if !snap.IsAuthenticated {
		t.Error("accounts failure must not roll back authentication")
	}
	if len(snap.ActiveAccounts) != 0 {
		t.Errorf("accounts = %v, want empty", snap.ActiveAccounts)
	}
}

func TestLoginSuccess(t *testing.T) {
	store := &memStore{}
	remote := &fakeAPI{
		loginResult: api.AuthResult{Token: "tok-9"},
		user:        core.User{ID: "u1", Email: "ann@example.com", Name: "Ann"},
	}
	flash := notify.NewFlash(8)
	m := newTestManager(store, remote, flash)

	m.Login(context.Background(), "ann@example.com", "secret")

	snap := m.Snapshot()
	if !snap.IsAuthenticated || snap.CurrentUser == nil {
		t.Fatal("login should authenticate")
	}
	if store.current() != "tok-9" {
		t.Errorf("token = %q, want tok-9", store.current())
	}
	n := lastNotification(t, flash)
	if n.Kind != notify.KindSuccess || n.Title != "Login Successful" {
		t.Errorf("notification = %+v", n)
	}
	if n.Description != "Welcome back, Ann!" {
		t.Errorf("description = %q", n.Description)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	store := &memStore{}
	remote := &fakeAPI{loginErr: &api.Error{StatusCode: 400, Message: "Invalid Credentials"}}
	flash := notify.NewFlash(8)
	m := newTestManager(store, remote, flash)

	m.Login(context.Background(), "ann@example.com", "wrong")

	snap := m.Snapshot()
	if snap.IsAuthenticated || snap.CurrentUser != nil {
		t.Error("failed login must stay anonymous")
	}
	if store.current() != "" {
		t.Errorf("token = %q, want empty", store.current())
	}
	n := lastNotification(t, flash)
	if n.Kind != notify.KindFailure || n.Title != "Login Failed" {
		t.Errorf("notification = %+v", n)
	}
	if n.Description != "Invalid email or password. Please try again." {
		t.Errorf("description = %q", n.Description)
	}
}

func TestLoginEmptyTokenIsFailure(t *testing.T) {
	store := &memStore{}
	remote := &fakeAPI{loginResult: api.AuthResult{}}
	flash := notify.NewFlash(8)
	m := newTestManager(store, remote, flash)

	m.Login(context.Background(), "ann@example.com", "secret")

	if m.Snapshot().IsAuthenticated {
		t.Error("tokenless response must not authenticate")
	}
	if store.current() != "" {
		t.Errorf("token = %q, want empty", store.current())
	}
	if n := lastNotification(t, flash); n.Title != "Login Failed" {
		t.Errorf("notification = %+v", n)
	}
}

func TestLoginProfileFetchFailureRollsBackToken(t *testing.T) {
	store := &memStore{}
	remote := &fakeAPI{
		loginResult: api.AuthResult{Token: "tok-9"},
		userErr:     errors.New("network down"),
	}
	flash := notify.NewFlash(8)
	m := newTestManager(store, remote, flash)

	m.Login(context.Background(), "ann@example.com", "secret")

	if m.Snapshot().IsAuthenticated {
		t.Error("must not authenticate without a profile")
	}
	if store.current() != "" {
		t.Errorf("token = %q, want rolled back", store.current())
	}
	if n := lastNotification(t, flash); n.Kind != notify.KindFailure {
		t.Errorf("notification = %+v", n)
	}
}

func TestLoginStoreFailureStaysAnonymous(t *testing.T) {
	store := &memStore{saveErr: errors.New("disk full")}
	remote := &fakeAPI{
		loginResult: api.AuthResult{Token: "tok-9"},
		user:        core.User{ID: "u1", Name: "Ann"},
	}
	flash := notify.NewFlash(8)
	m := newTestManager(store, remote, flash)

	m.Login(context.Background(), "ann@example.com", "secret")

	if m.Snapshot().IsAuthenticated {
		t.Error("unsaved token must not authenticate")
	}
	if n := lastNotification(t, flash); n.Title != "Login Failed" {
		t.Errorf("notification = %+v", n)
	}
}

func TestRegisterSuccessSeedsAccounts(t *testing.T) {
	store := &memStore{}
	remote := &fakeAPI{
		registerResult: api.AuthResult{
			Token: "tok-new",
			User:  &core.User{ID: "u7", Email: "new@example.com", Name: "Newbie", Avatar: "/media/default.png"},
		},
	}
	flash := notify.NewFlash(8)
	m := newTestManager(store, remote, flash)

	err := m.Register(context.Background(), "new@example.com", "longenough", "Newbie")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	snap := m.Snapshot()
	if !snap.IsAuthenticated || snap.CurrentUser == nil {
		t.Fatal("registration should authenticate")
	}
	if snap.CurrentUser.Avatar != "http://localhost:8000/media/default.png" {
		t.Errorf("avatar = %q, want absolute URL", snap.CurrentUser.Avatar)
	}
	if len(snap.ActiveAccounts) != 1 {
		t.Fatalf("accounts = %d, want exactly the new account", len(snap.ActiveAccounts))
	}
	acct := snap.ActiveAccounts[0]
	if acct.ID != "u7" || !acct.IsActive {
		t.Errorf("seeded account = %+v", acct)
	}
	if store.current() != "tok-new" {
		t.Errorf("token = %q, want tok-new", store.current())
	}
	if n := lastNotification(t, flash); n.Title != "Registration Successful" {
		t.Errorf("notification = %+v", n)
	}
}

func TestRegisterFailureRethrows(t *testing.T) {
	apiErr := &api.Error{StatusCode: 400, Message: "email already registered"}
	remote := &fakeAPI{registerErr: apiErr}
	flash := notify.NewFlash(8)
	m := newTestManager(&memStore{}, remote, flash)

	err := m.Register(context.Background(), "dup@example.com", "longenough", "Dup")
	if !errors.Is(err, apiErr) {
		t.Fatalf("err = %v, want the API error back", err)
	}
	if m.Snapshot().IsAuthenticated {
		t.Error("failed registration must stay anonymous")
	}
	n := lastNotification(t, flash)
	if n.Title != "Registration Failed" {
		t.Errorf("notification = %+v", n)
	}
	if n.Description != "Could not create your account. Please try again." {
		t.Errorf("description = %q", n.Description)
	}
}

func TestRegisterTokenlessResponseRethrows(t *testing.T) {
	remote := &fakeAPI{registerResult: api.AuthResult{User: &core.User{ID: "u7"}}}
	m := newTestManager(&memStore{}, remote, notify.NewFlash(8))

	err := m.Register(context.Background(), "new@example.com", "longenough", "Newbie")
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("err = %v, want ErrNoToken", err)
	}
}

func TestRegisterUserlessResponseRethrows(t *testing.T) {
	remote := &fakeAPI{registerResult: api.AuthResult{Token: "tok-new"}}
	m := newTestManager(&memStore{}, remote, notify.NewFlash(8))

	err := m.Register(context.Background(), "new@example.com", "longenough", "Newbie")
	if !errors.Is(err, ErrNoUser) {
		t.Fatalf("err = %v, want ErrNoUser", err)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	store := &memStore{token: "tok-1"}
	remote := &fakeAPI{user: core.User{ID: "u1", Name: "Ann"},
		accounts: []core.LinkedAccount{{ID: "u1", IsActive: true}}}
	flash := notify.NewFlash(8)
	m := newTestManager(store, remote, flash)
	m.CheckAuth(context.Background())
	flash.Drain()

	m.Logout(context.Background())

	snap := m.Snapshot()
	if snap.IsAuthenticated || snap.CurrentUser != nil || len(snap.ActiveAccounts) != 0 {
		t.Errorf("session not fully cleared: %+v", snap)
	}
	if store.current() != "" {
		t.Errorf("token = %q, want cleared", store.current())
	}
	if n := lastNotification(t, flash); n.Title != "Logout Successful" {
		t.Errorf("notification = %+v", n)
	}
	if n := flash.Len(); n != 0 {
		t.Errorf("flash still holds %d entries", n)
	}
}

func TestLogoutSurvivesServerFailure(t *testing.T) {
	store := &memStore{token: "tok-1"}
	remote := &fakeAPI{
		user:      core.User{ID: "u1", Name: "Ann"},
		logoutErr: errors.New("server unreachable"),
	}
	flash := notify.NewFlash(8)
	m := newTestManager(store, remote, flash)
	m.CheckAuth(context.Background())
	flash.Drain()

	m.Logout(context.Background())

	if m.Snapshot().IsAuthenticated {
		t.Error("logout must clear local state even when the server call fails")
	}
	if store.current() != "" {
		t.Errorf("token = %q, want cleared", store.current())
	}
	if n := lastNotification(t, flash); n.Kind != notify.KindSuccess {
		t.Errorf("notification = %+v, want success", n)
	}
}

func TestLogoutWhileAnonymousIsIdempotent(t *testing.T) {
	store := &memStore{}
	flash := notify.NewFlash(8)
	m := newTestManager(store, &fakeAPI{}, flash)

	m.Logout(context.Background())
	m.Logout(context.Background())

	if m.Snapshot().IsAuthenticated {
		t.Error("still anonymous")
	}
	if got := flash.Drain(); len(got) != 2 {
		t.Errorf("notifications = %d, want one per call", len(got))
	}
}

func TestSwitchAccountSuccess(t *testing.T) {
	store := &memStore{token: "tok-ann"}
	remote := &fakeAPI{
		user: core.User{ID: "u1", Name: "Ann"},
		accounts: []core.LinkedAccount{
			{ID: "u1", Name: "Ann", IsActive: true},
			{ID: "u2", Name: "Ben"},
		},
	}
	flash := notify.NewFlash(8)
	m := newTestManager(store, remote, flash)
	m.CheckAuth(context.Background())
	flash.Drain()

	remote.switchResult = api.SwitchResult{Token: "tok-ben"}
	remote.user = core.User{ID: "u2", Name: "Ben"}

	m.SwitchAccount(context.Background(), "u2")

	snap := m.Snapshot()
	if snap.CurrentUser == nil || snap.CurrentUser.ID != "u2" {
		t.Fatalf("current user = %+v, want Ben", snap.CurrentUser)
	}
	if store.current() != "tok-ben" {
		t.Errorf("token = %q, want tok-ben", store.current())
	}
	// The linked-account list belongs to the login chain, not to the
	// selected account; it must survive the switch untouched.
	if len(snap.ActiveAccounts) != 2 {
		t.Errorf("accounts = %d, want 2", len(snap.ActiveAccounts))
	}
	n := lastNotification(t, flash)
	if n.Title != "Account Switched" || n.Description != "You are now using Ben's account." {
		t.Errorf("notification = %+v", n)
	}
}

func TestSwitchAccountFailureKeepsSession(t *testing.T) {
	store := &memStore{token: "tok-ann"}
	remote := &fakeAPI{user: core.User{ID: "u1", Name: "Ann"}}
	flash := notify.NewFlash(8)
	m := newTestManager(store, remote, flash)
	m.CheckAuth(context.Background())
	flash.Drain()

	remote.switchErr = &api.Error{StatusCode: 403, Message: "not linked"}

	m.SwitchAccount(context.Background(), "u9")

	snap := m.Snapshot()
	if snap.CurrentUser == nil || snap.CurrentUser.ID != "u1" {
		t.Errorf("current user changed on failure: %+v", snap.CurrentUser)
	}
	if store.current() != "tok-ann" {
		t.Errorf("token = %q, want unchanged", store.current())
	}
	n := lastNotification(t, flash)
	if n.Title != "Account Switch Failed" {
		t.Errorf("notification = %+v", n)
	}
}

func TestUpdateCurrentUser(t *testing.T) {
	store := &memStore{token: "tok-1"}
	remote := &fakeAPI{user: core.User{ID: "u1", Name: "Ann"}}
	m := newTestManager(store, remote, nil)
	m.CheckAuth(context.Background())

	m.UpdateCurrentUser(core.User{ID: "u1", Name: "Ann Lee", Avatar: "/media/new.png"})

	snap := m.Snapshot()
	if snap.CurrentUser.Name != "Ann Lee" {
		t.Errorf("name = %q", snap.CurrentUser.Name)
	}
	if snap.CurrentUser.Avatar != "http://localhost:8000/media/new.png" {
		t.Errorf("avatar = %q, want normalized", snap.CurrentUser.Avatar)
	}
}

func TestUpdateCurrentUserIgnoredWhileAnonymous(t *testing.T) {
	m := newTestManager(&memStore{}, &fakeAPI{}, nil)
	m.CheckAuth(context.Background())

	m.UpdateCurrentUser(core.User{ID: "u1", Name: "Ghost"})

	if snap := m.Snapshot(); snap.CurrentUser != nil {
		t.Errorf("anonymous session picked up a user: %+v", snap.CurrentUser)
	}
}

func TestAvatarNormalization(t *testing.T) {
	tests := []struct {
		name   string
		avatar string
		want   string
	}{
		{"relative path", "/media/pic.png", "http://localhost:8000/media/pic.png"},
		{"bare path", "media/pic.png", "http://localhost:8000/media/pic.png"},
		{"already absolute", "https://cdn.example.com/pic.png", "https://cdn.example.com/pic.png"},
		{"http absolute", "http://other.example.com/pic.png", "http://other.example.com/pic.png"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{token: "tok-1"}
			remote := &fakeAPI{user: core.User{ID: "u1", Name: "Ann", Avatar: tt.avatar}}
			m := newTestManager(store, remote, nil)
			m.CheckAuth(context.Background())

			got := m.Snapshot().CurrentUser.Avatar
			if got != tt.want {
				t.Errorf("avatar = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	store := &memStore{token: "tok-1"}
	remote := &fakeAPI{
		user:     core.User{ID: "u1", Name: "Ann"},
		accounts: []core.LinkedAccount{{ID: "u1", IsActive: true}},
	}
	m := newTestManager(store, remote, nil)
	m.CheckAuth(context.Background())

	snap := m.Snapshot()
	snap.CurrentUser.Name = "Mutated"
	snap.ActiveAccounts[0].ID = "mutated"

	fresh := m.Snapshot()
	if fresh.CurrentUser.Name != "Ann" || fresh.ActiveAccounts[0].ID != "u1" {
		t.Error("snapshot mutation leaked into the manager")
	}
}
