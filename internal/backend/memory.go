package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"badyet/internal/api"
	"badyet/internal/core"
)

// SeedEmail and SeedPassword are the credentials of the demo user the
// memory backend starts with.
const (
	SeedEmail    = "demo@badyet.local"
	SeedPassword = "demo1234"
)

// Memory is an in-process stand-in for the remote API, used for local
// development and tests. It speaks the same contracts as the remote client,
// including token semantics: operations resolve the caller through the
// TokenSource, exactly like the HTTP client would via the Authorization
// header.
type Memory struct {
	tokens api.TokenSource

	mu       sync.Mutex
	users    map[string]*memUser // keyed by email
	byToken  map[string]string   // token -> email
	budgets  map[string][]core.Budget
	txs      map[string][]core.Transaction
	nextID   int
	nextUser int
}

type memUser struct {
	user     core.User
	password string
	linked   []string // emails reachable from this account
}

var _ Backend = (*Memory)(nil)

// NewMemory creates a memory backend seeded with a demo user, a linked
// family account, and a handful of budgets and transactions.
func NewMemory(tokens api.TokenSource) *Memory {
	m := &Memory{
		tokens:  tokens,
		users:   make(map[string]*memUser),
		byToken: make(map[string]string),
		budgets: make(map[string][]core.Budget),
		txs:     make(map[string][]core.Transaction),
	}
	m.seed()
	return m
}

func (m *Memory) seed() {
	demo := &memUser{
		user: core.User{
			ID:     "1",
			Email:  SeedEmail,
			Name:   "Demo",
			Avatar: "/media/avatars/demo.png",
			Preferences: &core.Preferences{
				Currency: "USD",
				Notifications: &core.NotificationSettings{
					EmailAlerts:  true,
					BudgetAlerts: true,
				},
			},
		},
		password: SeedPassword,
		linked:   []string{"family@badyet.local"},
	}
	family := &memUser{
		user: core.User{
			ID:     "2",
			Email:  "family@badyet.local",
			Name:   "Family",
			Avatar: "/media/avatars/family.png",
		},
		password: SeedPassword,
		linked:   []string{SeedEmail},
	}
	m.users[demo.user.Email] = demo
	m.users[family.user.Email] = family
	m.nextUser = 2

	m.budgets[demo.user.Email] = []core.Budget{
		{
			ID:        "b1",
			Category:  "food",
			Period:    core.PeriodMonthly,
			Amount:    core.Money{Cents: 60000},
			Spent:     core.Money{Cents: 42500},
			StartDate: core.NewDate(2026, 8, 1),
			EndDate:   core.NewDate(2026, 8, 31),
		},
		{
			ID:        "b2",
			Category:  "housing",
			Period:    core.PeriodMonthly,
			Amount:    core.Money{Cents: 150000},
			Spent:     core.Money{Cents: 150000},
			StartDate: core.NewDate(2026, 8, 1),
			EndDate:   core.NewDate(2026, 8, 31),
		},
	}
	m.txs[demo.user.Email] = []core.Transaction{
		{ID: "t1", Type: "expense", Category: "food", Amount: core.Money{Cents: 12500}, Description: "Groceries", Date: core.NewDate(2026, 8, 3)},
		{ID: "t2", Type: "expense", Category: "food", Amount: core.Money{Cents: 30000}, Description: "Dining out", Date: core.NewDate(2026, 8, 14)},
		{ID: "t3", Type: "income", Category: "business", Amount: core.Money{Cents: 420000}, Description: "Salary", Date: core.NewDate(2026, 8, 1)},
	}
}

func (m *Memory) issueToken(email string) string {
	m.nextID++
	token := fmt.Sprintf("mem-token-%d", m.nextID)
	m.byToken[token] = email
	return token
}

// caller resolves the current principal from the TokenSource. Must be
// called with m.mu held.
func (m *Memory) caller(ctx context.Context) (*memUser, error) {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	email, ok := m.byToken[token]
	if token == "" || !ok {
		return nil, &api.Error{StatusCode: 401, Message: "Invalid token."}
	}
	return m.users[email], nil
}

func (m *Memory) Login(_ context.Context, email, password string) (api.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok || u.password != password {
		return api.AuthResult{}, &api.Error{StatusCode: 400, Message: "Invalid Credentials"}
	}
	user := u.user
	return api.AuthResult{Token: m.issueToken(u.user.Email), User: &user}, nil
}

func (m *Memory) Register(_ context.Context, email, password, name string) (api.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := core.ValidateRegistration(email, password, name); err != nil {
		return api.AuthResult{}, &api.Error{StatusCode: 400, Message: err.Error()}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[email]; exists {
		return api.AuthResult{}, &api.Error{StatusCode: 400, Message: "A user with that email already exists."}
	}

	m.nextUser++
	u := &memUser{
		user: core.User{
			ID:    fmt.Sprintf("%d", m.nextUser),
			Email: email,
			Name:  strings.TrimSpace(name),
		},
		password: password,
	}
	m.users[email] = u

	user := u.user
	return api.AuthResult{Token: m.issueToken(email), User: &user}, nil
}

func (m *Memory) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.tokens.Token(ctx)
	if err != nil {
		return err
	}
	delete(m.byToken, token)
	return nil
}

func (m *Memory) CurrentUser(ctx context.Context) (core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.caller(ctx)
	if err != nil {
		return core.User{}, err
	}
	return u.user, nil
}

func (m *Memory) ActiveAccounts(ctx context.Context) ([]core.LinkedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}

	accounts := []core.LinkedAccount{{
		ID:       u.user.ID,
		Email:    u.user.Email,
		Name:     u.user.Name,
		Avatar:   u.user.Avatar,
		IsActive: true,
	}}
	for _, email := range u.linked {
		linked, ok := m.users[email]
		if !ok {
			continue
		}
		accounts = append(accounts, core.LinkedAccount{
			ID:     linked.user.ID,
			Email:  linked.user.Email,
			Name:   linked.user.Name,
			Avatar: linked.user.Avatar,
		})
	}
	return accounts, nil
}

func (m *Memory) SwitchAccount(ctx context.Context, accountID string) (api.SwitchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.caller(ctx)
	if err != nil {
		return api.SwitchResult{}, err
	}

	for _, email := range u.linked {
		linked, ok := m.users[email]
		if ok && linked.user.ID == accountID {
			return api.SwitchResult{Token: m.issueToken(email)}, nil
		}
	}
	return api.SwitchResult{}, &api.Error{StatusCode: 403, Message: "Account is not linked to the current user."}
}

func (m *Memory) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}

	budgets := m.budgets[u.user.Email]
	out := make([]core.Budget, len(budgets))
	copy(out, budgets)
	return out, nil
}

func (m *Memory) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, &api.Error{StatusCode: 400, Message: err.Error()}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.caller(ctx)
	if err != nil {
		return core.Budget{}, err
	}

	m.nextID++
	b.ID = fmt.Sprintf("b%d", m.nextID)
	b.Spent = m.spentFor(u.user.Email, b)
	m.budgets[u.user.Email] = append(m.budgets[u.user.Email], b)
	return b, nil
}

func (m *Memory) DeleteBudget(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.caller(ctx)
	if err != nil {
		return err
	}

	budgets := m.budgets[u.user.Email]
	for i, b := range budgets {
		if b.ID == id {
			m.budgets[u.user.Email] = append(budgets[:i], budgets[i+1:]...)
			return nil
		}
	}
	return &api.Error{StatusCode: 404, Message: "Budget not found."}
}

func (m *Memory) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}

	txs := m.txs[u.user.Email]
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	return out, nil
}

// spentFor sums the user's expenses in the budget's category and window.
func (m *Memory) spentFor(email string, b core.Budget) core.Money {
	var cents int64
	for _, tx := range m.txs[email] {
		if tx.Type != "expense" || tx.Category != b.Category {
			continue
		}
		if tx.Date.Before(b.StartDate.Time) || tx.Date.After(b.EndDate.Time) {
			continue
		}
		cents += tx.Amount.Cents
	}
	return core.Money{Cents: cents}
}

func (m *Memory) UpdateProfile(ctx context.Context, name string) (core.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.User{}, &api.Error{StatusCode: 400, Message: "Name must not be empty."}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.caller(ctx)
	if err != nil {
		return core.User{}, err
	}
	u.user.Name = name
	return u.user, nil
}

func (m *Memory) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return &api.Error{StatusCode: 400, Message: "Password too short."}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.caller(ctx)
	if err != nil {
		return err
	}
	if u.password != oldPassword {
		return &api.Error{StatusCode: 400, Message: "Current password is incorrect."}
	}
	u.password = newPassword
	return nil
}

func (m *Memory) UpdatePreferences(ctx context.Context, p core.Preferences) (core.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.caller(ctx)
	if err != nil {
		return core.Preferences{}, err
	}
	prefs := p
	u.user.Preferences = &prefs
	return prefs, nil
}
