package api

import (
	"context"

	"badyet/internal/core"
)

// AuthResult is the payload of a successful login or registration call.
// Token may be empty even on a 2xx response; callers must treat that as a
// failed authentication.
type AuthResult struct {
	Token string
	User  *core.User
}

// SwitchResult is the payload of a successful account switch.
type SwitchResult struct {
	Token string
}

type (
	// SessionAPI is the remote authentication surface consumed by the
	// session manager.
	SessionAPI interface {
		Login(ctx context.Context, email, password string) (AuthResult, error)
		Register(ctx context.Context, email, password, name string) (AuthResult, error)
		Logout(ctx context.Context) error
		CurrentUser(ctx context.Context) (core.User, error)
		ActiveAccounts(ctx context.Context) ([]core.LinkedAccount, error)
		SwitchAccount(ctx context.Context, accountID string) (SwitchResult, error)
	}

	// BudgetAPI is the budgeting surface consumed by the dashboard and
	// budget handlers.
	BudgetAPI interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		DeleteBudget(ctx context.Context, id string) error
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// ProfileAPI covers the account-settings endpoints.
	ProfileAPI interface {
		UpdateProfile(ctx context.Context, name string) (core.User, error)
		ChangePassword(ctx context.Context, oldPassword, newPassword string) error
		UpdatePreferences(ctx context.Context, p core.Preferences) (core.Preferences, error)
	}
)

// TokenSource supplies the stored credential for authenticated calls.
// An empty token with a nil error means "no credential stored".
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
