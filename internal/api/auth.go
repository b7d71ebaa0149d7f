package api

import (
	"context"
	"net/http"

	"badyet/internal/core"
	"badyet/internal/log"
)

// Login authenticates with email/password. A 2xx response without a token
// is returned as-is; deciding whether that is fatal belongs to the session
// layer.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var resp struct {
		Token string    `json:"token"`
		User  *wireUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login/", req, &resp, false); err != nil {
		return AuthResult{}, err
	}

	result := AuthResult{Token: resp.Token}
	if resp.User != nil {
		u := resp.User.toCore()
		result.User = &u
	}
	return result, nil
}

// Register creates a new account. The backend answers with both the token
// and the freshly created user.
func (c *Client) Register(ctx context.Context, email, password, name string) (AuthResult, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}{Email: email, Password: password, Name: name}

	var resp struct {
		Token string    `json:"token"`
		User  *wireUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register/", req, &resp, false); err != nil {
		return AuthResult{}, err
	}

	result := AuthResult{Token: resp.Token}
	if resp.User != nil {
		u := resp.User.toCore()
		result.User = &u
	}
	return result, nil
}

// Logout invalidates the server-side session. The response body is ignored.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout/", nil, nil, true)
}

// CurrentUser fetches the profile of the principal behind the stored token.
func (c *Client) CurrentUser(ctx context.Context) (core.User, error) {
	var resp wireUser
	if err := c.get(ctx, "/api/auth/user/", &resp); err != nil {
		return core.User{}, err
	}
	return resp.toCore(), nil
}

// ActiveAccounts lists the accounts reachable from the current credential
// chain, in server order.
func (c *Client) ActiveAccounts(ctx context.Context) ([]core.LinkedAccount, error) {
	var resp []wireAccount
	if err := c.get(ctx, "/api/auth/active-accounts/", &resp); err != nil {
		return nil, err
	}

	accounts := make([]core.LinkedAccount, len(resp))
	for i, a := range resp {
		accounts[i] = a.toCore()
	}
	return accounts, nil
}

// SwitchAccount exchanges the current token for one scoped to accountID.
func (c *Client) SwitchAccount(ctx context.Context, accountID string) (SwitchResult, error) {
	req := struct {
		AccountID string `json:"account_id"`
	}{AccountID: accountID}

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/switch-account/", req, &resp, true); err != nil {
		return SwitchResult{}, err
	}

	c.logger.DebugContext(ctx, "Account switch token issued", log.FieldAccountID, accountID)
	return SwitchResult{Token: resp.Token}, nil
}

// UpdateProfile changes the display name of the current user.
func (c *Client) UpdateProfile(ctx context.Context, name string) (core.User, error) {
	req := struct {
		Name string `json:"name"`
	}{Name: name}

	var resp wireUser
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile/update/", req, &resp, true); err != nil {
		return core.User{}, err
	}
	return resp.toCore(), nil
}

// ChangePassword rotates the account password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	req := struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}{OldPassword: oldPassword, NewPassword: newPassword}

	return c.do(ctx, http.MethodPost, "/api/auth/password/change/", req, nil, true)
}

// UpdatePreferences stores notification and currency preferences.
func (c *Client) UpdatePreferences(ctx context.Context, p core.Preferences) (core.Preferences, error) {
	prefs := wirePreferences{Currency: p.Currency}
	if n := p.Notifications; n != nil {
		prefs.Notifications = &wireNotifications{
			EmailAlerts:  &n.EmailAlerts,
			WeeklyReport: &n.WeeklyReport,
			BudgetAlerts: &n.BudgetAlerts,
		}
	}
	req := struct {
		Preferences wirePreferences `json:"preferences"`
	}{Preferences: prefs}

	var resp wirePreferences
	if err := c.do(ctx, http.MethodPut, "/api/auth/preferences/update/", req, &resp, true); err != nil {
		return core.Preferences{}, err
	}

	out := core.Preferences{Currency: resp.Currency}
	if n := resp.Notifications; n != nil {
		settings := &core.NotificationSettings{}
		if n.EmailAlerts != nil {
			settings.EmailAlerts = *n.EmailAlerts
		}
		if n.WeeklyReport != nil {
			settings.WeeklyReport = *n.WeeklyReport
		}
		if n.BudgetAlerts != nil {
			settings.BudgetAlerts = *n.BudgetAlerts
		}
		out.Notifications = settings
	}
	return out, nil
}
