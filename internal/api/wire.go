package api

import (
	"encoding/json"
	"strings"

	"badyet/internal/core"
)

// wireID tolerates the backend's habit of serializing IDs as numbers on
// some endpoints and strings on others.
type wireID string

func (id *wireID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = ""
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*id = wireID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = wireID(n.String())
	return nil
}

// wireAmount tolerates decimal strings ("120.50", the DRF default) as well
// as plain JSON numbers.
type wireAmount struct {
	core.Money
}

func (a *wireAmount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		a.Money = core.Money{}
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		m, err := core.ParseMoney(v)
		if err != nil {
			return err
		}
		a.Money = m
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	a.Money = core.MoneyFromFloat(f)
	return nil
}

type wireNotifications struct {
	EmailAlerts  *bool `json:"emailAlerts"`
	WeeklyReport *bool `json:"weeklyReport"`
	BudgetAlerts *bool `json:"budgetAlerts"`
}

type wirePreferences struct {
	Currency      string             `json:"currency"`
	Notifications *wireNotifications `json:"notifications"`
}

type wireUser struct {
	ID          wireID           `json:"id"`
	Email       string           `json:"email"`
	Name        string           `json:"name"`
	Avatar      *string          `json:"avatar"`
	Preferences *wirePreferences `json:"preferences"`
}

func (u wireUser) toCore() core.User {
	user := core.User{
		ID:    string(u.ID),
		Email: u.Email,
		Name:  u.Name,
	}
	if u.Avatar != nil {
		user.Avatar = *u.Avatar
	}
	if u.Preferences != nil {
		prefs := &core.Preferences{Currency: u.Preferences.Currency}
		if n := u.Preferences.Notifications; n != nil {
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
			prefs.Notifications = settings
		}
		user.Preferences = prefs
	}
	return user
}

type wireAccount struct {
	ID       wireID  `json:"id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Avatar   *string `json:"avatar"`
	IsActive bool    `json:"isActive"`
}

func (a wireAccount) toCore() core.LinkedAccount {
	acct := core.LinkedAccount{
		ID:       string(a.ID),
		Email:    a.Email,
		Name:     a.Name,
		IsActive: a.IsActive,
	}
	if a.Avatar != nil {
		acct.Avatar = *a.Avatar
	}
	return acct
}

type wireBudget struct {
	ID        wireID     `json:"id"`
	Category  string     `json:"category"`
	Period    string     `json:"period"`
	Amount    wireAmount `json:"amount"`
	Spent     wireAmount `json:"spent"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
}

func (b wireBudget) toCore() core.Budget {
	budget := core.Budget{
		ID:       string(b.ID),
		Category: b.Category,
		Period:   core.BudgetPeriod(b.Period),
		Amount:   b.Amount.Money,
		Spent:    b.Spent.Money,
	}
	if d, err := core.ParseDate(b.StartDate); err == nil {
		budget.StartDate = d
	}
	if d, err := core.ParseDate(b.EndDate); err == nil {
		budget.EndDate = d
	}
	return budget
}

type wireTransaction struct {
	ID          wireID     `json:"id"`
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Amount      wireAmount `json:"amount"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
}

func (t wireTransaction) toCore() core.Transaction {
	tx := core.Transaction{
		ID:          string(t.ID),
		Type:        t.Type,
		Category:    t.Category,
		Amount:      t.Amount.Money,
		Description: t.Description,
	}
	if d, err := core.ParseDate(t.Date); err == nil {
		tx.Date = d
	}
	return tx
}
