package core

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

const (
	PeriodMonthly   BudgetPeriod = "monthly"
	PeriodQuarterly BudgetPeriod = "quarterly"
	PeriodAnnual    BudgetPeriod = "annual"
)

type (
	BudgetPeriod string

	Date struct {
		time.Time
	}

	// User is the authenticated principal as returned by the remote API.
	// Avatar is always a fully-qualified URL once it enters the session;
	// normalization happens at the session boundary, not here.
	User struct {
		ID          string
		Email       string
		Name        string
		Avatar      string
		Preferences *Preferences
	}

	Preferences struct {
		Currency      string
		Notifications *NotificationSettings
	}

	NotificationSettings struct {
		EmailAlerts  bool
		WeeklyReport bool
		BudgetAlerts bool
	}

	// LinkedAccount is a summary of an account reachable from the current
	// login chain. IsActive marks the currently selected one.
	LinkedAccount struct {
		ID       string
		Email    string
		Name     string
		Avatar   string
		IsActive bool
	}

	Budget struct {
		ID        string
		Category  string
		Period    BudgetPeriod
		Amount    Money
		Spent     Money
		StartDate Date
		EndDate   Date
	}

	Transaction struct {
		ID          string
		Type        string // "income" or "expense"
		Category    string
		Amount      Money
		Description string
		Date        Date
	}
)

// BudgetCategories lists the categories accepted by the remote API for
// budgets, in display order.
var BudgetCategories = []string{
	"housing", "food", "transportation", "utilities",
	"entertainment", "shopping", "health", "business",
	"investment", "gift", "other",
}

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyPassword   = errors.New("empty password")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidPeriod   = errors.New("invalid budget period")
	ErrInvalidCategory = errors.New("invalid budget category")
	ErrInvalidDates    = errors.New("end date must not be before start date")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String renders the date in the YYYY-MM-DD wire format used by the API.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (p BudgetPeriod) Validate() error {
	switch p {
	case PeriodMonthly, PeriodQuarterly, PeriodAnnual:
		return nil
	}
	return ErrInvalidPeriod
}

// ValidCategory reports whether name is one of the known budget categories.
func ValidCategory(name string) bool {
	for _, c := range BudgetCategories {
		if c == name {
			return true
		}
	}
	return false
}

func (b Budget) Validate() error {
	if !ValidCategory(b.Category) {
		return ErrInvalidCategory
	}
	if err := b.Period.Validate(); err != nil {
		return err
	}
	if b.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return errors.New("start and end dates are required")
	}
	if b.EndDate.Before(b.StartDate.Time) {
		return ErrInvalidDates
	}
	return nil
}

// PercentSpent returns spent/amount as a whole percentage, capped at 100.
func (b Budget) PercentSpent() int {
	if b.Amount.Cents <= 0 {
		return 0
	}
	pct := int(b.Spent.Cents * 100 / b.Amount.Cents)
	if pct > 100 {
		return 100
	}
	return pct
}

// OverBudget reports whether spending exceeded the budgeted amount.
func (b Budget) OverBudget() bool {
	return b.Spent.Cents > b.Amount.Cents
}

// NearLimit reports whether spending passed the warning threshold (80%)
// without going over.
func (b Budget) NearLimit() bool {
	return !b.OverBudget() && b.Amount.Cents > 0 && b.Spent.Cents*100 > b.Amount.Cents*80
}

// ValidateCredentials checks a login email/password pair before it is sent
// to the remote API.
func ValidateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return ErrInvalidEmail
	}
	if password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// ValidateRegistration checks registration input. The remote API enforces
// its own rules; this only catches obviously broken submissions early.
func ValidateRegistration(email, password, name string) error {
	if err := ValidateCredentials(email, password); err != nil {
		return err
	}
	if len(password) < 8 {
		return errors.New("password too short (min 8 characters)")
	}
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}
