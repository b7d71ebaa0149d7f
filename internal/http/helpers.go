package http

import (
	"strings"

	"badyet/internal/core"
	"badyet/internal/session"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// currencySymbol maps the user's preferred currency to a display symbol.
func currencySymbol(snap session.Snapshot) string {
	code := "USD"
	if snap.CurrentUser != nil && snap.CurrentUser.Preferences != nil && snap.CurrentUser.Preferences.Currency != "" {
		code = snap.CurrentUser.Preferences.Currency
	}
	switch code {
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	case "PHP":
		return "₱"
	default:
		return "$"
	}
}

// formatAmount renders money with the user's currency symbol.
func formatAmount(m core.Money, symbol string) string {
	return m.Display(symbol)
}

// periodLabel renders a budget period for display.
func periodLabel(p core.BudgetPeriod) string {
	switch p {
	case core.PeriodMonthly:
		return "Monthly"
	case core.PeriodQuarterly:
		return "Quarterly"
	case core.PeriodAnnual:
		return "Annual"
	}
	return string(p)
}
