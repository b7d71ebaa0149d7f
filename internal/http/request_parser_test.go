package http

import (
	"net/url"
	"testing"
)

func TestParseSigninForm(t *testing.T) {
	form := url.Values{
		"email":    {"  Demo@Example.COM "},
		"password": {"secret"},
		"from":     {"/budgets?x=1"},
	}

	f, err := ParseSigninForm(form)
	if err != nil {
		t.Fatalf("ParseSigninForm() error = %v", err)
	}
	if f.Email != "demo@example.com" {
		t.Errorf("Email = %q, want lowercased and trimmed", f.Email)
	}
	if f.From != "/budgets?x=1" {
		t.Errorf("From = %q, want the local path preserved", f.From)
	}
}

func TestParseSigninFormRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing email", url.Values{"password": {"secret"}}},
		{"malformed email", url.Values{"email": {"not-an-email"}, "password": {"secret"}}},
		{"empty password", url.Values{"email": {"demo@example.com"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSigninForm(tt.form); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseSigninFormSanitizesReturnPath(t *testing.T) {
	form := url.Values{
		"email":    {"demo@example.com"},
		"password": {"secret"},
		"from":     {"https://evil.example/"},
	}
	f, err := ParseSigninForm(form)
	if err != nil {
		t.Fatalf("ParseSigninForm() error = %v", err)
	}
	if f.From != "/" {
		t.Errorf("From = %q, want the fallback root path", f.From)
	}
}

func TestParseRegisterForm(t *testing.T) {
	form := url.Values{
		"email":    {"New@Example.com"},
		"password": {"longenough"},
		"name":     {"  New Person  "},
	}
	f, err := ParseRegisterForm(form)
	if err != nil {
		t.Fatalf("ParseRegisterForm() error = %v", err)
	}
	if f.Email != "new@example.com" {
		t.Errorf("Email = %q, want lowercased", f.Email)
	}
	if f.Name != "New Person" {
		t.Errorf("Name = %q, want trimmed", f.Name)
	}
}

func TestParseRegisterFormRejectsShortPassword(t *testing.T) {
	form := url.Values{
		"email":    {"new@example.com"},
		"password": {"short"},
		"name":     {"New Person"},
	}
	if _, err := ParseRegisterForm(form); err == nil {
		t.Error("expected an error for a short password")
	}
}

func TestParseBudgetForm(t *testing.T) {
	form := url.Values{
		"category":   {"food"},
		"period":     {"monthly"},
		"amount":     {"600.00"},
		"start_date": {"2026-08-01"},
		"end_date":   {"2026-08-31"},
	}
	b, err := ParseBudgetForm(form)
	if err != nil {
		t.Fatalf("ParseBudgetForm() error = %v", err)
	}
	if b.Amount.Cents != 60000 {
		t.Errorf("Amount = %d cents, want 60000", b.Amount.Cents)
	}
	if b.ID != "" {
		t.Errorf("ID = %q, want empty before creation", b.ID)
	}
}

func TestParseBudgetFormRejectsBadInput(t *testing.T) {
	valid := url.Values{
		"category":   {"food"},
		"period":     {"monthly"},
		"amount":     {"600.00"},
		"start_date": {"2026-08-01"},
		"end_date":   {"2026-08-31"},
	}
	override := func(key, value string) url.Values {
		out := url.Values{}
		for k, v := range valid {
			out[k] = v
		}
		out.Set(key, value)
		return out
	}

	tests := []struct {
		name string
		form url.Values
	}{
		{"unknown category", override("category", "yachts")},
		{"bad period", override("period", "weekly")},
		{"zero amount", override("amount", "0")},
		{"garbage amount", override("amount", "lots")},
		{"bad date", override("start_date", "Aug 1")},
		{"end before start", override("end_date", "2026-07-01")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBudgetForm(tt.form); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{"with\x00null", "withnull"},
		{"keeps unicode é", "keeps unicode é"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
