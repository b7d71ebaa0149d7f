package core

import (
	"errors"
	"testing"
)

func TestBudgetValidate(t *testing.T) {
	valid := Budget{
		Category:  "food",
		Period:    PeriodMonthly,
		Amount:    Money{Cents: 50000},
		StartDate: NewDate(2025, 1, 1),
		EndDate:   NewDate(2025, 1, 31),
	}

	tests := []struct {
		name    string
		mutate  func(b *Budget)
		wantErr error
	}{
		{"valid", func(b *Budget) {}, nil},
		{"unknown category", func(b *Budget) { b.Category = "crypto" }, ErrInvalidCategory},
		{"bad period", func(b *Budget) { b.Period = "weekly" }, ErrInvalidPeriod},
		{"zero amount", func(b *Budget) { b.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(b *Budget) { b.Amount = Money{Cents: -100} }, ErrInvalidAmount},
		{"end before start", func(b *Budget) { b.EndDate = NewDate(2024, 12, 31) }, ErrInvalidDates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			tt.mutate(&b)
			err := b.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBudgetProgress(t *testing.T) {
	tests := []struct {
		name      string
		amount    int64
		spent     int64
		wantPct   int
		wantOver  bool
		wantNear  bool
	}{
		{"untouched", 10000, 0, 0, false, false},
		{"half", 10000, 5000, 50, false, false},
		{"at warning threshold", 10000, 8000, 80, false, false},
		{"past warning threshold", 10000, 8001, 80, false, true},
		{"exactly full", 10000, 10000, 100, false, false},
		{"over budget", 10000, 12345, 100, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Budget{Amount: Money{Cents: tt.amount}, Spent: Money{Cents: tt.spent}}
			if got := b.PercentSpent(); got != tt.wantPct {
				t.Errorf("PercentSpent() = %d, want %d", got, tt.wantPct)
			}
			if got := b.OverBudget(); got != tt.wantOver {
				t.Errorf("OverBudget() = %v, want %v", got, tt.wantOver)
			}
			if got := b.NearLimit(); got != tt.wantNear {
				t.Errorf("NearLimit() = %v, want %v", got, tt.wantNear)
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	if err := ValidateCredentials("a@b.com", "secret"); err != nil {
		t.Fatalf("valid credentials rejected: %v", err)
	}
	if err := ValidateCredentials("not-an-email", "secret"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("bad email: got %v, want ErrInvalidEmail", err)
	}
	if err := ValidateCredentials("a@b.com", ""); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("empty password: got %v, want ErrEmptyPassword", err)
	}
}

func TestValidateRegistration(t *testing.T) {
	if err := ValidateRegistration("a@b.com", "longenough", "Ann"); err != nil {
		t.Fatalf("valid registration rejected: %v", err)
	}
	if err := ValidateRegistration("a@b.com", "short", "Ann"); err == nil {
		t.Error("short password accepted")
	}
	if err := ValidateRegistration("a@b.com", "longenough", "   "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("blank name: got %v, want ErrEmptyName", err)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2025 || int(d.Time.Month()) != 3 || d.Time.Day() != 9 {
		t.Errorf("ParseDate = %v", d)
	}
	if d.String() != "2025-03-09" {
		t.Errorf("String() = %q", d.String())
	}
	if _, err := ParseDate("03/09/2025"); err == nil {
		t.Error("expected error for wrong format")
	}
}
