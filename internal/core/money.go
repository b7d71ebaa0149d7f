package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money is an amount in cents. The remote API speaks decimal strings
// ("120.50"); all arithmetic here stays in integer cents.
type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseMoney converts a decimal amount string (e.g. "120.50", "120,50",
// "120") into cents. At most two fractional digits are accepted.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, errors.New("empty amount")
	}

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", s, err)
	}

	cents := units * 100
	if hasFrac {
		if len(frac) > 2 {
			return Money{}, errors.New("too many decimal places")
		}
		for len(frac) < 2 {
			frac += "0"
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return Money{}, fmt.Errorf("parse amount %q: %w", s, err)
		}
		cents += f
	}

	if neg {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// MoneyFromFloat converts a float amount (as decoded from JSON) to cents,
// rounding to the nearest cent.
func MoneyFromFloat(v float64) Money {
	if v >= 0 {
		return Money{Cents: int64(v*100 + 0.5)}
	}
	return Money{Cents: -int64(-v*100 + 0.5)}
}

// Decimal renders the amount as a plain decimal string ("120.50") for the
// API wire format.
func (m Money) Decimal() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// Float returns the amount as a float64 for JSON encoding.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100
}

// Display formats the amount with a currency symbol for templates.
func (m Money) Display(symbol string) string {
	if symbol == "" {
		symbol = "$"
	}
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := symbol + strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}
