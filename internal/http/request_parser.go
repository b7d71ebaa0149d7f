// Utilities for parsing and validating form submissions: credentials,
// registration data, and budget forms.

package http

import (
	"net/http"
	"net/url"
	"strings"

	"badyet/internal/core"
)

// SigninForm holds a parsed sign-in submission.
type SigninForm struct {
	Email    string
	Password string
	From     string
}

// RegisterForm holds a parsed registration submission.
type RegisterForm struct {
	Email    string
	Password string
	Name     string
}

// ParseSigninForm extracts and validates a sign-in submission.
func ParseSigninForm(form url.Values) (SigninForm, error) {
	f := SigninForm{
		Email:    strings.ToLower(sanitizeInput(form.Get("email"))),
		Password: form.Get("password"),
		From:     safeReturnTo(sanitizeInput(form.Get("from"))),
	}
	if err := core.ValidateCredentials(f.Email, f.Password); err != nil {
		return f, err
	}
	return f, nil
}

// ParseRegisterForm extracts and validates a registration submission.
func ParseRegisterForm(form url.Values) (RegisterForm, error) {
	f := RegisterForm{
		Email:    strings.ToLower(sanitizeInput(form.Get("email"))),
		Password: form.Get("password"),
		Name:     sanitizeInput(form.Get("name")),
	}
	if err := core.ValidateRegistration(f.Email, f.Password, f.Name); err != nil {
		return f, err
	}
	return f, nil
}

// ParseBudgetForm builds a budget from a form submission. The returned
// budget has no ID; the backend assigns one.
func ParseBudgetForm(form url.Values) (core.Budget, error) {
	amount, err := core.ParseMoney(sanitizeInput(form.Get("amount")))
	if err != nil {
		return core.Budget{}, core.ErrInvalidAmount
	}

	start, err := core.ParseDate(sanitizeInput(form.Get("start_date")))
	if err != nil {
		return core.Budget{}, err
	}
	end, err := core.ParseDate(sanitizeInput(form.Get("end_date")))
	if err != nil {
		return core.Budget{}, err
	}

	b := core.Budget{
		Category:  sanitizeInput(form.Get("category")),
		Period:    core.BudgetPeriod(sanitizeInput(form.Get("period"))),
		Amount:    amount,
		StartDate: start,
		EndDate:   end,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on
// failure. Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
