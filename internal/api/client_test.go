package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"badyet/internal/core"
)

type staticTokens string

func (s staticTokens) Token(context.Context) (string, error) { return string(s), nil }

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, staticTokens(token), nil)
}

func TestLoginPostsCredentials(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send a stored credential")
		}
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "demo@example.com" || req.Password != "secret" {
			t.Errorf("payload = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-1",
			"user":  map[string]any{"id": 7, "email": req.Email, "name": "Demo"},
		})
	})

	result, err := client.Login(context.Background(), "demo@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token != "tok-1" {
		t.Errorf("Token = %q, want tok-1", result.Token)
	}
	// Numeric IDs on the wire arrive as strings in the domain.
	if result.User == nil || result.User.ID != "7" {
		t.Errorf("User = %+v, want ID \"7\"", result.User)
	}
}

func TestAuthenticatedCallSendsBearerToken(t *testing.T) {
	client := newTestClient(t, "tok-9", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-9" {
			t.Errorf("Authorization = %q, want Bearer tok-9", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "1", "email": "a@b.c", "name": "A"})
	})

	if _, err := client.CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
}

func TestErrorPayloadDecoding(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"error field", http.StatusBadRequest, `{"error": "Invalid Credentials"}`, "Invalid Credentials"},
		{"detail field", http.StatusUnauthorized, `{"detail": "Invalid token."}`, "Invalid token."},
		{"no payload", http.StatusInternalServerError, "", ""},
		{"garbage payload", http.StatusBadGateway, "<html>upstream</html>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.CurrentUser(context.Background())
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestListBudgetsToleratesWireVariants(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		// Amounts as decimal strings and as numbers, IDs as both kinds.
		w.Write([]byte(`[
			{"id": 1, "category": "food", "period": "monthly",
			 "amount": "600.00", "spent": 425.5,
			 "start_date": "2026-08-01", "end_date": "2026-08-31"},
			{"id": "b2", "category": "housing", "period": "monthly",
			 "amount": 1500, "spent": "1500.00",
			 "start_date": "2026-08-01", "end_date": "2026-08-31"}
		]`))
	})

	budgets, err := client.ListBudgets(context.Background())
	if err != nil {
		t.Fatalf("ListBudgets() error = %v", err)
	}
	if len(budgets) != 2 {
		t.Fatalf("got %d budgets, want 2", len(budgets))
	}
	if budgets[0].ID != "1" || budgets[0].Amount.Cents != 60000 || budgets[0].Spent.Cents != 42550 {
		t.Errorf("budgets[0] = %+v", budgets[0])
	}
	if budgets[1].ID != "b2" || budgets[1].Amount.Cents != 150000 {
		t.Errorf("budgets[1] = %+v", budgets[1])
	}
	if budgets[0].StartDate.String() != "2026-08-01" {
		t.Errorf("StartDate = %s", budgets[0].StartDate)
	}
}

func TestCreateBudgetRoundTrip(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["category"] != "food" || req["amount"].(float64) != 600 {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": 42, "category": "food", "period": "monthly",
			"amount": 600, "spent": 0,
			"start_date": "2026-08-01", "end_date": "2026-08-31",
		})
	})

	created, err := client.CreateBudget(context.Background(), core.Budget{
		Category:  "food",
		Period:    core.PeriodMonthly,
		Amount:    core.Money{Cents: 60000},
		StartDate: core.NewDate(2026, 8, 1),
		EndDate:   core.NewDate(2026, 8, 31),
	})
	if err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}
	if created.ID != "42" {
		t.Errorf("ID = %q, want 42", created.ID)
	}
}

func TestLogoutIgnoresResponseBody(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "bye"}`))
	})
	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
}
