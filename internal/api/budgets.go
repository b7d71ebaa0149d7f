package api

import (
	"context"
	"net/http"
	"net/url"

	"badyet/internal/core"
)

// ListBudgets returns all budgets for the current user. Filtering by period
// happens client-side; the API returns the full set.
func (c *Client) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	var resp []wireBudget
	if err := c.get(ctx, "/api/budgets/", &resp); err != nil {
		return nil, err
	}

	budgets := make([]core.Budget, len(resp))
	for i, b := range resp {
		budgets[i] = b.toCore()
	}
	return budgets, nil
}

// CreateBudget creates a budget and returns the stored version (with the
// server-assigned ID and computed spent amount).
func (c *Client) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	req := struct {
		Category  string  `json:"category"`
		Period    string  `json:"period"`
		Amount    float64 `json:"amount"`
		StartDate string  `json:"start_date"`
		EndDate   string  `json:"end_date"`
	}{
		Category:  b.Category,
		Period:    string(b.Period),
		Amount:    b.Amount.Float(),
		StartDate: b.StartDate.String(),
		EndDate:   b.EndDate.String(),
	}

	var resp wireBudget
	if err := c.do(ctx, http.MethodPost, "/api/budgets/", req, &resp, true); err != nil {
		return core.Budget{}, err
	}
	return resp.toCore(), nil
}

// DeleteBudget removes a budget by ID.
func (c *Client) DeleteBudget(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/budgets/"+url.PathEscape(id)+"/", nil, nil, true)
}

// ListTransactions returns the current user's transactions, newest first
// (server ordering).
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var resp []wireTransaction
	if err := c.get(ctx, "/api/transactions/", &resp); err != nil {
		return nil, err
	}

	transactions := make([]core.Transaction, len(resp))
	for i, t := range resp {
		transactions[i] = t.toCore()
	}
	return transactions, nil
}
