// Budget handlers: the dashboard, the budgets page with create/delete, and
// the HTMX partial that re-renders the budget list after a mutation.

package http

import (
	"net/http"
	"strings"
	"sync/atomic"

	"badyet/internal/core"
	"badyet/internal/log"
	"badyet/internal/notify"
	"badyet/internal/session"
)

// budgetView is a Budget decorated for template rendering.
type budgetView struct {
	core.Budget
	AmountDisplay string
	SpentDisplay  string
	PeriodDisplay string
	Percent       int
	Warning       bool
	Over          bool
}

type transactionView struct {
	core.Transaction
	AmountDisplay string
	DateDisplay   string
}

func buildBudgetViews(budgets []core.Budget, symbol string) []budgetView {
	views := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, budgetView{
			Budget:        b,
			AmountDisplay: formatAmount(b.Amount, symbol),
			SpentDisplay:  formatAmount(b.Spent, symbol),
			PeriodDisplay: periodLabel(b.Period),
			Percent:       b.PercentSpent(),
			Warning:       b.NearLimit(),
			Over:          b.OverBudget(),
		})
	}
	return views
}

func buildTransactionViews(txs []core.Transaction, symbol string) []transactionView {
	views := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		views = append(views, transactionView{
			Transaction:   t,
			AmountDisplay: formatAmount(t.Amount, symbol),
			DateDisplay:   t.Date.String(),
		})
	}
	return views
}

// handleDashboard renders the landing page: budget overview plus the most
// recent transactions.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}

	snap := s.session.Snapshot()
	symbol := currencySymbol(snap)
	userID := snap.CurrentUser.ID

	budgets, err := s.getBudgets(r.Context(), userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load budgets",
			log.FieldError, err.Error(), log.FieldUserID, userID)
		InternalServerError("Could not load your budgets").Write(w)
		return
	}

	// Transactions are decoration on the dashboard; an empty panel beats a
	// broken page.
	txs, err := s.getTransactions(r.Context(), userID)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Failed to load transactions",
			log.FieldError, err.Error(), log.FieldUserID, userID)
		txs = nil
	}
	if len(txs) > 5 {
		txs = txs[:5]
	}

	var budgeted, spent core.Money
	for _, b := range budgets {
		budgeted.Cents += b.Amount.Cents
		spent.Cents += b.Spent.Cents
	}

	s.render(w, r, "dashboard.html", map[string]any{
		"CurrentUser":   snap.CurrentUser,
		"Accounts":      snap.ActiveAccounts,
		"Budgets":       buildBudgetViews(budgets, symbol),
		"Transactions":  buildTransactionViews(txs, symbol),
		"TotalBudgeted": formatAmount(budgeted, symbol),
		"TotalSpent":    formatAmount(spent, symbol),
		"Categories":    core.BudgetCategories,
	})
}

// handleBudgets serves the budgets page and creates budgets from form posts.
func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderBudgetsPage(w, r)
	case http.MethodPost:
		s.createBudget(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) renderBudgetsPage(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	symbol := currencySymbol(snap)

	budgets, err := s.getBudgets(r.Context(), snap.CurrentUser.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load budgets",
			log.FieldError, err.Error(), log.FieldUserID, snap.CurrentUser.ID)
		InternalServerError("Could not load your budgets").Write(w)
		return
	}

	s.render(w, r, "budgets.html", map[string]any{
		"CurrentUser": snap.CurrentUser,
		"Accounts":    snap.ActiveAccounts,
		"Budgets":     buildBudgetViews(budgets, symbol),
		"Categories":  core.BudgetCategories,
	})
}

func (s *Server) createBudget(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	budget, err := ParseBudgetForm(r.PostForm)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	created, err := s.budgets.CreateBudget(r.Context(), budget)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Budget creation failed",
			log.FieldError, err.Error(), log.FieldCategory, budget.Category)
		s.sink.Notify(r.Context(), notify.Failure("Budget Creation Failed", "Could not create the budget. Please try again."))
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			Toasts(s.flash).
			Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.budgetsCreated, 1)
	snap := s.session.Snapshot()
	s.invalidateBudgets(snap.CurrentUser.ID)

	s.logger.InfoContext(r.Context(), "Budget created",
		log.FieldBudgetID, created.ID, log.FieldCategory, created.Category)
	s.sink.Notify(r.Context(), notify.Success("Budget Created", "Your "+created.Category+" budget is ready."))

	s.writeBudgetList(w, r, snap, NewHTMXResponse().
		Status(http.StatusCreated).
		Toasts(s.flash).
		TriggerBudgetCreated(created.ID).
		TriggerFormReset())
}

// handleBudgetByID handles requests under /budgets/{id}; only DELETE is
// supported.
func (s *Server) handleBudgetByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/budgets/")
	if id == "" || strings.Contains(id, "/") {
		NotFoundError("Budget not found").Write(w)
		return
	}
	if resp := RequireMethod(r, http.MethodDelete); resp != nil {
		resp.Write(w)
		return
	}

	if err := s.budgets.DeleteBudget(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Budget deletion failed",
			log.FieldError, err.Error(), log.FieldBudgetID, id)
		s.sink.Notify(r.Context(), notify.Failure("Budget Deletion Failed", "Could not delete the budget. Please try again."))
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			Toasts(s.flash).
			Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.budgetsDeleted, 1)
	snap := s.session.Snapshot()
	s.invalidateBudgets(snap.CurrentUser.ID)

	s.logger.InfoContext(r.Context(), "Budget deleted", log.FieldBudgetID, id)
	s.sink.Notify(r.Context(), notify.Success("Budget Deleted", "The budget has been removed."))

	s.writeBudgetList(w, r, snap, NewHTMXResponse().
		Toasts(s.flash).
		TriggerBudgetDeleted(id))
}

// handleBudgetListPartial re-renders just the budget list, for HTMX swaps.
func (s *Server) handleBudgetListPartial(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	s.writeBudgetList(w, r, snap, NewHTMXResponse())
}

// writeBudgetList renders the budget-list fragment into the builder's body
// and writes it, so mutations can return the fresh list in one response.
func (s *Server) writeBudgetList(w http.ResponseWriter, r *http.Request, snap session.Snapshot, resp *HTMXResponseBuilder) {
	symbol := currencySymbol(snap)

	budgets, err := s.getBudgets(r.Context(), snap.CurrentUser.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to reload budgets",
			log.FieldError, err.Error(), log.FieldUserID, snap.CurrentUser.ID)
		InternalServerError("Could not load your budgets").Write(w)
		return
	}

	var buf strings.Builder
	if err := s.templates.ExecuteTemplate(&buf, "budget-list.html", map[string]any{
		"Budgets": buildBudgetViews(budgets, symbol),
	}); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err.Error(), "template", "budget-list.html")
		InternalServerError("Could not render budgets").Write(w)
		return
	}

	resp.BodyHTML(buf.String()).Write(w)
}
