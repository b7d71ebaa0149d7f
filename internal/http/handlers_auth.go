// Authentication handlers: sign-in, registration, logout and the account
// switcher. Session state transitions live in the session package; these
// handlers only translate between forms, the session manager, and HTMX.

package http

import (
	"net/http"

	"badyet/internal/log"
	"badyet/internal/notify"
)

type authPageData struct {
	From  string
	Error string
}

// handleSignin serves the sign-in page and processes credential submissions.
func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.render(w, r, "signin.html", authPageData{
			From: safeReturnTo(r.URL.Query().Get("from")),
		})
		return
	}
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	form, err := ParseSigninForm(r.PostForm)
	if err != nil {
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			Notification(NotificationError, "Login Failed", "Invalid email or password. Please try again.").
			Write(w)
		return
	}

	s.session.Login(r.Context(), form.Email, form.Password)

	snap := s.session.Snapshot()
	if !snap.IsAuthenticated {
		NewHTMXResponse().
			Status(http.StatusUnauthorized).
			Toasts(s.flash).
			Write(w)
		return
	}

	NewHTMXResponse().
		Toasts(s.flash).
		TriggerSessionChanged().
		Redirect(form.From).
		Write(w)
}

// handleRegister serves the registration page and creates new accounts.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.render(w, r, "register.html", authPageData{})
		return
	}
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	form, err := ParseRegisterForm(r.PostForm)
	if err != nil {
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			Notification(NotificationError, "Registration Failed", err.Error()).
			Write(w)
		return
	}

	// Register reports its failure back so the form stays open for another
	// attempt; the notification is already queued either way.
	if err := s.session.Register(r.Context(), form.Email, form.Password, form.Name); err != nil {
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			Toasts(s.flash).
			Write(w)
		return
	}

	NewHTMXResponse().
		Toasts(s.flash).
		TriggerSessionChanged().
		Redirect("/").
		Write(w)
}

// handleLogout ends the session. It always succeeds, even while anonymous.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	snap := s.session.Snapshot()
	if snap.CurrentUser != nil {
		s.invalidateBudgets(snap.CurrentUser.ID)
	}

	s.session.Logout(r.Context())

	NewHTMXResponse().
		Toasts(s.flash).
		TriggerSessionChanged().
		Redirect("/signin").
		Write(w)
}

// handleSwitchAccount exchanges the session for one of the linked accounts.
func (s *Server) handleSwitchAccount(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	accountID := sanitizeInput(r.PostForm.Get("account_id"))
	if accountID == "" {
		BadRequestError("Missing account id").Write(w)
		return
	}

	before := s.session.Snapshot()
	s.session.SwitchAccount(r.Context(), accountID)
	after := s.session.Snapshot()

	// The session swallows switch failures; the queued notification kind is
	// what tells us whether to report success to the client.
	pending := s.flash.Drain()
	for _, n := range pending {
		if n.Kind == notify.KindFailure {
			NewHTMXResponse().
				Status(http.StatusUnprocessableEntity).
				ToastList(pending).
				Write(w)
			return
		}
	}

	// Cached lists belong to a principal; both sides of the switch are stale.
	if before.CurrentUser != nil {
		s.invalidateBudgets(before.CurrentUser.ID)
	}
	if after.CurrentUser != nil {
		s.invalidateBudgets(after.CurrentUser.ID)
	}

	s.logger.InfoContext(r.Context(), "Account switch served",
		log.FieldAccountID, accountID)

	NewHTMXResponse().
		ToastList(pending).
		TriggerSessionChanged().
		Refresh().
		Write(w)
}

// handleAccountsPartial renders the account-switcher dropdown contents.
func (s *Server) handleAccountsPartial(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	s.render(w, r, "accounts.html", map[string]any{
		"CurrentUser": snap.CurrentUser,
		"Accounts":    snap.ActiveAccounts,
	})
}
