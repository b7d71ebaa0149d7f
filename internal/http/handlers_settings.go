// Account-settings handlers: profile name, password and preference updates.
// Successful profile and preference changes are pushed back into the session
// so the header and account switcher render the fresh data immediately.

package http

import (
	"net/http"

	"badyet/internal/core"
	"badyet/internal/log"
)

// handleSettings renders the settings page.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	s.render(w, r, "settings.html", map[string]any{
		"CurrentUser": snap.CurrentUser,
		"Accounts":    snap.ActiveAccounts,
	})
}

// handleUpdateProfile changes the display name of the current user.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	name := sanitizeInput(r.PostForm.Get("name"))
	if name == "" {
		UnprocessableEntityError("Name must not be empty").Write(w)
		return
	}
	if len(name) > 100 {
		UnprocessableEntityError("Name too long (max 100 characters)").Write(w)
		return
	}

	user, err := s.profile.UpdateProfile(r.Context(), name)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Profile update failed",
			log.FieldError, err.Error())
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			Notification(NotificationError, "Update Failed", "Could not update your profile. Please try again.").
			Write(w)
		return
	}

	s.session.UpdateCurrentUser(user)

	s.logger.InfoContext(r.Context(), "Profile updated", log.FieldUserID, user.ID)
	NewHTMXResponse().
		Notification(NotificationSuccess, "Profile Updated", "Your profile has been saved.").
		TriggerSessionChanged().
		Write(w)
}

// handleChangePassword rotates the account password.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	oldPassword := r.PostForm.Get("old_password")
	newPassword := r.PostForm.Get("new_password")
	if oldPassword == "" || newPassword == "" {
		UnprocessableEntityError("Both the current and the new password are required").Write(w)
		return
	}
	if len(newPassword) < 8 {
		UnprocessableEntityError("New password too short (min 8 characters)").Write(w)
		return
	}

	if err := s.profile.ChangePassword(r.Context(), oldPassword, newPassword); err != nil {
		s.logger.WarnContext(r.Context(), "Password change failed",
			log.FieldError, err.Error())
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			Notification(NotificationError, "Password Change Failed", "Could not change your password. Please check your current password.").
			Write(w)
		return
	}

	s.logger.InfoContext(r.Context(), "Password changed")
	NewHTMXResponse().
		Notification(NotificationSuccess, "Password Changed", "Your password has been updated.").
		TriggerFormReset().
		Write(w)
}

// handleUpdatePreferences saves currency and notification preferences.
func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	prefs := core.Preferences{
		Currency: sanitizeInput(r.PostForm.Get("currency")),
		Notifications: &core.NotificationSettings{
			EmailAlerts:  r.PostForm.Get("email_alerts") == "on",
			WeeklyReport: r.PostForm.Get("weekly_report") == "on",
			BudgetAlerts: r.PostForm.Get("budget_alerts") == "on",
		},
	}
	if prefs.Currency == "" {
		prefs.Currency = "USD"
	}

	saved, err := s.profile.UpdatePreferences(r.Context(), prefs)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Preference update failed",
			log.FieldError, err.Error())
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			Notification(NotificationError, "Update Failed", "Could not save your preferences. Please try again.").
			Write(w)
		return
	}

	// Fold the saved preferences back into the session copy of the user.
	snap := s.session.Snapshot()
	if snap.CurrentUser != nil {
		user := *snap.CurrentUser
		user.Preferences = &saved
		s.session.UpdateCurrentUser(user)
	}

	s.logger.InfoContext(r.Context(), "Preferences updated")
	NewHTMXResponse().
		Notification(NotificationSuccess, "Preferences Saved", "Your preferences have been updated.").
		TriggerSessionChanged().
		Write(w)
}
