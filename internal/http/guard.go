package http

import (
	"net/http"
	"net/url"

	"badyet/internal/log"
)

// requireAuth gates a protected route on the session state.
//
// While the session is still resolving its stored credential the guard
// renders a neutral holding page instead of guessing: redirecting an
// about-to-be-authenticated user to the sign-in page would flash the wrong
// screen. Once resolved, anonymous visitors are redirected to sign-in with
// the original path preserved in ?from= so a successful login can land them
// where they were headed.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.session.Snapshot()

		switch {
		case snap.Loading:
			w.Header().Set("Cache-Control", "no-store")
			w.Header().Set("Retry-After", "1")
			s.render(w, r, "loading.html", nil)

		case !snap.IsAuthenticated:
			s.logger.DebugContext(r.Context(), "Unauthenticated request redirected",
				log.FieldPath, r.URL.Path)
			target := "/signin?from=" + url.QueryEscape(requestedPath(r))
			http.Redirect(w, r, target, http.StatusSeeOther)

		default:
			next(w, r)
		}
	}
}

// requestedPath is the path (plus query) to return to after sign-in.
func requestedPath(r *http.Request) string {
	p := r.URL.Path
	if r.URL.RawQuery != "" {
		p += "?" + r.URL.RawQuery
	}
	return p
}

// safeReturnTo validates a ?from= value before redirecting to it. Only
// local absolute paths are allowed; anything else falls back to the root.
func safeReturnTo(from string) string {
	if from == "" || from[0] != '/' {
		return "/"
	}
	// Double slash would be treated as a protocol-relative URL.
	if len(from) > 1 && from[1] == '/' {
		return "/"
	}
	return from
}
