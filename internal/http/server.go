// Package http serves the web UI: sign-in and registration pages, the
// budget dashboard, and the HTMX partials that keep them live.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"badyet/internal/api"
	"badyet/internal/cache"
	"badyet/internal/core"
	"badyet/internal/log"
	"badyet/internal/middleware/ratelimit"
	"badyet/internal/middleware/security"
	"badyet/internal/middleware/trace"
	"badyet/internal/notify"
	"badyet/internal/session"
	appweb "badyet/web"
)

type appMetrics struct {
	startedAt      time.Time
	budgetsCreated int64
	budgetsDeleted int64
	cacheHits      int64
	cacheMisses    int64
}

type Server struct {
	http.Server
	templates *template.Template
	logger    *log.Logger

	session *session.Manager
	budgets api.BudgetAPI
	profile api.ProfileAPI
	flash   *notify.Flash
	sink    notify.Sink

	traceMW     *trace.Middleware
	headersMW   *security.HeadersMiddleware
	detector    *security.Detector
	authLimiter *ratelimit.Limiter
	limitHits   *ratelimit.MetricsCollector

	budgetCache *cache.LRUCache[[]core.Budget]
	txCache     *cache.LRUCache[[]core.Transaction]
	cacheMgr    *cache.Manager
	budgetGroup singleflight.Group

	appMetrics   appMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
// flash is the queue the session manager writes notifications into; sink is
// where budget handlers publish theirs (normally the same fan-out the
// session uses).
func NewServer(addr string, sess *session.Manager, budgets api.BudgetAPI, profile api.ProfileAPI, flash *notify.Flash, sink notify.Sink, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}
	if sink == nil {
		sink = notify.Discard{}
	}

	mux := http.NewServeMux()
	detector := security.NewDetector()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger:    logger,
		session:   sess,
		budgets:   budgets,
		profile:   profile,
		flash:     flash,
		sink:      sink,
		traceMW:   trace.NewMiddleware(detector.ExtractClientIP),
		headersMW: security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		detector:  detector,
		// Sign-in and registration are the brute-force surface; budgets
		// live behind the guard and share the generous default.
		authLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 10, CleanupInterval: 5 * time.Minute}),
		limitHits:   ratelimit.NewMetricsCollector(),
		budgetCache: cache.NewLRUCache[[]core.Budget](100, 2*time.Minute),
		txCache:     cache.NewLRUCache[[]core.Transaction](100, 2*time.Minute),
		cacheMgr:    cache.NewManager(),
		appMetrics:  appMetrics{startedAt: time.Now()},
	}

	s.cacheMgr.Register(s.budgetCache)
	s.cacheMgr.Register(s.txCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates", log.FieldError, err.Error())
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Error("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.Handle("/signin", s.limited(s.anonymousOnly(s.handleSignin)))
	mux.Handle("/register", s.limited(s.anonymousOnly(s.handleRegister)))
	mux.Handle("/logout", s.public(s.handleLogout))
	mux.Handle("/switch-account", s.guarded(s.handleSwitchAccount))

	mux.Handle("/", s.guarded(s.handleDashboard))
	mux.Handle("/budgets", s.guarded(s.handleBudgets))
	mux.Handle("/budgets/", s.guarded(s.handleBudgetByID))
	mux.Handle("/settings", s.guarded(s.handleSettings))
	mux.Handle("/settings/profile", s.guarded(s.handleUpdateProfile))
	mux.Handle("/settings/password", s.guarded(s.handleChangePassword))
	mux.Handle("/settings/preferences", s.guarded(s.handleUpdatePreferences))

	mux.Handle("/ui/budget-list", s.guarded(s.handleBudgetListPartial))
	mux.Handle("/ui/accounts", s.guarded(s.handleAccountsPartial))

	return s
}

// public wraps a handler with tracing, security headers and suspicious
// request detection.
func (s *Server) public(next http.HandlerFunc) http.Handler {
	detected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		next(w, r)
	})
	withLogger := log.Middleware(s.logger)(detected)
	return s.traceMW.Middleware(s.headersMW.Middleware(withLogger))
}

// limited adds per-IP rate limiting on top of the public chain. Applied to
// the credential-bearing endpoints only.
func (s *Server) limited(next http.HandlerFunc) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		s.limitHits.RecordHit()
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		w.Header().Set("Retry-After", "60")
		http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
	}
	limiter := s.authLimiter.Middleware(s.detector.ExtractClientIP, onLimit)

	return s.public(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			limiter(http.HandlerFunc(next)).ServeHTTP(w, r)
			return
		}
		next(w, r)
	})
}

// guarded requires an authenticated session (see guard.go).
func (s *Server) guarded(next http.HandlerFunc) http.Handler {
	return s.public(s.requireAuth(next))
}

// anonymousOnly sends already signed-in visitors back to the dashboard.
func (s *Server) anonymousOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.session.Snapshot()
		if !snap.Loading && snap.IsAuthenticated {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.authLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path, log.FieldComponent, log.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err.Error(), "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// invalidateBudgets drops cached budget and transaction lists, e.g. after a
// mutation or an account switch.
func (s *Server) invalidateBudgets(userID string) {
	s.budgetCache.Delete(userID)
	s.txCache.Delete(userID)
}

// getBudgets returns the cached budget list for the user, deduplicating
// concurrent fetches for the same account through singleflight.
func (s *Server) getBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	if data, found := s.budgetCache.Get(userID); found {
		atomic.AddInt64(&s.appMetrics.cacheHits, 1)
		return data, nil
	}
	atomic.AddInt64(&s.appMetrics.cacheMisses, 1)

	v, err, _ := s.budgetGroup.Do(userID, func() (any, error) {
		cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
		defer cancel()
		budgets, err := s.budgets.ListBudgets(cctx)
		if err != nil {
			return nil, err
		}
		s.budgetCache.Set(userID, budgets)
		return budgets, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.Budget), nil
}

func (s *Server) getTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	if data, found := s.txCache.Get(userID); found {
		atomic.AddInt64(&s.appMetrics.cacheHits, 1)
		return data, nil
	}
	atomic.AddInt64(&s.appMetrics.cacheMisses, 1)

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	txs, err := s.budgets.ListTransactions(cctx)
	if err != nil {
		return nil, err
	}
	s.txCache.Set(userID, txs)
	return txs, nil
}
