// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	accountfeature "github.com/dalemusser/itemmanager/internal/app/features/account"
	auditlogfeature "github.com/dalemusser/itemmanager/internal/app/features/auditlog"
	authgooglefeature "github.com/dalemusser/itemmanager/internal/app/features/authgoogle"
	dashboardfeature "github.com/dalemusser/itemmanager/internal/app/features/dashboard"
	_ "github.com/dalemusser/itemmanager/internal/app/features/dashboard/views"
	errorsfeature "github.com/dalemusser/itemmanager/internal/app/features/errors"
	healthfeature "github.com/dalemusser/itemmanager/internal/app/features/health"
	homefeature "github.com/dalemusser/itemmanager/internal/app/features/home"
	_ "github.com/dalemusser/itemmanager/internal/app/features/home/views"
	itemsfeature "github.com/dalemusser/itemmanager/internal/app/features/items"
	loginfeature "github.com/dalemusser/itemmanager/internal/app/features/login"
	logoutfeature "github.com/dalemusser/itemmanager/internal/app/features/logout"
	signupfeature "github.com/dalemusser/itemmanager/internal/app/features/signup"
	accountstore "github.com/dalemusser/itemmanager/internal/app/store/accounts"
	itemstore "github.com/dalemusser/itemmanager/internal/app/store/items"
	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/dalemusser/itemmanager/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. The session manager, template engine and
// CSRF protection are set up here, then every feature router is mounted.
// Unknown paths redirect to the landing page.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	s := currentServices()
	if s == nil {
		return nil, errors.New("BuildHandler called before Startup")
	}
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser re-reads the account and role on every request, so a
	// deleted account or a role change takes effect immediately.
	sessionMgr.SetUserFetcher(accountstore.NewFetcher(db, logger))

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	limiter := ratelimit.NewLoginLimiter(appCfg.LoginRatePerMinute)

	protect := csrf.Protect(
		[]byte(appCfg.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed", zap.String("path", r.URL.Path), zap.Error(csrf.FailureReason(r)))
			errorsfeature.RenderForbidden(w, r, "Your form expired. Please go back, reload and try again.", "/")
		})),
	)

	r := chi.NewRouter()

	// Must be set before any Mount so subrouters inherit it.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})

	// Health check and static assets sit outside sessions and CSRF.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, s.mirror, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(r chi.Router) {
		if !secure {
			r.Use(plaintextCSRF)
		}
		r.Use(protect)

		// Loads SessionUser into context when signed in.
		r.Use(sessionMgr.LoadSessionUser)

		// Public pages
		homeHandler := homefeature.NewHandler(logger)
		r.Mount("/", homefeature.Routes(homeHandler))

		// Authentication
		signupHandler := signupfeature.NewHandler(db, sessionMgr, errLog, s.audit, s.broker, logger)
		r.Mount("/signup", signupfeature.Routes(signupHandler))

		loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, s.audit, limiter, s.broker, appCfg.GoogleEnabled(), logger)
		r.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, s.broker, logger)
		r.Mount("/logout", logoutfeature.Routes(logoutHandler))

		if appCfg.GoogleEnabled() {
			googleHandler := authgooglefeature.NewHandler(db, sessionMgr, s.audit, s.broker,
				appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
			r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
		}

		// Error pages
		errorsHandler := errorsfeature.NewHandler()
		r.Get("/forbidden", errorsHandler.Forbidden)
		r.Get("/unauthorized", errorsHandler.Unauthorized)

		// Dashboards
		dashboardHandler := dashboardfeature.NewHandler(db, logger)
		r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))
		r.Mount("/admin-dashboard", dashboardfeature.AdminRoutes(dashboardHandler, sessionMgr))
		r.Mount("/user-dashboard", dashboardfeature.UserRoutes(dashboardHandler, sessionMgr))

		// Items
		itemsHandler := itemsfeature.NewHandler(itemstore.New(db), s.mirror, sessionMgr, errLog, logger)
		r.Mount("/items", itemsfeature.Routes(itemsHandler, sessionMgr))
		r.Mount("/create", itemsfeature.CreateRoutes(itemsHandler, sessionMgr))

		// Account
		accountHandler := accountfeature.NewHandler(db, sessionMgr, errLog, s.audit, s.broker, logger)
		r.Mount("/delete-account", accountfeature.Routes(accountHandler, sessionMgr))

		// Audit log (admin)
		auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
		r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))
	})

	return r, nil
}

// plaintextCSRF marks requests as plain HTTP so local development without
// TLS passes the CSRF origin checks.
func plaintextCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}
