// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/communityhub/internal/app/console"
	auditlogfeature "github.com/dalemusser/communityhub/internal/app/features/auditlog"
	collectionsfeature "github.com/dalemusser/communityhub/internal/app/features/collections"
	dashboardfeature "github.com/dalemusser/communityhub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/communityhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/communityhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/communityhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/communityhub/internal/app/features/logout"
	"github.com/dalemusser/communityhub/internal/app/system/auditlog"
	"github.com/dalemusser/communityhub/internal/app/system/auth"
	"github.com/dalemusser/communityhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. CommunityHub applies the audit and
// session middleware and mounts the JSON features: health, login/logout,
// the dashboard overview, one router per entity collection and, when the
// audit store is configured, the audit log.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	s, err := current()
	if err != nil {
		return nil, err
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// JSON answers for unknown routes and wrong methods
	errHandler := errorsfeature.NewHandler(logger)
	r.NotFound(errHandler.NotFound)
	r.MethodNotAllowed(errHandler.MethodNotAllowed)

	// Client IP and user agent for audit events.
	r.Use(auditlog.Middleware)
	// Global auth middleware: loads SessionUser (and the mutation actor)
	// into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, s.probe, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	limiter := ratelimit.NewLoginLimiter(appCfg.LoginIPAttempts, appCfg.LoginEmailAttempts)
	loginHandler := loginfeature.NewHandler(sessionMgr, s.audit, limiter, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, s.audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Overview
	dashboardHandler := dashboardfeature.NewHandler(s.console, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Entity collections
	collHandler := collectionsfeature.NewHandler(s.console, logger)
	for _, k := range []console.Kind{console.Users, console.Posts, console.Comments, console.Tags} {
		r.Mount("/"+string(k), collectionsfeature.Routes(collHandler, sessionMgr, k))
	}

	// Audit trail
	if s.auditDB != nil {
		auditHandler := auditlogfeature.NewHandler(s.auditDB, logger)
		r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))
	}

	return r, nil
}
