// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"

	accountfeature "github.com/dalemusser/roadmaphub/internal/app/features/account"
	auditfeature "github.com/dalemusser/roadmaphub/internal/app/features/auditlog"
	draftsfeature "github.com/dalemusser/roadmaphub/internal/app/features/drafts"
	healthfeature "github.com/dalemusser/roadmaphub/internal/app/features/health"
	progressfeature "github.com/dalemusser/roadmaphub/internal/app/features/progress"
	roadmapsfeature "github.com/dalemusser/roadmaphub/internal/app/features/roadmaps"
	"github.com/dalemusser/roadmaphub/internal/app/store/audit"
	userstore "github.com/dalemusser/roadmaphub/internal/app/store/users"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/auditlog"
	"github.com/dalemusser/roadmaphub/internal/app/system/auth"
	"github.com/dalemusser/roadmaphub/internal/app/system/drafting"
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/dalemusser/roadmaphub/internal/app/system/identity"
	"github.com/dalemusser/roadmaphub/internal/app/system/paging"
	"github.com/dalemusser/roadmaphub/internal/app/system/ratelimit"
	"github.com/dalemusser/roadmaphub/internal/app/system/requestid"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// closeLimiter stops the in-process rate limiter's cleanup goroutine. It is
// set by BuildHandler and called from Shutdown.
var closeLimiter func()

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// RoadmapHub verifies bearer tokens on every request, then mounts the JSON
// APIs: roadmaps, progress, account, and drafting, plus the health check.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	errs := apierr.NewWriter(logger, coreCfg.Env != "prod")

	verifier, err := buildVerifier(appCfg)
	if err != nil {
		logger.Error("token verifier init failed", zap.Error(err))
		return nil, err
	}
	authn := auth.NewAuthenticator(verifier, auth.Options{
		DevBypass:  appCfg.DevAuthBypass,
		DevSubject: appCfg.DevUserID,
	}, errs, logger)
	if appCfg.DevAuthBypass {
		logger.Warn("development auth bypass is enabled", zap.String("dev_user_id", appCfg.DevUserID))
	}

	var lookup identity.ProfileLookup
	if appCfg.UserInfoURL != "" {
		lookup = identity.NewUserInfoClient(appCfg.UserInfoURL, nil)
	}
	profiles := identity.NewResolver(lookup)

	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Account: appCfg.AuditLogAccount,
		Content: appCfg.AuditLogContent,
	})

	gate := &gates.Gate{
		Users:    userstore.New(db),
		Profiles: profiles,
		Audit:    auditLog,
		Errs:     errs,
		Log:      logger,
	}

	cursors := paging.NewCursors([]byte(appCfg.CursorKey))
	limiter := buildLimiter(appCfg, deps, logger)

	generator, err := buildGenerator(appCfg, logger)
	if err != nil {
		logger.Error("drafting model init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)

	// Health check endpoint for load balancers and orchestrators
	var rdb redis.UniversalClient
	if deps.Redis != nil {
		rdb = deps.Redis
	}
	healthHandler := healthfeature.NewHandler(deps.MongoClient, rdb, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		// Attaches the caller Identity for every API route; anonymous
		// requests continue and are gated per route.
		api.Use(authn.Authenticate)

		roadmapsHandler := roadmapsfeature.NewHandler(db, cursors, auditLog, errs, appCfg.OpenAuthoring, logger)
		api.Mount("/roadmaps", roadmapsfeature.Routes(roadmapsHandler, gate))

		progressHandler := progressfeature.NewHandler(db, auditLog, errs, logger)
		api.Mount("/progress", progressfeature.Routes(progressHandler, gate))

		accountHandler := accountfeature.NewHandler(db, profiles, auditLog, errs, appCfg.AllowSelfAdmin, logger)
		api.Mount("/auth", accountfeature.Routes(accountHandler, authn, gate))

		draftsHandler := draftsfeature.NewHandler(generator, limiter, errs, appCfg.OpenAuthoring, logger)
		api.Mount("/drafts", draftsfeature.Routes(draftsHandler, gate))

		auditHandler := auditfeature.NewHandler(db, errs, logger)
		api.Mount("/audit", auditfeature.Routes(auditHandler, gate))
	})

	return r, nil
}

// buildVerifier returns nil (and no error) only when no key is configured,
// which ValidateConfig allows solely under the dev bypass.
func buildVerifier(appCfg AppConfig) (auth.TokenVerifier, error) {
	switch {
	case appCfg.JWTPublicKeyPath != "":
		pemBytes, err := os.ReadFile(appCfg.JWTPublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read jwt_public_key_path: %w", err)
		}
		v, err := auth.NewPublicKeyVerifier(pemBytes, appCfg.JWTIssuer, appCfg.JWTAudience)
		if err != nil {
			return nil, err
		}
		return v, nil
	case appCfg.JWTSecret != "":
		return auth.NewHMACVerifier([]byte(appCfg.JWTSecret), appCfg.JWTIssuer, appCfg.JWTAudience), nil
	default:
		return nil, nil
	}
}

// buildLimiter shares draft limits through Redis when it is configured and
// falls back to per-process counters otherwise.
func buildLimiter(appCfg AppConfig, deps DBDeps, logger *zap.Logger) ratelimit.Limiter {
	if deps.Redis != nil {
		logger.Info("draft rate limits stored in Redis")
		return ratelimit.NewRedis(deps.Redis, "roadmaphub:drafts:", appCfg.DraftRateLimit, appCfg.DraftRateWindow)
	}
	mem := ratelimit.NewMemory(appCfg.DraftRateLimit, appCfg.DraftRateWindow)
	closeLimiter = mem.Close
	return mem
}

// buildGenerator returns a nil Generator when no API key is configured so
// the drafts handler answers 503.
func buildGenerator(appCfg AppConfig, logger *zap.Logger) (drafting.Generator, error) {
	if appCfg.GeminiAPIKey == "" {
		logger.Info("gemini_api_key not set; roadmap drafting disabled")
		return nil, nil
	}
	g, err := drafting.NewGemini(context.Background(), appCfg.GeminiAPIKey, appCfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	return g, nil
}
