// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/roadmaphub/internal/app/system/drafting"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// minCursorKeyLen is the shortest cursor signing key accepted in production.
const minCursorKeyLen = 32

// appConfigKeys defines the configuration keys for RoadmapHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: ROADMAPHUB_MONGO_URI, ROADMAPHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "roadmap_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer tokens
	{Name: "jwt_secret", Default: "", Desc: "HS256 shared secret for bearer tokens"},
	{Name: "jwt_public_key_path", Default: "", Desc: "Path to a PEM public key for RS256/ES256 bearer tokens"},
	{Name: "jwt_issuer", Default: "", Desc: "Required token issuer (blank to skip)"},
	{Name: "jwt_audience", Default: "", Desc: "Required token audience (blank to skip)"},
	{Name: "userinfo_url", Default: "", Desc: "OIDC userinfo endpoint used when tokens lack email/name"},

	// Development bypass
	{Name: "dev_auth_bypass", Default: false, Desc: "Treat requests without a token as dev_user_id (never in prod)"},
	{Name: "dev_user_id", Default: "dev_user_1", Desc: "Subject used by the development bypass"},

	// Authoring policy
	{Name: "allow_self_admin", Default: false, Desc: "Allow callers to register themselves as admin"},
	{Name: "open_authoring", Default: false, Desc: "Let every role create roadmaps and request drafts"},

	// Paging
	{Name: "cursor_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Key for signing paging cursors (>= 32 bytes in prod)"},

	// Rate limiting
	{Name: "redis_url", Default: "", Desc: "Redis URL for shared rate limits (blank uses in-process limits)"},
	{Name: "draft_rate_limit", Default: 10, Desc: "Draft requests allowed per user per window"},
	{Name: "draft_rate_window", Default: "1h", Desc: "Draft rate limit window (e.g., 1h, 15m)"},

	// Drafting model
	{Name: "gemini_api_key", Default: "", Desc: "Gemini API key (blank disables drafting)"},
	{Name: "gemini_model", Default: drafting.DefaultModel, Desc: "Gemini model used for drafts"},
	{Name: "generate_timeout", Default: "45s", Desc: "Deadline for one draft generation call"},

	// Audit logging settings
	{Name: "audit_log_account", Default: "all", Desc: "Account event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_content", Default: "all", Desc: "Roadmap/progress event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Seeding
	{Name: "seed_roadmaps", Default: false, Desc: "Insert starter roadmaps when the collection is empty"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ROADMAPHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ROADMAPHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:        appValues.String("jwt_secret"),
		JWTPublicKeyPath: appValues.String("jwt_public_key_path"),
		JWTIssuer:        appValues.String("jwt_issuer"),
		JWTAudience:      appValues.String("jwt_audience"),
		UserInfoURL:      appValues.String("userinfo_url"),

		DevAuthBypass: appValues.Bool("dev_auth_bypass"),
		DevUserID:     appValues.String("dev_user_id"),

		AllowSelfAdmin: appValues.Bool("allow_self_admin"),
		OpenAuthoring:  appValues.Bool("open_authoring"),

		CursorKey: appValues.String("cursor_key"),

		RedisURL:        appValues.String("redis_url"),
		DraftRateLimit:  appValues.Int("draft_rate_limit"),
		DraftRateWindow: appValues.Duration("draft_rate_window", time.Hour),

		GeminiAPIKey:    appValues.String("gemini_api_key"),
		GeminiModel:     appValues.String("gemini_model"),
		GenerateTimeout: appValues.Duration("generate_timeout", 45*time.Second),

		AuditLogAccount: appValues.String("audit_log_account"),
		AuditLogContent: appValues.String("audit_log_content"),

		SeedRoadmaps: appValues.Bool("seed_roadmaps"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// RoadmapHub refuses to run the development auth bypass in production and
// requires a way to verify bearer tokens whenever the bypass is off.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(coreCfg.Env == "prod", appCfg)
}

// validateApp holds the checks that depend only on AppConfig and whether we
// are running in production.
func validateApp(prod bool, appCfg AppConfig) error {
	var errs []error

	if appCfg.DevAuthBypass && prod {
		errs = append(errs, errors.New("dev_auth_bypass must not be enabled when env is prod"))
	}
	switch {
	case appCfg.JWTSecret != "" && appCfg.JWTPublicKeyPath != "":
		errs = append(errs, errors.New("set only one of jwt_secret and jwt_public_key_path"))
	case appCfg.JWTSecret == "" && appCfg.JWTPublicKeyPath == "" && !appCfg.DevAuthBypass:
		errs = append(errs, errors.New("jwt_secret or jwt_public_key_path is required unless dev_auth_bypass is enabled"))
	}
	if prod && len(appCfg.CursorKey) < minCursorKeyLen {
		errs = append(errs, fmt.Errorf("cursor_key must be at least %d bytes in prod", minCursorKeyLen))
	}
	if appCfg.UserInfoURL != "" && !urlutil.IsValidAbsHTTPURL(appCfg.UserInfoURL) {
		errs = append(errs, errors.New("userinfo_url must be an absolute http(s) URL"))
	}
	if appCfg.RedisURL != "" {
		if _, err := redis.ParseURL(appCfg.RedisURL); err != nil {
			errs = append(errs, fmt.Errorf("invalid redis_url: %w", err))
		}
	}
	if appCfg.DraftRateLimit < 1 {
		errs = append(errs, errors.New("draft_rate_limit must be at least 1"))
	}
	if appCfg.DraftRateWindow <= 0 {
		errs = append(errs, errors.New("draft_rate_window must be positive"))
	}
	for name, v := range map[string]string{"audit_log_account": appCfg.AuditLogAccount, "audit_log_content": appCfg.AuditLogContent} {
		switch v {
		case "", "all", "db", "log", "off":
		default:
			errs = append(errs, fmt.Errorf("%s must be one of all, db, log, off (got %q)", name, v))
		}
	}

	return errors.Join(errs...)
}
