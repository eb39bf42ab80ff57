// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries everything specific to RoadmapHub: the MongoDB and
// Redis backends, how bearer tokens are verified, who may author roadmaps,
// and the drafting model.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer token verification. Exactly one of JWTSecret (HS256) or
	// JWTPublicKeyPath (RS256/ES256 PEM) is used.
	JWTSecret        string
	JWTPublicKeyPath string
	JWTIssuer        string // blank disables the iss check
	JWTAudience      string // blank disables the aud check
	UserInfoURL      string // OIDC userinfo endpoint for missing email/name claims

	// Development bypass: requests without a token act as DevUserID.
	// Refused in production by ValidateConfig.
	DevAuthBypass bool
	DevUserID     string

	// Authoring policy
	AllowSelfAdmin bool // callers may register themselves as admin
	OpenAuthoring  bool // any role may create roadmaps and request drafts

	// CursorKey signs paging cursors (>= 32 bytes in production).
	CursorKey string

	// RedisURL, when set, backs the draft rate limiter so limits are shared
	// across instances (e.g., redis://localhost:6379/0).
	RedisURL        string
	DraftRateLimit  int
	DraftRateWindow time.Duration

	// Drafting model. Drafting is disabled when GeminiAPIKey is blank.
	GeminiAPIKey    string
	GeminiModel     string
	GenerateTimeout time.Duration

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLogAccount string
	AuditLogContent string

	// SeedRoadmaps inserts the starter catalog when the roadmaps collection
	// is empty.
	SeedRoadmaps bool
}
