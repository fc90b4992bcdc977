// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration; ports, TLS, logging level
// and CORS live in WAFFLE's CoreConfig.
type AppConfig struct {
	// Community API
	APIBaseURL      string        // e.g. http://localhost:8081/api
	APITimeout      time.Duration // bound on every community API request
	ProbeInterval   time.Duration // how often the health worker pings the API
	RefreshSchedule string        // cron spec for background refresh; empty disables

	// Normalization of incomplete records
	FallbackPolicy  string // "random" or "deterministic"
	FallbackSeed    int64  // 0 draws a fresh seed per load
	EmailDomain     string // domain of synthesized emails
	MalformedPolicy string // "drop" or "abort"

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: communityhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Sign-in throttling; 0 disables a check
	LoginIPAttempts    int // per client address per minute
	LoginEmailAttempts int // per email per five minutes

	// Audit store (optional)
	MongoURI      string // MongoDB connection string; empty disables the audit store
	MongoDatabase string // Database name within MongoDB

	// Audit logging destinations: "all", "db", "log" or "off"
	AuditLogAuth       string
	AuditLogModeration string

	// Moderation events (optional)
	KafkaBrokers string // comma-separated; empty disables publishing
	KafkaTopic   string
}
