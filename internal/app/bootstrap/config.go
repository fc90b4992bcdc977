// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/communityhub/internal/app/ingest"
	"github.com/dalemusser/communityhub/internal/app/system/events"
	"github.com/dalemusser/communityhub/internal/app/system/ratelimit"
	"github.com/dalemusser/communityhub/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CommunityHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: api_base_url, session_name, etc.
//   - Environment variables: COMMUNITYHUB_API_BASE_URL, COMMUNITYHUB_SESSION_NAME, etc.
//   - Command-line flags: --api_base_url, --session_name, etc.
var appConfigKeys = []config.AppKey{
	// Community API
	{Name: "api_base_url", Default: "http://localhost:8081/api", Desc: "Base URL of the community REST API"},
	{Name: "api_timeout", Default: "10s", Desc: "Timeout for one community API request (e.g., 10s, 1m)"},
	{Name: "probe_interval", Default: "30s", Desc: "How often the health worker pings the community API"},
	{Name: "refresh_schedule", Default: "@every 5m", Desc: "Cron spec for background refresh of users, posts and comments (empty disables)"},

	// Normalization
	{Name: "fallback_policy", Default: "random", Desc: "Values for fields the API omits: 'random' or 'deterministic'"},
	{Name: "fallback_seed", Default: 0, Desc: "Seed for the random fallback (0 = new seed per load)"},
	{Name: "email_domain", Default: "attijari.com", Desc: "Domain of synthesized user emails"},
	{Name: "malformed_policy", Default: "drop", Desc: "Malformed records: 'drop' (skip and log) or 'abort' (fail the load)"},

	// Sessions
	{Name: "session_key", Default: "", Desc: "Session signing key (empty generates one per process)"},
	{Name: "session_name", Default: "communityhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},
	{Name: "login_ip_attempts", Default: ratelimit.DefaultIPAttempts, Desc: "Sign-in attempts allowed per client address per minute (0 disables)"},
	{Name: "login_email_attempts", Default: ratelimit.DefaultEmailAttempts, Desc: "Sign-in attempts allowed per email per five minutes (0 disables)"},

	// Audit store
	{Name: "mongo_uri", Default: "", Desc: "MongoDB connection URI for the audit trail (empty disables it)"},
	{Name: "mongo_database", Default: "communityhub", Desc: "MongoDB database name"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_moderation", Default: "all", Desc: "Moderation event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Moderation events
	{Name: "kafka_brokers", Default: "", Desc: "Comma-separated Kafka brokers for moderation events (empty disables)"},
	{Name: "kafka_topic", Default: events.DefaultTopic, Desc: "Kafka topic for moderation events"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, COMMUNITYHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "COMMUNITYHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		APIBaseURL:      appValues.String("api_base_url"),
		APITimeout:      appValues.Duration("api_timeout", 10*time.Second),
		ProbeInterval:   appValues.Duration("probe_interval", 30*time.Second),
		RefreshSchedule: strings.TrimSpace(appValues.String("refresh_schedule")),

		FallbackPolicy:  strings.ToLower(strings.TrimSpace(appValues.String("fallback_policy"))),
		FallbackSeed:    int64(appValues.Int("fallback_seed")),
		EmailDomain:     strings.TrimSpace(appValues.String("email_domain")),
		MalformedPolicy: appValues.String("malformed_policy"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		LoginIPAttempts:    appValues.Int("login_ip_attempts"),
		LoginEmailAttempts: appValues.Int("login_email_attempts"),

		MongoURI:      strings.TrimSpace(appValues.String("mongo_uri")),
		MongoDatabase: appValues.String("mongo_database"),

		AuditLogAuth:       appValues.String("audit_log_auth"),
		AuditLogModeration: appValues.String("audit_log_moderation"),

		KafkaBrokers: appValues.String("kafka_brokers"),
		KafkaTopic:   appValues.String("kafka_topic"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Everything that can be checked without a network call is checked here,
// before any backend is built.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	u, err := url.Parse(appCfg.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_base_url %q: want an absolute http(s) URL", appCfg.APIBaseURL)
	}
	if appCfg.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be positive, got %s", appCfg.APITimeout)
	}

	switch appCfg.FallbackPolicy {
	case "random", "deterministic":
	default:
		return fmt.Errorf("unknown fallback_policy %q (want random or deterministic)", appCfg.FallbackPolicy)
	}
	if _, err := ingest.ParseBatchPolicy(appCfg.MalformedPolicy); err != nil {
		return err
	}

	if err := tasks.ValidateSchedule(appCfg.RefreshSchedule); err != nil {
		return fmt.Errorf("invalid refresh_schedule: %w", err)
	}

	for key, v := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_moderation": appCfg.AuditLogModeration} {
		switch v {
		case "all", "db", "log", "off":
		default:
			return fmt.Errorf("unknown %s %q (want all, db, log or off)", key, v)
		}
	}

	if appCfg.MongoURI != "" {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	}

	return nil
}
