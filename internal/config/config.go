package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Jira     JiraConfig
	OAuth    OAuthConfig
	Bot      BotConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines webhook gateway authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// JiraConfig holds the tracker connection values for the bot's own session.
type JiraConfig struct {
	BaseURL        string
	Username       string
	Password       string
	VerifySSL      bool
	TimeoutSeconds int
}

// OAuthConfig holds the OAuth1 consumer identity used for per-user tokens.
type OAuthConfig struct {
	ConsumerKey  string
	ConsumerName string
	RSAKeyPath   string
}

// BotConfig controls chat-facing behavior.
type BotConfig struct {
	CommandPrefix    string
	IssueKeyPattern  string
	ReplyTemplate    string
	SnarfCooldownSec int
}

// DefaultReplyTemplate lists the placeholder set exposed to operators.
const DefaultReplyTemplate = "{type} {key}: {summary} [{status}] assigned to {assignee}{displayTime} {url}"

// DefaultIssueKeyPattern matches conventional tracker keys such as PROJ-123.
const DefaultIssueKeyPattern = `[A-Z][A-Z0-9]+-[0-9]+`

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "tracker-bot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Jira: JiraConfig{
			BaseURL:        getEnv("JIRA_BASE_URL", "http://localhost:2990/jira"),
			Username:       os.Getenv("JIRA_USERNAME"),
			Password:       os.Getenv("JIRA_PASSWORD"),
			VerifySSL:      getEnvAsBool("JIRA_VERIFY_SSL", true),
			TimeoutSeconds: getEnvAsInt("JIRA_TIMEOUT_SECONDS", 30),
		},
		OAuth: OAuthConfig{
			ConsumerKey:  os.Getenv("OAUTH_CONSUMER_KEY"),
			ConsumerName: getEnv("OAUTH_CONSUMER_NAME", "tracker-bot"),
			RSAKeyPath:   os.Getenv("OAUTH_RSA_KEY_PATH"),
		},
		Bot: BotConfig{
			CommandPrefix:    getEnv("BOT_COMMAND_PREFIX", "!"),
			IssueKeyPattern:  getEnv("BOT_ISSUE_KEY_PATTERN", DefaultIssueKeyPattern),
			ReplyTemplate:    getEnv("BOT_REPLY_TEMPLATE", DefaultReplyTemplate),
			SnarfCooldownSec: getEnvAsInt("BOT_SNARF_COOLDOWN_SECONDS", 300),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the tracker HTTP timeout duration.
func (j JiraConfig) Timeout() time.Duration {
	if j.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(j.TimeoutSeconds) * time.Second
}

// RequestTokenURL returns the OAuth1 request-token endpoint for the tracker.
func (j JiraConfig) RequestTokenURL() string {
	return j.BaseURL + "/plugins/servlet/oauth/request-token"
}

// AccessTokenURL returns the OAuth1 access-token endpoint for the tracker.
func (j JiraConfig) AccessTokenURL() string {
	return j.BaseURL + "/plugins/servlet/oauth/access-token"
}

// AuthorizeURL returns the OAuth1 authorize endpoint for the tracker.
func (j JiraConfig) AuthorizeURL() string {
	return j.BaseURL + "/plugins/servlet/oauth/authorize"
}

// SnarfCooldown returns the passive mention cooldown duration.
func (b BotConfig) SnarfCooldown() time.Duration {
	if b.SnarfCooldownSec <= 0 {
		return 0
	}
	return time.Duration(b.SnarfCooldownSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
