package utils

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ENV                   = "ENV"
	PORT                  = "PORT"
	MONGODB_URI           = "MONGODB_URI"
	MONGODB_DATABASE      = "MONGODB_DATABASE"
	MYSQL_URI             = "MYSQL_URI"
	REDIS_URI             = "REDIS_URI"
	AMQP_URI              = "AMQP_URI"
	JWT_SECRET            = "JWT_SECRET"
	JWT_TTL               = "JWT_TTL"
	MAIL_HOST             = "MAIL_HOST"
	MAIL_PORT             = "MAIL_PORT"
	MAIL_USER             = "MAIL_USER"
	MAIL_PASS             = "MAIL_PASS"
	MAIL_FROM             = "MAIL_FROM"
	LEAD_NOTIFY_TO        = "LEAD_NOTIFY_TO"
	CORS_ORIGINS          = "CORS_ORIGINS"
	TRUSTED_PROXIES       = "TRUSTED_PROXIES"
	RATE_LIMIT_PER_MINUTE = "RATE_LIMIT_PER_MINUTE"
	ADMIN_EMAIL           = "ADMIN_EMAIL"
	ADMIN_PASSWORD        = "ADMIN_PASSWORD"

	ENV_DEVELOPMENT = "development"
	ENV_HOMOLOG     = "homolog"
	ENV_RELEASE     = "production"
)

const (
	defaultPort            = "5000"
	defaultMongoURI        = "mongodb://localhost:27017"
	defaultJWTSecret       = "development-only-secret"
	defaultJWTTTL          = 24 * time.Hour
	defaultMailPort        = 587
	defaultRateLimit       = 30
	defaultAdminEmail      = "admin@opsdesk.local"
	defaultAdminPassword   = "password"
	defaultLeadNotifyTo    = "info@opsdesk.local"
	defaultDevCORSOrigins  = "http://localhost:5173,http://localhost:3000"
	developmentSecretUsage = "[ENV] JWT_SECRET ausente, usando segredo de desenvolvimento"
)

var allowedEnvValues = []string{ENV_DEVELOPMENT, ENV_HOMOLOG, ENV_RELEASE}

var ErrMissingSecret = errors.New("JWT_SECRET is required in production")

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	NotifyTo string
}

// Enabled reports whether an SMTP relay was configured.
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

type Config struct {
	Env           string
	Port          string
	MongoURI      string
	MongoDatabase string
	MySQLURI      string
	RedisURI      string
	AMQPURI       string
	JWTSecret     string
	JWTTTL        time.Duration
	Mail          MailConfig
	CORSOrigins   []string
	// TrustedProxies are the CIDRs or addresses allowed to set
	// X-Forwarded-For. Empty means the socket address is the client.
	TrustedProxies  []string
	RateLimitPerMin int
	AdminEmail      string
	AdminPassword   string

	// Warnings collects non-fatal notes produced while loading, logged once a
	// logger exists.
	Warnings []string
}

func (c *Config) IsProduction() bool {
	return c.Env == ENV_RELEASE
}

func (c *Config) Address() string {
	return ":" + c.Port
}

// LoadConfig reads an optional .env file from the working directory and then
// builds the configuration from the process environment. Values already set
// in the environment win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("[ENV] Erro ao ler o arquivo .env: %w", err)
	}
	return ConfigFromEnv(os.LookupEnv)
}

// ConfigFromEnv builds a Config from the given lookup function.
func ConfigFromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := &Config{
		Env:           get(ENV, ENV_DEVELOPMENT),
		Port:          get(PORT, defaultPort),
		MongoURI:      get(MONGODB_URI, defaultMongoURI),
		MySQLURI:      get(MYSQL_URI, ""),
		RedisURI:      get(REDIS_URI, ""),
		AMQPURI:       get(AMQP_URI, ""),
		JWTSecret:     get(JWT_SECRET, ""),
		AdminEmail:    strings.ToLower(get(ADMIN_EMAIL, defaultAdminEmail)),
		AdminPassword: get(ADMIN_PASSWORD, defaultAdminPassword),
		Mail: MailConfig{
			Host:     get(MAIL_HOST, ""),
			User:     get(MAIL_USER, ""),
			Password: get(MAIL_PASS, ""),
			From:     get(MAIL_FROM, ""),
			NotifyTo: get(LEAD_NOTIFY_TO, defaultLeadNotifyTo),
		},
	}

	if !slices.Contains(allowedEnvValues, cfg.Env) {
		return nil, fmt.Errorf("[ENV] Valor inválido para ENV: %s. Valores permitidos: %s",
			cfg.Env, strings.Join(allowedEnvValues, ", "))
	}

	cfg.MongoDatabase = get(MONGODB_DATABASE, cfg.Env)

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, ErrMissingSecret
		}
		cfg.JWTSecret = defaultJWTSecret
		cfg.Warnings = append(cfg.Warnings, developmentSecretUsage)
	}

	ttl, err := time.ParseDuration(get(JWT_TTL, defaultJWTTTL.String()))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("[ENV] JWT_TTL inválido: %q", get(JWT_TTL, ""))
	}
	cfg.JWTTTL = ttl

	cfg.Mail.Port, err = strconv.Atoi(get(MAIL_PORT, strconv.Itoa(defaultMailPort)))
	if err != nil {
		return nil, fmt.Errorf("[ENV] MAIL_PORT inválido: %w", err)
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.User
	}

	cfg.RateLimitPerMin, err = strconv.Atoi(get(RATE_LIMIT_PER_MINUTE, strconv.Itoa(defaultRateLimit)))
	if err != nil || cfg.RateLimitPerMin <= 0 {
		return nil, fmt.Errorf("[ENV] RATE_LIMIT_PER_MINUTE inválido: %q", get(RATE_LIMIT_PER_MINUTE, ""))
	}

	origins := get(CORS_ORIGINS, "")
	if origins == "" && !cfg.IsProduction() {
		origins = defaultDevCORSOrigins
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	for _, p := range strings.Split(get(TRUSTED_PROXIES, ""), ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.TrustedProxies = append(cfg.TrustedProxies, p)
		}
	}

	if cfg.IsProduction() && cfg.AdminPassword == defaultAdminPassword {
		cfg.Warnings = append(cfg.Warnings, "[ENV] ADMIN_PASSWORD padrão em produção")
	}

	return cfg, nil
}
