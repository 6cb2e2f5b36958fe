package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/thaivisachecklist/server/internal/validation"
	"gopkg.in/yaml.v3"
)

// minKeyLength is the shortest secret accepted for CSRF and cookie signing.
const minKeyLength = 32

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Logging     LoggingConfig   `yaml:"logging"`
	Email       EmailConfig     `yaml:"email"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	CORS        CORSConfig      `yaml:"cors"`
	Security    SecurityConfig  `yaml:"security"`
	Tracing     TracingConfig   `yaml:"tracing"`
	Environment string          `yaml:"environment"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// BaseURL is the public origin used in the sitemap and absolute links.
	BaseURL string `yaml:"base_url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type EmailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"` // resend or smtp
	From     string `yaml:"from"`
	// ContactRecipient receives contact form messages.
	ContactRecipient string `yaml:"contact_recipient"`
	ResendAPIKey     string `yaml:"resend_api_key"`
	SMTPHost         string `yaml:"smtp_host"`
	SMTPPort         int    `yaml:"smtp_port"`
	SMTPUser         string `yaml:"smtp_user"`
	SMTPPassword     string `yaml:"smtp_password"`
}

type RateLimitConfig struct {
	PublicPerMinute   int      `yaml:"public_per_minute"`
	ContactPerHour    int      `yaml:"contact_per_hour"`
	TrustedProxyCIDRs []string `yaml:"trusted_proxy_cidrs"`
}

type CORSConfig struct {
	AllowedOrigins  []string `yaml:"allowed_origins"`
	AllowAllOrigins bool     `yaml:"-"`
}

type SecurityConfig struct {
	CSRFKey       string `yaml:"csrf_key"`
	CookieHashKey string `yaml:"cookie_hash_key"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// IsProduction reports whether the server runs with production safeguards.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			BaseURL: "https://www.thaivisachecklist.com",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Email: EmailConfig{
			Provider: "resend",
			From:     "onboarding@resend.dev",
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 587,
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: 120,
			ContactPerHour:  5,
		},
		Tracing: TracingConfig{
			Exporter:    "stdout",
			ServiceName: "thaivisachecklist",
			SampleRate:  1.0,
		},
		Environment: "development",
	}
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile reads an optional YAML file and then applies environment
// variables on top of it. An empty path skips the file.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := finalize(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.BaseURL = strings.TrimRight(getEnv("SITE_URL", cfg.Server.BaseURL), "/")

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Email.Enabled = getEnvBool("EMAIL_ENABLED", cfg.Email.Enabled)
	cfg.Email.Provider = getEnv("EMAIL_PROVIDER", cfg.Email.Provider)
	cfg.Email.From = getEnv("EMAIL_FROM", cfg.Email.From)
	cfg.Email.ContactRecipient = getEnv("CONTACT_RECIPIENT", cfg.Email.ContactRecipient)
	cfg.Email.ResendAPIKey = getEnv("RESEND_API_KEY", cfg.Email.ResendAPIKey)
	cfg.Email.SMTPHost = getEnv("SMTP_HOST", cfg.Email.SMTPHost)
	cfg.Email.SMTPPort = getEnvInt("SMTP_PORT", cfg.Email.SMTPPort)
	cfg.Email.SMTPUser = getEnv("SMTP_USER", cfg.Email.SMTPUser)
	cfg.Email.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.Email.SMTPPassword)

	cfg.RateLimit.PublicPerMinute = getEnvInt("RATE_LIMIT_PUBLIC", cfg.RateLimit.PublicPerMinute)
	cfg.RateLimit.ContactPerHour = getEnvInt("RATE_LIMIT_CONTACT", cfg.RateLimit.ContactPerHour)
	cfg.RateLimit.TrustedProxyCIDRs = getEnvList("TRUSTED_PROXY_CIDRS", cfg.RateLimit.TrustedProxyCIDRs)

	cfg.CORS.AllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", cfg.CORS.AllowedOrigins)

	cfg.Security.CSRFKey = getEnv("CSRF_KEY", cfg.Security.CSRFKey)
	cfg.Security.CookieHashKey = getEnv("COOKIE_HASH_KEY", cfg.Security.CookieHashKey)

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = getEnv("TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.ServiceName = getEnv("TRACING_SERVICE_NAME", cfg.Tracing.ServiceName)
	cfg.Tracing.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)
	cfg.Tracing.SampleRate = getEnvFloat("TRACING_SAMPLE_RATE", cfg.Tracing.SampleRate)

	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
}

func finalize(cfg *Config) error {
	// Any environment other than production gets permissive CORS and
	// throwaway signing keys.
	if !cfg.IsProduction() {
		cfg.CORS.AllowAllOrigins = true
		if cfg.Security.CSRFKey == "" {
			cfg.Security.CSRFKey = randomKey()
		}
		if cfg.Security.CookieHashKey == "" {
			cfg.Security.CookieHashKey = randomKey()
		}
	} else if len(cfg.CORS.AllowedOrigins) == 0 {
		return errors.New("CORS_ALLOWED_ORIGINS is required in production")
	}

	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")
	if err := validation.ValidateBaseURL(cfg.Server.BaseURL, "SITE_URL", cfg.IsProduction()); err != nil {
		return err
	}
	for _, origin := range cfg.CORS.AllowedOrigins {
		if err := validation.ValidateBaseURL(origin, "CORS_ALLOWED_ORIGINS", false); err != nil {
			return err
		}
	}

	if len(cfg.Security.CSRFKey) < minKeyLength {
		return fmt.Errorf("CSRF_KEY must be at least %d bytes", minKeyLength)
	}
	if len(cfg.Security.CookieHashKey) < minKeyLength {
		return fmt.Errorf("COOKIE_HASH_KEY must be at least %d bytes", minKeyLength)
	}

	if cfg.Email.Enabled {
		if cfg.Email.ContactRecipient == "" {
			return errors.New("CONTACT_RECIPIENT is required when email is enabled")
		}
		switch cfg.Email.Provider {
		case "resend":
			if cfg.Email.ResendAPIKey == "" {
				return errors.New("RESEND_API_KEY is required for the resend provider")
			}
		case "smtp":
			if cfg.Email.SMTPUser == "" || cfg.Email.SMTPPassword == "" {
				return errors.New("SMTP_USER and SMTP_PASSWORD are required for the smtp provider")
			}
		default:
			return fmt.Errorf("unsupported EMAIL_PROVIDER %q (must be resend or smtp)", cfg.Email.Provider)
		}
	}
	return nil
}

func randomKey() string {
	buf := make([]byte, minKeyLength)
	_, _ = rand.Read(buf)
	return string(buf)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
