package config // package config loads application configuration from environment variables

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	CookieSecure   bool
	CookieSameSite http.SameSite
	CookieDomain   string
	CORSOrigins    []string

	AMQPURL     string // empty disables task activity events
	LogLevel    string
	Debug       bool
	AutoMigrate bool
}

// Load reads a .env file when one exists and then builds a Config from the
// environment.  All missing required variables are reported in one error.
func Load() (Config, error) {
	_ = godotenv.Load()

	var missing []string
	must := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8080"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 60),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     envInt("BCRYPT_COST", bcrypt.DefaultCost),
		CookieSecure:   envBool("COOKIE_SECURE", false),
		CookieSameSite: parseSameSite(envStr("COOKIE_SAMESITE", "lax")),
		CookieDomain:   os.Getenv("COOKIE_DOMAIN"),
		CORSOrigins:    splitList(envStr("CORS_ORIGINS", "http://localhost:5173")),
		AMQPURL:        firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		Debug:          envBool("APP_DEBUG", false),
		AutoMigrate:    envBool("MIGRATIONS_AUTO", false),
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if cfg.AccessTTLMin < 1 {
		return Config{}, fmt.Errorf("invalid ACCESS_TOKEN_TTL_MIN: %d", cfg.AccessTTLMin)
	}
	if cfg.RefreshTTLDays < 1 {
		return Config{}, fmt.Errorf("invalid REFRESH_TOKEN_TTL_DAYS: %d", cfg.RefreshTTLDays)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("invalid BCRYPT_COST: %d", cfg.BcryptCost)
	}
	return cfg, nil
}

// IsProd reports whether the app runs in production mode.
func (c Config) IsProd() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}
