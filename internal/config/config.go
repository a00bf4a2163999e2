// Package config provides application configuration loaded from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Docs     DocsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
	CORSOrigins  []string
}

// DatabaseConfig holds the connection URL. Postgres URLs and key=value DSNs
// select PostgreSQL; anything else is treated as a SQLite file.
type DatabaseConfig struct {
	URL   string
	Debug bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env        string
	Dev        bool
	Migrations bool
	Seed       bool
	SecretKey  string
	LogLevel   string
}

// DocsConfig locates the synced labor-document tree.
type DocsConfig struct {
	Root         string
	BasePathTmpl string
}

const (
	DefaultDatabaseURL  = "sqlite://rrhh_app_dev.db"
	DefaultNextcloudDir = "/mnt/nextcloud/DOCUMENTACION LABORAL"
	DefaultBasePathTmpl = "DOCUMENTACION LABORAL/EMPLEADORES/{empleador}/TRABAJADORES/{carpeta_trabajador}"
)

// Driver reports which gorm dialector the URL selects: "postgres" or "sqlite".
func (d DatabaseConfig) Driver() string {
	lower := strings.ToLower(strings.TrimSpace(d.URL))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "postgres"
	case strings.Contains(lower, "host=") && strings.Contains(lower, "dbname="):
		return "postgres"
	default:
		return "sqlite"
	}
}

// SQLitePath strips the sqlite:// scheme, leaving a path or a file: URI.
func (d DatabaseConfig) SQLitePath() string {
	s := strings.TrimSpace(d.URL)
	for _, p := range []string{"sqlite:///", "sqlite://"} {
		if strings.HasPrefix(s, p) {
			return strings.TrimPrefix(s, p)
		}
	}
	return s
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		dbURL = getEnv("DATABASE_DSN", DefaultDatabaseURL)
	}
	env := getEnv("APP_ENV", "development")
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
			CORSOrigins:  getEnvList("CORS_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:   dbURL,
			Debug: ParseBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Env:        env,
			Dev:        ParseBool("DEV", false),
			Migrations: ParseBool("MIGRATIONS", false),
			Seed:       ParseBool("DB_SEED", true),
			SecretKey:  getEnv("SECRET_KEY", "dev_key"),
			LogLevel:   getEnv("LOG_LEVEL", "info"),
		},
		Docs: DocsConfig{
			Root:         getEnv("NEXTCLOUD_ROOT", DefaultNextcloudDir),
			BasePathTmpl: getEnv("NEXTCLOUD_BASE_PATH", DefaultBasePathTmpl),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseBool reads an env var as bool with default. "yes" is accepted as true.
func ParseBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	if v == "yes" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid boolean for %s: %s", key, v)
		return def
	}
	return b
}
