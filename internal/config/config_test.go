package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("NEXTCLOUD_ROOT", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DefaultDatabaseURL, cfg.Database.URL)
	assert.Equal(t, "sqlite", cfg.Database.Driver())
	assert.Equal(t, "rrhh_app_dev.db", cfg.Database.SQLitePath())
	assert.Equal(t, "dev_key", cfg.App.SecretKey)
	assert.Equal(t, DefaultNextcloudDir, cfg.Docs.Root)
	assert.Equal(t, DefaultBasePathTmpl, cfg.Docs.BasePathTmpl)
}

func TestDriverDetection(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost:5432/rrhh?sslmode=disable": "postgres",
		"postgresql://u@db/rrhh":                             "postgres",
		"host=db user=u dbname=rrhh sslmode=disable":         "postgres",
		"sqlite:///var/lib/rrhh.db":                          "sqlite",
		"file:test?mode=memory&cache=shared":                 "sqlite",
	}
	for url, want := range tests {
		assert.Equal(t, want, DatabaseConfig{URL: url}.Driver(), url)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_DSN", "postgres://x@y/z")
	t.Setenv("MIGRATIONS", "yes")
	t.Setenv("DB_SEED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.cl, https://b.cl,")
	t.Setenv("SERVER_READ_TIMEOUT", "nope")

	cfg := Load()
	assert.Equal(t, "postgres://x@y/z", cfg.Database.URL)
	assert.True(t, cfg.App.Migrations)
	assert.False(t, cfg.App.Seed)
	assert.Equal(t, []string{"https://a.cl", "https://b.cl"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 15, cfg.Server.ReadTimeout)
}
