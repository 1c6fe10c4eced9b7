package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "DB_DRIVER", "DB_PORT", "JWT_TTL", "REDIS_DB", "ASSET_TIMEOUT", "CORS_ORIGINS", "CACHE_TTL", "IS_PROD"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 30*time.Second, cfg.AssetTimeout)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.False(t, cfg.IsProd)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_USER", "ledger")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "expenses")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("IS_PROD", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ASSET_TIMEOUT", "not-a-duration")

	cfg := LoadConfig()

	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.IsProd)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.AssetTimeout)
	assert.Equal(t, "host=db user=ledger password=secret dbname=expenses port=5432 sslmode=disable", cfg.DSN())
}

func TestDSN(t *testing.T) {
	mysql := &Config{DBDriver: DriverMySQL, DBUser: "u", DBPassword: "p", DBHost: "h", DBName: "n"}
	assert.Equal(t, "u:p@tcp(h:3306)/n?parseTime=true", mysql.DSN())

	sqlite := &Config{DBDriver: DriverSQLite, DBPath: "/tmp/x.db"}
	assert.Equal(t, "/tmp/x.db", sqlite.DSN())
}
