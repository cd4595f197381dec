package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cabin-engine/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Redis.Enabled)

	settings, err := cfg.Booking.Settings()
	require.NoError(t, err)
	assert.Equal(t, 1, settings.MinNights)
	assert.Equal(t, "15.00", settings.BreakfastPrice.String())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 7000
store:
  driver: postgres
  postgres:
    dsn: postgres://cabins@db/cabins
booking:
  min_nights: 2
  max_nights: 30
  breakfast_price: "12.50"
`)
	t.Setenv("CABIN_SERVER_PORT", "9090")
	t.Setenv("CABIN_KAFKA_ENABLED", "true")
	t.Setenv("CABIN_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, "env wins over file")
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://cabins@db/cabins", cfg.Store.Postgres.ConnString())
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)

	settings, err := cfg.Booking.Settings()
	require.NoError(t, err)
	assert.Equal(t, 2, settings.MinNights)
	assert.Equal(t, "12.50", settings.BreakfastPrice.String())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown driver", "store:\n  driver: mongo\n"},
		{"max below min", "booking:\n  min_nights: 5\n  max_nights: 2\n"},
		{"bad breakfast price", "booking:\n  breakfast_price: free\n"},
		{"short secret", "auth:\n  jwt_secret: short\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPostgresConnString_FromParts(t *testing.T) {
	p := config.PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "cabins", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=cabins sslmode=disable", p.ConnString())
}

func TestNewLogger(t *testing.T) {
	log, err := config.NewLogger(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	_, err = config.NewLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
