package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "elitepay", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, int32(5), cfg.Database.MinConns)

	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "elitepay", cfg.JWT.Issuer)

	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.False(t, cfg.SMTP.Enabled)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoad_LedgerDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Ledger.FeeThresholdDecimal().Equal(decimal.NewFromInt(500)))
	assert.True(t, cfg.Ledger.FeeRateDecimal().Equal(decimal.NewFromFloat(0.02)))
	assert.True(t, cfg.Ledger.PinThresholdDecimal().Equal(decimal.NewFromInt(100)))
	assert.True(t, cfg.Ledger.RewardThresholdDecimal().Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, "Asia/Kolkata", cfg.Ledger.Timezone)
	assert.Equal(t, "Asia/Kolkata", cfg.Ledger.Location().String())
}

func TestLedgerConfig_BadValuesFallBack(t *testing.T) {
	l := LedgerConfig{
		FeeThreshold: "not-a-number",
		FeeRate:      "",
		Timezone:     "Not/AZone",
	}

	assert.True(t, l.FeeThresholdDecimal().Equal(decimal.NewFromInt(500)))
	assert.True(t, l.FeeRateDecimal().Equal(decimal.NewFromFloat(0.02)))
	assert.Equal(t, time.UTC, l.Location())
}

func TestLoad_FromYAMLFile(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9090
  mode: "release"
database:
  host: "db.example.com"
  port: 5433
  user: "appuser"
  password: "secret123"
  dbname: "walletdb"
ledger:
  fee_threshold: "1000"
  fee_rate: "0.05"
  timezone: "UTC"
smtp:
  enabled: true
  from: "receipts@example.com"
`)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, "walletdb", cfg.Database.DBName)
	assert.True(t, cfg.Ledger.FeeThresholdDecimal().Equal(decimal.NewFromInt(1000)))
	assert.True(t, cfg.Ledger.FeeRateDecimal().Equal(decimal.NewFromFloat(0.05)))
	assert.Equal(t, time.UTC, cfg.Ledger.Location())
	assert.True(t, cfg.SMTP.Enabled)
	assert.Equal(t, "receipts@example.com", cfg.SMTP.From)

	// Unspecified keys keep defaults.
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("EP_SERVER_PORT", "7070")
	t.Setenv("EP_DATABASE_HOST", "env-db")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-db", cfg.Database.Host)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p",
		DBName: "elitepay", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@localhost:5432/elitepay?sslmode=disable", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
