package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "secreto")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 3, cfg.Ledger.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Ledger.RetryBackoff())
	assert.Equal(t, 5000, cfg.Ledger.LockTimeoutMS)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_ValoresComoTexto(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "secreto")
	v.Set("LEDGER_MAX_ATTEMPTS", "5")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("DB_AUTO_MIGRATE", "true")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Ledger.MaxAttempts)
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.DB.AutoMigrate)
}

func TestFromViper_SinSecretoJWT(t *testing.T) {
	_, err := fromViper(viper.New())
	assert.Error(t, err)
}

func TestFromViper_IntentosInvalidos(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "secreto")
	v.Set("LEDGER_MAX_ATTEMPTS", 0)

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/ledger?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}

func TestLedgerConfig_RetryBackoffCeroDesactivaEspera(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "secreto")
	v.Set("LEDGER_RETRY_BACKOFF_MS", "0")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Ledger.RetryBackoffMS)
	assert.Less(t, cfg.Ledger.RetryBackoff(), time.Duration(0))
	assert.Equal(t, 200*time.Millisecond, LedgerConfig{RetryBackoffMS: 200}.RetryBackoff())
}
