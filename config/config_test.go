package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("JWT_SECRET_KEY", "")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10, cfg.SaltRound)
	assert.Equal(t, "* * * * *", cfg.InvoiceSweepSpec)
	assert.Contains(t, cfg.Warnings(), "Using default JWT_SECRET_KEY. Update it in your environment.")
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "lms")
	t.Setenv("JWT_TTL", "90m")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "root:pw@tcp(db:3306)/lms?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN())
}

func TestParseRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Parse()
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestDSNOverride(t *testing.T) {
	cfg := &Config{DBDriver: "postgres", DBDSN: "postgres://u:p@h/db"}
	assert.Equal(t, "postgres://u:p@h/db", cfg.DSN())

	cfg = &Config{DBDriver: "sqlite", DBName: "local"}
	assert.Equal(t, "local.db", cfg.DSN())
}
