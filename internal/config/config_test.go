package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	conf, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", conf.HTTP.Addr)
	assert.Equal(t, "smtp", conf.Mail.Driver)
	assert.Equal(t, 587, conf.SMTP.Port)
	assert.Equal(t, "bulk", conf.Dispatch.RecordMode)
	assert.Equal(t, 2*time.Minute, conf.Dispatch.LeaseTTL)
	assert.Equal(t, "postgres://postgres:@localhost:5432/edutour?sslmode=disable", conf.DSN())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.org")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_USER", "tour@example.org")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("DISPATCH_RECORD_MODE", "incremental")

	conf, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.org", conf.SMTP.Host)
	assert.Equal(t, 465, conf.SMTP.Port)
	assert.Equal(t, "tour@example.org", conf.Mail.FromAddress, "sender defaults to the relay user")
	assert.Equal(t, "postgres://u:p@db:5432/x", conf.DSN())
	assert.Equal(t, "incremental", conf.Dispatch.RecordMode)
}
