package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "APP_NAME", "LOG_LEVEL", "SERVER_PORT", "MAX_UPLOAD_MB", "RULES_FILE", "JWT_SECRET"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "audit-service", cfg.App.Name)
	assert.Equal(t, 8084, cfg.Server.Port)
	assert.Equal(t, ":8084", cfg.Server.Addr())
	assert.Equal(t, int64(64<<20), cfg.Server.MaxUploadBytes())
	assert.Empty(t, cfg.Audit.RulesFile)
	assert.False(t, cfg.JWT.Enabled())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MAX_UPLOAD_MB", "8")
	t.Setenv("RULES_FILE", "/etc/audit/rules.yaml")
	t.Setenv("JWT_SECRET", "segredo")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Server.MaxUploadMB)
	assert.Equal(t, "/etc/audit/rules.yaml", cfg.Audit.RulesFile)
	assert.True(t, cfg.JWT.Enabled())
	assert.Equal(t, "development", cfg.App.Env)
}

func TestLoad_Invalida(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"SERVER_PORT", "abc"},
		{"SERVER_PORT", "70000"},
		{"MAX_UPLOAD_MB", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
