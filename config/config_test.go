package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL":   "postgres://localhost/swiss?sslmode=disable",
		"JWT_SECRET_KEY": "secret",
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 2, cfg.WinsNeeded)
	assert.Equal(t, 0.85, cfg.PageRankDamping)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.ArchiveEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	env := baseEnv()
	env["SERVER_PORT"] = "9000"
	env["WINS_NEEDED"] = "3"
	env["PAGERANK_DAMPING"] = "0.9"
	env["CORS_ALLOWED_ORIGINS"] = "https://a.example, https://b.example,"
	env["R2_ACCOUNT_ID"] = "acc"
	env["R2_ACCESS_KEY_ID"] = "key"
	env["R2_SECRET_ACCESS_KEY"] = "secret"
	env["R2_BUCKET_NAME"] = "bucket"
	env["R2_PUBLIC_BASE_URL"] = "https://cdn.example"

	cfg, err := FromEnv(envOf(env))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, 3, cfg.WinsNeeded)
	assert.Equal(t, 0.9, cfg.PageRankDamping)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.ArchiveEnabled())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"missing database", "DATABASE_URL", ""},
		{"missing secret", "JWT_SECRET_KEY", ""},
		{"bad port", "SERVER_PORT", "http"},
		{"port out of range", "SERVER_PORT", "70000"},
		{"zero wins", "WINS_NEEDED", "0"},
		{"bad damping", "PAGERANK_DAMPING", "1.2"},
		{"partial r2", "R2_BUCKET_NAME", "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			env[tt.key] = tt.value
			_, err := FromEnv(envOf(env))
			assert.Error(t, err)
		})
	}
}
