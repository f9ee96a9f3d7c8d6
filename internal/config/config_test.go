package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "vaxtrack", cfg.MongoDatabase)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("API_PORT", "9999")
	t.Setenv("MONGO_DATABASE", "vaxtrack_test")
	t.Setenv("TIMEZONE", "Asia/Ho_Chi_Minh")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "vaxtrack_test", cfg.MongoDatabase)
	assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.Timezone)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}
