package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "3901", cfg.Port)
	assert.Equal(t, "http://localhost:3901", cfg.AppURL)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "world", cfg.Country)
	assert.Equal(t, domain.AttachHead, cfg.BodyLocation())
	assert.Equal(t, 5*time.Second, cfg.SyncInterval)
	assert.Equal(t, 2*time.Second, cfg.ResourceCallTimeout)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 100, cfg.MaxWebSocketClients)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("COUNTRY", "france")
	t.Setenv("ATTACH_POINT", "neck")
	t.Setenv("SYNC_INTERVAL", "1500ms")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "france", cfg.Country)
	assert.Equal(t, domain.AttachNeck, cfg.BodyLocation())
	assert.Equal(t, 1500*time.Millisecond, cfg.SyncInterval)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"zero sync interval", "SYNC_INTERVAL", "0s", "SYNC_INTERVAL must be positive"},
		{"negative call timeout", "RESOURCE_CALL_TIMEOUT", "-1s", "RESOURCE_CALL_TIMEOUT must be positive"},
		{"unknown attach point", "ATTACH_POINT", "tail", "invalid attach point"},
		{"none attach point", "ATTACH_POINT", "none", "invalid attach point"},
		{"zero rate", "EVENT_RATE_LIMIT", "0", "EVENT_RATE_LIMIT"},
		{"no websocket clients", "MAX_WEBSOCKET_CLIENTS", "0", "MAX_WEBSOCKET_CLIENTS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
