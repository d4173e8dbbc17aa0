package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetViper clears all viper state between tests.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoad_Defaults(t *testing.T) {
	resetViper(t)
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, 1024, cfg.ReviewMaxTokens)
	assert.Equal(t, 2048, cfg.SynthesisMaxTokens)
	assert.Zero(t, cfg.HTTPTimeout)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.DBPath)
	assert.Empty(t, cfg.APIKey)
	assert.False(t, cfg.Verbose)
}

func TestLoad_EnvOverrides(t *testing.T) {
	resetViper(t)
	viper.SetEnvPrefix("CRITICS")
	viper.AutomaticEnv()

	t.Setenv("CRITICS_PROVIDER", "openai")
	t.Setenv("CRITICS_REVIEW_MODEL", "gpt-4o")
	t.Setenv("CRITICS_REVIEW_MAX_TOKENS", "512")
	t.Setenv("CRITICS_HTTP_TIMEOUT", "45s")
	t.Setenv("CRITICS_ALLOWED_ORIGINS", "https://docs.example.com,http://localhost:5173")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o", cfg.ReviewModel)
	assert.Equal(t, 512, cfg.ReviewMaxTokens)
	assert.Equal(t, 45*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []string{"https://docs.example.com", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, "sk-env", cfg.APIKey)
	assert.Equal(t, "OPENAI_API_KEY", cfg.KeyEnv())
}

func TestLoad_ExplicitKeyWins(t *testing.T) {
	resetViper(t)
	t.Setenv("ANTHROPIC_API_KEY", "from-env")
	viper.Set("api_key", "from-config")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-config", cfg.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"provider", "provider", "cohere"},
		{"review tokens", "review_max_tokens", 0},
		{"synthesis tokens", "synthesis_max_tokens", -1},
		{"timeout", "http_timeout", "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			viper.Set(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
