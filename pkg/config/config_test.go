package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whisperfi/whisperd/pkg/logger"
)

func TestGetEnvPort(t *testing.T) {
	t.Setenv("PORT", "")
	port, err := GetEnvPort()
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, port)

	t.Setenv("PORT", "9090")
	port, err = GetEnvPort()
	require.NoError(t, err)
	assert.Equal(t, "9090", port)

	t.Setenv("PORT", "not-a-port")
	_, err = GetEnvPort()
	assert.Error(t, err)
}

func TestGetEnvAICallLimit(t *testing.T) {
	t.Setenv("AI_CALL_LIMIT", "")
	limit, err := GetEnvAICallLimit()
	require.NoError(t, err)
	assert.Equal(t, DefaultAICallLimit, limit)

	t.Setenv("AI_CALL_LIMIT", "50")
	limit, err = GetEnvAICallLimit()
	require.NoError(t, err)
	assert.Equal(t, 50, limit)

	t.Setenv("AI_CALL_LIMIT", "0")
	_, err = GetEnvAICallLimit()
	assert.Error(t, err)

	t.Setenv("AI_CALL_LIMIT", "many")
	_, err = GetEnvAICallLimit()
	assert.Error(t, err)
}

func TestGetEnvAICallWindowHours(t *testing.T) {
	t.Setenv("AI_CALL_LIMIT_WINDOW_HOURS", "")
	window, err := GetEnvAICallWindowHours()
	require.NoError(t, err)
	assert.Equal(t, 0.0, window)

	t.Setenv("AI_CALL_LIMIT_WINDOW_HOURS", "24")
	window, err = GetEnvAICallWindowHours()
	require.NoError(t, err)
	assert.Equal(t, 24.0, window)

	t.Setenv("AI_CALL_LIMIT_WINDOW_HOURS", "-1")
	_, err = GetEnvAICallWindowHours()
	assert.Error(t, err)
}

func TestGetEnvGasPriceMultiplier(t *testing.T) {
	t.Setenv("GAS_PRICE_MULTIPLIER", "")
	multiplier, err := GetEnvGasPriceMultiplier()
	require.NoError(t, err)
	assert.Equal(t, DefaultGasPriceMultiplier, multiplier)

	t.Setenv("GAS_PRICE_MULTIPLIER", "1.5")
	multiplier, err = GetEnvGasPriceMultiplier()
	require.NoError(t, err)
	assert.Equal(t, 1.5, multiplier)

	t.Setenv("GAS_PRICE_MULTIPLIER", "0.5")
	_, err = GetEnvGasPriceMultiplier()
	assert.Error(t, err)
}

func TestGetEnvFlashbotsEnabled(t *testing.T) {
	t.Setenv("FLASHBOTS_ENABLED", "")
	enabled, err := GetEnvFlashbotsEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	t.Setenv("FLASHBOTS_ENABLED", "true")
	enabled, err = GetEnvFlashbotsEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	t.Setenv("FLASHBOTS_ENABLED", "yes")
	_, err = GetEnvFlashbotsEnabled()
	assert.Error(t, err)
}

func TestGetEnvLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	level, err := GetEnvLogLevel()
	require.NoError(t, err)
	assert.Equal(t, logger.InfoLevel, level)

	t.Setenv("LOG_LEVEL", "debug")
	level, err = GetEnvLogLevel()
	require.NoError(t, err)
	assert.Equal(t, logger.DebugLevel, level)

	t.Setenv("LOG_LEVEL", "verbose")
	_, err = GetEnvLogLevel()
	assert.Error(t, err)
}

func TestGetEnvRPCURLs(t *testing.T) {
	t.Setenv("BASE_RPC_URL", "")
	t.Setenv("ETHEREUM_RPC_URL", "")
	t.Setenv("OPTIMISM_RPC_URL", "")
	t.Setenv("ARBITRUM_RPC_URL", "")
	urls, err := GetEnvRPCURLs()
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseRPCURL, urls[BaseChainID])
	assert.Len(t, urls, 4)

	t.Setenv("BASE_RPC_URL", "https://base.example.com")
	urls, err = GetEnvRPCURLs()
	require.NoError(t, err)
	assert.Equal(t, "https://base.example.com", urls[BaseChainID])
	assert.Equal(t, DefaultArbitrumRPCURL, urls[ArbitrumChainID])

	t.Setenv("ETHEREUM_RPC_URL", "not a url")
	_, err = GetEnvRPCURLs()
	assert.Error(t, err)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PRIVATE_KEY", "abc123")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "abc123", cfg.PrivateKey)
	assert.Equal(t, DefaultAICallLimit, cfg.AICallLimit)
	assert.Equal(t, DefaultGasPriceMultiplier, cfg.GasPriceMultiplier)
	assert.False(t, cfg.FlashbotsEnabled)
	assert.True(t, cfg.LoggerConfig.Coloring)
	assert.Len(t, cfg.RPCURLs, 4)
}
