package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/whisperfi/whisperd/pkg/logger"
)

const (
	// DefaultPort is the default port for the API server
	DefaultPort = "8080"

	// DefaultAICallLimit is the default oracle call budget
	DefaultAICallLimit = 100

	// DefaultAICallWindowHours is the default budget window; zero means
	// the budget covers the whole process lifetime
	DefaultAICallWindowHours = 0

	// DefaultGasPriceMultiplier is the default markup on suggested gas prices
	DefaultGasPriceMultiplier = 1.1

	// Per-chain public RPC defaults

	EthereumChainID       = 1
	DefaultEthereumRPCURL = "https://eth.llamarpc.com"

	OptimismChainID       = 10
	DefaultOptimismRPCURL = "https://mainnet.optimism.io"

	BaseChainID       = 8453
	DefaultBaseRPCURL = "https://mainnet.base.org"

	ArbitrumChainID       = 42161
	DefaultArbitrumRPCURL = "https://arb1.arbitrum.io/rpc"
)

// GetEnvPort returns the API server port from environment variables
func GetEnvPort() (string, error) {
	port := os.Getenv("PORT")
	if port == "" {
		return DefaultPort, nil
	}

	// Validate port format
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("invalid PORT value: %s, must be a valid integer", port)
	}
	return port, nil
}

// GetEnvAICallLimit returns the oracle call budget from environment variables
func GetEnvAICallLimit() (int, error) {
	limit := os.Getenv("AI_CALL_LIMIT")
	if limit == "" {
		return DefaultAICallLimit, nil
	}

	limitInt, err := strconv.Atoi(limit)
	if err != nil {
		return 0, fmt.Errorf("invalid AI_CALL_LIMIT value: %s, must be an integer", limit)
	}
	if limitInt <= 0 {
		return 0, fmt.Errorf("AI_CALL_LIMIT must be greater than 0")
	}
	return limitInt, nil
}

// GetEnvAICallWindowHours returns the budget window in hours from
// environment variables. Zero disables window resets.
func GetEnvAICallWindowHours() (float64, error) {
	window := os.Getenv("AI_CALL_LIMIT_WINDOW_HOURS")
	if window == "" {
		return DefaultAICallWindowHours, nil
	}

	windowFloat, err := strconv.ParseFloat(window, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid AI_CALL_LIMIT_WINDOW_HOURS value: %s, must be a number", window)
	}
	if windowFloat < 0 {
		return 0, fmt.Errorf("AI_CALL_LIMIT_WINDOW_HOURS must be greater than or equal to 0")
	}
	return windowFloat, nil
}

// GetEnvGasPriceMultiplier returns the gas price markup from environment variables
func GetEnvGasPriceMultiplier() (float64, error) {
	multiplier := os.Getenv("GAS_PRICE_MULTIPLIER")
	if multiplier == "" {
		return DefaultGasPriceMultiplier, nil
	}

	multiplierFloat, err := strconv.ParseFloat(multiplier, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid GAS_PRICE_MULTIPLIER value: %s, must be a number", multiplier)
	}
	if multiplierFloat < 1 {
		return 0, fmt.Errorf("GAS_PRICE_MULTIPLIER must be greater than or equal to 1")
	}
	return multiplierFloat, nil
}

// GetEnvFlashbotsEnabled returns whether private relay submission is
// enabled from environment variables
func GetEnvFlashbotsEnabled() (bool, error) {
	enabled := os.Getenv("FLASHBOTS_ENABLED")
	if enabled == "" {
		return false, nil
	}

	if enabled == "true" {
		return true, nil
	} else if enabled == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid FLASHBOTS_ENABLED value: %s, must be 'true' or 'false'", enabled)
}

// GetEnvLiFiBaseURL returns the quote provider base URL from environment
// variables; empty selects the client's built-in default
func GetEnvLiFiBaseURL() (string, error) {
	baseURL := os.Getenv("LIFI_BASE_URL")
	if baseURL == "" {
		return "", nil
	}

	// Validate URL format
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return "", fmt.Errorf("invalid LIFI_BASE_URL value: %s, must be a valid URL", baseURL)
	}
	return baseURL, nil
}

// GetEnvLogLevel returns the log level from environment variables
func GetEnvLogLevel() (logger.Level, error) {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return logger.InfoLevel, nil
	}

	switch level {
	case "debug":
		return logger.DebugLevel, nil
	case "info":
		return logger.InfoLevel, nil
	case "notice":
		return logger.NoticeLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL value: %s, must be 'debug', 'info', 'notice' or 'error'", level)
}

// GetEnvLogColoring returns whether log coloring is enabled from environment variables
func GetEnvLogColoring() (bool, error) {
	coloring := os.Getenv("LOG_COLORING")
	if coloring == "" {
		return true, nil
	}

	if coloring == "true" {
		return true, nil
	} else if coloring == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid LOG_COLORING value: %s, must be 'true' or 'false'", coloring)
}

// GetEnvRPCURLs returns the per-chain RPC endpoints from environment
// variables, falling back to public defaults
func GetEnvRPCURLs() (map[int]string, error) {
	urls := map[int]string{}

	for _, chain := range []struct {
		chainID    int
		envVar     string
		defaultURL string
	}{
		{EthereumChainID, "ETHEREUM_RPC_URL", DefaultEthereumRPCURL},
		{OptimismChainID, "OPTIMISM_RPC_URL", DefaultOptimismRPCURL},
		{BaseChainID, "BASE_RPC_URL", DefaultBaseRPCURL},
		{ArbitrumChainID, "ARBITRUM_RPC_URL", DefaultArbitrumRPCURL},
	} {
		rpc := os.Getenv(chain.envVar)
		if rpc == "" {
			rpc = chain.defaultURL
		}
		if _, err := url.ParseRequestURI(rpc); err != nil {
			return nil, fmt.Errorf("invalid %s value: %s, must be a valid URL", chain.envVar, rpc)
		}
		urls[chain.chainID] = rpc
	}

	return urls, nil
}
