package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/whisperfi/whisperd/pkg/logger"
)

// Config holds the configuration for the intent daemon
type Config struct {
	Port               string
	OpenAIAPIKey       string
	OpenAIModel        string
	AICallLimit        int
	AICallWindowHours  float64
	RPCURLs            map[int]string
	PrivateKey         string
	FlashbotsEnabled   bool
	LiFiBaseURL        string
	GasPriceMultiplier float64
	LoggerConfig       LoggerConfig
}

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
}

// LoadConfig loads the configuration from environment variables.
// OPENAI_API_KEY and PRIVATE_KEY are optional: without the former the
// daemon runs on the rule-based oracle, without the latter it plans but
// cannot dispatch transactions.
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	port, err := GetEnvPort()
	if err != nil {
		return nil, err
	}

	aiCallLimit, err := GetEnvAICallLimit()
	if err != nil {
		return nil, err
	}

	aiCallWindow, err := GetEnvAICallWindowHours()
	if err != nil {
		return nil, err
	}

	gasMultiplier, err := GetEnvGasPriceMultiplier()
	if err != nil {
		return nil, err
	}

	flashbotsEnabled, err := GetEnvFlashbotsEnabled()
	if err != nil {
		return nil, err
	}

	lifiBaseURL, err := GetEnvLiFiBaseURL()
	if err != nil {
		return nil, err
	}

	rpcURLs, err := GetEnvRPCURLs()
	if err != nil {
		return nil, err
	}

	logLevel, err := GetEnvLogLevel()
	if err != nil {
		return nil, err
	}

	logColoring, err := GetEnvLogColoring()
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:               port,
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        os.Getenv("OPENAI_MODEL"),
		AICallLimit:        aiCallLimit,
		AICallWindowHours:  aiCallWindow,
		RPCURLs:            rpcURLs,
		PrivateKey:         os.Getenv("PRIVATE_KEY"),
		FlashbotsEnabled:   flashbotsEnabled,
		LiFiBaseURL:        lifiBaseURL,
		GasPriceMultiplier: gasMultiplier,
		LoggerConfig: LoggerConfig{
			Level:    logLevel,
			Coloring: logColoring,
		},
	}, nil
}
