package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/whisperfi/whisperd/pkg/ai"
	"github.com/whisperfi/whisperd/pkg/api"
	"github.com/whisperfi/whisperd/pkg/assistant"
	"github.com/whisperfi/whisperd/pkg/config"
	"github.com/whisperfi/whisperd/pkg/dispatch"
	"github.com/whisperfi/whisperd/pkg/engine"
	"github.com/whisperfi/whisperd/pkg/ens"
	"github.com/whisperfi/whisperd/pkg/lifi"
	"github.com/whisperfi/whisperd/pkg/logger"
	"github.com/whisperfi/whisperd/pkg/ratelimit"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level)

	// Shared oracle call budget
	limiter := ratelimit.NewLimiter(cfg.AICallLimit, cfg.AICallWindowHours)

	// Pick the oracle: OpenAI when a key is configured, the rule-based
	// one otherwise
	var oracle ai.Oracle
	if cfg.OpenAIAPIKey != "" {
		oracle = ai.NewOpenAIOracle(cfg.OpenAIAPIKey, cfg.OpenAIModel, limiter, logg)
		logg.Info("Using OpenAI oracle (model %q)", cfg.OpenAIModel)
	} else {
		oracle = ai.NewRuleOracle(limiter)
		logg.Notice("OPENAI_API_KEY not set, using the rule-based oracle")
	}

	quotes := lifi.NewClient(cfg.LiFiBaseURL, logg)

	// A signer is optional: without one the daemon plans and quotes but
	// cannot execute
	var serverOpts []api.Option
	if cfg.PrivateKey != "" {
		signer, err := dispatch.NewLocalSigner(cfg.PrivateKey, cfg.RPCURLs, cfg.GasPriceMultiplier, logg)
		if err != nil {
			log.Fatalf("Failed to create signer: %v", err)
		}
		dispatcher := dispatch.NewDispatcher(signer, dispatch.RelayConfig{
			Enabled: cfg.FlashbotsEnabled,
			ChainID: dispatch.DefaultRelayChainID,
		}, logg)
		runner := engine.New(signer, dispatcher, quotes, engine.WithLogger(logg))
		serverOpts = append(serverOpts, api.WithRunner(runner))
		logg.Info("Execution ready for %s (private relay enabled: %t)",
			signer.Address().Hex(), cfg.FlashbotsEnabled)
	} else {
		logg.Notice("PRIVATE_KEY not set, plan execution disabled")
	}

	// Strategy records live on mainnet; the directory needs its RPC
	if resolver, err := ens.NewChainResolver(cfg.RPCURLs[1], logg); err != nil {
		logg.Notice("ENS resolver unavailable, strategy endpoints disabled: %v", err)
	} else {
		serverOpts = append(serverOpts, api.WithStrategies(ens.NewDirectory(resolver)))
	}

	asst := assistant.New(oracle, quotes, assistant.WithLogger(logg))
	server := api.NewServer(cfg.Port, asst, limiter, logg, serverOpts...)

	// Run until SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(ctx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	logg.Info("Shutdown complete")
}
