package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/0xvlm/nftsearch-go/api"
	"github.com/0xvlm/nftsearch-go/internal/config"
	"github.com/0xvlm/nftsearch-go/internal/constants"
	"github.com/0xvlm/nftsearch-go/internal/logger"
	"github.com/0xvlm/nftsearch-go/search"
	"github.com/0xvlm/nftsearch-go/upstream"
)

var (
	// Version information (injected at build time)
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to configuration file (YAML)")
		showVersion = flag.Bool("version", false, "Show version information and exit")
		upstreamURL = flag.String("upstream", "", "Upstream NFT index base URL")
		apiKey      = flag.String("api-key", "", "Upstream API key")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
		logFormat   = flag.String("log-format", "", "Log format (json, console)")

		apiHost         = flag.String("api-host", "", "API server host")
		apiPort         = flag.Int("api-port", 0, "API server port")
		enableGraphQL   = flag.Bool("graphql", true, "Enable GraphQL API")
		enableWebSocket = flag.Bool("websocket", true, "Enable WebSocket API")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("nftsearch-go version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", buildTime)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	applyFlags(cfg, *upstreamURL, *apiKey, *logLevel, *logFormat, *apiHost, *apiPort, *enableGraphQL, *enableWebSocket)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := initLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting nftsearch",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_time", buildTime),
		zap.String("upstream", cfg.Upstream.BaseURL),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Info("Initializing components...")

	indexer, err := upstream.NewClient(&upstream.Config{
		BaseURL:       cfg.Upstream.BaseURL,
		APIKey:        cfg.Upstream.APIKey,
		Timeout:       cfg.Upstream.Timeout,
		RatePerSecond: cfg.Upstream.RatePerSecond,
		RateBurst:     cfg.Upstream.RateBurst,
		Logger:        log,
	})
	if err != nil {
		log.Fatal("Failed to create upstream client", zap.Error(err))
	}

	log.Info("Upstream client initialized",
		zap.String("base_url", cfg.Upstream.BaseURL),
		zap.Duration("timeout", cfg.Upstream.Timeout),
	)

	searchConfig := search.Config{
		PageSize:        cfg.Search.PageSize,
		SuggestLimit:    cfg.Search.SuggestLimit,
		SuggestMinChars: cfg.Search.SuggestMinChars,
		SuggestDebounce: cfg.Search.SuggestDebounce,
		SessionTTL:      cfg.Search.SessionTTL,
		MetadataTTL:     cfg.Cache.MetadataTTL,
		CleanupPeriod:   cfg.Cache.CleanupPeriod,
	}

	service, err := search.NewService(indexer, searchConfig, log)
	if err != nil {
		log.Fatal("Failed to create search service", zap.Error(err))
	}

	log.Info("Search service initialized",
		zap.Int("page_size", cfg.Search.PageSize),
		zap.Duration("session_ttl", cfg.Search.SessionTTL),
	)

	apiConfig := api.DefaultConfig()
	apiConfig.Host = cfg.API.Host
	apiConfig.Port = cfg.API.Port
	apiConfig.EnableGraphQL = cfg.API.EnableGraphQL
	apiConfig.EnableWebSocket = cfg.API.EnableWebSocket
	apiConfig.EnableCORS = cfg.API.EnableCORS
	apiConfig.AllowedOrigins = cfg.API.AllowedOrigins
	apiConfig.EnableRateLimit = cfg.API.EnableRateLimit

	apiServer, err := api.NewServer(apiConfig, log, service)
	if err != nil {
		log.Fatal("Failed to create API server", zap.Error(err))
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- apiServer.Start()
	}()

	log.Info("API server started",
		zap.String("address", apiConfig.Address()),
		zap.Bool("graphql", apiConfig.EnableGraphQL),
		zap.Bool("websocket", apiConfig.EnableWebSocket),
	)

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
	case err := <-errChan:
		if err != nil {
			log.Error("API server stopped with error", zap.Error(err))
		}
	}

	log.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server gracefully", zap.Error(err))
	}

	log.Info("nftsearch stopped")
}

// loadConfig loads configuration from file and environment variables
func loadConfig(configFile string) (*config.Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads environment variables from a .env file if it exists.
func loadDotEnv() error {
	info, err := os.Stat(".env")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat .env: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf(".env exists but is a directory")
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// applyFlags applies command-line flags to configuration
func applyFlags(cfg *config.Config, upstreamURL, apiKey, logLevel, logFormat, apiHost string, apiPort int, enableGraphQL, enableWebSocket bool) {
	if upstreamURL != "" {
		cfg.Upstream.BaseURL = upstreamURL
	}
	if apiKey != "" {
		cfg.Upstream.APIKey = apiKey
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if apiHost != "" {
		cfg.API.Host = apiHost
	}
	if apiPort > 0 {
		cfg.API.Port = apiPort
	}
	cfg.API.EnableGraphQL = enableGraphQL
	cfg.API.EnableWebSocket = enableWebSocket
}

// initLogger initializes the logger based on configuration
func initLogger(level, format string) (*zap.Logger, error) {
	if format == "json" || format == "production" {
		return logger.NewProduction()
	}

	cfg := logger.Config{
		Level:       level,
		Encoding:    "console",
		Development: true,
	}
	return logger.NewWithConfig(&cfg)
}
