package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kemsguy7/wagmi-app/clients/evm"
	"github.com/kemsguy7/wagmi-app/cmd/wagmi-app/webapp"
	"github.com/kemsguy7/wagmi-app/config"
	"github.com/kemsguy7/wagmi-app/http"
	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/kemsguy7/wagmi-app/services"
	"github.com/kemsguy7/wagmi-app/ui"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/kemsguy7/wagmi-app/wallet/connectors"
	"github.com/rs/zerolog"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	flags := parseFlags()
	log := logging.New(os.Stdout, flags.LogLevel, flags.LogJSON)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx := context.Background()

	// Initialize Ethereum clients
	clients, err := evm.ResolveClientsFromConfig(ctx, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Ethereum clients")
	}

	resolver := evm.NewResolver(clients)
	defer resolver.Close()

	registry := connectors.FromConfig(cfg.Connectors, cfg.Relay, log)

	app, store, metrics := createApp(cfg, registry, resolver, log)

	server, err := webapp.New(webapp.Config{
		Addr:           fmt.Sprintf(":%s", cfg.Port),
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log,
		LogRequests:    true,
		Dependencies: webapp.Dependencies{
			App:     app,
			Events:  store,
			Metrics: metrics,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create web server")
	}

	serverShutdown, err := http.StartAsync(server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start web server")
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	serverShutdown(shutdownCtx)

	// release the wallet session so it does not outlive the process
	if err := app.Disconnect(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Wallet did not acknowledge disconnect")
	}

	log.Info().Msg("Shut down successfully")
}

// createApp wires the wallet layer, the account service and the views together.
func createApp(
	cfg *config.Config,
	registry *wallet.Registry,
	resolver *evm.Resolver,
	logger zerolog.Logger,
) (*ui.App, *wallet.Store, *services.MetricsService) {
	store := wallet.NewStore(cfg.InitialChainID)

	metrics := services.NewMetricsService(logger)
	store.Subscribe(metrics.ObserveState)
	metrics.ObserveState(store.Snapshot())

	chains := make([]wallet.Chain, 0, len(cfg.Chains))
	for _, c := range cfg.Chains {
		chains = append(chains, wallet.Chain{ID: c.ChainID, Name: c.Name})
	}

	negotiator := wallet.NewNegotiator(store, metrics, logger)
	prober := wallet.NewProber(cfg.ProbeTimeout, metrics, logger)
	switcher := wallet.NewSwitcher(chains, store, negotiator, resolver, metrics, logger)
	accounts := services.NewAccountService(resolver, cfg.Chains, cfg.CacheTTL, cfg.CacheRenderWait, logger)
	modal := ui.NewModal(registry, prober, negotiator, logger)

	logger.Info().
		Int("chains", len(chains)).
		Int("connectors", len(registry.Connectors())).
		Uint64(logging.FieldChain, cfg.InitialChainID).
		Msg("Wallet front end initialized")

	return ui.NewApp(store, modal, switcher, negotiator, accounts, logger), store, metrics
}

type flagSet struct {
	LogJSON  bool
	LogLevel zerolog.Level
}

func parseFlags() flagSet {
	var (
		logJSON  bool
		logLevel string
	)

	flag.BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")
	flag.StringVar(&logLevel, "log-level", "info", "Set log level (debug, info, warn, error)")

	flag.Parse()

	return flagSet{
		LogJSON:  logJSON,
		LogLevel: logging.ParseLevel(logLevel),
	}
}
