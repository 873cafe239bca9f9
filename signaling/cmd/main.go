package main

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/spf13/viper"

	"github.com/kowshik-thatinati/privacy-calls/internal/errors"

	"github.com/kowshik-thatinati/privacy-calls/internal/config"
	"github.com/kowshik-thatinati/privacy-calls/internal/cryptoutil"
	"github.com/kowshik-thatinati/privacy-calls/internal/httputil"
	"github.com/kowshik-thatinati/privacy-calls/internal/log"
	"github.com/kowshik-thatinati/privacy-calls/internal/otel"
	"github.com/kowshik-thatinati/privacy-calls/internal/turncred"
	"github.com/kowshik-thatinati/privacy-calls/internal/workflow"
	"github.com/kowshik-thatinati/privacy-calls/internal/wsevent"
	"github.com/kowshik-thatinati/privacy-calls/signaling/relay"
	"github.com/kowshik-thatinati/privacy-calls/signaling/transport"
)

type Config struct {
	App    config.App      `mapstructure:"app"`
	HTTP   httputil.Config `mapstructure:"http"`
	Turn   turncred.Config `mapstructure:"turn"`
	Signal relay.Config    `mapstructure:"signal"`
	Otel   otel.Config     `mapstructure:"otel"`
}

func loadConfig() (*Config, error) {
	return config.Load(&Config{}, func(v *viper.Viper) {
		config.Setup(v, "app")
		httputil.Setup(v, "http")
		turncred.Setup(v, "turn")
		relay.Setup(v, "signal")
		otel.Setup(v, "otel")

		// override default addr to ease testing
		v.SetDefault("http.addr", "0.0.0.0:8080")
	})
}

func main() {
	config, err := loadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", err)
	}

	logger, err := log.NewLogger(config.App.LogConfigFile)
	if err != nil {
		log.Fatal("Failed to create logger", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	// Initialize OpenTelemetry
	otelShutdown, err := otel.Init(ctx, &config.Otel, logger)
	if err != nil {
		logger.Fatal("Failed to initialize OTEL provider", log.Error(err))
	}

	logger.Info("Starting signaling relay...")

	if config.Turn.Secret == "" {
		secret, err := cryptoutil.RandomHex(32)
		if err != nil {
			logger.Fatal("Failed to generate TURN secret", log.Error(err))
		}
		config.Turn.Secret = secret
		logger.Warn("TURN secret not configured, generated an ephemeral one; " +
			"credentials will not survive a restart")
	}

	issuer, err := turncred.NewIssuer(&config.Turn, nil)
	if err != nil {
		logger.Fatal("Failed to create credential issuer", log.Error(err))
	}

	// one credential set per process lifetime
	creds, err := issuer.Issue()
	if err != nil {
		logger.Fatal("Failed to issue TURN credentials", log.Error(err))
	}

	signalRelay := relay.NewRelay(
		&config.Signal,
		creds,
		nil,
		logger.Module("Relay"),
	)
	hook := relay.NewWSHook(
		signalRelay,
		logger.Module("WSHook"),
	)
	wsServer := wsevent.NewServer[relay.Session](
		hook,
		wsevent.ServerOptions{
			AllowedOrigins: config.Signal.AllowedOrigins,
			MessageRate:    rate.Limit(config.Signal.MessageRate),
			MessageBurst:   config.Signal.MessageBurst,
		},
		logger.Module("WSEvent"),
	)
	signalServer := relay.NewServer(
		wsServer,
		signalRelay,
		logger.Module("Signal"),
	)
	signalServer.Open()

	reaper := relay.NewReaper(
		signalRelay,
		config.Signal.ReapInterval,
		nil,
		logger.Module("Reaper"),
	)
	reaper.Start(ctx)

	router := transport.NewRouter(
		signalRelay,
		wsServer.HandleWebSocket,
		config.Signal.AllowedOrigins,
		logger.Module("Router"),
	)
	httpServer := httputil.NewServer(&config.HTTP, router.Handler())

	go func() {
		logger.Info("Starting HTTP server", log.String("addr", config.HTTP.Addr))
		if err := httpServer.Listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", log.Error(err))
		}
	}()

	// Graceful shutdown: stop accepting, stop sweeping, then drop all
	// relay state without notifying peers.
	cleanup := func(ctx context.Context) {
		_ = httpServer.Shutdown(ctx)

		reaper.Stop()
		signalRelay.Shutdown()

		if err := otelShutdown(ctx); err != nil {
			logger.Error("Failed to shutdown OTEL", log.Error(err))
		}
	}
	workflow.WaitGracefulShutdown(ctx, logger.Module("CleanUp"), cleanup, config.App.ShutdownTimeout)
}
