package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"imagestudio/internal/http/handlers"
	httpapi "imagestudio/internal/http/httpapi"
	"imagestudio/internal/infra"
	"imagestudio/internal/metrics"
	"imagestudio/internal/providers/image"
	"imagestudio/internal/studio"
)

func main() {
	// Muat .env (opsional)
	_ = godotenv.Load()

	// Konfigurasi & logger
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Provider gambar (imagen / gemini / synthetic)
	gen, err := image.New(ctx, image.Options{
		Provider:       cfg.ImageProvider,
		APIKey:         cfg.GeminiAPIKey,
		Model:          cfg.GeminiModel,
		OutputMIME:     cfg.ImageOutputMIME,
		SyntheticDelay: cfg.SyntheticDelay,
		Logger:         &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init image provider")
	}
	source := image.NewSource(gen)

	var collector *metrics.Collector
	var studioMetrics studio.Metrics
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector(infra.ServiceName, gen.Name())
		studioMetrics = collector
	}

	// Satu orchestrator per sesi browser
	sessions := studio.NewSessions(func(sessionID string) (*studio.Orchestrator, error) {
		l := logger.With().Str("session_id", sessionID).Logger()
		return studio.New(source, studio.Options{
			Logger:      &l,
			Metrics:     studioMetrics,
			Prompt:      cfg.DefaultPrompt,
			AspectRatio: cfg.DefaultAspect,
			Timeout:     cfg.GenerateTimeout,
		})
	}, cfg.SessionTTL, cfg.MaxSessions, logger)
	go sessions.Run(ctx)
	if collector != nil {
		collector.TrackGauge(infra.ServiceName, "active_sessions", "Sessions currently held in memory", func() float64 {
			return float64(sessions.Len())
		})
	}

	app, err := handlers.NewApp(ctx, sessions, logger, cfg.CORSOrigins)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init handlers")
	}

	router := httpapi.NewRouter(app, logger, httpapi.Options{
		DefaultLocale:     cfg.DefaultLocale,
		RateLimitPerMin:   cfg.RateLimitPerMin,
		CORSOrigins:       cfg.CORSOrigins,
		SecureCookies:     cfg.AppEnv == "production",
		TrustProxyHeaders: cfg.TrustProxy,
		Metrics:           collector,
	})

	server := infra.NewHTTPServer(cfg, router)

	// Start async
	go func() {
		logger.Info().
			Str("provider", gen.Name()).
			Str("addr", server.Addr()).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// Hentikan generasi yang masih berjalan dan stream websocket
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout+time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
