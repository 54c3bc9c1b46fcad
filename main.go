package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"pet-portrait-server/modules/common/config"
	"pet-portrait-server/modules/common/gemini"
	"pet-portrait-server/modules/common/logger"
	"pet-portrait-server/modules/common/middleware"
	"pet-portrait-server/modules/common/redis"
	"pet-portrait-server/modules/style"
	"pet-portrait-server/modules/transform"
)

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("❌ Failed to load config")
	}
	log := logger.New(cfg.AppEnv)

	ctx := context.Background()

	// 스타일 카탈로그 + 참고 이미지 미리 로드
	catalog, err := loadCatalog(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load style catalog")
	}

	// Gemini 클라이언트
	generator, err := gemini.NewGenerator(ctx, gemini.Options{
		Backend:         cfg.GeminiBackend,
		APIKey:          cfg.GeminiAPIKey,
		Project:         cfg.VertexProject,
		Location:        cfg.VertexLocation,
		CredentialsJSON: cfg.VertexCredentialsJSON,
		CredentialsPath: cfg.VertexCredentialsPath,
		Logger:          log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to create Gemini client")
	}
	defer generator.Close()

	// 레이트 리밋 저장소 (Redis 없으면 인메모리)
	var limiter middleware.Limiter
	rdb := redis.Connect(cfg, log)
	if rdb != nil {
		defer rdb.Close()
	}
	if cfg.RateLimitPerMin > 0 {
		if rdb != nil {
			limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitPerMin, time.Minute)
		} else {
			limiter = middleware.NewMemoryLimiter(cfg.RateLimitPerMin, time.Minute)
		}
	}

	metrics := transform.NewMetrics()
	service := transform.NewService(catalog, generator, metrics, transform.Options{
		Model:             cfg.GeminiModel,
		AspectRatio:       cfg.ImageAspectRatio,
		Temperature:       cfg.Temperature(),
		MaxInputDimension: cfg.MaxInputDimension,
		OutputFormat:      cfg.OutputFormat,
		WebPQuality:       cfg.WebPQuality,
	}, log)

	router := newRouter(routerDeps{
		cfg:              cfg,
		logger:           log,
		styleHandler:     style.NewHandler(catalog),
		transformHandler: transform.NewHandler(service, cfg.MaxUploadBytes, log),
		metrics:          metrics,
		limiter:          limiter,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("model", cfg.GeminiModel).
			Str("backend", cfg.GeminiBackend).
			Msgf("🚀 Pet Portrait Server starting on http://localhost:%s", cfg.Port)
		log.Info().Msgf("📡 WebSocket endpoint: ws://localhost:%s/api/transform/ws", cfg.Port)
		log.Info().Msgf("❤️  Health check: http://localhost:%s/health", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("❌ Server failed to start")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ Failed to shutdown server")
	}
	log.Info().Msg("👋 Server stopped")
}

// loadCatalog - STYLE_CATALOG_PATH 가 있으면 JSON, 없으면 내장 스타일
func loadCatalog(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*style.Catalog, error) {
	templates := style.DefaultTemplates()
	if cfg.StyleCatalogPath != "" {
		loaded, err := style.LoadTemplatesFile(cfg.StyleCatalogPath)
		if err != nil {
			return nil, err
		}
		templates = loaded
		log.Info().Str("path", cfg.StyleCatalogPath).Int("styles", len(templates)).Msg("📚 [Style] Catalog loaded from file")
	}

	catalog, err := style.NewCatalog(templates, cfg.DefaultStyleID)
	if err != nil {
		return nil, err
	}
	catalog.WithLogger(log)

	if err := catalog.LoadReferences(ctx, cfg.PublicDir); err != nil {
		return nil, err
	}
	return catalog, nil
}
