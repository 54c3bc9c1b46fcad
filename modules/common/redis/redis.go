package redis

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"pet-portrait-server/modules/common/config"
)

// Connect - Redis 연결 생성
// REDIS_HOST 미설정 또는 ping 실패 시 nil 반환 (호출부는 인메모리로 동작)
func Connect(cfg *config.Config, logger zerolog.Logger) *redis.Client {
	if !cfg.RedisEnabled() {
		logger.Info().Msg("ℹ️  [Redis] REDIS_HOST not set, using in-memory rate limiting")
		return nil
	}

	logger.Info().Str("addr", cfg.GetRedisAddr()).Msg("🔌 [Redis] Connecting")

	var tlsConfig *tls.Config
	if cfg.RedisUseTLS {
		tlsConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		TLSConfig:    tlsConfig,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("❌ [Redis] Ping failed, falling back to in-memory rate limiting")
		_ = rdb.Close()
		return nil
	}

	logger.Info().Msg("✅ [Redis] Connected")
	return rdb
}
