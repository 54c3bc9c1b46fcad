package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Limiter - 클라이언트 키 단위 고정 윈도우 제한
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type bucket struct {
	count int
	until time.Time
}

// MemoryLimiter - 단일 프로세스용 인메모리 제한
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	per     time.Duration
	buckets map[string]*bucket
	now     func() time.Time
}

func NewMemoryLimiter(limit int, per time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		per:     per,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok || now.After(b.until) {
		b = &bucket{until: now.Add(m.per)}
		m.buckets[key] = b
	}
	if b.count >= m.limit {
		return false, nil
	}
	b.count++

	// 만료된 버킷 정리
	if len(m.buckets) > 1024 {
		for k, v := range m.buckets {
			if now.After(v.until) {
				delete(m.buckets, k)
			}
		}
	}
	return true, nil
}

// incrWindow - INCR 와 첫 요청의 PEXPIRE 를 한 번에 실행 (만료 없는 키가 남지 않도록)
var incrWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisLimiter - 여러 인스턴스가 공유하는 Redis 고정 윈도우
type RedisLimiter struct {
	client redis.Scripter
	limit  int
	per    time.Duration
	prefix string
}

func NewRedisLimiter(client redis.Scripter, limit int, per time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		per:    per,
		prefix: "portrait:ratelimit:",
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := incrWindow.Run(ctx, l.client, []string{l.prefix + key}, l.per.Milliseconds()).Int64()
	if err != nil {
		return true, fmt.Errorf("redis rate window: %w", err)
	}
	return count <= int64(l.limit), nil
}

// RateLimit - 제한 초과 시 429 JSON 응답, 저장소 오류 시 통과 (fail-open)
func RateLimit(limiter Limiter, message string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			ip := ClientIP(r)
			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.Warn().Err(err).Str("ip", ip).Msg("⚠️ [RateLimit] limiter unavailable, allowing request")
			}
			if !allowed {
				logger.Info().Str("ip", ip).Str("path", r.URL.Path).Msg("🚫 [RateLimit] limit reached")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP - RemoteAddr 호스트
// 프록시 헤더는 TrustedRealIP 가 신뢰 프록시 요청에 한해 RemoteAddr 로 반영함
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
