package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Gemini 백엔드 종류
const (
	BackendGemini = "gemini" // Gemini API (API 키)
	BackendVertex = "vertex" // Vertex AI (프로젝트 + 서비스 계정)
	BackendLegacy = "legacy" // generative-ai-go SDK
)

// 결과 이미지 포맷
const (
	OutputFormatPNG  = "png"
	OutputFormatWebP = "webp"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// App
	AppEnv    string
	Port      string
	PublicDir string

	// Gemini API
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBackend     string
	GeminiTemperature float64

	// Vertex AI (GEMINI_BACKEND=vertex)
	VertexProject         string
	VertexLocation        string
	VertexCredentialsJSON string
	VertexCredentialsPath string

	// Transform
	ImageAspectRatio  string
	MaxUploadBytes    int64
	MaxInputDimension int
	OutputFormat      string
	WebPQuality       float32

	// Style catalog
	StyleCatalogPath string
	DefaultStyleID   string

	// Redis (비어 있으면 비활성화)
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// HTTP
	RateLimitPerMin    int
	TrustedProxies     []string // X-Forwarded-For 를 믿을 프록시 IP/CIDR
	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

// DefaultMaxUploadBytes - 업로드 사진 최대 크기 (8MB)
const DefaultMaxUploadBytes = 8 * 1024 * 1024

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일은 선택 사항
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "3000"),
		PublicDir: getEnv("PUBLIC_DIR", "public"),

		GeminiAPIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),
		GeminiBackend:     strings.ToLower(getEnv("GEMINI_BACKEND", BackendGemini)),
		GeminiTemperature: getEnvFloat("GEMINI_TEMPERATURE", 0),

		VertexProject:         os.Getenv("VERTEX_PROJECT"),
		VertexLocation:        getEnv("VERTEX_LOCATION", "us-central1"),
		VertexCredentialsJSON: os.Getenv("VERTEXAI_CREDENTIALS_JSON"),
		VertexCredentialsPath: os.Getenv("VERTEXAI_CREDENTIALS_PATH"),

		ImageAspectRatio:  getEnv("IMAGE_ASPECT_RATIO", "4:5"),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
		MaxInputDimension: getEnvInt("MAX_INPUT_DIMENSION", 2048),
		OutputFormat:      strings.ToLower(getEnv("OUTPUT_FORMAT", OutputFormatPNG)),
		WebPQuality:       float32(getEnvFloat("WEBP_QUALITY", 90)),

		StyleCatalogPath: os.Getenv("STYLE_CATALOG_PATH"),
		DefaultStyleID:   getEnv("DEFAULT_STYLE_ID", "duke-style"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisUseTLS:   getEnvBool("REDIS_USE_TLS", false),

		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		TrustedProxies:     splitList(os.Getenv("TRUSTED_PROXIES")),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	// 필수 환경변수 검증
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate - 필수 환경변수 검증
func (c *Config) validate() error {
	switch c.GeminiBackend {
	case BackendGemini, BackendLegacy:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
	case BackendVertex:
		if c.VertexProject == "" {
			return fmt.Errorf("VERTEX_PROJECT is required when GEMINI_BACKEND=vertex")
		}
	default:
		return fmt.Errorf("unsupported GEMINI_BACKEND: %s", c.GeminiBackend)
	}

	switch c.OutputFormat {
	case OutputFormatPNG, OutputFormatWebP:
	default:
		return fmt.Errorf("unsupported OUTPUT_FORMAT: %s", c.OutputFormat)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.WebPQuality <= 0 || c.WebPQuality > 100 {
		return fmt.Errorf("WEBP_QUALITY must be in (0, 100]")
	}
	return nil
}

// RedisEnabled - Redis 설정 여부
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisHost) != ""
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// Temperature - 0이면 모델 기본값 사용 (nil)
func (c *Config) Temperature() *float32 {
	if c.GeminiTemperature <= 0 {
		return nil
	}
	t := float32(c.GeminiTemperature)
	return &t
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
