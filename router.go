package main

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"pet-portrait-server/modules/common/config"
	"pet-portrait-server/modules/common/middleware"
	"pet-portrait-server/modules/style"
	"pet-portrait-server/modules/transform"
)

const serviceName = "pet-portrait-server"

type routerDeps struct {
	cfg              *config.Config
	logger           zerolog.Logger
	styleHandler     *style.Handler
	transformHandler *transform.Handler
	metrics          *transform.Metrics
	limiter          middleware.Limiter
}

// newRouter - 라우터 설정
func newRouter(d routerDeps) *mux.Router {
	r := mux.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.TrustedRealIP(d.cfg.TrustedProxies),
		chimw.Recoverer,
		middleware.Logger(d.logger),
		middleware.CORS(d.cfg.CORSAllowedOrigins),
	)

	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/metrics", getMetrics(d.metrics)).Methods("GET")

	d.styleHandler.RegisterRoutes(r)
	d.transformHandler.RegisterRoutes(r, middleware.RateLimit(d.limiter, transform.MessageQuota, d.logger))

	// 정적 파일 (GET / → index.html)
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(d.cfg.PublicDir))).Methods("GET", "HEAD")

	return r
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

// 서버 메트릭 조회 엔드포인트
func getMetrics(metrics *transform.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := metrics.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"server": map[string]interface{}{
				"service":   serviceName,
				"uptime":    snap.Uptime,
				"startTime": snap.StartTime,
			},
			"transforms": snap,
		})
	}
}
