package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/cartodesk/cartodesk-api/pkg/middleware"
)

// SetupRouter configures all routes and returns the HTTP handler
func SetupRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	registerAPIRoutes(mux, deps)
	registerUtilityRoutes(mux, deps)

	chain := []func(http.Handler) http.Handler{
		middleware.RequestID("X-Request-ID"),
		middleware.Recovery(deps.Logger),
		middleware.Logging(deps.Logger),
	}

	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
		chain = append(chain, middleware.RateLimit(limiter))
	}

	handler := middleware.Chain(mux, chain...)

	// Enable CORS for browser clients (local dashboard frontend)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept-Encoding",
			"Content-Type",
			"X-Request-ID",
		},
		AllowCredentials: true,
	})

	return corsHandler.Handler(handler)
}

// registerAPIRoutes registers the marker, icon, and distance endpoints
func registerAPIRoutes(mux *http.ServeMux, deps *Dependencies) {
	mux.HandleFunc("GET /api/markers", deps.MarkerHandler.List)
	mux.HandleFunc("POST /api/markers", deps.MarkerHandler.Create)
	mux.HandleFunc("DELETE /api/markers/{id}", deps.MarkerHandler.Delete)

	mux.HandleFunc("GET /api/icons", deps.IconHandler.List)
	mux.HandleFunc("POST /api/icons", deps.IconHandler.Upload)
	mux.HandleFunc("DELETE /api/icons", deps.IconHandler.Delete)

	mux.HandleFunc("POST /api/distance", deps.DistanceHandler.Calc)
	mux.HandleFunc("GET /api/distance", deps.DistanceHandler.List)

	// Uploaded icon files are served directly so overlay specs can
	// reference them by URL.
	mux.Handle("GET /icons/", http.StripPrefix("/icons/",
		http.FileServer(http.Dir(deps.Config.Icons.Dir))))

	deps.Logger.Info("API routes configured")
}

// registerUtilityRoutes registers health check, metrics, and other utility routes
func registerUtilityRoutes(mux *http.ServeMux, deps *Dependencies) {
	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := deps.KV.Get("health"); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("kv store unhealthy"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	deps.Logger.Info("registered health check", "path", "/health")

	// Readiness check endpoint
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})
	deps.Logger.Info("registered readiness check", "path", "/ready")

	// Metrics endpoint (Prometheus)
	if deps.Config.Observability.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		deps.Logger.Info("registered metrics endpoint", "path", "/metrics")
	}
}
