package handler

import (
	"net/http"

	"github.com/servicofacil/prestador-api/internal/infra/observability"
	"github.com/servicofacil/prestador-api/internal/port"
	"github.com/servicofacil/prestador-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(
	providerSvc *service.ProviderService,
	authSvc *service.AuthService,
	tokens *service.TokenService,
	users port.UserDirectory,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(Authenticator(tokens, users, logger))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Autenticação
		// POST /v1/auth/login
		// =============================================
		r.Post("/auth/login", loginHandler(authSvc, logger))

		// =============================================
		// Prestador
		// =============================================
		r.Route("/prestador", func(r chi.Router) {
			// Public: registration, activation and search
			r.Post("/", registerProviderHandler(providerSvc, logger))
			r.Post("/ativar", activateProviderHandler(providerSvc, logger))
			r.Get("/", searchProvidersHandler(providerSvc, logger))

			// Protected: self-service updates
			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(logger))
				r.Put("/dados-servico", updateServiceDetailsHandler(providerSvc, logger))
			})
		})

		// =============================================
		// Métricas operacionais
		// GET /v1/metrics/providers
		// =============================================
		r.Get("/metrics/providers", providerMetricsHandler(metrics))
	})

	return r
}
