package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/pool-tournament-manager/docs"
	"github.com/Dosada05/pool-tournament-manager/handlers"
	"github.com/Dosada05/pool-tournament-manager/metrics"
	"github.com/Dosada05/pool-tournament-manager/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

const openAPIPath = "/swagger/openapi.json"

type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	CommandTimeout time.Duration

	MatchHandler      *handlers.MatchHandler
	PlayerHandler     *handlers.PlayerHandler
	TournamentHandler *handlers.TournamentHandler
	WebSocketHandler  *handlers.WebSocketHandler
	HealthHandler     *handlers.HealthHandler
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Get("/healthz", cfg.HealthHandler.LiveHandler)
	r.Get("/readyz", cfg.HealthHandler.ReadyHandler)

	r.Get(openAPIPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.OpenAPI)
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(openAPIPath)))

	r.Get("/ws/matches", cfg.WebSocketHandler.ServeWs)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CommandTimeout(cfg.CommandTimeout))

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", cfg.MatchHandler.ListHandler)
			r.Post("/", cfg.MatchHandler.CreateHandler)
			r.Get("/{id}", cfg.MatchHandler.GetByIDHandler)
			r.Put("/{id}", cfg.MatchHandler.UpdateHandler)
			r.Delete("/{id}", cfg.MatchHandler.DeleteHandler)
		})

		r.Route("/players", func(r chi.Router) {
			r.Get("/", cfg.PlayerHandler.ListHandler)
			r.Post("/", cfg.PlayerHandler.CreateHandler)
			r.Get("/{id}", cfg.PlayerHandler.GetByIDHandler)
			r.Put("/{id}", cfg.PlayerHandler.UpdateHandler)
			r.Delete("/{id}", cfg.PlayerHandler.DeleteHandler)
			r.Post("/{id}/profile-picture", cfg.PlayerHandler.ProfilePictureHandler)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", cfg.TournamentHandler.ListHandler)
			r.Post("/", cfg.TournamentHandler.CreateHandler)
			r.Get("/{id}", cfg.TournamentHandler.GetByIDHandler)
			r.Put("/{id}", cfg.TournamentHandler.UpdateHandler)
			r.Delete("/{id}", cfg.TournamentHandler.DeleteHandler)
			r.Get("/{id}/matches", cfg.TournamentHandler.ListMatchesHandler)
			r.Post("/{id}/round-robin", cfg.TournamentHandler.RoundRobinHandler)
		})
	})

	return r
}
