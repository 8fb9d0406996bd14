package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tatamehub/academia/internal/agenda"
	"github.com/tatamehub/academia/internal/auth"
	"github.com/tatamehub/academia/internal/config"
	httpmiddleware "github.com/tatamehub/academia/internal/http/middleware"
)

// NewRouter devolve roteador configurado: rotas públicas de saúde com
// rate limit por IP e a agenda inteira atrás do JWT.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, jwtManager *auth.JWTManager, agendaHandler *agenda.Handler) http.Handler {
	publicLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(publicLimiter))

		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		public.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := pool.Ping(r.Context()); err != nil {
				WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "banco indisponível", nil)
				return
			}
			WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(jwtManager))
		agenda.Mount(private, agendaHandler)
	})

	return r
}
