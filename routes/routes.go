package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/swiss-pairings/docs" // регистрирует swagger-спецификацию
	"github.com/Dosada05/swiss-pairings/handlers"
	"github.com/Dosada05/swiss-pairings/middleware"
)

const requestTimeout = 30 * time.Second

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	allowedOrigins []string,
	tournamentHandler *handlers.TournamentHandler,
	competitorHandler *handlers.CompetitorHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// websocket живёт дольше таймаута запроса, поэтому вне группы с Timeout
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(requestTimeout))

		r.Route("/tournaments", func(r chi.Router) {
			// Публичные маршруты для просмотра турниров
			r.Get("/", tournamentHandler.ListHandler)
			r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
			r.Get("/{tournamentID}/standing", tournamentHandler.StandingHandler)
			r.Get("/{tournamentID}/ranking", tournamentHandler.RankingHandler)

			// Защищенные маршруты только для организаторов
			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Use(auth.Authorize(middleware.RoleOrganizer, middleware.RoleAdmin))

				r.Post("/", tournamentHandler.CreateHandler)
				r.Put("/{tournamentID}/competitors", tournamentHandler.SetCompetitorsHandler)
				r.Patch("/{tournamentID}/duels/{duelID}", tournamentHandler.RecordResultHandler)
				r.Post("/{tournamentID}/results", tournamentHandler.RecordResultsHandler)
				r.Post("/{tournamentID}/rounds", tournamentHandler.AdvanceHandler)
				r.Post("/{tournamentID}/finish", tournamentHandler.FinishHandler)
			})
		})

		r.Route("/competitors", func(r chi.Router) {
			r.Get("/", competitorHandler.AllTimeStandingHandler)
			r.Get("/ranking", competitorHandler.AllTimeRankingHandler)
			r.Get("/{name}", competitorHandler.HistoryHandler)
		})
	})
}
