package routes

import (
	"github.com/aidosbek/tournament-hub/handlers"
	"github.com/aidosbek/tournament-hub/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes mounts the API. Mutating operations require an organizer or
// admin token; the tournament views and the websocket feed are public.
func SetupRoutes(
	router *chi.Mux,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	playerHandler *handlers.PlayerHandler,
	webSocketHandler *handlers.WebSocketHandler,
	jwtSecret string,
	allowedOrigins []string,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate([]byte(jwtSecret)))
			r.Use(middleware.Authorize("organizer", "admin"))

			r.Post("/league", tournamentHandler.CreateLeagueHandler)
			r.Post("/knockout", tournamentHandler.CreateKnockoutHandler)
			r.Post("/{tournamentID}/banner", tournamentHandler.UploadBannerHandler)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate([]byte(jwtSecret)))
			r.Use(middleware.Authorize("organizer", "admin"))

			r.Post("/{matchID}/result", matchHandler.SubmitResultHandler)
		})
	})

	router.Get("/players", playerHandler.ListHandler)
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
