package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sparkychildcharlie/tournament-engine/handlers"
	"github.com/sparkychildcharlie/tournament-engine/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

func InitRoutes(
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	webSocketHandler *handlers.WebSocketHandler,
	jwtSecret string,
) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/tournaments", func(r chi.Router) {
		// Public read access.
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.Get)
		r.Get("/{tournamentID}/bracket", tournamentHandler.Bracket)
		r.Get("/{tournamentID}/standings", tournamentHandler.Standings)
		r.Get("/{tournamentID}/matches/available", tournamentHandler.AvailableMatches)

		// Organizer operations.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/", tournamentHandler.Create)
			r.Post("/{tournamentID}/participants", tournamentHandler.AddParticipant)
			r.Delete("/{tournamentID}/participants/{handle}", tournamentHandler.RemoveParticipant)
			r.Put("/{tournamentID}/participants/{handle}", tournamentHandler.SubstituteParticipant)
			r.Put("/{tournamentID}/participants/{handle}/busy", tournamentHandler.SetParticipantBusy)
			r.Post("/{tournamentID}/freeze", tournamentHandler.Freeze)
			r.Post("/{tournamentID}/results", tournamentHandler.SubmitResult)
			r.Post("/{tournamentID}/disqualify/{handle}", tournamentHandler.Disqualify)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.Subscribe)

	return router
}
