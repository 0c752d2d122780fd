package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/gymbro/gymbro-api/internal/api/handler"
	"github.com/gymbro/gymbro-api/internal/api/middleware"
)

type Router struct {
	userHandler       *handler.UserHandler
	profileHandler    *handler.ProfileHandler
	routineHandler    *handler.RoutineHandler
	dietHandler       *handler.DietHandler
	completionHandler *handler.CompletionHandler
	notesHandler      *handler.NotesHandler
}

func NewRouter(
	userHandler *handler.UserHandler,
	profileHandler *handler.ProfileHandler,
	routineHandler *handler.RoutineHandler,
	dietHandler *handler.DietHandler,
	completionHandler *handler.CompletionHandler,
	notesHandler *handler.NotesHandler,
) *Router {
	return &Router{
		userHandler:       userHandler,
		profileHandler:    profileHandler,
		routineHandler:    routineHandler,
		dietHandler:       dietHandler,
		completionHandler: completionHandler,
		notesHandler:      notesHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.Tracing)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Users
		r.Route("/users", func(r chi.Router) {
			r.Post("/", rt.userHandler.Create)

			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", rt.userHandler.GetByID)

				// Fitness profile
				r.Get("/profile", rt.profileHandler.Get)
				r.Put("/profile", rt.profileHandler.Update)

				// Generated routines
				r.Route("/routines", func(r chi.Router) {
					r.Post("/generate", rt.routineHandler.Generate)
					r.Get("/", rt.routineHandler.List)
					r.Get("/latest", rt.routineHandler.GetLatest)
					r.Post("/feedback", rt.routineHandler.Feedback)

					r.Route("/{routineId}", func(r chi.Router) {
						r.Get("/", rt.routineHandler.GetByID)

						// Exercise completions (nested under a routine)
						r.Put("/completions", rt.completionHandler.Toggle)
						r.Get("/completions", rt.completionHandler.List)
					})
				})

				// Meal plan generation
				r.Post("/diet/generate", rt.dietHandler.Generate)

				// Adherence summary over the latest routine
				r.Get("/adherence", rt.completionHandler.Adherence)

				// Notes rewrite
				r.Post("/notes/improve", rt.notesHandler.Improve)
			})
		})
	})

	return r
}
