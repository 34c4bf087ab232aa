package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tabletop/backend/internal/middleware"
)

// Router holds every handler the API mounts.
type Router struct {
	Auth       *AuthHandler
	Games      *GameHandler
	Comments   *CommentHandler
	Profiles   *ProfileHandler
	Collection *CollectionHandler
	Images     *ImageHandler
	Contact    *ContactHandler
	Account    *AccountHandler

	Verifier       middleware.TokenVerifier
	AllowedOrigins []string
	// UploadDir is served under /uploads/ when set.
	UploadDir string
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	requireAuth := middleware.Authenticate(rt.Verifier)
	optionalAuth := middleware.OptionalAuth(rt.Verifier)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", rt.Auth.Register)
			r.Post("/login", rt.Auth.Login)
			r.With(requireAuth).Post("/logout", rt.Auth.Logout)
			r.With(requireAuth).Get("/me", rt.Auth.Me)
		})

		r.Route("/games", func(r chi.Router) {
			r.With(optionalAuth).Get("/", rt.Games.ListGames)
			r.With(requireAuth).Post("/", rt.Games.CreateGame)

			r.Route("/{gameId}", func(r chi.Router) {
				r.With(optionalAuth).Get("/", rt.Games.GetGame)
				r.With(requireAuth).Put("/", rt.Games.UpdateGame)
				r.With(requireAuth).Delete("/", rt.Games.DeleteGame)

				r.Get("/comments", rt.Comments.ListComments)
				r.With(requireAuth).Post("/comments", rt.Comments.AddComment)
				r.With(requireAuth).Put("/comments/{commentId}", rt.Comments.UpdateComment)
				r.With(requireAuth).Delete("/comments/{commentId}", rt.Comments.DeleteComment)
			})
		})

		r.Get("/users/{userId}", rt.Profiles.GetPublicProfile)
		r.Post("/contact", rt.Contact.Submit)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/profile", rt.Profiles.GetProfile)
			r.Put("/profile", rt.Profiles.UpdateProfile)
			r.Post("/profile/image", rt.Profiles.UploadImage)

			r.Route("/collection", func(r chi.Router) {
				r.Get("/", rt.Collection.ListCollection)
				r.Get("/{gameId}", rt.Collection.InCollection)
				r.Post("/{gameId}", rt.Collection.AddToCollection)
				r.Delete("/{gameId}", rt.Collection.RemoveFromCollection)
			})

			r.Post("/images", rt.Images.Upload)
			r.Delete("/account", rt.Account.DeleteAccount)
		})
	})

	if rt.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(rt.UploadDir))))
	}

	return r
}
