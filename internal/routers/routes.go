package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Odeddidi/BugHunt/internal/duel"
	"github.com/Odeddidi/BugHunt/internal/handlers"
)

// Deps bundles everything the router needs to mount.
type Deps struct {
	Auth     *handlers.AuthHandler
	Rooms    *handlers.RoomHandler
	Users    *handlers.UserHandler
	Problems *handlers.ProblemHandler
	Duel     *duel.Service
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", d.Auth.Register)
		r.Post("/login", d.Auth.Login)
		r.Get("/me", d.Auth.Me)
	})

	r.Route("/rooms", func(r chi.Router) {
		r.Post("/create-private", d.Rooms.CreatePrivate)
		r.Post("/join-invite", d.Rooms.JoinInvite)
		r.Post("/find-match", d.Rooms.FindMatch)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/top10", d.Users.Top10)
		r.Get("/{userID}/seen_problems", d.Users.SeenProblems)
		r.Get("/{userID}/matches", d.Users.MatchHistory)
	})

	r.Route("/problems", func(r chi.Router) {
		r.Get("/", d.Problems.List)
		r.Post("/", d.Problems.Create)
	})

	r.Get("/ws/rooms/{roomID}", d.Duel.RoomSocket)

	return r
}
