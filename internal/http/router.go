package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/dog-directory/internal/directory"
	"github.com/pribylovaa/dog-directory/internal/http/handlers"
	"github.com/pribylovaa/dog-directory/internal/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(d *directory.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),
		middleware.RequestID(), // до логирования: id попадает в request-scoped логгер
		middleware.Logging(opts.Logger),
	)

	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}

	h := handlers.New(d)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)

		return root
	}

	registerRoutes(root, h)

	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// dogs
	r.Get("/dogs", h.ListDogs)
	r.Get("/dogs/{id}", h.GetDog)
	r.Get("/dogs/{id}/pedigree", h.GetPedigree)

	// users
	r.Get("/users", h.ListUsers)
	r.Get("/users/{id}", h.GetUser)
	r.Get("/users/{id}/dogs", h.ListUserDogs)

	// breeds
	r.Get("/breeds", h.ListBreeds)
	r.Get("/breeds/groups", h.ListBreedGroups)
	r.Get("/breeds/{id}", h.GetBreed)
}
