package handlers

import (
	"net/http"

	"taskPlanner/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	AllowedOrigins []string
	RateLimit      int
}

func NewRouter(planners PlannerProvider, cfg RouterConfig) http.Handler {
	tasks := NewTaskHandler(planners)
	events := NewEventHandler(planners)
	health := HealthHandler{Planners: planners}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type", "X-Request-ID",
			middleware.HeaderUserID, middleware.HeaderUserName, middleware.HeaderUserLanguage,
		},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.Identity)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(cfg.RateLimit))

	r.Get("/health", health.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", tasks.ListTasks) // GET /api/tasks?filter=
			r.Post("/", tasks.CreateTask)
			r.Get("/overdue", tasks.ListOverdue)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", tasks.GetTask)
				r.Put("/", tasks.UpdateTask)
				r.Delete("/", tasks.DeleteTask)
				r.Post("/toggle", tasks.ToggleTask) // POST /api/tasks/{id}/toggle
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", events.ListEvents) // GET /api/events?date=
			r.Post("/", events.CreateEvent)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", events.GetEvent)
				r.Put("/", events.UpdateEvent)
				r.Delete("/", events.DeleteEvent)
			})
		})

		r.Get("/calendar", events.Calendar) // GET /api/calendar?month=YYYY-MM
	})

	return r
}
