package http

import (
	"net/http"
	"time"

	"remindd/internal/config"
	"remindd/internal/event"
	"remindd/internal/http/handler"
	mw "remindd/internal/http/middleware"
	"remindd/internal/scheduler"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, eng *scheduler.Engine) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	repo := &event.Repo{DB: db}
	eh := &handler.EventHandler{Store: repo, Engine: eng, Now: time.Now}

	r.Route("/events", func(r chi.Router) {
		r.Post("/", eh.Create)
		r.Get("/", eh.List)

		r.Get("/{id}", eh.Get)
		r.Delete("/{id}", eh.Delete)

		r.Post("/{id}/ack", eh.Acknowledge)
		r.Post("/{id}/stop", eh.Stop)
		r.Post("/{id}/activate", eh.Activate)
	})

	return r
}
