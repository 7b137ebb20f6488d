package router

import (
	"net/http"

	"github.com/rahaft/bcasco-site/internal/app"
	_ "github.com/rahaft/bcasco-site/internal/docs"
	"github.com/rahaft/bcasco-site/internal/domain/content"
	"github.com/rahaft/bcasco-site/internal/domain/events"
	"github.com/rahaft/bcasco-site/internal/domain/forms"
	"github.com/rahaft/bcasco-site/internal/domain/relay"
	"github.com/rahaft/bcasco-site/internal/middleware"
	"github.com/rahaft/bcasco-site/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si no viene, se arma todo en memoria con config por defecto.
	Services *app.Services
}

func NewRouter(opts Options) http.Handler {
	svc := opts.Services
	if svc == nil {
		svc = app.New(app.Options{})
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(svc.Log))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", svc.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas por módulo
	content.RegisterRoutes(r, svc.Workspaces)
	events.RegisterRoutes(r, svc.Events)
	forms.RegisterRoutes(r, svc.Forms, svc.Policy)
	relay.RegisterRoutes(r, svc.Relay, svc.Policy)

	return r
}
