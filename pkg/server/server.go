package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/de-tools/ems-atlas/pkg/i18n"

	handlers "github.com/de-tools/ems-atlas/pkg/handlers/report"

	emsmiddleware "github.com/de-tools/ems-atlas/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
	onShutdown      func()
}

type Dependencies struct {
	Views      handlers.Views
	Translator i18n.Translator
	// Redirects carries the login redirect the session guard requested into 401 bodies.
	Redirects handlers.Redirects
	Logger    zerolog.Logger
	// OnShutdown runs after the HTTP server stopped, e.g. to close open views.
	OnShutdown func()
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) *chi.Mux {
	logger := config.Dependencies.Logger
	reportHandler := handlers.NewHandler(config.Dependencies.Views, config.Dependencies.Translator, config.Dependencies.Redirects)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(emsmiddleware.Logger(&logger))
	router.Use(emsmiddleware.Metrics)
	router.Use(middleware.Recoverer)

	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/reports", reportHandler.ListReports)
		r.Route("/views/{report}", func(r chi.Router) {
			r.Get("/", reportHandler.GetView)
			r.Put("/scope", reportHandler.SetScope)
			r.Get("/entities", reportHandler.SearchEntities)
			r.Put("/selection", reportHandler.Select)
			r.Put("/period", reportHandler.SetPeriod)
			r.Post("/submit", reportHandler.Submit)
			r.Get("/export", reportHandler.Export)
		})
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	logger := config.Dependencies.Logger
	router := ConfigureRouter(config)

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &WebAPI{
		router:          router,
		logger:          &logger,
		shutdownTimeout: shutdownTimeout,
		onShutdown:      config.Dependencies.OnShutdown,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	defer func() {
		if w.onShutdown != nil {
			w.onShutdown()
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
