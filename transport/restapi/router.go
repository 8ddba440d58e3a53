package restapi

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/yusufsyaifudin/marathon/internal/svc/appsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/healthsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/jobsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/templatesvc"
	"github.com/yusufsyaifudin/marathon/pkg/metric"
	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"github.com/yusufsyaifudin/marathon/transport/restapi/handlerapp"
	"github.com/yusufsyaifudin/marathon/transport/restapi/handlerhealth"
	"github.com/yusufsyaifudin/marathon/transport/restapi/handlerjob"
	"github.com/yusufsyaifudin/marathon/transport/restapi/handlertemplate"
	"github.com/yusufsyaifudin/marathon/transport/restapi/httptyped"
	"go.opentelemetry.io/otel"
)

type Config struct {
	AppService      appsvc.Service      `validate:"required"`
	TemplateService templatesvc.Service `validate:"required"`
	JobService      jobsvc.Service      `validate:"required"`
	HealthService   healthsvc.Service   `validate:"required"`

	// MetricHandler default to prometheus default gatherer.
	MetricHandler http.Handler `validate:"-"`
}

type DefaultHTTP struct {
	router *chi.Mux
}

func NewHTTPTransport(cfg Config) (*DefaultHTTP, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("http transport cfg error: %w", err)
	}

	if cfg.MetricHandler == nil {
		cfg.MetricHandler = metric.Handler()
	}

	handlerApp, err := handlerapp.NewHandler(handlerapp.HandlerConfig{
		AppService: cfg.AppService,
	})
	if err != nil {
		return nil, err
	}

	handlerTemplate, err := handlertemplate.NewHandler(handlertemplate.HandlerConfig{
		TemplateService: cfg.TemplateService,
	})
	if err != nil {
		return nil, err
	}

	handlerJob, err := handlerjob.NewHandler(handlerjob.HandlerConfig{
		JobService: cfg.JobService,
	})
	if err != nil {
		return nil, err
	}

	handlerHealth, err := handlerhealth.NewHandler(handlerhealth.HandlerConfig{
		HealthService: cfg.HealthService,
	})
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	// probes and scrapes are not traced nor logged
	skip := func(r *http.Request) bool {
		switch strings.TrimSpace(path.Clean(r.URL.Path)) {
		case "/healthcheck",
			"/metrics":
			return true
		}

		return false
	}

	router.Use(middleware.StripSlashes)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", httptyped.HeaderUserEmail},
		ExposedHeaders:   []string{"Link", "Tracer-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	router.Use(observe)

	router.Use(func(next http.Handler) http.Handler {
		return tracer.Middleware(tracer.MiddlewareConfig{
			TracerName:     "github.com/yusufsyaifudin/marathon",
			ServiceName:    tracer.ServiceName,
			SkipFunc:       skip,
			TracerProvider: otel.GetTracerProvider(),    // global tracer provider
			TextPropagator: otel.GetTextMapPropagator(), // use global text map propagator
		}, next)
	})

	// add trace id and also log request response
	router.Use(func(next http.Handler) http.Handler {
		return requestLogger(skip, next)
	})

	router.Get("/healthcheck", handlerHealth.Check())
	router.Method(http.MethodGet, "/metrics", cfg.MetricHandler)

	// Resource: apps
	router.Route("/apps", func(r chi.Router) {
		r.Get("/", handlerApp.ListApps())
		r.Post("/", handlerApp.CreateApp())
		r.Get("/{id}", handlerApp.GetApp())
		r.Put("/{id}", handlerApp.PutApp()) // replace all field, does not support patching
		r.Delete("/{id}", handlerApp.DelApp())

		// Resource: templates under one app
		r.Route("/{id}/templates", func(r chi.Router) {
			r.Get("/", handlerTemplate.ListTemplates())
			r.Post("/", handlerTemplate.CreateTemplate())
			r.Get("/{tid}", handlerTemplate.GetTemplate())
			r.Put("/{tid}", handlerTemplate.PutTemplate())
			r.Delete("/{tid}", handlerTemplate.DelTemplate())

			// Resource: jobs under one template
			r.Route("/{tid}/jobs", func(r chi.Router) {
				r.Get("/", handlerJob.ListJobs())
				r.Post("/", handlerJob.CreateJob())
				r.Get("/{jid}", handlerJob.GetJob())
			})
		})
	})

	instance := &DefaultHTTP{
		router: router,
	}

	return instance, nil
}

// Server .
func (a *DefaultHTTP) Server() http.Handler {
	return a.router
}
