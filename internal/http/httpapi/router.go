package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"imagestudio/internal/http/handlers"
	"imagestudio/internal/metrics"
	"imagestudio/internal/middleware"
	"imagestudio/internal/view"
)

// Options tunes the middleware stack.
type Options struct {
	DefaultLocale   string
	RateLimitPerMin int
	CORSOrigins     []string
	SecureCookies   bool
	// TrustProxyHeaders takes the client ip from X-Forwarded-For and
	// X-Real-IP. Only set it behind a proxy that overwrites them.
	TrustProxyHeaders bool
	// Metrics enables request metrics and GET /metrics when set.
	Metrics *metrics.Collector
}

func NewRouter(app *handlers.App, logger zerolog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	var recorder middleware.HTTPRecorder
	if opts.Metrics != nil {
		recorder = opts.Metrics
	}
	r.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.Logger(logger),
		middleware.Metrics(recorder),
		chimw.Recoverer,
	)
	r.NotFound(app.NotFound)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	// Health and docs
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	limit := middleware.RateLimit(opts.RateLimitPerMin, time.Minute)

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.CORS(opts.CORSOrigins),
			middleware.Session(opts.SecureCookies),
			middleware.Locale(opts.DefaultLocale, view.Locales()),
		)

		r.Get("/", app.Index)
		r.With(limit).Post("/generate", app.Generate)
		r.Post("/aspect-ratio", app.AspectRatio)

		r.Route("/api", func(r chi.Router) {
			r.Get("/state", app.APIState)
			r.Put("/form", app.APIForm)
			r.With(limit).Post("/generate", app.APIGenerate)
			r.Get("/events", app.Events)
		})
	})

	return r
}
