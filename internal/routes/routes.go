package routes

import (
	"net/http"

	"github.com/AnshRaj112/serenify-journal/internal/config"
	"github.com/AnshRaj112/serenify-journal/internal/handlers"
	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/monitor"
	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Accounts is the account service: sign-up/in/out for the auth handlers
// plus session lookup for RequireAuth.
type Accounts interface {
	handlers.Accounts
	middleware.Authenticator
}

// Deps are the services the HTTP API is built from.
type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	Monitor  monitor.Monitor
	Registry *prometheus.Registry

	Accounts Accounts
	Entries  handlers.Entries
	Prompts  handlers.Prompts
	Events   handlers.EntrySubscriber
	// Uploader is nil when Cloudinary is not configured.
	Uploader services.ImageUploader
	// UploadLimit is optional.
	UploadLimit *middleware.WindowLimiter
}

// New builds the router with the middleware stack and every route.
func New(d Deps) http.Handler {
	cfg := d.Config
	loc := cfg.Location()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer(d.Log, d.Monitor))
	r.Use(middleware.ZapRequestLogger(d.Log, cfg.TrustProxy))
	r.Use(middleware.NewHTTPMetrics(d.Registry).Middleware)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost, cfg.TrustProxy) {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"Not found"}`))
	})

	// Health check and metrics (no auth)
	r.Get("/health", handlers.Health(d.Monitor))
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))

	auth := handlers.NewAuthHandler(d.Accounts, d.Log)
	journal := handlers.NewJournalHandler(d.Entries, loc, d.Log)
	export := handlers.NewExportHandler(d.Entries, loc, d.Log)
	insights := handlers.NewAnalyticsHandler(d.Entries, loc, d.Log)
	prompts := handlers.NewPromptHandler(d.Prompts, d.Log)
	upload := handlers.NewUploadHandler(d.Uploader, d.Log)
	socket := handlers.NewEntriesSocket(d.Events, cfg.AllowedOrigins, d.Log)

	requireAuth := middleware.RequireAuth(d.Accounts, d.Log)
	exportLimit := middleware.ExportRateLimit(cfg.TrustProxy)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", auth.SignUp)
		r.Post("/signin", auth.SignIn)
		r.Post("/signout", auth.SignOut)
		r.With(requireAuth).Get("/me", auth.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Route("/api/entries", func(r chi.Router) {
			r.Get("/", journal.List)
			r.Post("/", journal.Create)
			r.With(exportLimit).Get("/export", export.Collection)
			r.Get("/{id}", journal.Get)
			r.Put("/{id}", journal.Update)
			r.Delete("/{id}", journal.Delete)
			r.With(exportLimit).Get("/{id}/pdf", export.Entry)
		})

		r.Get("/api/analytics", insights.Month)
		r.Get("/api/prompts", prompts.List)
		r.Get("/api/prompts/random", prompts.Random)

		if d.UploadLimit != nil {
			r.With(d.UploadLimit.Middleware).Post("/api/upload", upload.Upload)
		} else {
			r.Post("/api/upload", upload.Upload)
		}

		r.Handle("/ws/entries", socket)
	})

	return r
}
