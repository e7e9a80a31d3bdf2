package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skillbridge/skillbridge-api/internal/middleware"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

// Handlers groups every endpoint handler the router mounts.
type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	User      *UserHandler
	Resume    *ResumeHandler
	Analysis  *AnalysisHandler
	Stream    *StreamHandler
	Dashboard *DashboardHandler
	Goal      *GoalHandler
	Chat      *ChatHandler
}

// RouterConfig holds the cross-cutting settings of the router.
type RouterConfig struct {
	Tokens            *middleware.TokenManager
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	Logger            *logger.Logger
}

// NewRouter builds the HTTP routes of the API.
func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", h.Health.Health)
	r.Get("/ready", h.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	auth := middleware.RequireAuth(cfg.Tokens)
	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitRequests > 0 {
		limit = middleware.UserRateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health.Health)

		r.Route("/auth", func(r chi.Router) {
			r.With(limit).Post("/register", h.Auth.Register)
			r.With(limit).Post("/login", h.Auth.Login)
			r.Group(func(r chi.Router) {
				r.Use(auth, limit)
				r.Get("/me", h.Auth.Me)
				r.Post("/logout", h.Auth.Logout)
				r.Put("/change-password", h.Auth.ChangePassword)
				r.Delete("/delete-account", h.Auth.DeleteAccount)
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(auth, limit)
			r.Get("/profile", h.User.Profile)
			r.Put("/update-profile", h.User.UpdateProfile)
		})

		r.Route("/resume", func(r chi.Router) {
			r.Use(auth, limit)
			r.Post("/upload-resume", h.Resume.Upload)
			r.Get("/resumes", h.Resume.List)
			r.Delete("/resumes/{id}", h.Resume.Delete)
		})

		r.Route("/analyze", func(r chi.Router) {
			r.Use(auth, limit)
			r.Get("/resume/{resumeId}", h.Analysis.LatestCompleted)
			r.Post("/{id}", h.Analysis.Analyze)
			r.Get("/{id}", h.Analysis.Latest)
			r.Get("/{id}/stream", h.Stream.AnalyzeStream)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(auth, limit)
			r.Get("/analytics", h.Dashboard.Analytics)
			r.Get("/recent-analyses", h.Dashboard.Recent)
			r.Get("/user-stats", h.Dashboard.Stats)
			r.Get("/skills-summary", h.Dashboard.SkillsSummary)
			r.Get("/career-domains-summary", h.Dashboard.DomainsSummary)
			r.Delete("/analysis/{analysisId}", h.Dashboard.Delete)
			r.Get("/export-analysis/{analysisId}", h.Dashboard.Export)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Use(auth, limit)
			r.Get("/", h.Goal.List)
			r.Post("/", h.Goal.Create)
			r.Put("/{id}", h.Goal.Update)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Get("/languages", h.Chat.Languages)
			r.Get("/health", h.Chat.Health)
			r.With(middleware.OptionalAuth(cfg.Tokens), limit).Post("/send", h.Chat.Send)
			r.Group(func(r chi.Router) {
				r.Use(auth, limit)
				r.Get("/history", h.Chat.History)
				r.Get("/insights", h.Chat.Insights)
				r.Get("/preferences", h.Chat.Preferences)
				r.Put("/preferences", h.Chat.UpdatePreferences)
				r.Post("/feedback", h.Chat.Feedback)
				r.Get("/performance", h.Chat.Performance)
				r.Post("/clear-cache", h.Chat.ClearCache)
				r.Get("/events", h.Stream.ChatEvents)
			})
		})
	})

	return r
}
