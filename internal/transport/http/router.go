package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/portfolio-api/internal/application/auth"
	"github.com/portfolio-api/internal/application/content"
	fileapp "github.com/portfolio-api/internal/application/file"
	"github.com/portfolio-api/internal/application/newsletter"
	"github.com/portfolio-api/internal/application/subscriber"
	"github.com/portfolio-api/internal/application/vitals"
	"github.com/portfolio-api/internal/config"
	"github.com/portfolio-api/internal/domain"
	"github.com/portfolio-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/portfolio-api/internal/infrastructure/jwt"
	s3infra "github.com/portfolio-api/internal/infrastructure/s3"
	"github.com/portfolio-api/internal/infrastructure/smtp"
	"github.com/portfolio-api/internal/infrastructure/sns"
	"github.com/portfolio-api/internal/infrastructure/template"
	"github.com/portfolio-api/internal/transport/http/handler"
	appmiddleware "github.com/portfolio-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	SubscriberRepo *dynamo.SubscriberRepo
	BlogRepo       *dynamo.BlogRepo
	EventRepo      *dynamo.EventRepo
	ProjectRepo    *dynamo.ProjectRepo
	PositionRepo   *dynamo.PositionRepo
	VitalRepo      *dynamo.VitalRepo
	FileRepo       *dynamo.FileRepo
	UserRepo       *dynamo.UserRepo
	SessionRepo    *dynamo.SessionRepo
	S3Store        *s3infra.Store
	Mailer         smtp.Mailer
	SMSSender      sns.SMSSender
	Templates      *template.Engine
	JWTProvider    *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to public write endpoints.
	publicRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	// Web-vital beacons arrive in bursts on page load; allow more headroom.
	beaconRL := appmiddleware.NewRateLimiter(rate.Limit(20), 40)

	contentSvc := content.NewService(deps.BlogRepo, deps.EventRepo, deps.ProjectRepo, deps.PositionRepo,
		cfg.Newsletter.RecentPosts, cfg.Newsletter.UpcomingEvents)
	newsletterSvc := newsletter.NewService(newsletter.ServiceDeps{
		Subscribers: deps.SubscriberRepo,
		Mailer:      deps.Mailer,
		Content:     contentSvc,
		Templates:   deps.Templates,
		SMS:         deps.SMSSender,
		OwnerPhone:  cfg.OwnerPhone,
		Config:      cfg.Newsletter,
	})
	subscriberSvc := subscriber.NewService(deps.SubscriberRepo)
	vitalSvc := vitals.NewService(deps.VitalRepo)
	fileSvc := fileapp.NewService(deps.FileRepo, deps.S3Store)
	authSvc := auth.NewService(auth.ServiceDeps{
		Users:    deps.UserRepo,
		Sessions: deps.SessionRepo,
		Signer:   deps.JWTProvider,
	})

	healthH := handler.NewHealthHandler()
	subscriberH := handler.NewSubscriberHandler(subscriberSvc)
	newsletterH := handler.NewNewsletterHandler(newsletterSvc)
	vitalH := handler.NewVitalHandler(vitalSvc)
	fileH := handler.NewFileHandler(fileSvc)
	sessionH := handler.NewSessionHandler(authSvc)
	portfolioH := handler.NewPortfolioHandler(contentSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", healthH.Ping)
		r.Get("/portfolio", portfolioH.Get)
		r.With(publicRL.Limit).Post("/subscribers", subscriberH.Subscribe)
		r.With(publicRL.Limit).Post("/subscribers/unsubscribe", subscriberH.Unsubscribe)
		r.With(beaconRL.Limit).Post("/vitals", vitalH.Ingest)
		r.With(publicRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)

		// ── Authenticated admin routes ───────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/subscribers", subscriberH.List)
				r.Get("/subscribers/{id}", subscriberH.Get)

				r.Post("/newsletter/dispatch", newsletterH.DispatchAll)
				r.Post("/newsletter/dispatch/{id}", newsletterH.DispatchOne)
				r.Post("/newsletter/test", newsletterH.SendTest)
				r.Get("/newsletter/preview", newsletterH.Preview)

				r.Get("/vitals/summary", vitalH.Summary)

				r.Post("/files", fileH.Upload)
				r.Post("/files/base64", fileH.UploadBase64)
				r.Get("/files/{id}", fileH.Download)
				r.Delete("/files/{id}", fileH.Delete)
			})
		})
	})

	return r
}
