package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/middleware"
	"github.com/atinyakov/DigitalHouse/internal/repository"
)

// AdminRole is the role allowed on /api/admin.
const AdminRole = repository.RoleAdmin

// Handlers groups the handlers mounted by NewRouter.
type Handlers struct {
	Auth    *AuthHandler
	Home    *HomeHandler
	Posts   *PostHandler
	Profile *ProfileHandler
	Media   *MediaHandler
	Options *OptionsHandler
	Admin   *AdminHandler
}

// NewRouter constructs the HTTP handler of the development backend.
//
// Routes:
//
//	GET  /api/landing, /api/options/{locations,kulams}   public
//	POST /api/auth/{register,login-request,verify-otp}     public
//	GET  /api/auth/me                                       bearer
//	GET  /api/home/{summary,quick-actions,feed,highlights} bearer
//	/api/posts/...                                          bearer
//	/api/profile/...                                        bearer
//	POST /api/media/upload-url                              bearer
//	/api/admin/...                                          bearer, ADMIN
//	PUT  /uploads/*?sig=   GET /uploads/*                   presigned
//	GET  /metrics                                           when metricsHandler is set
//
// Middleware chain (applied in order): RequestID, WithRequestLogging,
// Recoverer, metrics instrumentation. JSON content type is enforced under
// /api only, so uploads may carry any type.
func NewRouter(
	h Handlers,
	auth middleware.Authenticator,
	metrics *middleware.Metrics,
	metricsHandler http.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	if metrics != nil {
		r.Use(metrics.Instrument)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))

		r.Get("/landing", Landing)
		r.Get("/options/locations", h.Options.Locations)
		r.Get("/options/kulams", h.Options.Kulams)
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login-request", h.Auth.LoginRequest)
		r.Post("/auth/verify-otp", h.Auth.VerifyOTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(auth))

			r.Get("/auth/me", h.Auth.Me)

			r.Get("/home/summary", h.Home.Summary)
			r.Get("/home/quick-actions", h.Home.QuickActions)
			r.Get("/home/feed", h.Home.Feed)
			r.Get("/home/highlights", h.Home.Highlights)

			r.Post("/posts", h.Posts.Create)
			r.Route("/posts/{id}", func(r chi.Router) {
				r.Get("/", h.Posts.Get)
				r.Put("/", h.Posts.Update)
				r.Delete("/", h.Posts.Delete)
				r.Post("/like", h.Posts.Like)
				r.Get("/comments", h.Posts.Comments)
				r.Post("/comments", h.Posts.AddComment)
				r.Post("/report", h.Posts.Report)
			})

			r.Get("/profile/me", h.Profile.Me)
			r.Put("/profile/me", h.Profile.Update)
			r.Patch("/profile/me/sections/{section}", h.Profile.PatchSection)
			r.Post("/profile/me/horoscope-upload-url", h.Profile.HoroscopeUploadURL)
			r.Get("/profile/activity", h.Profile.Activity)
			r.Put("/profile/{section}", h.Profile.PutSection)

			r.Post("/media/upload-url", h.Media.UploadURL)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(AdminRole))
				r.Post("/users/{id}/status", h.Admin.SetStatus)
				r.Post("/users/{id}/sections/{section}/review", h.Admin.ReviewSection)
			})
		})
	})

	r.Put("/uploads/*", h.Media.Put)
	r.Get("/uploads/*", h.Media.Get)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}
	return r
}
