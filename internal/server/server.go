package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/parkqueue/parkqueue-api/internal/auth"
	"github.com/parkqueue/parkqueue-api/internal/config"
	"github.com/parkqueue/parkqueue-api/internal/handler"
)

// Handlers bundles the HTTP handlers mounted by the router.
type Handlers struct {
	Auth         *handler.AuthHandler
	Verification *handler.VerificationHandler
	System       *handler.SystemHandler
}

// New builds the HTTP server with all routes, middleware and CORS configured.
func New(
	cfg *config.Config,
	jwtAuth auth.JWTAuthenticator,
	handlers Handlers,
	logger *zerolog.Logger,
) *http.Server {
	r := chi.NewRouter()

	r.Use(handler.RequestLogger(logger))
	r.Use(handler.Recoverer(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
	}).Handler)

	requireSession := handler.JWTAuth(jwtAuth, cfg.Token.AccessTokenSecret)

	r.Route("/api", func(api chi.Router) {
		api.NotFound(handler.NotFoundAPI)

		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", handlers.Auth.Register)
			ar.Post("/verify-code", handlers.Auth.VerifyCode)
			ar.Post("/complete-registration", handlers.Auth.CompleteRegistration)
			ar.Post("/login", handlers.Auth.Login)
			ar.Post("/google", handlers.Auth.GoogleLogin)
			ar.Post("/request-password-reset", handlers.Auth.RequestPasswordReset)
			ar.Post("/reset-password", handlers.Auth.ResetPassword)

			ar.Group(func(pr chi.Router) {
				pr.Use(requireSession)
				pr.Post("/logout", handlers.Auth.Logout)
			})
		})

		api.Group(func(pr chi.Router) {
			pr.Use(requireSession)
			pr.Get("/users/me/status", handlers.Verification.Status)
			pr.Post("/verification", handlers.Verification.Submit)
		})

		api.Route("/admin", func(adm chi.Router) {
			adm.Use(requireSession)
			adm.Use(handler.RequireAdmin)
			adm.Get("/verifications", handlers.Verification.ListPending)
			adm.Post("/verifications/{userID}/review", handlers.Verification.Review)
		})
	})

	r.Get("/health", handlers.System.Health)
	r.Get("/test-email", handlers.System.TestEmail)
	r.Get("/test-db", handlers.System.TestDB)

	// Fixed HTML routes for navigation; everything else under the static
	// directory is served as-is.
	r.Get("/", handlers.System.Page("index.html"))
	r.Get("/dashboard", handlers.System.Page("dashboard.html"))
	r.Get("/verification", handlers.System.Page("verification.html"))
	r.Get("/user-verification", handlers.System.Page("user-verification.html"))
	r.Get("/admin", handlers.System.Page("admin/index.html"))
	r.Get("/admin/dashboard", handlers.System.Page("admin/dashboard.html"))
	r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: r,
	}
}
