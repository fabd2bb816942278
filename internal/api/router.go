package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rrens/chatbot-api/internal/api/handler"
	customMiddleware "github.com/Rrens/chatbot-api/internal/api/middleware"
	"github.com/Rrens/chatbot-api/internal/config"
	"github.com/Rrens/chatbot-api/internal/domain"
	"github.com/Rrens/chatbot-api/internal/llm"
	"github.com/Rrens/chatbot-api/internal/security"
	"github.com/Rrens/chatbot-api/internal/service"
)

// Dependencies are the stores and clients the HTTP layer is built on
type Dependencies struct {
	Users     domain.UserRepository
	Demos     domain.DemoRepository
	Guard     domain.SubmissionGuard
	LLMRouter *llm.Router
	DB        handler.Pinger
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(customMiddleware.BodyLimit(cfg.Server.MaxBodyBytes))
	if cfg.Server.IsProduction() {
		r.Use(customMiddleware.SecurityHeaders)
	}

	// CORS
	originPolicy := security.NewOriginPolicy(cfg.CORS.AllowedOrigins, cfg.CORS.AllowPrivateNetwork, cfg.CORS.DevPorts)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return originPolicy.Allow(origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	tokenManager := security.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	cookieSigner := security.NewCookieSigner(cfg.Auth.CookieSecret)

	// Initialize services
	authService := service.NewAuthService(deps.Users, tokenManager)
	chatService := service.NewChatService(deps.Users, deps.LLMRouter, cfg.LLM.DefaultProvider, "")
	demoService := service.NewDemoService(deps.Demos, deps.Guard)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, cookieSigner, cfg.Auth)
	chatHandler := handler.NewChatHandler(chatService)
	demoHandler := handler.NewDemoHandler(demoService)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(tokenManager, cookieSigner, cfg.Auth.CookieName)

	r.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		if deps.DB != nil {
			r.Get("/ready", handler.ReadyCheck(deps.DB))
		}

		r.Route("/user", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Get("/auth-status", authHandler.Status)
				r.Get("/logout", authHandler.Logout)
			})
		})

		r.Route("/chat", func(r chi.Router) {
			r.Get("/models", chatHandler.Models)

			// body is validated before the session cookie
			r.With(chatHandler.ValidateMessage, authMiddleware.Authenticate).Post("/new", chatHandler.New)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Get("/all-chats", chatHandler.AllChats)
				r.Delete("/delete-all-chats", chatHandler.DeleteAllChats)
			})
		})

		r.Post("/demo-request", demoHandler.Submit)

		r.Route("/admin/demo-requests", func(r chi.Router) {
			if cfg.Admin.RequireAuth {
				r.Use(authMiddleware.Authenticate)
			}

			r.Get("/", demoHandler.List)
			r.Get("/{id}", demoHandler.Get)
			r.Put("/{id}", demoHandler.Update)
			r.Delete("/{id}", demoHandler.Delete)
		})
	})

	return r
}
