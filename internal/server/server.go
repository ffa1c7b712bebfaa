package server

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/volunteer-board/backend/internal/auth"
	"github.com/emilythestrangee/volunteer-board/backend/internal/config"
	"github.com/emilythestrangee/volunteer-board/backend/internal/handlers"
	"github.com/emilythestrangee/volunteer-board/backend/internal/metrics"
	"github.com/emilythestrangee/volunteer-board/backend/internal/middleware"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository"
)

type Server struct {
	cfg     *config.Config
	issuer  *auth.Issuer
	handler *handlers.Handler
	logger  *slog.Logger
}

// New wires the handler set over store.
func New(cfg *config.Config, store *repository.Store, logger *slog.Logger) *Server {
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	return &Server{
		cfg:     cfg,
		issuer:  issuer,
		handler: handlers.NewHandler(store, issuer, cfg.CookieSecure),
		logger:  logger,
	}
}

// NewServer creates and configures the HTTP server
func NewServer(cfg *config.Config, store *repository.Store, logger *slog.Logger) *http.Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := New(cfg, store, logger).RegisterRoutes()

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s (store: %s)\n", cfg.Port, store.Driver)
	log.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.StructuredLogger(s.logger),
		metrics.Middleware(),
	)

	// CORS configuration: one browser origin, with cookies
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{s.cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", s.handler.Banner)
	r.GET("/health", s.handler.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Session cookie
	r.POST("/jwt", s.handler.Auth.IssueToken)
	r.POST("/logout", s.handler.Auth.Logout)

	// Post routes
	r.GET("/volunteer", s.handler.Post.GetPosts)
	r.GET("/volunteer/top", s.handler.Post.GetTopPosts)
	r.GET("/volunteer/:id", s.handler.Post.GetPost)
	r.POST("/volunteer", s.handler.Post.CreatePost)
	r.PUT("/volunteer/:id", s.handler.Post.UpdatePost)
	r.PATCH("/volunteer/:id", s.handler.Post.DecrementVolunteers)
	r.PATCH("/volunteer-decrement/:id", s.handler.Post.DecrementVolunteers)
	r.DELETE("/volunteer/:id", s.handler.Post.DeletePost)
	r.GET("/volunteer-search", s.handler.Post.SearchPosts)
	r.GET("/my-posts", s.handler.Post.GetMyPosts)

	// Request routes (public)
	r.GET("/volunteer-requests/check", s.handler.Request.CheckApplied)
	r.POST("/volunteer-requests", s.handler.Request.Apply)
	r.DELETE("/volunteer-requests/:id", s.handler.Request.Cancel)

	// Protected routes (session cookie required)
	protected := r.Group("")
	protected.Use(middleware.AuthRequired(s.issuer))
	{
		protected.GET("/volunteer-requests", s.handler.Request.GetRequests)
		protected.GET("/my-requests", s.handler.Request.GetMyRequests)
	}

	return r
}
