package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/devconnector/connector-api/internal/api/handler"
	"github.com/devconnector/connector-api/internal/api/middleware"
	"github.com/devconnector/connector-api/internal/core/domain"
	"github.com/devconnector/connector-api/internal/core/ports"
	"github.com/devconnector/connector-api/internal/infrastructure/http/handlers"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Auth      ports.AuthService
	Profiles  ports.ProfileService
	Posts     ports.PostService
	Verifier  ports.TokenVerifier
	Readiness map[string]handlers.Pinger
	Log       zerolog.Logger
	// Registry receives the HTTP request metrics. Nil means the default
	// Prometheus registry, which also holds the domain metrics.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.BodyLimit("1M"))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "devconnector",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authHandler := handler.NewAuthHandler(deps.Auth)
	profileHandler := handler.NewProfileHandler(deps.Profiles)
	postHandler := handler.NewPostHandler(deps.Posts)
	private := middleware.Auth(deps.Verifier)

	postID := middleware.ObjectID("id", domain.ErrPostNotFound)
	commentID := middleware.ObjectID("comment_id", domain.ErrCommentNotFound)

	// --- Users & session ---
	e.POST("/api/users", authHandler.Register)

	auth := e.Group("/api/auth")
	auth.POST("", authHandler.Login)
	auth.GET("", authHandler.Me, private)
	auth.POST("/logout", authHandler.Logout, private)

	// --- Profiles ---
	profile := e.Group("/api/profile")
	profile.GET("", profileHandler.List)
	profile.GET("/user/:user_id", profileHandler.ByUser, middleware.ObjectID("user_id", domain.ErrProfileNotFound))
	profile.GET("/github/:username", profileHandler.GitHubRepos)
	profile.GET("/me", profileHandler.Me, private)
	profile.POST("", profileHandler.Upsert, private)
	profile.DELETE("", profileHandler.Delete, private)
	profile.PUT("/experience", profileHandler.AddExperience, private)
	profile.DELETE("/experience/:exp_id", profileHandler.DeleteExperience, private, middleware.ObjectID("exp_id", domain.ErrExperienceNotFound))
	profile.PUT("/education", profileHandler.AddEducation, private)
	profile.DELETE("/education/:edu_id", profileHandler.DeleteEducation, private, middleware.ObjectID("edu_id", domain.ErrEducationNotFound))

	// --- Posts (all private) ---
	post := e.Group("/api/post", private)
	post.POST("", postHandler.Create)
	post.GET("", postHandler.List)
	post.GET("/:id", postHandler.Get, postID)
	post.DELETE("/:id", postHandler.Delete, postID)
	post.PUT("/like/:id", postHandler.Like, postID)
	post.PUT("/unlike/:id", postHandler.Unlike, postID)
	post.POST("/comment/:id", postHandler.Comment, postID)
	post.DELETE("/comment/:id/:comment_id", postHandler.DeleteComment, postID, commentID)

	// --- Health probes, metrics & docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
