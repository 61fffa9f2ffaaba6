package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterDeps struct {
	Env         string
	ServiceName string
	Log         *slog.Logger
	Prom        *observability.Prom

	Tokens   middlewares.TokenVerifier
	Accounts handlers.Accounts
	Profiles handlers.Profiles
	Tasks    handlers.Tasks

	// Ping backs /readyz; nil means always ready
	Ping func(ctx context.Context) error

	AllowedOrigins []string
	MaxBodyBytes   int64
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	serviceName := deps.ServiceName
	if serviceName == "" {
		serviceName = "taskhub"
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.CORSMiddleware(deps.AllowedOrigins))
	r.Use(middlewares.SecurityHeaders())
	if deps.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(deps.MaxBodyBytes))
	}

	// operational
	health := handlers.NewHealthHandler(deps.Ping)
	r.GET("/readyz", health.Readyz)
	if deps.Prom != nil {
		r.GET("/metrics", gin.WrapH(deps.Prom.Handler()))
	}

	api := r.Group("/api")
	api.GET("/health", health.Health)

	authHandler := handlers.NewAuthHandler(deps.Accounts, log)
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.SignUp)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	var recorder middlewares.AuthRecorder
	if deps.Prom != nil {
		recorder = deps.Prom
	}
	requireAuth := middlewares.NewAuthMiddleware(deps.Tokens, recorder).RequireAuth()

	profileHandler := handlers.NewProfileHandler(deps.Profiles, log)
	profileRoutes := api.Group("/profile", requireAuth)
	{
		profileRoutes.GET("/me", profileHandler.GetMe)
		profileRoutes.PUT("/me", profileHandler.UpdateMe)
	}

	tasksHandler := handlers.NewTasksHandler(deps.Tasks, log)
	taskRoutes := api.Group("/tasks", requireAuth)
	{
		taskRoutes.GET("", tasksHandler.ListTasks)
		taskRoutes.POST("", tasksHandler.CreateTask)
		taskRoutes.PUT("/:id", tasksHandler.UpdateTask)
		taskRoutes.DELETE("/:id", tasksHandler.DeleteTask)
	}

	return r
}
