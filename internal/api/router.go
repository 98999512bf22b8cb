package api

import (
	"log/slog"
	"net/http"
	"time"

	"helios/internal/eventbus"
	"helios/internal/exec"
	"helios/internal/identity"
	"helios/internal/pool"
	"helios/internal/stream"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Pool     *pool.Manager
	Identity *identity.Service
	Executor *exec.Executor
	Displays *stream.Registry
	Bus      eventbus.EventBus
	Audit    AuditStore
	Logger   *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())
	r.Use(RequestIDMiddleware())

	// Global health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "ok",
			Timestamp: formatTime(time.Now()),
		})
	})

	authHandler := NewAuthHandler(deps.Identity)
	sessionHandler := NewSessionHandler(deps.Pool, deps.Displays)
	statsHandler := NewStatsHandler(deps.Pool)
	execHandler := NewExecHandler(deps.Executor)
	eventsHandler := NewEventsHandler(deps.Pool, deps.Bus, deps.Logger)
	auditHandler := NewAuditHandler(deps.Audit)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		authed := v1.Group("")
		authed.Use(AuthMiddleware(deps.Identity))
		{
			sessions := authed.Group("/sessions")
			{
				sessions.POST("", sessionHandler.CreateSession)
				sessions.GET("", sessionHandler.ListSessions)
				sessions.GET("/:id", sessionHandler.GetSession)
				sessions.DELETE("/:id", sessionHandler.ReleaseSession)
				sessions.POST("/:id/heartbeat", sessionHandler.Heartbeat)
				sessions.GET("/:id/display", sessionHandler.GetDisplay)
				sessions.GET("/:id/events", eventsHandler.StreamEvents)
			}

			authed.POST("/exec", execHandler.RunCommand)
			authed.GET("/stats", statsHandler.GetStats)

			audit := authed.Group("/audit")
			{
				audit.GET("/events", auditHandler.ListEvents)
				audit.GET("/commands", auditHandler.ListCommands)
			}
		}
	}

	return r
}
