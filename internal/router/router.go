package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focusloop/backend/internal/handler"
	"focusloop/backend/internal/middleware"
	"focusloop/backend/internal/service"
)

func New(
	authService *service.AuthService,
	authHandler *handler.AuthHandler,
	timerHandler *handler.TimerHandler,
	corsOrigins []string,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	api.POST("/auth/token", authHandler.Token)

	guarded := api.Group("")
	guarded.Use(middleware.Auth(authService))

	timer := guarded.Group("/timer")
	timer.GET("", timerHandler.GetState)
	timer.POST("/start", timerHandler.Start)
	timer.POST("/pause", timerHandler.Pause)
	timer.POST("/reset", timerHandler.Reset)
	timer.POST("/mode", timerHandler.SwitchMode)
	timer.GET("/events", timerHandler.Events)

	guarded.GET("/settings", timerHandler.GetSettings)
	guarded.PUT("/settings", timerHandler.UpdateSettings)

	history := guarded.Group("/history")
	history.GET("", timerHandler.GetHistory)
	history.GET("/day/:day", timerHandler.DaySummary)
	history.DELETE("", timerHandler.ClearHistory)

	return engine
}
