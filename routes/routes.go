package routes

import (
	"net/http"
	"time"

	"fieldbot/handlers"
	"fieldbot/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every endpoint of the chat-booking core.
func RegisterRoutes(
	r *gin.Engine,
	messageHandler *handlers.MessageHandler,
	buttonHandler *handlers.ButtonHandler,
	schedulingHandler *handlers.SchedulingHandler,
) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.POST("/messages", messageHandler.HandleInboundMessage)
		api.POST("/buttons", buttonHandler.HandleButtonClick)
		api.POST("/scheduling/context", schedulingHandler.GetSchedulingContext)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}
