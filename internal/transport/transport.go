package transport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sundai-club/climatime-machine/internal/transport/middleware"
)

const serviceName = "climatime-machine"

func InitRoutes(handler *TransformHandler, requestTimeout time.Duration) *gin.Engine {
	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(requestTimeout))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/transform", handler.Transform)
		api.POST("/merge", handler.Merge)
		api.GET("/scenarios", handler.Scenarios)
	}

	return router
}
