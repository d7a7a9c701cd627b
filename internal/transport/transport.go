package transport

import (
	"time"

	"github.com/ds124wfegd/gradphoto/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

func InitRoutes(sessionHandler *SessionHandler, maxUploadBytes int64) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxUploadBytes

	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	sessions := router.Group("/sessions")
	{
		sessions.POST("", sessionHandler.CreateSession)
		sessions.GET("/:id", sessionHandler.GetSession)
		sessions.DELETE("/:id", sessionHandler.DeleteSession)

		sessions.POST("/:id/file", sessionHandler.UploadImage)
		sessions.PUT("/:id/caption", sessionHandler.SetCaption)
		sessions.POST("/:id/generate", sessionHandler.Generate)
		sessions.POST("/:id/retry", sessionHandler.Retry)
		sessions.POST("/:id/reset", sessionHandler.Reset)

		sessions.GET("/:id/image", sessionHandler.DownloadImage)
		sessions.GET("/:id/image/dataurl", sessionHandler.DataURL)
		sessions.GET("/:id/share", sessionHandler.Share)
		sessions.GET("/:id/mailto", sessionHandler.Mailto)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "graduation-photo-service",
			"time":    time.Now().UTC(),
		})
	})
	return router
}
