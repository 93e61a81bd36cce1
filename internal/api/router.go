package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the handler into a gin engine with CORS for the frontend
// origins.
func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", h.Home)
	r.GET("/api/health", h.Health)
	r.POST("/api/chat", h.Chat)
	r.POST("/api/podcast", h.Podcast)
	r.POST("/api/learning-profile/update", h.UpdateLearningProfile)

	return r
}
