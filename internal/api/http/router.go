package http

import (
	"time"

	"seabattle/internal/api/auth"
	"seabattle/internal/api/ws"
	"seabattle/internal/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func NewRouter(users store.Store, cookies *auth.Cookies, hub *ws.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	// WebSocket for matchmaking and play
	r.GET("/ws", hub.HandleWS)

	api := r.Group("/api")
	// --- ACCOUNT ENDPOINTS ---
	api.POST("/users", RegisterHandler(users))
	api.POST("/login", LoginHandler(users, cookies))
	api.GET("/logout", LogoutHandler(cookies))
	api.GET("/info", InfoHandler(users, cookies))

	// --- SCORE ENDPOINTS ---
	api.GET("/leaderboard", LeaderboardHandler(users))

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("request")
	}
}
