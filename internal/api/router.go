package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/article-voting-api/internal/auth"
	"github.com/article-voting-api/internal/database"
	"github.com/article-voting-api/internal/service"
)

var startTime = time.Now()

// StoreStatus reports the health of the backing store
type StoreStatus interface {
	Status(ctx context.Context) database.Status
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, store StoreStatus, verifier auth.Verifier, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "authtoken"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(auth.Middleware(verifier, log))

	// Handlers
	articleHandler := NewArticleHandler(services, log)
	commentHandler := NewCommentHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(store))

	// API routes
	api := router.Group("/api")
	{
		api.GET("/articulo/:nombre", articleHandler.GetArticle)
		api.GET("/articulo/:nombre/estado-usuario/:userId", articleHandler.GetUserStatus)

		api.GET("/votar/:nombre/comentario", commentHandler.ListComments)
		api.POST("/votar/:nombre/comentario", commentHandler.CreateComment)
		api.PUT("/votar/:nombre/masuno", articleHandler.CastVote)

		api.GET("/votos", articleHandler.ListArticles)
		api.GET("/estadisticas", articleHandler.GetStats)

		api.GET("/test-comentario/:nombre", commentHandler.DebugArticle)
	}

	// Unmatched routes echo the path and method back
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"mensaje":   "Endpoint no encontrado",
			"path":      c.Request.URL.Path,
			"method":    c.Request.Method,
			"timestamp": timestamp(),
		})
	})

	return router
}

// healthCheck reports liveness plus the store status
func healthCheck(store StoreStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": timestamp(),
			"database":  store.Status(ctx),
			"uptime":    time.Since(startTime).Seconds(),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"mensaje":   "Error interno del servidor",
					"timestamp": timestamp(),
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// requestIDMiddleware tags each request with an id for log correlation
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString("request_id")).
			Msg("Request completed")
	}
}
