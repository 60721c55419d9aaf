package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/article-voting-api/internal/service"
)

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// respondError maps the service taxonomy onto HTTP status codes. Details
// never leak to the client; unexpected errors are logged and reported as
// a generic 500.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"mensaje":   "Artículo no encontrado",
			"timestamp": timestamp(),
		})
	case errors.Is(err, service.ErrAlreadyVoted):
		c.JSON(http.StatusConflict, gin.H{
			"mensaje":   "Ya has votado por este artículo",
			"timestamp": timestamp(),
		})
	case errors.Is(err, service.ErrAlreadyCommented):
		c.JSON(http.StatusConflict, gin.H{
			"mensaje":   "Ya has comentado en este artículo",
			"timestamp": timestamp(),
		})
	case errors.Is(err, service.ErrUnavailable):
		log.Error().Err(err).Msg("Store unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"mensaje":   "Servicio no disponible - Error de base de datos",
			"timestamp": timestamp(),
		})
	default:
		log.Error().Err(err).Msg("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"mensaje":   "Error interno del servidor",
			"timestamp": timestamp(),
		})
	}
}

// parsePage reads page/limit query parameters, clamping non-positive or
// non-numeric values to the defaults.
func parsePage(c *gin.Context, defaultLimit int) service.PageRequest {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(c, "limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	return service.PageRequest{Page: page, Limit: limit}
}

func queryInt(c *gin.Context, key string, defaultValue int) int {
	value := c.Query(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
