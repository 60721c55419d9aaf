package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/article-voting-api/internal/service"
	"github.com/article-voting-api/internal/validation"
)

// ArticleHandler handles article read, listing, voting and stats endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// GetArticle handles GET /api/articulo/:nombre
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	ctx := c.Request.Context()
	nombre := c.Param("nombre")

	view, err := h.services.Article.Get(ctx, nombre)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje":   fmt.Sprintf("Información del artículo %s", nombre),
		"articulo":  view,
		"timestamp": timestamp(),
	})
}

// GetUserStatus handles GET /api/articulo/:nombre/estado-usuario/:userId
func (h *ArticleHandler) GetUserStatus(c *gin.Context) {
	ctx := c.Request.Context()
	nombre := c.Param("nombre")
	userID := c.Param("userId")

	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"mensaje":   "Se requiere ID de usuario",
			"timestamp": timestamp(),
		})
		return
	}

	status, err := h.services.Article.UserStatus(ctx, nombre, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje":   fmt.Sprintf("Estado del usuario para %s", nombre),
		"articulo":  status.Article,
		"userId":    status.UserID,
		"yaVoto":    status.HasVoted,
		"yaComento": status.HasCommented,
		"timestamp": timestamp(),
	})
}

// CastVote handles PUT /api/votar/:nombre/masuno
func (h *ArticleHandler) CastVote(c *gin.Context) {
	ctx := c.Request.Context()
	nombre := c.Param("nombre")

	var in validation.VoteInput
	if err := c.ShouldBindJSON(&in); err != nil || len(validation.ValidateVote(&in)) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"mensaje":   "Se requiere ID de usuario para votar",
			"timestamp": timestamp(),
		})
		return
	}

	article, err := h.services.Article.Vote(ctx, nombre, in.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje":    fmt.Sprintf("Voto registrado para %s", nombre),
		"totalVotos": article.Votes,
		"articulo":   nombre,
		"yaVotaste":  true,
		"timestamp":  timestamp(),
	})
}

// ListArticles handles GET /api/votos
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	ctx := c.Request.Context()

	page := parsePage(c, 10)
	sortBy := c.DefaultQuery("sortBy", "nombre")
	order := c.DefaultQuery("order", "asc")

	articles, pagination, err := h.services.Article.List(ctx, sortBy, order, page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje":    "Artículos obtenidos desde MongoDB",
		"datos":      articles,
		"paginacion": pagination,
		"timestamp":  timestamp(),
	})
}

// GetStats handles GET /api/estadisticas
func (h *ArticleHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.services.Article.Stats(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje":      "Estadísticas del sistema",
		"estadisticas": stats,
		"timestamp":    timestamp(),
	})
}
