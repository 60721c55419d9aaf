package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/article-voting-api/internal/models"
	"github.com/article-voting-api/internal/service"
	"github.com/article-voting-api/internal/validation"
)

// CommentHandler handles comment submission and listing endpoints
type CommentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// CreateComment handles POST /api/votar/:nombre/comentario
func (h *CommentHandler) CreateComment(c *gin.Context) {
	ctx := c.Request.Context()
	nombre := c.Param("nombre")

	var in validation.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"mensaje":           "Se requieren autor, texto y userId para el comentario",
			"campos_requeridos": []string{"autor", "texto", "userId"},
			"timestamp":         timestamp(),
		})
		return
	}

	if errs := validation.ValidateComment(&in); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"mensaje":           "Autor máximo 50 caracteres, texto máximo 500 caracteres; autor, texto y userId son obligatorios",
			"campos_requeridos": validation.RequiredFields(errs),
			"timestamp":         timestamp(),
		})
		return
	}

	comment := &models.Comment{
		Author:   in.Author,
		Text:     in.Text,
		UserID:   in.UserID,
		OriginIP: c.ClientIP(),
	}

	stored, outcome, err := h.services.Comment.Add(ctx, nombre, comment)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"mensaje":    fmt.Sprintf("Comentario registrado para %s", nombre),
		"comentario": stored,
		"articulo":   nombre,
		"resultado":  outcome,
		"timestamp":  timestamp(),
	})
}

// ListComments handles GET /api/votar/:nombre/comentario
func (h *CommentHandler) ListComments(c *gin.Context) {
	ctx := c.Request.Context()
	nombre := c.Param("nombre")

	page := parsePage(c, 20)

	result, err := h.services.Comment.ListByArticle(ctx, nombre, page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje":     fmt.Sprintf("Comentarios del artículo %s", nombre),
		"articulo":    result.Article,
		"comentarios": result.Comments,
		"paginacion":  result.Pagination,
		"estadisticas": gin.H{
			"totalComentarios":    result.Pagination.Total,
			"totalVotos":          result.TotalVotes,
			"ultimaActualizacion": result.LastUpdatedAt,
		},
		"timestamp": timestamp(),
	})
}

// DebugArticle handles GET /api/test-comentario/:nombre, a diagnostic
// probe that lists the seeded article names when the lookup misses.
func (h *CommentHandler) DebugArticle(c *gin.Context) {
	ctx := c.Request.Context()
	nombre := c.Param("nombre")

	view, err := h.services.Article.Get(ctx, nombre)
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		respondError(c, h.log, err)
		return
	}

	if view == nil {
		names, lerr := h.services.Article.ListNames(ctx)
		if lerr != nil {
			respondError(c, h.log, lerr)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"error":                "Artículo no encontrado",
			"nombre":               nombre,
			"articulosDisponibles": names,
			"timestamp":            timestamp(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje": "Artículo encontrado",
		"articulo": gin.H{
			"nombre":           view.Name,
			"comentarios":      view.Comments,
			"totalComentarios": view.TotalComments,
		},
		"timestamp": timestamp(),
	})
}
