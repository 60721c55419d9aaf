package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Article represents an article document in the "articulos" collection.
// Articles are seeded out of band; this service only mutates the vote
// counter, the voter set and the update timestamp. The Spanish bson/json
// field names are the wire contract consumed by the existing frontend.
type Article struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Name          string             `bson:"nombre" json:"nombre"`
	Title         string             `bson:"titulo" json:"titulo"`
	Image         string             `bson:"img" json:"img"`
	Content       string             `bson:"contenido" json:"contenido"`
	Votes         int                `bson:"voto" json:"voto"`
	VotedUserIDs  []string           `bson:"usuariosQueVotaron" json:"usuariosQueVotaron,omitempty"`
	LastUpdatedAt time.Time          `bson:"ultimaActualizacion,omitempty" json:"ultimaActualizacion"`
	CreatedAt     time.Time          `bson:"fechaCreacion,omitempty" json:"fechaCreacion"`
}

// HasVoted reports whether the user id is in the voter set
func (a *Article) HasVoted(userID string) bool {
	for _, id := range a.VotedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ArticleView is the full article representation returned by the API,
// with comments joined back in from the comments collection.
type ArticleView struct {
	Name          string     `json:"nombre"`
	Title         string     `json:"titulo"`
	Image         string     `json:"img"`
	Content       string     `json:"contenido"`
	Votes         int        `json:"voto"`
	Comments      []*Comment `json:"comentarios"`
	TotalComments int64      `json:"totalComentarios"`
	LastUpdatedAt time.Time  `json:"ultimaActualizacion"`
	CreatedAt     time.Time  `json:"fechaCreacion"`
}

// UserStatus reports whether a user has already voted or commented on an
// article.
type UserStatus struct {
	Article      string `json:"articulo"`
	UserID       string `json:"userId"`
	HasVoted     bool   `json:"yaVoto"`
	HasCommented bool   `json:"yaComento"`
}

// Stats holds the aggregate counters for the whole collection
type Stats struct {
	TotalVotes    int64   `bson:"totalVotos" json:"totalVotos"`
	TotalArticles int64   `bson:"totalArticulos" json:"totalArticulos"`
	AverageVotes  float64 `bson:"promedioVotos" json:"promedioVotos"`
	TotalComments int64   `bson:"-" json:"totalComentarios"`
}

// Pagination describes one page of a listing
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"pagina"`
	Limit      int   `json:"limite"`
	TotalPages int   `json:"totalPaginas"`
}

// NewPagination computes the page descriptor for a total row count
func NewPagination(total int64, page, limit int) *Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// ValidSortFields whitelists the article listing sort keys
var ValidSortFields = map[string]bool{
	"nombre":              true,
	"voto":                true,
	"ultimaActualizacion": true,
	"fechaCreacion":       true,
}
