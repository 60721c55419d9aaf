package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/article-voting-api/internal/models"
	"github.com/article-voting-api/internal/repository"
)

// Domain errors. Handlers map these onto HTTP status codes; everything
// else is an internal error.
var (
	// ErrNotFound means the named article does not exist
	ErrNotFound = errors.New("article not found")

	// ErrAlreadyVoted means the user already voted on the article
	ErrAlreadyVoted = errors.New("user already voted")

	// ErrAlreadyCommented means the user already commented on the article
	ErrAlreadyCommented = errors.New("user already commented")

	// ErrUnavailable means the store could not be reached
	ErrUnavailable = errors.New("store unavailable")
)

// PageRequest is a normalized page/limit pair
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip
func (p PageRequest) Offset() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// ArticleService exposes article reads, voting and aggregate stats
type ArticleService interface {
	Get(ctx context.Context, name string) (*models.ArticleView, error)
	List(ctx context.Context, sortBy, order string, page PageRequest) ([]*models.Article, *models.Pagination, error)
	ListNames(ctx context.Context) ([]string, error)
	Vote(ctx context.Context, name, userID string) (*models.Article, error)
	UserStatus(ctx context.Context, name, userID string) (*models.UserStatus, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// CommentService exposes comment submission and listing
type CommentService interface {
	Add(ctx context.Context, name string, comment *models.Comment) (*models.Comment, *models.UpdateOutcome, error)
	ListByArticle(ctx context.Context, name string, page PageRequest) (*models.CommentPage, error)
}

// Services holds all service interfaces
type Services struct {
	Article ArticleService
	Comment CommentService
}

// NewServices creates all services with their dependencies
func NewServices(repos *repository.Repositories, log zerolog.Logger) *Services {
	return &Services{
		Article: NewArticleService(repos.Article, repos.Comment, log),
		Comment: NewCommentService(repos.Article, repos.Comment, log),
	}
}

// mapStoreErr converts repository sentinels into the domain taxonomy.
// ErrNoMatch is deliberately not handled here: only the caller knows
// whether a missed filter means "absent" or "condition false".
func mapStoreErr(err error) error {
	if errors.Is(err, repository.ErrUnavailable) {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}
