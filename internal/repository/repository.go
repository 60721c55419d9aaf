package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/article-voting-api/internal/database"
	"github.com/article-voting-api/internal/models"
)

// Sentinel errors returned by the repositories. The driver-specific error
// shapes are translated here so the service layer never inspects mongo
// errors directly.
var (
	// ErrNoMatch means no document satisfied the operation's filter. For
	// conditional updates this covers both "document absent" and
	// "condition false"; callers that need to tell them apart re-read.
	ErrNoMatch = errors.New("no matching document")

	// ErrDuplicate means a unique index rejected the write
	ErrDuplicate = errors.New("duplicate key")

	// ErrUnavailable means the store could not be reached
	ErrUnavailable = errors.New("store unavailable")
)

// ArticleRepository is the gateway to the "articulos" collection
type ArticleRepository interface {
	FindByName(ctx context.Context, name string) (*models.Article, error)
	IncrementVoteIfAbsent(ctx context.Context, name, userID string) (*models.Article, error)
	TouchLastUpdated(ctx context.Context, name string, at time.Time) (matched, modified int64, err error)
	List(ctx context.Context, sortField string, ascending bool, offset, limit int64) ([]*models.Article, int64, error)
	ListNames(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// CommentRepository is the gateway to the "comentarios" collection
type CommentRepository interface {
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, comment *models.Comment) error
	ListByArticle(ctx context.Context, name string, offset, limit int64) ([]*models.Comment, int64, error)
	FindByArticle(ctx context.Context, name string) ([]*models.Comment, error)
	HasCommented(ctx context.Context, name, userID string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article ArticleRepository
	Comment CommentRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article: NewArticleRepo(db),
		Comment: NewCommentRepo(db),
	}
}

// translate maps driver errors onto the repository sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNoMatch
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	case errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, context.DeadlineExceeded),
		mongo.IsTimeout(err),
		mongo.IsNetworkError(err):
		return errors.Join(ErrUnavailable, err)
	default:
		return err
	}
}
