package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/article-voting-api/internal/models"
	"github.com/article-voting-api/internal/repository"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	articles repository.ArticleRepository
	comments repository.CommentRepository
	log      zerolog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(articles repository.ArticleRepository, comments repository.CommentRepository, log zerolog.Logger) CommentService {
	return &commentService{
		articles: articles,
		comments: comments,
		log:      log.With().Str("service", "comment").Logger(),
	}
}

// Add stores one comment per user per article. Uniqueness is enforced by
// the store's compound index, not by the preceding existence check, so
// concurrent submissions from the same user end in exactly one insert.
func (s *commentService) Add(ctx context.Context, name string, comment *models.Comment) (*models.Comment, *models.UpdateOutcome, error) {
	article, err := s.articles.FindByName(ctx, name)
	if err != nil {
		return nil, nil, mapStoreErr(err)
	}
	if article == nil {
		return nil, nil, ErrNotFound
	}

	now := time.Now().UTC()
	comment.Article = name
	comment.Author = strings.TrimSpace(comment.Author)
	comment.Text = strings.TrimSpace(comment.Text)
	comment.ID = now.UnixMilli()
	comment.SubmittedAt = now

	if err := s.comments.Insert(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, ErrAlreadyCommented
		}
		return nil, nil, mapStoreErr(err)
	}

	matched, modified, err := s.articles.TouchLastUpdated(ctx, name, now)
	if err != nil {
		return nil, nil, mapStoreErr(err)
	}
	if matched == 0 {
		// Article vanished between the read and the stamp
		return nil, nil, ErrNotFound
	}
	// modified can be 0 when ultimaActualizacion already holds this
	// exact millisecond (another comment or vote stamped it first); the
	// comment is stored either way, so the stamp being current is
	// success, not a failure.

	s.log.Info().Str("articulo", name).Str("userId", comment.UserID).Msg("Comment registered")
	return comment, &models.UpdateOutcome{Matched: matched, Modified: modified}, nil
}

// ListByArticle returns one page of comments, newest first
func (s *commentService) ListByArticle(ctx context.Context, name string, page PageRequest) (*models.CommentPage, error) {
	article, err := s.articles.FindByName(ctx, name)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if article == nil {
		return nil, ErrNotFound
	}

	comments, total, err := s.comments.ListByArticle(ctx, name, page.Offset(), int64(page.Limit))
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	return &models.CommentPage{
		Article:       name,
		Comments:      comments,
		Pagination:    models.NewPagination(total, page.Page, page.Limit),
		TotalVotes:    article.Votes,
		LastUpdatedAt: article.LastUpdatedAt,
	}, nil
}
