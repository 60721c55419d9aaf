package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/article-voting-api/internal/models"
	"github.com/article-voting-api/internal/repository"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	articles repository.ArticleRepository
	comments repository.CommentRepository
	log      zerolog.Logger
}

// NewArticleService creates a new article service
func NewArticleService(articles repository.ArticleRepository, comments repository.CommentRepository, log zerolog.Logger) ArticleService {
	return &articleService{
		articles: articles,
		comments: comments,
		log:      log.With().Str("service", "article").Logger(),
	}
}

// Get returns the full article view with its comments joined in
func (s *articleService) Get(ctx context.Context, name string) (*models.ArticleView, error) {
	article, err := s.articles.FindByName(ctx, name)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if article == nil {
		return nil, ErrNotFound
	}

	comments, err := s.comments.FindByArticle(ctx, name)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	return &models.ArticleView{
		Name:          article.Name,
		Title:         article.Title,
		Image:         article.Image,
		Content:       article.Content,
		Votes:         article.Votes,
		Comments:      comments,
		TotalComments: int64(len(comments)),
		LastUpdatedAt: article.LastUpdatedAt,
		CreatedAt:     article.CreatedAt,
	}, nil
}

// List returns one page of articles. Unknown sort fields fall back to
// nombre so a crafted query string cannot reach the store as a sort key.
func (s *articleService) List(ctx context.Context, sortBy, order string, page PageRequest) ([]*models.Article, *models.Pagination, error) {
	if !models.ValidSortFields[sortBy] {
		sortBy = "nombre"
	}
	ascending := order != "desc"

	articles, total, err := s.articles.List(ctx, sortBy, ascending, page.Offset(), int64(page.Limit))
	if err != nil {
		return nil, nil, mapStoreErr(err)
	}
	if articles == nil {
		articles = []*models.Article{}
	}

	return articles, models.NewPagination(total, page.Page, page.Limit), nil
}

// ListNames returns the names of all seeded articles
func (s *articleService) ListNames(ctx context.Context) ([]string, error) {
	names, err := s.articles.ListNames(ctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return names, nil
}

// Vote registers a vote for the user, at most once per article.
//
// The read before the conditional update is only an optimization for a
// fast conflict answer; the update's own filter is the source of truth.
// When the filter misses after the pre-check passed, another request won
// the race, and a re-read tells a lost race apart from an article deleted
// in between.
func (s *articleService) Vote(ctx context.Context, name, userID string) (*models.Article, error) {
	article, err := s.articles.FindByName(ctx, name)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if article == nil {
		return nil, ErrNotFound
	}
	if article.HasVoted(userID) {
		return nil, ErrAlreadyVoted
	}

	updated, err := s.articles.IncrementVoteIfAbsent(ctx, name, userID)
	if errors.Is(err, repository.ErrNoMatch) {
		current, rerr := s.articles.FindByName(ctx, name)
		if rerr != nil {
			return nil, mapStoreErr(rerr)
		}
		if current == nil {
			return nil, ErrNotFound
		}
		s.log.Debug().Str("articulo", name).Str("userId", userID).Msg("Vote lost race to a concurrent request")
		return nil, ErrAlreadyVoted
	}
	if err != nil {
		return nil, mapStoreErr(err)
	}

	s.log.Info().Str("articulo", name).Str("userId", userID).Int("voto", updated.Votes).Msg("Vote registered")
	return updated, nil
}

// UserStatus reports whether the user already voted or commented
func (s *articleService) UserStatus(ctx context.Context, name, userID string) (*models.UserStatus, error) {
	article, err := s.articles.FindByName(ctx, name)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if article == nil {
		return nil, ErrNotFound
	}

	commented, err := s.comments.HasCommented(ctx, name, userID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	return &models.UserStatus{
		Article:      name,
		UserID:       userID,
		HasVoted:     article.HasVoted(userID),
		HasCommented: commented,
	}, nil
}

// Stats aggregates counters across both collections
func (s *articleService) Stats(ctx context.Context) (*models.Stats, error) {
	stats, err := s.articles.Stats(ctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	totalComments, err := s.comments.Count(ctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	stats.TotalComments = totalComments

	return stats, nil
}
