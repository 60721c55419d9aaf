package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/article-voting-api/internal/models"
	"github.com/article-voting-api/internal/repository"
)

// MockArticleRepository is an in-memory implementation of
// ArticleRepository. The mutex stands in for the document-level atomicity
// the real store provides, so the conditional-update semantics hold under
// concurrent test traffic.
type MockArticleRepository struct {
	mu       sync.Mutex
	Articles map[string]*models.Article

	// FindError / UpdateError force failures for error-path tests
	FindError   error
	UpdateError error

	// FindHook runs after each FindByName, before the result is
	// returned. Tests use it to mutate state between a handler's
	// pre-check and its atomic update, simulating a lost race.
	FindHook func()

	// TouchFunc overrides TouchLastUpdated when set, so tests can
	// produce matched/modified combinations the in-memory store never
	// reaches on its own (an equal-value stamp, for instance).
	TouchFunc func(name string, at time.Time) (int64, int64, error)
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.Article),
	}
}

// Seed inserts an article the way the out-of-band seeding process would
func (m *MockArticleRepository) Seed(article *models.Article) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Articles[article.Name] = article
}

// Remove deletes an article, simulating an out-of-band removal
func (m *MockArticleRepository) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Articles, name)
}

func (m *MockArticleRepository) FindByName(ctx context.Context, name string) (*models.Article, error) {
	m.mu.Lock()
	if m.FindError != nil {
		m.mu.Unlock()
		return nil, m.FindError
	}
	article, ok := m.Articles[name]
	var snapshot *models.Article
	if ok {
		copied := *article
		copied.VotedUserIDs = append([]string(nil), article.VotedUserIDs...)
		snapshot = &copied
	}
	m.mu.Unlock()

	if m.FindHook != nil {
		m.FindHook()
	}
	if !ok {
		return nil, nil
	}
	return snapshot, nil
}

func (m *MockArticleRepository) IncrementVoteIfAbsent(ctx context.Context, name, userID string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateError != nil {
		return nil, m.UpdateError
	}

	article, ok := m.Articles[name]
	if !ok || article.HasVoted(userID) {
		return nil, repository.ErrNoMatch
	}

	article.Votes++
	article.VotedUserIDs = append(article.VotedUserIDs, userID)
	article.LastUpdatedAt = time.Now().UTC()

	copied := *article
	copied.VotedUserIDs = append([]string(nil), article.VotedUserIDs...)
	return &copied, nil
}

func (m *MockArticleRepository) TouchLastUpdated(ctx context.Context, name string, at time.Time) (int64, int64, error) {
	if m.TouchFunc != nil {
		return m.TouchFunc(name, at)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateError != nil {
		return 0, 0, m.UpdateError
	}

	article, ok := m.Articles[name]
	if !ok {
		return 0, 0, nil
	}
	article.LastUpdatedAt = at
	return 1, 1, nil
}

func (m *MockArticleRepository) List(ctx context.Context, sortField string, ascending bool, offset, limit int64) ([]*models.Article, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FindError != nil {
		return nil, 0, m.FindError
	}

	all := make([]*models.Article, 0, len(m.Articles))
	for _, a := range m.Articles {
		all = append(all, a)
	}

	sort.Slice(all, func(i, j int) bool {
		var less bool
		switch sortField {
		case "voto":
			less = all[i].Votes < all[j].Votes
		case "ultimaActualizacion":
			less = all[i].LastUpdatedAt.Before(all[j].LastUpdatedAt)
		case "fechaCreacion":
			less = all[i].CreatedAt.Before(all[j].CreatedAt)
		default:
			less = all[i].Name < all[j].Name
		}
		if !ascending {
			return !less
		}
		return less
	})

	total := int64(len(all))
	if offset >= total {
		return []*models.Article{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *MockArticleRepository) ListNames(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.Articles))
	for name := range m.Articles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockArticleRepository) Stats(ctx context.Context) (*models.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FindError != nil {
		return nil, m.FindError
	}

	stats := &models.Stats{}
	for _, a := range m.Articles {
		stats.TotalVotes += int64(a.Votes)
		stats.TotalArticles++
	}
	if stats.TotalArticles > 0 {
		stats.AverageVotes = float64(stats.TotalVotes) / float64(stats.TotalArticles)
	}
	return stats, nil
}

// MockCommentRepository is an in-memory implementation of
// CommentRepository with the (articulo, userId) uniqueness the real
// collection's compound index enforces.
type MockCommentRepository struct {
	mu       sync.Mutex
	Comments []*models.Comment

	InsertError error
	FindError   error
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{}
}

func (m *MockCommentRepository) EnsureIndexes(ctx context.Context) error {
	return nil
}

func (m *MockCommentRepository) Insert(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertError != nil {
		return m.InsertError
	}

	for _, existing := range m.Comments {
		if existing.Article == comment.Article && existing.UserID == comment.UserID {
			return repository.ErrDuplicate
		}
	}
	copied := *comment
	m.Comments = append(m.Comments, &copied)
	return nil
}

func (m *MockCommentRepository) ListByArticle(ctx context.Context, name string, offset, limit int64) ([]*models.Comment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FindError != nil {
		return nil, 0, m.FindError
	}

	matched := m.byArticle(name)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
	})

	total := int64(len(matched))
	if offset >= total {
		return []*models.Comment{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *MockCommentRepository) FindByArticle(ctx context.Context, name string) ([]*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FindError != nil {
		return nil, m.FindError
	}

	matched := m.byArticle(name)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SubmittedAt.Before(matched[j].SubmittedAt)
	})
	return matched, nil
}

func (m *MockCommentRepository) HasCommented(ctx context.Context, name, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.Comments {
		if c.Article == name && c.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.Comments)), nil
}

func (m *MockCommentRepository) byArticle(name string) []*models.Comment {
	matched := make([]*models.Comment, 0)
	for _, c := range m.Comments {
		if c.Article == name {
			matched = append(matched, c)
		}
	}
	return matched
}
