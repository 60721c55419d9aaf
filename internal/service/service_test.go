package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/article-voting-api/internal/mocks"
	"github.com/article-voting-api/internal/models"
	"github.com/article-voting-api/internal/repository"
	"github.com/article-voting-api/internal/service"
)

func setupServices() (*service.Services, *mocks.MockArticleRepository, *mocks.MockCommentRepository) {
	articleRepo := mocks.NewMockArticleRepository()
	commentRepo := mocks.NewMockCommentRepository()
	repos := &repository.Repositories{Article: articleRepo, Comment: commentRepo}
	return service.NewServices(repos, zerolog.Nop()), articleRepo, commentRepo
}

func seedArticle(repo *mocks.MockArticleRepository, name string) {
	repo.Seed(&models.Article{
		Name:      name,
		Title:     "Título de " + name,
		Content:   "contenido",
		CreatedAt: time.Now().Add(-24 * time.Hour),
	})
}

func TestVote_FirstVoteSucceeds(t *testing.T) {
	svc, articleRepo, _ := setupServices()
	seedArticle(articleRepo, "foo")

	article, err := svc.Article.Vote(context.Background(), "foo", "u1")
	if err != nil {
		t.Fatalf("Vote failed: %v", err)
	}
	if article.Votes != 1 {
		t.Errorf("Expected 1 vote, got %d", article.Votes)
	}
	if !article.HasVoted("u1") {
		t.Error("u1 should be in the voter set")
	}
}

func TestVote_SecondVoteConflicts(t *testing.T) {
	svc, articleRepo, _ := setupServices()
	seedArticle(articleRepo, "foo")

	if _, err := svc.Article.Vote(context.Background(), "foo", "u1"); err != nil {
		t.Fatalf("First vote failed: %v", err)
	}

	_, err := svc.Article.Vote(context.Background(), "foo", "u1")
	if !errors.Is(err, service.ErrAlreadyVoted) {
		t.Errorf("Expected ErrAlreadyVoted, got %v", err)
	}

	// Counter must not have moved
	stored, _ := articleRepo.FindByName(context.Background(), "foo")
	if stored.Votes != 1 {
		t.Errorf("Expected vote count to stay at 1, got %d", stored.Votes)
	}
}

func TestVote_UnknownArticle(t *testing.T) {
	svc, _, _ := setupServices()

	_, err := svc.Article.Vote(context.Background(), "missing", "u1")
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestVote_LostRaceConvertsToConflict(t *testing.T) {
	svc, articleRepo, _ := setupServices()
	seedArticle(articleRepo, "foo")

	// Let a concurrent request slip in between the pre-check and the
	// conditional update: the pre-check sees no vote, the update then
	// misses its filter.
	raced := false
	articleRepo.FindHook = func() {
		if !raced {
			raced = true
			articleRepo.FindHook = nil
			if _, err := articleRepo.IncrementVoteIfAbsent(context.Background(), "foo", "u1"); err != nil {
				t.Fatalf("Racing vote failed: %v", err)
			}
		}
	}

	_, err := svc.Article.Vote(context.Background(), "foo", "u1")
	if !errors.Is(err, service.ErrAlreadyVoted) {
		t.Errorf("Expected lost race to surface as ErrAlreadyVoted, got %v", err)
	}

	stored, _ := articleRepo.FindByName(context.Background(), "foo")
	if stored.Votes != 1 {
		t.Errorf("Expected exactly one counted vote, got %d", stored.Votes)
	}
}

func TestVote_ConcurrentRequestsCountOnce(t *testing.T) {
	svc, articleRepo, _ := setupServices()
	seedArticle(articleRepo, "foo")

	const n = 20
	var wg sync.WaitGroup
	results := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Article.Vote(context.Background(), "foo", "u1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, service.ErrAlreadyVoted):
			conflicts++
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}

	if successes != 1 {
		t.Errorf("Expected exactly 1 success, got %d", successes)
	}
	if conflicts != n-1 {
		t.Errorf("Expected %d conflicts, got %d", n-1, conflicts)
	}

	stored, _ := articleRepo.FindByName(context.Background(), "foo")
	if stored.Votes != 1 {
		t.Errorf("Expected final vote count 1, got %d", stored.Votes)
	}
}

func TestVote_StoreUnavailable(t *testing.T) {
	svc, articleRepo, _ := setupServices()
	seedArticle(articleRepo, "foo")
	articleRepo.FindError = repository.ErrUnavailable

	_, err := svc.Article.Vote(context.Background(), "foo", "u1")
	if !errors.Is(err, service.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}

func TestAddComment_StoresOnePerUser(t *testing.T) {
	svc, articleRepo, commentRepo := setupServices()
	seedArticle(articleRepo, "foo")

	comment := &models.Comment{Author: "Ana", Text: "primer comentario", UserID: "u1", OriginIP: "10.0.0.1"}
	stored, outcome, err := svc.Comment.Add(context.Background(), "foo", comment)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if stored.ID == 0 {
		t.Error("Expected a creation-time id")
	}
	if stored.SubmittedAt.IsZero() {
		t.Error("Expected a submission timestamp")
	}
	if outcome.Matched != 1 || outcome.Modified != 1 {
		t.Errorf("Expected matched/modified 1/1, got %d/%d", outcome.Matched, outcome.Modified)
	}

	// Second comment from the same user conflicts
	_, _, err = svc.Comment.Add(context.Background(), "foo", &models.Comment{Author: "Ana", Text: "otro", UserID: "u1"})
	if !errors.Is(err, service.ErrAlreadyCommented) {
		t.Errorf("Expected ErrAlreadyCommented, got %v", err)
	}

	total, _ := commentRepo.Count(context.Background())
	if total != 1 {
		t.Errorf("Expected exactly 1 stored comment, got %d", total)
	}
}

func TestAddComment_TrimsFields(t *testing.T) {
	svc, articleRepo, _ := setupServices()
	seedArticle(articleRepo, "foo")

	stored, _, err := svc.Comment.Add(context.Background(), "foo", &models.Comment{
		Author: "  Ana  ",
		Text:   "  texto  ",
		UserID: "u1",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if stored.Author != "Ana" || stored.Text != "texto" {
		t.Errorf("Expected trimmed fields, got %q / %q", stored.Author, stored.Text)
	}
}

func TestAddComment_EqualValueStampStillSucceeds(t *testing.T) {
	svc, articleRepo, commentRepo := setupServices()
	seedArticle(articleRepo, "foo")

	// A concurrent comment or vote can set ultimaActualizacion to the
	// same millisecond first; the store then reports the stamp as
	// matched but not modified. The stored comment must still be a
	// success, not a 500.
	articleRepo.TouchFunc = func(name string, at time.Time) (int64, int64, error) {
		return 1, 0, nil
	}

	stored, outcome, err := svc.Comment.Add(context.Background(), "foo", &models.Comment{
		Author: "Ana",
		Text:   "texto",
		UserID: "u1",
	})
	if err != nil {
		t.Fatalf("Expected success when the stamp is already current, got %v", err)
	}
	if stored == nil {
		t.Fatal("Expected the stored comment back")
	}
	if outcome.Matched != 1 || outcome.Modified != 0 {
		t.Errorf("Expected matched/modified 1/0, got %d/%d", outcome.Matched, outcome.Modified)
	}

	total, _ := commentRepo.Count(context.Background())
	if total != 1 {
		t.Errorf("Expected 1 stored comment, got %d", total)
	}
}

func TestAddComment_ArticleDeletedBeforeStamp(t *testing.T) {
	svc, articleRepo, _ := setupServices()
	seedArticle(articleRepo, "foo")

	// Remove the article after the existence check so the stamp update
	// matches nothing.
	articleRepo.FindHook = func() {
		articleRepo.FindHook = nil
		articleRepo.Remove("foo")
	}

	_, _, err := svc.Comment.Add(context.Background(), "foo", &models.Comment{
		Author: "Ana",
		Text:   "texto",
		UserID: "u1",
	})
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound when the article vanished, got %v", err)
	}
}

func TestAddComment_UnknownArticleHasNoSideEffects(t *testing.T) {
	svc, _, commentRepo := setupServices()

	_, _, err := svc.Comment.Add(context.Background(), "bar", &models.Comment{Author: "Ana", Text: "texto", UserID: "u1"})
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	total, _ := commentRepo.Count(context.Background())
	if total != 0 {
		t.Errorf("Expected no stored comments, got %d", total)
	}
}

func TestAddComment_ConcurrentRequestsStoreOne(t *testing.T) {
	svc, articleRepo, commentRepo := setupServices()
	seedArticle(articleRepo, "foo")

	const n = 10
	var wg sync.WaitGroup
	results := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Comment.Add(context.Background(), "foo", &models.Comment{
				Author: "Ana",
				Text:   "comentario",
				UserID: "u1",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else if !errors.Is(err, service.ErrAlreadyCommented) {
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("Expected exactly 1 success, got %d", successes)
	}

	total, _ := commentRepo.Count(context.Background())
	if total != 1 {
		t.Errorf("Expected exactly 1 stored comment, got %d", total)
	}
}

func TestListComments_PaginatesNewestFirst(t *testing.T) {
	svc, articleRepo, commentRepo := setupServices()
	seedArticle(articleRepo, "foo")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		commentRepo.Insert(context.Background(), &models.Comment{
			Article:     "foo",
			ID:          int64(i),
			Author:      "Ana",
			Text:        "comentario",
			UserID:      string(rune('a' + i)),
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	page, err := svc.Comment.ListByArticle(context.Background(), "foo", service.PageRequest{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("ListByArticle failed: %v", err)
	}

	if page.Pagination.TotalPages != 3 {
		t.Errorf("Expected 3 total pages, got %d", page.Pagination.TotalPages)
	}
	if page.Pagination.Total != 25 {
		t.Errorf("Expected total 25, got %d", page.Pagination.Total)
	}
	if len(page.Comments) != 10 {
		t.Fatalf("Expected 10 comments, got %d", len(page.Comments))
	}

	// Page 2 holds ranks 11-20 by descending submission time, which are
	// insertion ids 14 down to 5.
	if page.Comments[0].ID != 14 {
		t.Errorf("Expected first comment id 14, got %d", page.Comments[0].ID)
	}
	if page.Comments[9].ID != 5 {
		t.Errorf("Expected last comment id 5, got %d", page.Comments[9].ID)
	}
}

func TestGetArticle_JoinsComments(t *testing.T) {
	svc, articleRepo, _ := setupServices()
	seedArticle(articleRepo, "foo")

	svc.Comment.Add(context.Background(), "foo", &models.Comment{Author: "Ana", Text: "uno", UserID: "u1"})
	svc.Comment.Add(context.Background(), "foo", &models.Comment{Author: "Juan", Text: "dos", UserID: "u2"})

	view, err := svc.Article.Get(context.Background(), "foo")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if view.TotalComments != 2 {
		t.Errorf("Expected totalComentarios 2, got %d", view.TotalComments)
	}
	if len(view.Comments) != 2 {
		t.Errorf("Expected 2 embedded comments, got %d", len(view.Comments))
	}
}

func TestUserStatus(t *testing.T) {
	svc, articleRepo, _ := setupServices()
	seedArticle(articleRepo, "foo")

	svc.Article.Vote(context.Background(), "foo", "u1")
	svc.Comment.Add(context.Background(), "foo", &models.Comment{Author: "Ana", Text: "texto", UserID: "u2"})

	status, err := svc.Article.UserStatus(context.Background(), "foo", "u1")
	if err != nil {
		t.Fatalf("UserStatus failed: %v", err)
	}
	if !status.HasVoted || status.HasCommented {
		t.Errorf("Expected voted=true commented=false, got %+v", status)
	}

	status, _ = svc.Article.UserStatus(context.Background(), "foo", "u2")
	if status.HasVoted || !status.HasCommented {
		t.Errorf("Expected voted=false commented=true, got %+v", status)
	}
}

func TestList_SortWhitelistFallsBack(t *testing.T) {
	svc, articleRepo, _ := setupServices()
	articleRepo.Seed(&models.Article{Name: "beta"})
	articleRepo.Seed(&models.Article{Name: "alfa"})

	articles, _, err := svc.Article.List(context.Background(), "{$where: 1}", "asc", service.PageRequest{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if articles[0].Name != "alfa" {
		t.Errorf("Expected fallback sort by nombre, got %q first", articles[0].Name)
	}
}

func TestList_DescendingOrder(t *testing.T) {
	svc, articleRepo, _ := setupServices()
	articleRepo.Seed(&models.Article{Name: "alfa", Votes: 1})
	articleRepo.Seed(&models.Article{Name: "beta", Votes: 5})

	articles, pagination, err := svc.Article.List(context.Background(), "voto", "desc", service.PageRequest{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if articles[0].Name != "beta" {
		t.Errorf("Expected beta first by votes desc, got %q", articles[0].Name)
	}
	if pagination.Total != 2 || pagination.TotalPages != 1 {
		t.Errorf("Unexpected pagination: %+v", pagination)
	}
}

func TestStats(t *testing.T) {
	svc, articleRepo, _ := setupServices()
	articleRepo.Seed(&models.Article{Name: "alfa", Votes: 4})
	articleRepo.Seed(&models.Article{Name: "beta", Votes: 2})
	svc.Comment.Add(context.Background(), "alfa", &models.Comment{Author: "Ana", Text: "texto", UserID: "u1"})

	stats, err := svc.Article.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalVotes != 6 || stats.TotalArticles != 2 {
		t.Errorf("Unexpected totals: %+v", stats)
	}
	if stats.AverageVotes != 3 {
		t.Errorf("Expected average 3, got %f", stats.AverageVotes)
	}
	if stats.TotalComments != 1 {
		t.Errorf("Expected 1 comment, got %d", stats.TotalComments)
	}
}

func TestStats_EmptyStoreReturnsZeros(t *testing.T) {
	svc, _, _ := setupServices()

	stats, err := svc.Article.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalVotes != 0 || stats.TotalArticles != 0 || stats.AverageVotes != 0 || stats.TotalComments != 0 {
		t.Errorf("Expected zero stats, got %+v", stats)
	}
}
