package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/article-voting-api/internal/database"
	"github.com/article-voting-api/internal/models"
)

const commentsCollection = "comentarios"

// commentRepo is the MongoDB implementation of CommentRepository
type commentRepo struct {
	coll *mongo.Collection
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{coll: db.Collection(commentsCollection)}
}

// EnsureIndexes creates the unique compound index on (articulo, userId).
// The index is what makes Insert an atomic append-if-absent: a concurrent
// duplicate insert loses at the index, not at an application-level check.
func (r *commentRepo) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "articulo", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := r.coll.Indexes().CreateOne(ctx, indexModel)
	return translate(err)
}

// Insert stores a comment. Returns ErrDuplicate when the user already has
// a comment on the article.
func (r *commentRepo) Insert(ctx context.Context, comment *models.Comment) error {
	_, err := r.coll.InsertOne(ctx, comment)
	return translate(err)
}

// ListByArticle returns one page of an article's comments ordered by
// submission time descending, plus the article's total comment count.
func (r *commentRepo) ListByArticle(ctx context.Context, name string, offset, limit int64) ([]*models.Comment, int64, error) {
	filter := bson.M{"articulo": name}

	opts := options.Find().
		SetSort(bson.D{{Key: "fecha", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer cursor.Close(ctx)

	var comments []*models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, 0, translate(err)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err)
	}

	return comments, total, nil
}

// FindByArticle returns all of an article's comments in submission order
func (r *commentRepo) FindByArticle(ctx context.Context, name string) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fecha", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"articulo": name}, opts)
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var comments []*models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, translate(err)
	}
	return comments, nil
}

// HasCommented reports whether the user already has a comment on the article
func (r *commentRepo) HasCommented(ctx context.Context, name, userID string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"articulo": name, "userId": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// Count returns the total number of comments across all articles
func (r *commentRepo) Count(ctx context.Context) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, translate(err)
	}
	return count, nil
}
