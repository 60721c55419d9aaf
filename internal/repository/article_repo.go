package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/article-voting-api/internal/database"
	"github.com/article-voting-api/internal/models"
)

const articlesCollection = "articulos"

// articleRepo is the MongoDB implementation of ArticleRepository
type articleRepo struct {
	coll *mongo.Collection
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{coll: db.Collection(articlesCollection)}
}

// FindByName retrieves an article by its unique name. Returns nil, nil
// when no article with that name exists.
func (r *articleRepo) FindByName(ctx context.Context, name string) (*models.Article, error) {
	var article models.Article
	err := r.coll.FindOne(ctx, bson.M{"nombre": name}).Decode(&article)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &article, nil
}

// IncrementVoteIfAbsent registers a vote in a single conditional update.
// The filter excludes documents that already contain the user id, so two
// concurrent votes from the same user can never both match: the store
// evaluates the membership check and the mutation indivisibly. A replay
// falls out of the filter and surfaces as ErrNoMatch.
func (r *articleRepo) IncrementVoteIfAbsent(ctx context.Context, name, userID string) (*models.Article, error) {
	filter := bson.M{
		"nombre":             name,
		"usuariosQueVotaron": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$inc":      bson.M{"voto": 1},
		"$addToSet": bson.M{"usuariosQueVotaron": userID},
		"$set":      bson.M{"ultimaActualizacion": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Article
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

// TouchLastUpdated stamps the article's ultimaActualizacion field
func (r *articleRepo) TouchLastUpdated(ctx context.Context, name string, at time.Time) (int64, int64, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"nombre": name},
		bson.M{"$set": bson.M{"ultimaActualizacion": at}},
	)
	if err != nil {
		return 0, 0, translate(err)
	}
	return res.MatchedCount, res.ModifiedCount, nil
}

// List returns one page of articles plus the total count
func (r *articleRepo) List(ctx context.Context, sortField string, ascending bool, offset, limit int64) ([]*models.Article, int64, error) {
	direction := 1
	if !ascending {
		direction = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: direction}}).
		SetSkip(offset).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer cursor.Close(ctx)

	var articles []*models.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, 0, translate(err)
	}

	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, translate(err)
	}

	return articles, total, nil
}

// ListNames returns the names of all articles
func (r *articleRepo) ListNames(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"nombre": 1, "_id": 0})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Name string `bson:"nombre"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}

	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	return names, nil
}

// Stats aggregates vote counters over the whole collection in one pass
func (r *articleRepo) Stats(ctx context.Context) (*models.Stats, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalVotos", Value: bson.D{{Key: "$sum", Value: "$voto"}}},
			{Key: "totalArticulos", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "promedioVotos", Value: bson.D{{Key: "$avg", Value: "$voto"}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var results []models.Stats
	if err := cursor.All(ctx, &results); err != nil {
		return nil, translate(err)
	}

	// Empty collection produces no groups
	if len(results) == 0 {
		return &models.Stats{}, nil
	}
	return &results[0], nil
}
