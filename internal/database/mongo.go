package database

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/article-voting-api/internal/config"
)

var credentialsInURI = regexp.MustCompile(`//.*:.*@`)

// DB wraps the shared MongoDB client and database handle. It is created
// once at startup, passed explicitly to the repositories, and closed on
// shutdown.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
	cfg      *config.DatabaseConfig
	log      zerolog.Logger
}

// Status describes the store connection for health reporting. The URI is
// redacted so credentials never reach a response body or log line.
type Status struct {
	Connected bool   `json:"connected"`
	Database  string `json:"database"`
	URI       string `json:"uri"`
}

// New connects to MongoDB and verifies the connection with a ping
func New(cfg *config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := &DB{
		client:   client,
		database: client.Database(cfg.Name),
		cfg:      cfg,
		log:      log.With().Str("component", "database").Logger(),
	}

	db.log.Info().
		Str("uri", redactURI(cfg.URI)).
		Str("database", cfg.Name).
		Msg("MongoDB connection established")

	return db, nil
}

// Collection returns a handle to the named collection
func (db *DB) Collection(name string) *mongo.Collection {
	return db.database.Collection(name)
}

// HealthCheck verifies the store connection is healthy
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

// Status reports the connection state using a live ping
func (db *DB) Status(ctx context.Context) Status {
	connected := db.client.Ping(ctx, readpref.Primary()) == nil
	return Status{
		Connected: connected,
		Database:  db.cfg.Name,
		URI:       redactURI(db.cfg.URI),
	}
}

// Close disconnects the client
func (db *DB) Close(ctx context.Context) error {
	db.log.Info().Msg("Closing MongoDB connection")
	return db.client.Disconnect(ctx)
}

func redactURI(uri string) string {
	return credentialsInURI.ReplaceAllString(uri, "//***:***@")
}
