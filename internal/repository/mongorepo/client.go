// Package mongorepo implements the repository contracts on MongoDB. Collection
// names match existing volunteerDB deployments.
package mongorepo

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/emilythestrangee/volunteer-board/backend/internal/repository"
)

const (
	PostsCollection    = "volunteer"
	RequestsCollection = "volunteerRequests"
)

// Client owns the driver connection. Transactions need a replica set or sharded cluster.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, pings the primary and makes sure the indexes exist.
func Connect(ctx context.Context, uri, database string) (*Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("error opening mongo client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}

	c := &Client{client: client, db: client.Database(database)}
	if err := c.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Printf("✅ MongoDB connected successfully (database %s)", database)
	return c, nil
}

// Repositories returns a repository.Store backed by c.
func (c *Client) Repositories() *repository.Store {
	return &repository.Store{
		Driver:   "mongo",
		Posts:    NewPostRepository(c.db.Collection(PostsCollection)),
		Requests: NewRequestRepository(c.client, c.db),
		Health:   c,
	}
}

func (c *Client) ensureIndexes(ctx context.Context) error {
	_, err := c.db.Collection(RequestsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userEmail", Value: 1}, {Key: "postId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_applicant"),
	})
	if err != nil {
		return fmt.Errorf("error creating request index: %w", err)
	}

	_, err = c.db.Collection(PostsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "deadline", Value: 1}}},
		{Keys: bson.D{{Key: "organizerEmail", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("error creating post indexes: %w", err)
	}
	return nil
}

// Health pings the primary.
func (c *Client) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stats := make(map[string]string)
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("mongo down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"
	stats["database"] = c.db.Name()
	return stats
}

func (c *Client) Close() error {
	log.Printf("Disconnected from mongo database: %s", c.db.Name())
	return c.client.Disconnect(context.Background())
}
