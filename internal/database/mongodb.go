package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chat-relay/internal/config"
)

// MongoDB represents a MongoDB connection.
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoConfig
}

// NewMongoDB connects to MongoDB and verifies the connection with a ping.
func NewMongoDB(ctx context.Context, cfg *config.MongoConfig) (*MongoDB, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize)

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoDB{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

// GetCollection returns a collection.
func (m *MongoDB) GetCollection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// Close closes the MongoDB connection.
func (m *MongoDB) Close(ctx context.Context) error {
	disconnectCtx, cancel := context.WithTimeout(ctx, m.config.ConnectTimeout)
	defer cancel()

	if err := m.client.Disconnect(disconnectCtx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}

// CreateIndexes creates the indexes the relay queries against.
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	indexCtx, cancel := context.WithTimeout(ctx, m.config.ConnectTimeout)
	defer cancel()

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "last_room_id", Value: 1}},
		},
	}
	if _, err := m.GetCollection("users").Indexes().CreateMany(indexCtx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	roomIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := m.GetCollection("rooms").Indexes().CreateMany(indexCtx, roomIndexes); err != nil {
		return fmt.Errorf("failed to create room indexes: %w", err)
	}

	messageIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "timestamp", Value: 1}},
		},
	}
	if _, err := m.GetCollection("messages").Indexes().CreateMany(indexCtx, messageIndexes); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	return nil
}

// HealthCheck performs a health check on the MongoDB connection.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, m.config.PingTimeout)
	defer cancel()

	if err := m.client.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("MongoDB health check failed: %w", err)
	}
	return nil
}
