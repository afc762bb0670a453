package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"chat-relay/internal/database"
)

const opTimeout = 5 * time.Second

// UserDocument represents a user document in MongoDB.
type UserDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Username   string             `bson:"username"`
	LastRoomID string             `bson:"last_room_id,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

// ToUser converts UserDocument to the User entity.
func (doc *UserDocument) ToUser() *User {
	return &User{
		ID:         doc.ID.Hex(),
		Username:   doc.Username,
		LastRoomID: doc.LastRoomID,
	}
}

// MongoRepository implements Repository using MongoDB.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a new MongoDB user repository.
func NewMongoRepository(db *database.MongoDB) Repository {
	return &MongoRepository{collection: db.GetCollection("users")}
}

// GetOrCreate resolves or persists the record for a display name.
func (r *MongoRepository) GetOrCreate(ctx context.Context, username string) (*User, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc UserDocument
	err := r.collection.FindOne(opCtx, bson.M{"username": username}).Decode(&doc)
	if err == nil {
		return doc.ToUser(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to look up user '%s': %w", username, err)
	}

	now := time.Now()
	doc = UserDocument{Username: username, CreatedAt: now, UpdatedAt: now}
	result, err := r.collection.InsertOne(opCtx, &doc)
	if err != nil {
		// A concurrent first connection under the same name can win the
		// insert; the unique index turns that into a duplicate key.
		if mongo.IsDuplicateKeyError(err) {
			if err := r.collection.FindOne(opCtx, bson.M{"username": username}).Decode(&doc); err == nil {
				return doc.ToUser(), nil
			}
		}
		return nil, fmt.Errorf("failed to create user '%s': %w", username, err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.ToUser(), nil
}

// SetLastRoom records the room a user should auto-rejoin on reconnect.
func (r *MongoRepository) SetLastRoom(ctx context.Context, userID, roomID string) error {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	update := bson.M{"$set": bson.M{"last_room_id": roomID, "updated_at": time.Now()}}
	result, err := r.collection.UpdateOne(opCtx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to set last room: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearLastRoom resets the last-room reference of every user pointing at the
// given room.
func (r *MongoRepository) ClearLastRoom(ctx context.Context, roomID string) error {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"last_room_id": "", "updated_at": time.Now()}}
	if _, err := r.collection.UpdateMany(opCtx, bson.M{"last_room_id": roomID}, update); err != nil {
		return fmt.Errorf("failed to clear last room references: %w", err)
	}
	return nil
}
