package message

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chat-relay/internal/database"
)

const opTimeout = 5 * time.Second

// MessageDocument represents a message document in MongoDB.
type MessageDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Text      string             `bson:"text"`
	Author    string             `bson:"author"`
	RoomID    string             `bson:"room_id"`
	Timestamp time.Time          `bson:"timestamp"`
}

// ToMessage converts MessageDocument to the Message entity.
func (doc *MessageDocument) ToMessage() *Message {
	return &Message{
		ID:        doc.ID.Hex(),
		Text:      doc.Text,
		Author:    doc.Author,
		RoomID:    doc.RoomID,
		Timestamp: doc.Timestamp,
	}
}

// MongoRepository implements Repository using MongoDB.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a new MongoDB message repository.
func NewMongoRepository(db *database.MongoDB) Repository {
	return &MongoRepository{collection: db.GetCollection("messages")}
}

// ListForRoom returns a room's messages ordered by timestamp ascending.
func (r *MongoRepository) ListForRoom(ctx context.Context, roomID string, offset, limit int) ([]*Message, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.M{"timestamp": 1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(opCtx, bson.M{"room_id": roomID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(opCtx)

	messages := make([]*Message, 0)
	for cursor.Next(opCtx) {
		var doc MessageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		messages = append(messages, doc.ToMessage())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// Append persists one message.
func (r *MongoRepository) Append(ctx context.Context, msg *Message) error {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := MessageDocument{
		Text:      msg.Text,
		Author:    msg.Author,
		RoomID:    msg.RoomID,
		Timestamp: msg.Timestamp,
	}

	result, err := r.collection.InsertOne(opCtx, &doc)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid.Hex()
	}
	return nil
}

// DeleteForRoom removes every message belonging to the given room.
func (r *MongoRepository) DeleteForRoom(ctx context.Context, roomID string) error {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.collection.DeleteMany(opCtx, bson.M{"room_id": roomID}); err != nil {
		return fmt.Errorf("failed to delete messages for room %s: %w", roomID, err)
	}
	return nil
}
