package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chat-relay/internal/database"
)

const opTimeout = 5 * time.Second

// RoomDocument represents a room document in MongoDB.
type RoomDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	AdminID   string             `bson:"admin_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

// ToRoom converts RoomDocument to the Room entity.
func (doc *RoomDocument) ToRoom() *Room {
	return &Room{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		AdminID:   doc.AdminID,
		CreatedAt: doc.CreatedAt,
	}
}

// MongoRepository implements Repository using MongoDB.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a new MongoDB room repository.
func NewMongoRepository(db *database.MongoDB) Repository {
	return &MongoRepository{collection: db.GetCollection("rooms")}
}

// GetByName gets a room by name.
func (r *MongoRepository) GetByName(ctx context.Context, name string) (*Room, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc RoomDocument
	err := r.collection.FindOne(opCtx, bson.M{"name": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up room '%s': %w", name, err)
	}
	return doc.ToRoom(), nil
}

// GetByID gets a room by its durable id.
func (r *MongoRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid room id: %w", err)
	}

	var doc RoomDocument
	err = r.collection.FindOne(opCtx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up room %s: %w", id, err)
	}
	return doc.ToRoom(), nil
}

// GetAll returns every persisted room, oldest first.
func (r *MongoRepository) GetAll(ctx context.Context) ([]*Room, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.collection.Find(opCtx, bson.M{}, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer cursor.Close(opCtx)

	rooms := make([]*Room, 0)
	for cursor.Next(opCtx) {
		var doc RoomDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode room: %w", err)
		}
		rooms = append(rooms, doc.ToRoom())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// GetOrCreate resolves a room by name, creating it with the proposed admin
// when it does not exist yet.
func (r *MongoRepository) GetOrCreate(ctx context.Context, name, adminID string) (*Room, error) {
	existing, err := r.GetByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := RoomDocument{Name: name, AdminID: adminID, CreatedAt: time.Now()}
	result, err := r.collection.InsertOne(opCtx, &doc)
	if err != nil {
		// Two sessions racing to create the same room: the loser keeps the
		// winner's admin.
		if mongo.IsDuplicateKeyError(err) {
			return r.GetByName(ctx, name)
		}
		return nil, fmt.Errorf("failed to create room '%s': %w", name, err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.ToRoom(), nil
}

// Delete removes the room record itself. Cascading cleanup of messages and
// last-room references is orchestrated by the persistence gateway.
func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid room id: %w", err)
	}

	result, err := r.collection.DeleteOne(opCtx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete room %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
