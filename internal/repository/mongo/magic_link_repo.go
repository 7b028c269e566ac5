package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"
	"github.com/joshshaloo/project-unify-sub000/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const magicLinkCollectionName = "magic_links"

// mongoMagicLinkRepository implements repository.MagicLinkRepository using MongoDB.
type mongoMagicLinkRepository struct {
	collection *mongo.Collection
}

// NewMongoMagicLinkRepository creates a new instance of mongoMagicLinkRepository.
func NewMongoMagicLinkRepository(db *mongo.Database) repository.MagicLinkRepository {
	return &mongoMagicLinkRepository{
		collection: db.Collection(magicLinkCollectionName),
	}
}

// Create stores a freshly issued token.
func (r *mongoMagicLinkRepository) Create(ctx context.Context, link *domain.MagicLink) (primitive.ObjectID, error) {
	if link.Email == "" || link.Token == "" {
		return primitive.NilObjectID, errors.New("magic link email and token are required")
	}

	link.ID = primitive.NewObjectID()
	link.Email = strings.ToLower(link.Email)
	link.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, link)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByToken looks up a token.
func (r *mongoMagicLinkRepository) GetByToken(ctx context.Context, token string) (*domain.MagicLink, error) {
	var link domain.MagicLink
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// MarkUsed stamps the first (and only) successful verification. The filter
// requires usedAt to be unset so a concurrent second use loses the race.
func (r *mongoMagicLinkRepository) MarkUsed(ctx context.Context, id primitive.ObjectID, usedAt time.Time) error {
	filter := bson.M{"_id": id, "usedAt": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"usedAt": usedAt}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a single token.
func (r *mongoMagicLinkRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteExpired removes expired and already-used tokens.
func (r *mongoMagicLinkRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"expiresAt": bson.M{"$lt": now}},
			{"usedAt": bson.M{"$exists": true}},
		},
	}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureMagicLinkIndexes creates necessary indexes for the magic_links collection.
func EnsureMagicLinkIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
