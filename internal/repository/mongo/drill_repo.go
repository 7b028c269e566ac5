package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"
	"github.com/joshshaloo/project-unify-sub000/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const drillCollectionName = "drills"

// mongoDrillRepository implements the repository.DrillRepository interface using MongoDB.
type mongoDrillRepository struct {
	collection *mongo.Collection
}

// NewMongoDrillRepository creates a new instance of mongoDrillRepository.
func NewMongoDrillRepository(db *mongo.Database) repository.DrillRepository {
	return &mongoDrillRepository{
		collection: db.Collection(drillCollectionName),
	}
}

// Create inserts a new library drill.
func (r *mongoDrillRepository) Create(ctx context.Context, drill *domain.Drill) (primitive.ObjectID, error) {
	if drill.ClubID == primitive.NilObjectID || drill.Name == "" {
		return primitive.NilObjectID, errors.New("drill club and name are required")
	}

	drill.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	drill.CreatedAt = now
	drill.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, drill)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a drill by ObjectID.
func (r *mongoDrillRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Drill, error) {
	var drill domain.Drill
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&drill)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &drill, nil
}

// GetByClub lists a club's drill library ordered by name.
func (r *mongoDrillRepository) GetByClub(ctx context.Context, clubID primitive.ObjectID) ([]domain.Drill, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"clubId": clubID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var drills []domain.Drill
	if err = cursor.All(ctx, &drills); err != nil {
		return nil, err
	}
	return drills, nil
}

// Update replaces the mutable fields of a drill.
func (r *mongoDrillRepository) Update(ctx context.Context, drill *domain.Drill) error {
	filter := bson.M{"_id": drill.ID, "clubId": drill.ClubID}
	update := bson.M{
		"$set": bson.M{
			"name":        drill.Name,
			"category":    drill.Category,
			"description": drill.Description,
			"ageGroups":   drill.AgeGroups,
			"duration":    drill.Duration,
			"equipment":   drill.Equipment,
			"difficulty":  drill.Difficulty,
			"videoUrl":    drill.VideoURL,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a drill, scoped to the owning club.
func (r *mongoDrillRepository) Delete(ctx context.Context, id, clubID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "clubId": clubID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureDrillIndexes creates necessary indexes for the drills collection.
func EnsureDrillIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clubId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
