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
)

const clubCollectionName = "clubs"

// mongoClubRepository implements the repository.ClubRepository interface using MongoDB.
type mongoClubRepository struct {
	collection *mongo.Collection
}

// NewMongoClubRepository creates a new instance of mongoClubRepository.
func NewMongoClubRepository(db *mongo.Database) repository.ClubRepository {
	return &mongoClubRepository{
		collection: db.Collection(clubCollectionName),
	}
}

// Create inserts a new club.
func (r *mongoClubRepository) Create(ctx context.Context, club *domain.Club) (primitive.ObjectID, error) {
	if club.Name == "" {
		return primitive.NilObjectID, errors.New("club name is required")
	}

	club.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	club.CreatedAt = now
	club.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, club)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a club by its ObjectID.
func (r *mongoClubRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Club, error) {
	var club domain.Club
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&club)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &club, nil
}

// Update replaces the mutable fields of a club.
func (r *mongoClubRepository) Update(ctx context.Context, club *domain.Club) error {
	filter := bson.M{"_id": club.ID}
	update := bson.M{
		"$set": bson.M{
			"name":         club.Name,
			"logoUrl":      club.LogoURL,
			"primaryColor": club.PrimaryColor,
			"subscription": club.Subscription,
			"updatedAt":    time.Now().UTC(),
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
