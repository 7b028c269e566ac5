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

const teamCollectionName = "teams"

// mongoTeamRepository implements the repository.TeamRepository interface using MongoDB.
type mongoTeamRepository struct {
	collection *mongo.Collection
}

// NewMongoTeamRepository creates a new instance of mongoTeamRepository.
func NewMongoTeamRepository(db *mongo.Database) repository.TeamRepository {
	return &mongoTeamRepository{
		collection: db.Collection(teamCollectionName),
	}
}

// Create inserts a new team.
func (r *mongoTeamRepository) Create(ctx context.Context, team *domain.Team) (primitive.ObjectID, error) {
	if team.ClubID == primitive.NilObjectID || team.Name == "" {
		return primitive.NilObjectID, errors.New("team club and name are required")
	}

	team.ID = primitive.NewObjectID()
	team.IsActive = true
	now := time.Now().UTC()
	team.CreatedAt = now
	team.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, team)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a team, including its embedded player roster.
func (r *mongoTeamRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Team, error) {
	var team domain.Team
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

// GetByClub returns a club's teams ordered by name.
func (r *mongoTeamRepository) GetByClub(ctx context.Context, clubID primitive.ObjectID, activeOnly bool) ([]domain.Team, error) {
	filter := bson.M{"clubId": clubID}
	if activeOnly {
		filter["isActive"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var teams []domain.Team
	if err = cursor.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// Update replaces the mutable fields of a team. Soft deletion goes through
// here as well by clearing IsActive.
func (r *mongoTeamRepository) Update(ctx context.Context, team *domain.Team) error {
	filter := bson.M{"_id": team.ID}
	update := bson.M{
		"$set": bson.M{
			"name":       team.Name,
			"ageGroup":   team.AgeGroup,
			"skillLevel": team.SkillLevel,
			"season":     team.Season,
			"isActive":   team.IsActive,
			"updatedAt":  time.Now().UTC(),
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

// AddPlayer appends a player to the team's roster.
func (r *mongoTeamRepository) AddPlayer(ctx context.Context, teamID primitive.ObjectID, player domain.Player) error {
	if player.ID == primitive.NilObjectID {
		player.ID = primitive.NewObjectID()
	}
	if player.JoinedAt.IsZero() {
		player.JoinedAt = time.Now().UTC()
	}

	filter := bson.M{"_id": teamID}
	update := bson.M{
		"$push": bson.M{"players": player},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
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

// RemovePlayer removes a player from the roster by ID.
func (r *mongoTeamRepository) RemovePlayer(ctx context.Context, teamID, playerID primitive.ObjectID) error {
	filter := bson.M{"_id": teamID}
	update := bson.M{
		"$pull": bson.M{"players": bson.M{"_id": playerID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
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

// EnsureTeamIndexes creates necessary indexes for the teams collection.
func EnsureTeamIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clubId", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
