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

const membershipCollectionName = "memberships"

// mongoMembershipRepository implements repository.MembershipRepository using MongoDB.
type mongoMembershipRepository struct {
	collection *mongo.Collection
}

// NewMongoMembershipRepository creates a new instance of mongoMembershipRepository.
func NewMongoMembershipRepository(db *mongo.Database) repository.MembershipRepository {
	return &mongoMembershipRepository{
		collection: db.Collection(membershipCollectionName),
	}
}

// Create inserts a new user-club membership.
func (r *mongoMembershipRepository) Create(ctx context.Context, m *domain.Membership) (primitive.ObjectID, error) {
	if m.UserID == primitive.NilObjectID || m.ClubID == primitive.NilObjectID || m.Role == "" {
		return primitive.NilObjectID, errors.New("membership user, club and role are required")
	}

	m.ID = primitive.NewObjectID()
	if m.Status == "" {
		m.Status = domain.MembershipActive
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, m)
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

// GetByUserAndClub returns the membership record for a (user, club) pair.
func (r *mongoMembershipRepository) GetByUserAndClub(ctx context.Context, userID, clubID primitive.ObjectID) (*domain.Membership, error) {
	var m domain.Membership
	filter := bson.M{"userId": userID, "clubId": clubID}

	err := r.collection.FindOne(ctx, filter).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetByUser returns all memberships of a user, any status.
func (r *mongoMembershipRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Membership, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

// GetByClub returns all memberships of a club, any status.
func (r *mongoMembershipRepository) GetByClub(ctx context.Context, clubID primitive.ObjectID) ([]domain.Membership, error) {
	return r.find(ctx, bson.M{"clubId": clubID})
}

func (r *mongoMembershipRepository) find(ctx context.Context, filter bson.M) ([]domain.Membership, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var memberships []domain.Membership
	if err = cursor.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// SetStatus flips a membership between active and inactive. Removal from a
// club is a soft status change, never a delete.
func (r *mongoMembershipRepository) SetStatus(ctx context.Context, userID, clubID primitive.ObjectID, status string) error {
	filter := bson.M{"userId": userID, "clubId": clubID}
	update := bson.M{"$set": bson.M{"status": status}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMembershipIndexes creates necessary indexes for the memberships collection.
func EnsureMembershipIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "clubId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "clubId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
