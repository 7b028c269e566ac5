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

const invitationCollectionName = "invitations"

// mongoInvitationRepository implements repository.InvitationRepository using MongoDB.
type mongoInvitationRepository struct {
	collection *mongo.Collection
}

// NewMongoInvitationRepository creates a new instance of mongoInvitationRepository.
func NewMongoInvitationRepository(db *mongo.Database) repository.InvitationRepository {
	return &mongoInvitationRepository{
		collection: db.Collection(invitationCollectionName),
	}
}

// Create inserts a new invitation.
func (r *mongoInvitationRepository) Create(ctx context.Context, inv *domain.Invitation) (primitive.ObjectID, error) {
	if inv.ClubID == primitive.NilObjectID || inv.Token == "" || inv.Role == "" {
		return primitive.NilObjectID, errors.New("invitation club, token and role are required")
	}

	inv.ID = primitive.NewObjectID()
	inv.Email = strings.ToLower(inv.Email)
	inv.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, inv)
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

// GetByID retrieves an invitation by ObjectID.
func (r *mongoInvitationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Invitation, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByToken retrieves an invitation by its token.
func (r *mongoInvitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	return r.findOne(ctx, bson.M{"token": token})
}

func (r *mongoInvitationRepository) findOne(ctx context.Context, filter bson.M) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := r.collection.FindOne(ctx, filter).Decode(&inv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// GetByClub lists a club's invitations, newest first.
func (r *mongoInvitationRepository) GetByClub(ctx context.Context, clubID primitive.ObjectID) ([]domain.Invitation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"clubId": clubID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var invitations []domain.Invitation
	if err = cursor.All(ctx, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

// MarkUsed stamps acceptance; the unset filter makes acceptance single-use.
func (r *mongoInvitationRepository) MarkUsed(ctx context.Context, id primitive.ObjectID, usedAt time.Time, usedByEmail string) error {
	filter := bson.M{"_id": id, "usedAt": bson.M{"$exists": false}}
	update := bson.M{
		"$set": bson.M{
			"usedAt":      usedAt,
			"usedByEmail": strings.ToLower(usedByEmail),
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

// Delete cancels an invitation.
func (r *mongoInvitationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureInvitationIndexes creates necessary indexes for the invitations collection.
func EnsureInvitationIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "clubId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
