// Package service contains the application's business logic. Services sit
// between the HTTP handlers and the repositories; all authorization decisions
// are made here, never in handlers.
package service

import (
	"context"
	"errors"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"
	"github.com/joshshaloo/project-unify-sub000/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors shared across services.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidID        = errors.New("invalid id format")
)

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// requireRole resolves the user's active role in the club and checks it
// against the minimum. No active membership denies, same as too low a role.
func requireRole(ctx context.Context, memberships repository.MembershipRepository, userID, clubID primitive.ObjectID, minimum domain.Role) (domain.Role, error) {
	m, err := memberships.GetByUserAndClub(ctx, userID, clubID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrPermissionDenied
		}
		return "", err
	}
	if !m.IsActive() || !domain.HasMinimumRole(m.Role, minimum) {
		return "", ErrPermissionDenied
	}
	return m.Role, nil
}
