package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/domain"
)

// ActivityStore defines read-only access to the activity log owned by
// the external activity-logging subsystem.
type ActivityStore interface {
	// ListForUser retrieves every activity for the given user, ordered
	// by timestamp ascending with ties broken by insertion order.
	// Returns an empty slice if the user has no activities.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Activity, error)
}
