package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Activity
var (
	ErrEmptyActivityID     = errors.New("activity ID cannot be empty")
	ErrEmptyActivityUserID = errors.New("activity user ID cannot be empty")
	ErrEmptyActivityType   = errors.New("activity type cannot be empty")
	ErrZeroActivityTime    = errors.New("activity timestamp cannot be zero")
)

// Activity represents one timestamped, categorized event in a user's
// behavioral log. Activities are owned by the external activity-logging
// subsystem and are read-only from this service's perspective.
type Activity struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	ActivityType string    `json:"activity_type"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewActivity creates a new Activity with the given user ID, type, and
// timestamp. It generates a new UUID for the activity ID.
// Returns an error if validation fails.
func NewActivity(userID uuid.UUID, activityType string, timestamp time.Time) (*Activity, error) {
	activity := &Activity{
		ID:           uuid.New(),
		UserID:       userID,
		ActivityType: activityType,
		Timestamp:    timestamp,
	}

	if err := activity.Validate(); err != nil {
		return nil, err
	}

	return activity, nil
}

// Validate checks if the Activity has valid data.
// Returns an error if any field fails validation.
func (a *Activity) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyActivityID
	}

	if a.UserID == uuid.Nil {
		return ErrEmptyActivityUserID
	}

	if a.ActivityType == "" {
		return ErrEmptyActivityType
	}

	if a.Timestamp.IsZero() {
		return ErrZeroActivityTime
	}

	return nil
}
