package service

import (
	"context"

	"github.com/google/uuid"
)

// Feature identifies a gated capability.
type Feature string

// Gated features known to the engine.
const (
	FeatureReprioritization Feature = "reprioritization"
	FeatureBackgroundJobs   Feature = "background_jobs"
)

// FeatureGate answers whether a feature is enabled for a user's tenant.
// The boundary layer conventionally checks it before invoking the
// engine; the prioritizer additionally consults it itself and raises
// ErrFeatureDisabled when it finds the flag off.
type FeatureGate interface {
	Enabled(ctx context.Context, feature Feature, userID uuid.UUID) bool
}
