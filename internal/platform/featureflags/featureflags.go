// Package featureflags provides the configuration-backed implementation
// of the service FeatureGate. Flags are evaluated per tenant; with a
// single-tenant deployment they collapse to the static config values.
package featureflags

import (
	"context"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/config"
	"github.com/routinely/routinely-api/internal/service"
)

// ConfigGate answers feature checks from the loaded configuration.
// Unknown features report disabled.
type ConfigGate struct {
	features config.FeaturesConfig
}

// NewConfigGate creates a gate backed by the given feature config.
func NewConfigGate(features config.FeaturesConfig) *ConfigGate {
	return &ConfigGate{features: features}
}

// Ensure ConfigGate implements service.FeatureGate
var _ service.FeatureGate = (*ConfigGate)(nil)

// Enabled implements service.FeatureGate.Enabled
func (g *ConfigGate) Enabled(_ context.Context, feature service.Feature, _ uuid.UUID) bool {
	switch feature {
	case service.FeatureReprioritization:
		return g.features.Reprioritization
	case service.FeatureBackgroundJobs:
		return g.features.BackgroundJobs
	default:
		return false
	}
}
