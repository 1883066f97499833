package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles for optional scoreboard surfaces.
// Supports gradual rollout and per-player overrides, so heavier features
// (distribution fitting, chart rendering) can be shipped to a slice of
// groups before everyone gets them.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Override rules (for testing/debugging)
	playerOverrides map[string]map[string]bool // playerID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Players are assigned based on hash of their ID
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	PlayerID string // requesting player's UUID
	IsAdmin  bool
}

// Predefined feature flag names.
const (
	// === Scoreboard Features ===
	FeatureScoreboardTrends     = "scoreboard.trends"     // rank change arrows (+2, -1)
	FeatureScoreboardHighlights = "scoreboard.highlights" // highlights card
	FeatureScoreboardResort     = "scoreboard.resort"     // caller-chosen metric/direction

	// === Statistics Features ===
	FeatureStatsDistributions = "stats.distributions" // gamma distribution fitting
	FeatureStatsCharts        = "stats.charts"        // server-side PNG rendering
	FeatureStatsHistory       = "stats.history"       // per-player match history

	// === Caching Features ===
	FeatureCacheSnapshots = "cache.snapshots" // scoreboard snapshot cache
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:        make(map[string]*Feature),
		playerOverrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	// Scoreboard features - the product core, enabled by default
	ff.features[FeatureScoreboardTrends] = &Feature{
		Name:           FeatureScoreboardTrends,
		Description:    "Show rank changes relative to the previous match",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureScoreboardHighlights] = &Feature{
		Name:           FeatureScoreboardHighlights,
		Description:    "Show the game highlights card",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureScoreboardResort] = &Feature{
		Name:           FeatureScoreboardResort,
		Description:    "Allow re-sorting the scoreboard by a non-default metric",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Statistics features
	ff.features[FeatureStatsDistributions] = &Feature{
		Name:           FeatureStatsDistributions,
		Description:    "Fit score distributions per player",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureStatsCharts] = &Feature{
		Name:           FeatureStatsCharts,
		Description:    "Render distribution charts server-side",
		Enabled:        true,
		RolloutPercent: 50, // Gradual rollout
	}

	ff.features[FeatureStatsHistory] = &Feature{
		Name:           FeatureStatsHistory,
		Description:    "Per-player match history",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Caching features
	ff.features[FeatureCacheSnapshots] = &Feature{
		Name:           FeatureCacheSnapshots,
		Description:    "Cache assembled scoreboards in Redis",
		Enabled:        true,
		RolloutPercent: 100,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_STATS_CHARTS=true
// Example: FEATURE_STATS_CHARTS=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "stats.charts" -> "FEATURE_STATS_CHARTS"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check player overrides first
	if ctx != nil && ctx.PlayerID != "" {
		if overrides, ok := ff.playerOverrides[ctx.PlayerID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admin users get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.PlayerID != "" {
		return ff.isInRollout(ctx.PlayerID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a player is in the rollout percentage.
// Uses consistent hashing so players stay in their bucket.
func (ff *FeatureFlags) isInRollout(playerID, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(playerID))
	hash := h.Sum32()

	bucket := int(hash % 100)
	return bucket < percent
}

// SetPlayerOverride sets a feature override for a specific player.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetPlayerOverride(playerID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.playerOverrides[playerID]; !ok {
		ff.playerOverrides[playerID] = make(map[string]bool)
	}
	ff.playerOverrides[playerID][featureName] = enabled
}

// ClearPlayerOverrides removes all overrides for a player.
func (ff *FeatureFlags) ClearPlayerOverrides(playerID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.playerOverrides, playerID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
