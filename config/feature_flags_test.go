package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureFlags_Defaults(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureScoreboardTrends, nil))
	assert.True(t, ff.IsEnabled(FeatureCacheSnapshots, nil))
	assert.False(t, ff.IsEnabled("does.not.exist", nil))
}

func TestFeatureFlags_EnvOverride(t *testing.T) {
	t.Setenv("FEATURE_STATS_CHARTS", "false")
	t.Setenv("FEATURE_STATS_DISTRIBUTIONS", "25")

	ff := LoadFeatureFlags()

	assert.False(t, ff.IsEnabled(FeatureStatsCharts, nil))

	charts := ff.GetAllFeatures()[FeatureStatsDistributions]
	require.NotNil(t, charts)
	assert.Equal(t, 25, charts.RolloutPercent)
}

func TestFeatureFlags_RolloutIsDeterministic(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureStatsCharts, 50))

	ctx := &FeatureContext{PlayerID: "11111111-1111-1111-1111-111111111111"}
	first := ff.IsEnabled(FeatureStatsCharts, ctx)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ff.IsEnabled(FeatureStatsCharts, ctx))
	}
}

func TestFeatureFlags_PlayerOverrideWins(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.DisableFeature(FeatureStatsCharts))

	playerID := "22222222-2222-2222-2222-222222222222"
	ff.SetPlayerOverride(playerID, FeatureStatsCharts, true)
	assert.True(t, ff.IsEnabled(FeatureStatsCharts, &FeatureContext{PlayerID: playerID}))

	ff.ClearPlayerOverrides(playerID)
	assert.False(t, ff.IsEnabled(FeatureStatsCharts, &FeatureContext{PlayerID: playerID}))
}

func TestFeatureFlags_AdminBypassesRollout(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.DisableFeature(FeatureStatsCharts))

	assert.True(t, ff.IsEnabled(FeatureStatsCharts, &FeatureContext{IsAdmin: true}))
}
