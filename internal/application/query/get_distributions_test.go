package query

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-hub/tally-score-hub/config"
	"github.com/tally-hub/tally-score-hub/internal/domain/scoreboard"
	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

func newDistributionsHandler(source *fakeMatchSource) *GetDistributionsHandler {
	return NewGetDistributionsHandler(
		newFakeGameRepo(fxGame(scoreboard.MetricWinRate)),
		source,
		newFakeMembership(fxAlice, fxBob),
		nil,
	)
}

// У Алисы пять матчей с разбросом, у Боба только два: кривая приходит
// лишь для Алисы, Боб учитывается как пропущенный.
func TestGetDistributions_SkipsPlayersWithFewMatches(t *testing.T) {
	rows := make([]scoreboard.MatchRow, 0, 7)
	for i := 0; i < 5; i++ {
		matchID := shared.MatchID(uuid.New())
		playedAt := fxPlayedAt.Add(time.Duration(i) * time.Hour)
		rows = append(rows, fxRow(fxAlice, "Alice", matchID, 10+i, playedAt, 1))
		if i < 2 {
			rows = append(rows, fxRow(fxBob, "Bob", matchID, 5, playedAt, 2))
		}
	}
	handler := newDistributionsHandler(&fakeMatchSource{rows: rows})

	result, err := handler.Handle(context.Background(), GetDistributionsQuery{
		GameID:      fxGameID.String(),
		RequesterID: fxBob.String(),
	})
	require.NoError(t, err)

	require.Len(t, result.Players, 1)
	assert.Equal(t, fxAlice.String(), result.Players[0].PlayerID)
	assert.Equal(t, "Alice", result.Players[0].PlayerName)
	assert.InDelta(t, 12.0, result.Players[0].Distribution.Mean, 1e-9)
	assert.Equal(t, 1, result.SkippedPlayers)
}

func TestGetDistributions_EmptyGame(t *testing.T) {
	handler := newDistributionsHandler(&fakeMatchSource{})

	result, err := handler.Handle(context.Background(), GetDistributionsQuery{
		GameID:      fxGameID.String(),
		RequesterID: fxAlice.String(),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Players)
	assert.Zero(t, result.SkippedPlayers)
}

func TestGetDistributions_RequesterNotMember(t *testing.T) {
	handler := newDistributionsHandler(&fakeMatchSource{rows: fxRows()})

	_, err := handler.Handle(context.Background(), GetDistributionsQuery{
		GameID:      fxGameID.String(),
		RequesterID: fxOutsider.String(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrMemberNotFound)
}

func TestGetDistributions_Validation(t *testing.T) {
	handler := newDistributionsHandler(&fakeMatchSource{})

	_, err := handler.Handle(context.Background(), GetDistributionsQuery{})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

// Выключенный флаг распределений закрывает поверхность целиком.
func TestGetDistributions_FeatureDisabled(t *testing.T) {
	ff := config.LoadFeatureFlags()
	require.NoError(t, ff.DisableFeature(config.FeatureStatsDistributions))
	handler := NewGetDistributionsHandler(
		newFakeGameRepo(fxGame(scoreboard.MetricWinRate)),
		&fakeMatchSource{rows: fxRows()},
		newFakeMembership(fxAlice, fxBob),
		ff,
	)

	_, err := handler.Handle(context.Background(), GetDistributionsQuery{
		GameID:      fxGameID.String(),
		RequesterID: fxAlice.String(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrFeatureDisabled)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
