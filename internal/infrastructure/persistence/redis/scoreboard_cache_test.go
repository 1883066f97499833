package redis

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-hub/tally-score-hub/internal/domain/scoreboard"
	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// The DTO layer is the only place a snapshot crosses a serialization
// boundary, so the conversion must be lossless both ways.
func TestSnapshotDTO_RoundTrip(t *testing.T) {
	alice := shared.PlayerID(uuid.MustParse("11111111-1111-1111-1111-111111111111"))
	bob := shared.PlayerID(uuid.MustParse("22222222-2222-2222-2222-222222222222"))
	lastMatch := shared.MatchID(uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"))

	board := &scoreboard.Scoreboard{
		Game: scoreboard.GameInfo{
			ID:              shared.GameID(uuid.MustParse("99999999-9999-9999-9999-999999999999")),
			GroupID:         shared.GroupID(uuid.MustParse("88888888-8888-8888-8888-888888888888")),
			Name:            "Backgammon",
			Metric:          scoreboard.MetricWinRate,
			PlayersPerMatch: 2,
			CreatedAt:       time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC),
		},
		Entries: []*scoreboard.ScoreboardEntry{
			{
				PlayerID:         alice,
				PlayerName:       "Alice",
				Avatar:           "fox",
				AvatarColour:     "orange",
				MatchesPlayed:    3,
				AverageScore:     8.5,
				BestScore:        12,
				Wins:             2,
				WinRate:          2.0 / 3.0,
				Rank:             1,
				RankChange:       1,
				AverageScoreDiff: 0.5,
				WinRateDiff:      0.1,
			},
			{
				PlayerID:      bob,
				PlayerName:    "Bob",
				MatchesPlayed: 3,
				AverageScore:  6.0,
				BestScore:     9,
				Wins:          1,
				WinRate:       1.0 / 3.0,
				Rank:          2,
				RankChange:    -1,
			},
		},
		Highlights: scoreboard.Highlights{
			HighestWinRate:      scoreboard.HighlightDetail[float64]{PlayerID: alice, PlayerName: "Alice", Value: 2.0 / 3.0},
			HighestAverageScore: scoreboard.HighlightDetail[float64]{PlayerID: alice, PlayerName: "Alice", Value: 8.5},
			HighestSingleScore:  scoreboard.HighlightDetail[int]{PlayerID: alice, PlayerName: "Alice", Value: 12},
			MostGamesPlayed:     scoreboard.HighlightDetail[int]{PlayerID: alice, PlayerName: "Alice", Value: 3},
		},
		LastMatchID: lastMatch,
	}
	board.Podium = []*scoreboard.ScoreboardEntry{board.Entries[0].Clone(), board.Entries[1].Clone()}

	restored, err := fromDomain(board).toDomain()
	require.NoError(t, err)

	require.Len(t, restored.Entries, 2)
	assert.Equal(t, *board.Entries[0], *restored.Entries[0])
	assert.Equal(t, *board.Entries[1], *restored.Entries[1])
	require.Len(t, restored.Podium, 2)
	assert.Equal(t, *board.Podium[0], *restored.Podium[0])
	assert.Equal(t, board.Highlights, restored.Highlights)
	assert.Equal(t, board.Game, restored.Game)
	assert.Equal(t, board.LastMatchID, restored.LastMatchID)
}

// A corrupt ID anywhere in the payload fails the conversion instead of
// silently producing a zero-valued identity.
func TestSnapshotDTO_CorruptIDsAreErrors(t *testing.T) {
	base := func() snapshotDTO {
		return snapshotDTO{
			Game: gameInfoDTO{
				ID:      "99999999-9999-9999-9999-999999999999",
				GroupID: "88888888-8888-8888-8888-888888888888",
				Metric:  string(scoreboard.MetricWinRate),
			},
			LastMatchID: "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
		}
	}

	corrupt := base()
	corrupt.Game.GroupID = "not-a-uuid"
	_, err := corrupt.toDomain()
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	corrupt = base()
	corrupt.Entries = []entryDTO{{PlayerID: "garbage"}}
	_, err = corrupt.toDomain()
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}

// Пустой рекорд (нет игроков) переживает сериализацию без паники.
func TestSnapshotDTO_EmptyHighlights(t *testing.T) {
	board := &scoreboard.Scoreboard{
		Game: scoreboard.GameInfo{
			ID:     shared.GameID(uuid.MustParse("99999999-9999-9999-9999-999999999999")),
			Metric: scoreboard.MetricWinRate,
		},
		LastMatchID: shared.MatchID(uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")),
	}

	restored, err := fromDomain(board).toDomain()
	require.NoError(t, err)

	assert.True(t, restored.Highlights.HighestWinRate.IsEmpty())
	assert.Empty(t, restored.Entries)
}
