package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-hub/tally-score-hub/internal/domain/game"
	"github.com/tally-hub/tally-score-hub/internal/domain/scoreboard"
	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

var (
	warmGameA  = shared.GameID(uuid.MustParse("99999999-9999-9999-9999-999999999999"))
	warmGameB  = shared.GameID(uuid.MustParse("66666666-6666-6666-6666-666666666666"))
	warmAlice  = shared.PlayerID(uuid.MustParse("11111111-1111-1111-1111-111111111111"))
	warmBob    = shared.PlayerID(uuid.MustParse("22222222-2222-2222-2222-222222222222"))
	warmMatch  = shared.MatchID(uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"))
	warmPlayed = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
)

type stubGameRepo struct {
	games []*game.Game
	err   error
}

func (r *stubGameRepo) GetByID(_ context.Context, id shared.GameID) (*game.Game, error) {
	for _, g := range r.games {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, shared.ErrGameNotFound
}

func (r *stubGameRepo) ListByGroup(_ context.Context, _ shared.GroupID) ([]*game.Game, error) {
	return r.games, r.err
}

func (r *stubGameRepo) ListAll(_ context.Context) ([]*game.Game, error) {
	return r.games, r.err
}

type stubMatchSource struct {
	rowsByGame map[shared.GameID][]scoreboard.MatchRow
	failGame   shared.GameID
	failTimes  int // transient failures before recovering
	calls      int
}

func (s *stubMatchSource) FetchAllMatches(_ context.Context, gameID shared.GameID) ([]scoreboard.MatchRow, error) {
	s.calls++
	if s.failTimes > 0 {
		s.failTimes--
		return nil, errors.New("connection reset")
	}
	if gameID == s.failGame {
		return nil, errors.New("connection reset")
	}
	return s.rowsByGame[gameID], nil
}

func (s *stubMatchSource) FetchPlayerHistory(_ context.Context, _ shared.GameID, _ shared.PlayerID, _ int) ([]scoreboard.PlayerMatch, error) {
	return nil, nil
}

type stubSnapshotCache struct {
	boards []*scoreboard.Scoreboard
	putErr error
}

func (c *stubSnapshotCache) GetSnapshot(_ context.Context, _ shared.GameID, _ shared.MatchID) (*scoreboard.Scoreboard, error) {
	return nil, nil
}

func (c *stubSnapshotCache) PutSnapshot(_ context.Context, board *scoreboard.Scoreboard) error {
	if c.putErr != nil {
		return c.putErr
	}
	c.boards = append(c.boards, board)
	return nil
}

func (c *stubSnapshotCache) InvalidateGame(_ context.Context, _ shared.GameID) error {
	return nil
}

func warmGame(id shared.GameID, name string) *game.Game {
	return &game.Game{
		ID:              id,
		GroupID:         shared.GroupID(uuid.MustParse("88888888-8888-8888-8888-888888888888")),
		Name:            name,
		Metric:          scoreboard.MetricWinRate,
		PlayersPerMatch: 2,
		CreatedAt:       warmPlayed.Add(-24 * time.Hour),
	}
}

func warmRows() []scoreboard.MatchRow {
	return []scoreboard.MatchRow{
		{PlayerID: warmAlice, PlayerName: "Alice", MatchID: warmMatch, Score: 10, PlayedAt: warmPlayed, RankInMatch: 1},
		{PlayerID: warmBob, PlayerName: "Bob", MatchID: warmMatch, Score: 5, PlayedAt: warmPlayed, RankInMatch: 2},
	}
}

func TestWarmScoreboardsJob_WarmsGamesWithMatches(t *testing.T) {
	cache := &stubSnapshotCache{}
	job := NewWarmScoreboardsJob(
		&stubGameRepo{games: []*game.Game{warmGame(warmGameA, "Backgammon"), warmGame(warmGameB, "Darts")}},
		&stubMatchSource{rowsByGame: map[shared.GameID][]scoreboard.MatchRow{warmGameA: warmRows()}},
		cache,
		nil,
		DefaultWarmScoreboardsConfig(),
	)

	err := job.Run(context.Background())
	require.NoError(t, err)

	stats := job.LastRunStats()
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.GamesTotal)
	assert.Equal(t, 1, stats.GamesWarmed)
	assert.Equal(t, 1, stats.GamesEmpty)
	assert.Zero(t, stats.GamesFailed)

	require.Len(t, cache.boards, 1)
	board := cache.boards[0]
	assert.Equal(t, warmGameA, board.Game.ID)
	assert.Equal(t, warmMatch, board.LastMatchID)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "Alice", string(board.Entries[0].PlayerName))
}

func TestWarmScoreboardsJob_ReportsFetchFailures(t *testing.T) {
	cache := &stubSnapshotCache{}
	job := NewWarmScoreboardsJob(
		&stubGameRepo{games: []*game.Game{warmGame(warmGameA, "Backgammon")}},
		&stubMatchSource{failGame: warmGameA},
		cache,
		nil,
		DefaultWarmScoreboardsConfig(),
	)

	err := job.Run(context.Background())
	require.Error(t, err)

	stats := job.LastRunStats()
	assert.Equal(t, 1, stats.GamesFailed)
	assert.Empty(t, cache.boards)
}

// Кратковременный сбой базы переживается повтором: пасс успешен,
// фетч вызывается больше одного раза.
func TestWarmScoreboardsJob_RetriesTransientFetchErrors(t *testing.T) {
	cache := &stubSnapshotCache{}
	source := &stubMatchSource{
		rowsByGame: map[shared.GameID][]scoreboard.MatchRow{warmGameA: warmRows()},
		failTimes:  1,
	}
	job := NewWarmScoreboardsJob(
		&stubGameRepo{games: []*game.Game{warmGame(warmGameA, "Backgammon")}},
		source,
		cache,
		nil,
		DefaultWarmScoreboardsConfig(),
	)

	err := job.Run(context.Background())
	require.NoError(t, err)

	stats := job.LastRunStats()
	assert.Equal(t, 1, stats.GamesWarmed)
	assert.Zero(t, stats.GamesFailed)
	assert.Equal(t, 2, source.calls)
	require.Len(t, cache.boards, 1)
}

func TestWarmScoreboardsJob_SnapshotErrorDoesNotFailPass(t *testing.T) {
	job := NewWarmScoreboardsJob(
		&stubGameRepo{games: []*game.Game{warmGame(warmGameA, "Backgammon")}},
		&stubMatchSource{rowsByGame: map[shared.GameID][]scoreboard.MatchRow{warmGameA: warmRows()}},
		&stubSnapshotCache{putErr: errors.New("redis down")},
		nil,
		DefaultWarmScoreboardsConfig(),
	)

	err := job.Run(context.Background())
	require.NoError(t, err)

	stats := job.LastRunStats()
	assert.Equal(t, 1, stats.SnapshotErrors)
	assert.Zero(t, stats.GamesWarmed)
}
