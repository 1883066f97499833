package query

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tally-hub/tally-score-hub/internal/domain/game"
	"github.com/tally-hub/tally-score-hub/internal/domain/scoreboard"
	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// Ин-мемори фейки для тестов слоя запросов. Никаких моков-библиотек:
// контракты маленькие, руками проще и читаемее.

var (
	fxGameID    = shared.GameID(uuid.MustParse("99999999-9999-9999-9999-999999999999"))
	fxGroupID   = shared.GroupID(uuid.MustParse("88888888-8888-8888-8888-888888888888"))
	fxAlice     = shared.PlayerID(uuid.MustParse("11111111-1111-1111-1111-111111111111"))
	fxBob       = shared.PlayerID(uuid.MustParse("22222222-2222-2222-2222-222222222222"))
	fxOutsider  = shared.PlayerID(uuid.MustParse("77777777-7777-7777-7777-777777777777"))
	fxMatchOne  = shared.MatchID(uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"))
	fxMatchTwo  = shared.MatchID(uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"))
	fxPlayedAt  = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	errFakeDown = errors.New("fake backend down")
)

func fxGame(metric scoreboard.RankingMetric) *game.Game {
	return &game.Game{
		ID:              fxGameID,
		GroupID:         fxGroupID,
		Name:            "Backgammon",
		Metric:          metric,
		PlayersPerMatch: 2,
		CreatedAt:       fxPlayedAt.Add(-24 * time.Hour),
	}
}

func fxRow(playerID shared.PlayerID, name string, matchID shared.MatchID, score int, playedAt time.Time, rankInMatch int) scoreboard.MatchRow {
	return scoreboard.MatchRow{
		PlayerID:    playerID,
		PlayerName:  shared.PlayerName(name),
		MatchID:     matchID,
		Score:       shared.Score(score),
		PlayedAt:    playedAt,
		RankInMatch: rankInMatch,
	}
}

// Две партии: Alice выигрывает обе.
func fxRows() []scoreboard.MatchRow {
	return []scoreboard.MatchRow{
		fxRow(fxAlice, "Alice", fxMatchOne, 10, fxPlayedAt, 1),
		fxRow(fxBob, "Bob", fxMatchOne, 5, fxPlayedAt, 2),
		fxRow(fxAlice, "Alice", fxMatchTwo, 8, fxPlayedAt.Add(time.Hour), 1),
		fxRow(fxBob, "Bob", fxMatchTwo, 6, fxPlayedAt.Add(time.Hour), 2),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// fakeGameRepo
// ─────────────────────────────────────────────────────────────────────────────

type fakeGameRepo struct {
	games map[shared.GameID]*game.Game
}

func newFakeGameRepo(games ...*game.Game) *fakeGameRepo {
	repo := &fakeGameRepo{games: make(map[shared.GameID]*game.Game)}
	for _, g := range games {
		repo.games[g.ID] = g
	}
	return repo
}

func (r *fakeGameRepo) GetByID(_ context.Context, id shared.GameID) (*game.Game, error) {
	g, ok := r.games[id]
	if !ok {
		return nil, shared.ErrGameNotFound
	}
	return g, nil
}

func (r *fakeGameRepo) ListByGroup(_ context.Context, groupID shared.GroupID) ([]*game.Game, error) {
	var result []*game.Game
	for _, g := range r.games {
		if g.GroupID == groupID {
			result = append(result, g)
		}
	}
	return result, nil
}

func (r *fakeGameRepo) ListAll(_ context.Context) ([]*game.Game, error) {
	result := make([]*game.Game, 0, len(r.games))
	for _, g := range r.games {
		result = append(result, g)
	}
	return result, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// fakeMatchSource
// ─────────────────────────────────────────────────────────────────────────────

type fakeMatchSource struct {
	rows       []scoreboard.MatchRow
	history    []scoreboard.PlayerMatch
	err        error
	fetchCalls int
	lastLimit  int
}

func (s *fakeMatchSource) FetchAllMatches(_ context.Context, _ shared.GameID) ([]scoreboard.MatchRow, error) {
	s.fetchCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *fakeMatchSource) FetchPlayerHistory(_ context.Context, _ shared.GameID, _ shared.PlayerID, limit int) ([]scoreboard.PlayerMatch, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 && limit < len(s.history) {
		return s.history[:limit], nil
	}
	return s.history, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// fakeMembership
// ─────────────────────────────────────────────────────────────────────────────

type fakeMembership struct {
	members map[shared.PlayerID]bool
	err     error
	checked []shared.PlayerID
}

func newFakeMembership(members ...shared.PlayerID) *fakeMembership {
	m := &fakeMembership{members: make(map[shared.PlayerID]bool)}
	for _, id := range members {
		m.members[id] = true
	}
	return m
}

func (m *fakeMembership) AreMembers(_ context.Context, _ shared.GroupID, playerIDs []shared.PlayerID) (bool, error) {
	m.checked = append(m.checked, playerIDs...)
	if m.err != nil {
		return false, m.err
	}
	for _, id := range playerIDs {
		if !m.members[id] {
			return false, nil
		}
	}
	return true, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// fakeSnapshotCache
// ─────────────────────────────────────────────────────────────────────────────

type fakeSnapshotCache struct {
	snapshots map[string]*scoreboard.Scoreboard
	puts      int
	getErr    error
}

func newFakeSnapshotCache() *fakeSnapshotCache {
	return &fakeSnapshotCache{snapshots: make(map[string]*scoreboard.Scoreboard)}
}

func snapshotKey(gameID shared.GameID, lastMatchID shared.MatchID) string {
	return gameID.String() + ":" + lastMatchID.String()
}

func (c *fakeSnapshotCache) GetSnapshot(_ context.Context, gameID shared.GameID, lastMatchID shared.MatchID) (*scoreboard.Scoreboard, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.snapshots[snapshotKey(gameID, lastMatchID)], nil
}

func (c *fakeSnapshotCache) PutSnapshot(_ context.Context, board *scoreboard.Scoreboard) error {
	c.puts++
	c.snapshots[snapshotKey(board.Game.ID, board.LastMatchID)] = board
	return nil
}

func (c *fakeSnapshotCache) InvalidateGame(_ context.Context, gameID shared.GameID) error {
	for key := range c.snapshots {
		if len(key) >= 36 && key[:36] == gameID.String() {
			delete(c.snapshots, key)
		}
	}
	return nil
}
