package redis

import (
	"context"
	"errors"
	"time"

	"github.com/tally-hub/tally-score-hub/internal/domain/scoreboard"
	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCOREBOARD SNAPSHOT CACHE (SnapshotCache implementation)
// ══════════════════════════════════════════════════════════════════════════════

// ScoreboardCache stores assembled scoreboards keyed by (game, last match).
// Entries are written in canonical order (game metric, descending); callers
// derive other views themselves. Domain ID types don't serialize as UUID
// strings, so the cache keeps its own JSON representation.
type ScoreboardCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewScoreboardCache creates a new ScoreboardCache with the default TTL.
func NewScoreboardCache(cache *Cache) *ScoreboardCache {
	return &ScoreboardCache{cache: cache, ttl: TTLSnapshot}
}

// NewScoreboardCacheWithTTL creates a ScoreboardCache with a custom TTL.
func NewScoreboardCacheWithTTL(cache *Cache, ttl time.Duration) *ScoreboardCache {
	return &ScoreboardCache{cache: cache, ttl: ttl}
}

// GetSnapshot returns the cached scoreboard for (game, last match).
// Returns (nil, nil) on a cache miss.
func (c *ScoreboardCache) GetSnapshot(ctx context.Context, gameID shared.GameID, lastMatchID shared.MatchID) (*scoreboard.Scoreboard, error) {
	key := SnapshotKey(gameID.String(), lastMatchID.String())

	var dto snapshotDTO
	err := c.cache.Get(ctx, key, &dto)
	if errors.Is(err, ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return dto.toDomain()
}

// PutSnapshot stores an assembled scoreboard under (game, last match).
func (c *ScoreboardCache) PutSnapshot(ctx context.Context, board *scoreboard.Scoreboard) error {
	if board == nil || board.LastMatchID.IsNil() {
		return nil
	}

	key := SnapshotKey(board.Game.ID.String(), board.LastMatchID.String())
	return c.cache.Set(ctx, key, fromDomain(board), c.ttl)
}

// InvalidateGame removes every snapshot of a game. Called by the match
// writer after recording a new result.
func (c *ScoreboardCache) InvalidateGame(ctx context.Context, gameID shared.GameID) error {
	return c.cache.DeleteByPattern(ctx, SnapshotPattern(gameID.String()))
}

// ══════════════════════════════════════════════════════════════════════════════
// JSON REPRESENTATION
// ══════════════════════════════════════════════════════════════════════════════

type snapshotDTO struct {
	Game        gameInfoDTO   `json:"game"`
	Entries     []entryDTO    `json:"entries"`
	Podium      []entryDTO    `json:"podium"`
	Highlights  highlightsDTO `json:"highlights"`
	LastMatchID string        `json:"last_match_id"`
}

type gameInfoDTO struct {
	ID              string    `json:"id"`
	GroupID         string    `json:"group_id"`
	Name            string    `json:"name"`
	Metric          string    `json:"metric"`
	PlayersPerMatch int       `json:"players_per_match"`
	CreatedAt       time.Time `json:"created_at"`
}

type entryDTO struct {
	PlayerID         string  `json:"player_id"`
	PlayerName       string  `json:"player_name"`
	Avatar           string  `json:"avatar,omitempty"`
	AvatarColour     string  `json:"avatar_colour,omitempty"`
	MatchesPlayed    int     `json:"matches_played"`
	AverageScore     float64 `json:"average_score"`
	BestScore        int     `json:"best_score"`
	Wins             int     `json:"wins"`
	WinRate          float64 `json:"win_rate"`
	Rank             int     `json:"rank"`
	RankChange       int     `json:"rank_change"`
	AverageScoreDiff float64 `json:"average_score_diff"`
	WinRateDiff      float64 `json:"win_rate_diff"`
}

type highlightDTO struct {
	PlayerID   string  `json:"player_id,omitempty"`
	PlayerName string  `json:"player_name,omitempty"`
	Value      float64 `json:"value"`
}

type highlightsDTO struct {
	HighestWinRate      highlightDTO `json:"highest_win_rate"`
	HighestAverageScore highlightDTO `json:"highest_average_score"`
	HighestSingleScore  highlightDTO `json:"highest_single_score"`
	MostGamesPlayed     highlightDTO `json:"most_games_played"`
}

func fromDomain(board *scoreboard.Scoreboard) snapshotDTO {
	entries := make([]entryDTO, len(board.Entries))
	for i, e := range board.Entries {
		entries[i] = entryFromDomain(e)
	}
	podium := make([]entryDTO, len(board.Podium))
	for i, e := range board.Podium {
		podium[i] = entryFromDomain(e)
	}

	return snapshotDTO{
		Game: gameInfoDTO{
			ID:              board.Game.ID.String(),
			GroupID:         board.Game.GroupID.String(),
			Name:            board.Game.Name,
			Metric:          string(board.Game.Metric),
			PlayersPerMatch: board.Game.PlayersPerMatch,
			CreatedAt:       board.Game.CreatedAt,
		},
		Entries:     entries,
		Podium:      podium,
		Highlights:  highlightsFromDomain(board.Highlights),
		LastMatchID: board.LastMatchID.String(),
	}
}

func entryFromDomain(e *scoreboard.ScoreboardEntry) entryDTO {
	return entryDTO{
		PlayerID:         e.PlayerID.String(),
		PlayerName:       string(e.PlayerName),
		Avatar:           string(e.Avatar),
		AvatarColour:     string(e.AvatarColour),
		MatchesPlayed:    e.MatchesPlayed,
		AverageScore:     e.AverageScore,
		BestScore:        int(e.BestScore),
		Wins:             e.Wins,
		WinRate:          e.WinRate,
		Rank:             int(e.Rank),
		RankChange:       int(e.RankChange),
		AverageScoreDiff: e.AverageScoreDiff,
		WinRateDiff:      e.WinRateDiff,
	}
}

func highlightsFromDomain(h scoreboard.Highlights) highlightsDTO {
	return highlightsDTO{
		HighestWinRate: highlightDTO{
			PlayerID:   idOrEmpty(h.HighestWinRate.PlayerID),
			PlayerName: string(h.HighestWinRate.PlayerName),
			Value:      h.HighestWinRate.Value,
		},
		HighestAverageScore: highlightDTO{
			PlayerID:   idOrEmpty(h.HighestAverageScore.PlayerID),
			PlayerName: string(h.HighestAverageScore.PlayerName),
			Value:      h.HighestAverageScore.Value,
		},
		HighestSingleScore: highlightDTO{
			PlayerID:   idOrEmpty(h.HighestSingleScore.PlayerID),
			PlayerName: string(h.HighestSingleScore.PlayerName),
			Value:      float64(h.HighestSingleScore.Value),
		},
		MostGamesPlayed: highlightDTO{
			PlayerID:   idOrEmpty(h.MostGamesPlayed.PlayerID),
			PlayerName: string(h.MostGamesPlayed.PlayerName),
			Value:      float64(h.MostGamesPlayed.Value),
		},
	}
}

func idOrEmpty(id shared.PlayerID) string {
	if id.IsNil() {
		return ""
	}
	return id.String()
}

func (d snapshotDTO) toDomain() (*scoreboard.Scoreboard, error) {
	gameID, err := shared.ParseGameID(d.Game.ID)
	if err != nil {
		return nil, err
	}
	lastMatchID, err := shared.ParseMatchID(d.LastMatchID)
	if err != nil {
		return nil, err
	}

	entries := make([]*scoreboard.ScoreboardEntry, len(d.Entries))
	for i, e := range d.Entries {
		entry, err := e.toDomain()
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}
	podium := make([]*scoreboard.ScoreboardEntry, len(d.Podium))
	for i, e := range d.Podium {
		entry, err := e.toDomain()
		if err != nil {
			return nil, err
		}
		podium[i] = entry
	}

	highlights, err := d.Highlights.toDomain()
	if err != nil {
		return nil, err
	}

	groupID, err := shared.ParseGroupID(d.Game.GroupID)
	if err != nil {
		return nil, err
	}

	return &scoreboard.Scoreboard{
		Entries: entries,
		Podium:  podium,
		Game: scoreboard.GameInfo{
			ID:              gameID,
			GroupID:         groupID,
			Name:            d.Game.Name,
			Metric:          scoreboard.RankingMetric(d.Game.Metric),
			PlayersPerMatch: d.Game.PlayersPerMatch,
			CreatedAt:       d.Game.CreatedAt,
		},
		Highlights:  highlights,
		LastMatchID: lastMatchID,
	}, nil
}

func (d entryDTO) toDomain() (*scoreboard.ScoreboardEntry, error) {
	playerID, err := shared.ParsePlayerID(d.PlayerID)
	if err != nil {
		return nil, err
	}

	return &scoreboard.ScoreboardEntry{
		PlayerID:         playerID,
		PlayerName:       shared.PlayerName(d.PlayerName),
		Avatar:           shared.Avatar(d.Avatar),
		AvatarColour:     shared.AvatarColour(d.AvatarColour),
		MatchesPlayed:    d.MatchesPlayed,
		AverageScore:     d.AverageScore,
		BestScore:        shared.Score(d.BestScore),
		Wins:             d.Wins,
		WinRate:          d.WinRate,
		Rank:             scoreboard.Rank(d.Rank),
		RankChange:       scoreboard.RankChange(d.RankChange),
		AverageScoreDiff: d.AverageScoreDiff,
		WinRateDiff:      d.WinRateDiff,
	}, nil
}

func (d highlightsDTO) toDomain() (scoreboard.Highlights, error) {
	winRateID, err := parseHighlightID(d.HighestWinRate.PlayerID)
	if err != nil {
		return scoreboard.Highlights{}, err
	}
	avgID, err := parseHighlightID(d.HighestAverageScore.PlayerID)
	if err != nil {
		return scoreboard.Highlights{}, err
	}
	singleID, err := parseHighlightID(d.HighestSingleScore.PlayerID)
	if err != nil {
		return scoreboard.Highlights{}, err
	}
	mostID, err := parseHighlightID(d.MostGamesPlayed.PlayerID)
	if err != nil {
		return scoreboard.Highlights{}, err
	}

	return scoreboard.Highlights{
		HighestWinRate: scoreboard.HighlightDetail[float64]{
			PlayerID:   winRateID,
			PlayerName: shared.PlayerName(d.HighestWinRate.PlayerName),
			Value:      d.HighestWinRate.Value,
		},
		HighestAverageScore: scoreboard.HighlightDetail[float64]{
			PlayerID:   avgID,
			PlayerName: shared.PlayerName(d.HighestAverageScore.PlayerName),
			Value:      d.HighestAverageScore.Value,
		},
		HighestSingleScore: scoreboard.HighlightDetail[int]{
			PlayerID:   singleID,
			PlayerName: shared.PlayerName(d.HighestSingleScore.PlayerName),
			Value:      int(d.HighestSingleScore.Value),
		},
		MostGamesPlayed: scoreboard.HighlightDetail[int]{
			PlayerID:   mostID,
			PlayerName: shared.PlayerName(d.MostGamesPlayed.PlayerName),
			Value:      int(d.MostGamesPlayed.Value),
		},
	}, nil
}

func parseHighlightID(s string) (shared.PlayerID, error) {
	if s == "" {
		return shared.NilPlayerID, nil
	}
	return shared.ParsePlayerID(s)
}

// Ensure interface is implemented
var _ scoreboard.SnapshotCache = (*ScoreboardCache)(nil)
