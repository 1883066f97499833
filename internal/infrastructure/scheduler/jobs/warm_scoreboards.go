// Package jobs contains implementations of scheduled jobs for Tally Hub.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tally-hub/tally-score-hub/internal/domain/game"
	"github.com/tally-hub/tally-score-hub/internal/domain/scoreboard"
	"github.com/tally-hub/tally-score-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// WARM SCOREBOARDS JOB
// ══════════════════════════════════════════════════════════════════════════════

// WarmScoreboardsJob recomputes the canonical scoreboard of every game and
// stores it in the snapshot cache. A warm pass never changes what clients
// see: readers key snapshots by (game, last match), so a stale warm simply
// misses and falls back to recompute. The job only moves the cost of
// assembly off the request path.
type WarmScoreboardsJob struct {
	gameRepo    game.GameRepository
	matchSource scoreboard.MatchDataSource
	cache       scoreboard.SnapshotCache
	logger      *slog.Logger

	config WarmScoreboardsConfig

	dbRetrier    *retry.Retrier
	cacheRetrier *retry.Retrier

	lastRunStats atomic.Value // *WarmStats
}

// WarmScoreboardsConfig contains configuration for the warm job.
type WarmScoreboardsConfig struct {
	// Timeout is the maximum duration for a full warm pass.
	Timeout time.Duration
}

// DefaultWarmScoreboardsConfig returns sensible defaults.
func DefaultWarmScoreboardsConfig() WarmScoreboardsConfig {
	return WarmScoreboardsConfig{
		Timeout: 2 * time.Minute,
	}
}

// WarmStats contains statistics from a warm pass.
type WarmStats struct {
	StartedAt      time.Time
	CompletedAt    time.Time
	Duration       time.Duration
	GamesTotal     int
	GamesWarmed    int
	GamesEmpty     int
	GamesFailed    int
	SnapshotErrors int
}

// NewWarmScoreboardsJob creates a new warm scoreboards job.
func NewWarmScoreboardsJob(
	gameRepo game.GameRepository,
	matchSource scoreboard.MatchDataSource,
	cache scoreboard.SnapshotCache,
	logger *slog.Logger,
	config WarmScoreboardsConfig,
) *WarmScoreboardsJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &WarmScoreboardsJob{
		gameRepo:     gameRepo,
		matchSource:  matchSource,
		cache:        cache,
		logger:       logger,
		config:       config,
		dbRetrier:    retry.DatabaseRetrier(),
		cacheRetrier: retry.CacheRetrier(),
	}
}

// Name returns the job name.
func (j *WarmScoreboardsJob) Name() string {
	return "warm_scoreboards"
}

// Description returns a human-readable description.
func (j *WarmScoreboardsJob) Description() string {
	return "Recomputes every game's scoreboard and stores the snapshot in the cache"
}

// Run executes one warm pass over all games.
func (j *WarmScoreboardsJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &WarmStats{StartedAt: startedAt}

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	games, err := j.gameRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list games: %w", err)
	}
	stats.GamesTotal = len(games)

	for _, g := range games {
		if ctx.Err() != nil {
			break
		}
		j.warmGame(ctx, g, stats)
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("warm_scoreboards pass finished",
		"duration", stats.Duration.String(),
		"games_total", stats.GamesTotal,
		"games_warmed", stats.GamesWarmed,
		"games_empty", stats.GamesEmpty,
		"games_failed", stats.GamesFailed,
	)

	if stats.GamesFailed > 0 {
		return fmt.Errorf("warm pass completed with %d failed games", stats.GamesFailed)
	}

	return nil
}

// warmGame assembles one game's canonical scoreboard and caches it.
func (j *WarmScoreboardsJob) warmGame(ctx context.Context, g *game.Game, stats *WarmStats) {
	var rows []scoreboard.MatchRow
	err := j.dbRetrier.Do(ctx, func(ctx context.Context) error {
		var fetchErr error
		rows, fetchErr = j.matchSource.FetchAllMatches(ctx, g.ID)
		return retry.Retryable(fetchErr)
	})
	if err != nil {
		stats.GamesFailed++
		j.logger.Warn("failed to fetch match rows",
			"game_id", g.ID.String(),
			"error", err,
		)
		return
	}

	// A game with no matches has nothing worth caching.
	if len(rows) == 0 {
		stats.GamesEmpty++
		return
	}

	board := scoreboard.Assemble(g.Info(), rows, scoreboard.AssembleOptions{})
	err = j.cacheRetrier.Do(ctx, func(ctx context.Context) error {
		return retry.Retryable(j.cache.PutSnapshot(ctx, board))
	})
	if err != nil {
		stats.SnapshotErrors++
		j.logger.Warn("failed to store snapshot",
			"game_id", g.ID.String(),
			"error", err,
		)
		return
	}

	stats.GamesWarmed++
	j.logger.Debug("scoreboard warmed",
		"game_id", g.ID.String(),
		"players", len(board.Entries),
		"last_match_id", board.LastMatchID.String(),
	)
}

// LastRunStats returns statistics from the last warm pass.
func (j *WarmScoreboardsJob) LastRunStats() *WarmStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*WarmStats)
}
