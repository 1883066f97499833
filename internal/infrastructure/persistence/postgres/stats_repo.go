// Package postgres implements the PostgreSQL persistence layer for Tally Hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tally-hub/tally-score-hub/internal/domain/scoreboard"
	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS REPOSITORY (MatchDataSource implementation)
// ══════════════════════════════════════════════════════════════════════════════

// StatsRepository reads raw match rows for the scoreboard engine.
// The rank-in-match invariant is computed by the database with RANK():
// equal scores share a rank, so a tied match can have two winners.
type StatsRepository struct {
	conn *Connection

	// matchWindow limits the history to the last N matches per player
	// (0 = full history). Configurable so huge groups stay cheap.
	matchWindow int
}

// NewStatsRepository creates a new StatsRepository reading full history.
func NewStatsRepository(conn *Connection) *StatsRepository {
	return &StatsRepository{conn: conn}
}

// NewStatsRepositoryWithWindow creates a StatsRepository limited to the
// last matchWindow matches per player.
func NewStatsRepositoryWithWindow(conn *Connection, matchWindow int) *StatsRepository {
	return &StatsRepository{conn: conn, matchWindow: matchWindow}
}

// FetchAllMatches returns every score row of a game, joined with player
// display fields and ranked within each match.
func (r *StatsRepository) FetchAllMatches(ctx context.Context, gameID shared.GameID) ([]scoreboard.MatchRow, error) {
	query := `
		SELECT player_id, player_name, avatar, avatar_colour,
		       match_id, score, played_at, rank_in_match
		FROM (
			SELECT ms.player_id,
			       p.name AS player_name,
			       p.avatar,
			       p.avatar_colour,
			       m.id AS match_id,
			       ms.score,
			       m.played_at,
			       RANK() OVER (PARTITION BY m.id ORDER BY ms.score DESC) AS rank_in_match,
			       ROW_NUMBER() OVER (PARTITION BY ms.player_id ORDER BY m.played_at DESC, m.id DESC) AS recency
			FROM match_scores ms
			JOIN matches m ON ms.match_id = m.id
			JOIN players p ON ms.player_id = p.id
			WHERE m.game_id = $1
		) ranked
		WHERE $2 = 0 OR recency <= $2
		ORDER BY played_at, match_id
	`

	rows, err := r.conn.Query(ctx, query, gameID.UUID(), r.matchWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match rows: %w", err)
	}
	defer rows.Close()

	return scanMatchRows(rows)
}

// FetchPlayerHistory returns one player's matches, newest first.
// Rank-in-match is computed over all participants of each match before
// the result is narrowed to the player.
func (r *StatsRepository) FetchPlayerHistory(ctx context.Context, gameID shared.GameID, playerID shared.PlayerID, limit int) ([]scoreboard.PlayerMatch, error) {
	query := `
		SELECT match_id, score, played_at, rank_in_match
		FROM (
			SELECT ms.player_id,
			       m.id AS match_id,
			       ms.score,
			       m.played_at,
			       RANK() OVER (PARTITION BY m.id ORDER BY ms.score DESC) AS rank_in_match
			FROM match_scores ms
			JOIN matches m ON ms.match_id = m.id
			WHERE m.game_id = $1
		) ranked
		WHERE player_id = $2
		ORDER BY played_at DESC, match_id DESC
		LIMIT NULLIF($3, 0)
	`

	rows, err := r.conn.Query(ctx, query, gameID.UUID(), playerID.UUID(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player history: %w", err)
	}
	defer rows.Close()

	var matches []scoreboard.PlayerMatch
	for rows.Next() {
		var matchID uuid.UUID
		var match scoreboard.PlayerMatch
		var score int

		if err := rows.Scan(&matchID, &score, &match.PlayedAt, &match.RankInMatch); err != nil {
			return nil, fmt.Errorf("failed to scan player match: %w", err)
		}

		match.MatchID = shared.MatchID(matchID)
		match.Score = shared.Score(score)
		matches = append(matches, match)
	}

	return matches, rows.Err()
}

// scanMatchRows scans ranked match rows from a query result.
func scanMatchRows(rows pgx.Rows) ([]scoreboard.MatchRow, error) {
	var result []scoreboard.MatchRow

	for rows.Next() {
		var playerID, matchID uuid.UUID
		var name, avatar, avatarColour string
		var score int
		var row scoreboard.MatchRow

		err := rows.Scan(
			&playerID,
			&name,
			&avatar,
			&avatarColour,
			&matchID,
			&score,
			&row.PlayedAt,
			&row.RankInMatch,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}

		row.PlayerID = shared.PlayerID(playerID)
		row.PlayerName = shared.PlayerName(name)
		row.Avatar = shared.Avatar(avatar)
		row.AvatarColour = shared.AvatarColour(avatarColour)
		row.MatchID = shared.MatchID(matchID)
		row.Score = shared.Score(score)

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Ensure interface is implemented
var _ scoreboard.MatchDataSource = (*StatsRepository)(nil)
