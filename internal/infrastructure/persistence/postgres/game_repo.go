// Package postgres implements the PostgreSQL persistence layer for Tally Hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tally-hub/tally-score-hub/internal/domain/game"
	"github.com/tally-hub/tally-score-hub/internal/domain/scoreboard"
	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GAME REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// GameRepository implements game.GameRepository for PostgreSQL.
type GameRepository struct {
	conn *Connection
}

// NewGameRepository creates a new GameRepository.
func NewGameRepository(conn *Connection) *GameRepository {
	return &GameRepository{conn: conn}
}

const gameColumns = "id, group_id, name, ranking_metric, players_per_match, created_at"

// GetByID returns a game by its identifier.
func (r *GameRepository) GetByID(ctx context.Context, id shared.GameID) (*game.Game, error) {
	query := fmt.Sprintf("SELECT %s FROM games WHERE id = $1", gameColumns)

	g, err := scanGame(r.conn.QueryRow(ctx, query, id.UUID()))
	if IsNoRows(err) {
		return nil, shared.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return g, nil
}

// ListByGroup returns all games of a group.
func (r *GameRepository) ListByGroup(ctx context.Context, groupID shared.GroupID) ([]*game.Game, error) {
	query := fmt.Sprintf("SELECT %s FROM games WHERE group_id = $1 ORDER BY created_at", gameColumns)

	rows, err := r.conn.Query(ctx, query, groupID.UUID())
	if err != nil {
		return nil, fmt.Errorf("failed to list games by group: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// ListAll returns every game. Used by the background scoreboard warmer.
func (r *GameRepository) ListAll(ctx context.Context) ([]*game.Game, error) {
	query := fmt.Sprintf("SELECT %s FROM games ORDER BY created_at", gameColumns)

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// scanGame scans a single game row.
func scanGame(row pgx.Row) (*game.Game, error) {
	var id, groupID uuid.UUID
	var metric string
	var g game.Game

	err := row.Scan(&id, &groupID, &g.Name, &metric, &g.PlayersPerMatch, &g.CreatedAt)
	if err != nil {
		return nil, err
	}

	g.ID = shared.GameID(id)
	g.GroupID = shared.GroupID(groupID)
	g.Metric = scoreboard.RankingMetric(metric)

	return &g, nil
}

// scanGames scans multiple game rows.
func scanGames(rows pgx.Rows) ([]*game.Game, error) {
	var games []*game.Game

	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}

	return games, rows.Err()
}

// Ensure interface is implemented
var _ game.GameRepository = (*GameRepository)(nil)
