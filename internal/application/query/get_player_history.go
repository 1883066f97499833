// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"time"

	"github.com/tally-hub/tally-score-hub/config"
	"github.com/tally-hub/tally-score-hub/internal/domain/game"
	"github.com/tally-hub/tally-score-hub/internal/domain/scoreboard"
	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PLAYER HISTORY QUERY
// Получает историю матчей одного игрока в игре, от свежих к старым.
// Это запрос ленты "мои последние матчи" на странице игрока.
// ══════════════════════════════════════════════════════════════════════════════

// GetPlayerHistoryQuery содержит параметры запроса истории матчей.
type GetPlayerHistoryQuery struct {
	// GameID - идентификатор игры (обязателен).
	GameID string

	// PlayerID - игрок, чья история запрашивается (обязателен).
	PlayerID string

	// RequesterID - идентификатор запрашивающего (член группы игры).
	RequesterID string

	// Limit - количество записей (по умолчанию 20, максимум 100).
	Limit int
}

// Validate проверяет корректность параметров запроса.
func (q *GetPlayerHistoryQuery) Validate() error {
	if q.GameID == "" {
		return errors.New("game_id must be provided")
	}
	if q.PlayerID == "" {
		return errors.New("player_id must be provided")
	}
	if q.RequesterID == "" {
		return errors.New("requester_id must be provided")
	}
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
	return nil
}

// PlayerMatchDTO - одна запись истории матчей игрока.
type PlayerMatchDTO struct {
	// MatchID - идентификатор матча.
	MatchID string `json:"match_id"`

	// Score - счёт игрока в матче.
	Score int `json:"score"`

	// RankInMatch - место внутри матча (1 = лучший счёт).
	RankInMatch int `json:"rank_in_match"`

	// IsWin - выиграл ли игрок матч.
	IsWin bool `json:"is_win"`

	// PlayedAt - время матча.
	PlayedAt time.Time `json:"played_at"`
}

// GetPlayerHistoryResult содержит результат запроса истории матчей.
type GetPlayerHistoryResult struct {
	// PlayerID - игрок, чья история возвращена.
	PlayerID string `json:"player_id"`

	// GameID - игра, по которой запрошена история.
	GameID string `json:"game_id"`

	// Matches - матчи от свежих к старым.
	Matches []PlayerMatchDTO `json:"matches"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetPlayerHistoryHandler обрабатывает запросы истории матчей игрока.
type GetPlayerHistoryHandler struct {
	gameRepo    game.GameRepository
	matchSource scoreboard.MatchDataSource
	membership  scoreboard.MembershipSource
	features    *config.FeatureFlags
}

// NewGetPlayerHistoryHandler создаёт новый обработчик.
// features может быть nil - тогда поверхность всегда включена.
func NewGetPlayerHistoryHandler(
	gameRepo game.GameRepository,
	matchSource scoreboard.MatchDataSource,
	membership scoreboard.MembershipSource,
	features *config.FeatureFlags,
) *GetPlayerHistoryHandler {
	return &GetPlayerHistoryHandler{
		gameRepo:    gameRepo,
		matchSource: matchSource,
		membership:  membership,
		features:    features,
	}
}

// Handle выполняет запрос истории матчей игрока.
func (h *GetPlayerHistoryHandler) Handle(ctx context.Context, query GetPlayerHistoryQuery) (*GetPlayerHistoryResult, error) {
	// Валидация
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetPlayerHistory", shared.ErrValidation, err.Error(), err)
	}
	if !featureOn(h.features, config.FeatureStatsHistory, query.RequesterID) {
		return nil, shared.ErrFeatureDisabled
	}

	gameID, err := shared.ParseGameID(query.GameID)
	if err != nil {
		return nil, err
	}
	playerID, err := shared.ParsePlayerID(query.PlayerID)
	if err != nil {
		return nil, err
	}
	requesterID, err := shared.ParsePlayerID(query.RequesterID)
	if err != nil {
		return nil, err
	}

	g, err := h.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	members := []shared.PlayerID{requesterID}
	if playerID != requesterID {
		members = append(members, playerID)
	}
	ok, err := h.membership.AreMembers(ctx, g.GroupID, members)
	if err != nil {
		return nil, shared.WrapError("query", "GetPlayerHistory", shared.ErrExternalService, "failed to check membership", err)
	}
	if !ok {
		return nil, shared.ErrMemberNotFound
	}

	matches, err := h.matchSource.FetchPlayerHistory(ctx, gameID, playerID, query.Limit)
	if err != nil {
		return nil, shared.WrapError("query", "GetPlayerHistory", shared.ErrExternalService, "failed to fetch player history", err)
	}

	dtos := make([]PlayerMatchDTO, len(matches))
	for i, m := range matches {
		dtos[i] = PlayerMatchDTO{
			MatchID:     m.MatchID.String(),
			Score:       int(m.Score),
			RankInMatch: m.RankInMatch,
			IsWin:       m.RankInMatch == 1,
			PlayedAt:    m.PlayedAt,
		}
	}

	return &GetPlayerHistoryResult{
		PlayerID:    playerID.String(),
		GameID:      gameID.String(),
		Matches:     dtos,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
