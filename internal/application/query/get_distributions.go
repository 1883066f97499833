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
// GET DISTRIBUTIONS QUERY
// Оценивает распределение счёта для всех игроков игры разом. Используется
// экраном сравнения: кривые всех участников рисуются на одном графике.
// Игроки с недостатком матчей или вырожденной выборкой просто пропускаются.
// ══════════════════════════════════════════════════════════════════════════════

// GetDistributionsQuery содержит параметры запроса распределений.
type GetDistributionsQuery struct {
	// GameID - идентификатор игры (обязателен).
	GameID string

	// RequesterID - идентификатор запрашивающего (член группы игры).
	RequesterID string
}

// Validate проверяет корректность параметров запроса.
func (q *GetDistributionsQuery) Validate() error {
	if q.GameID == "" {
		return errors.New("game_id must be provided")
	}
	if q.RequesterID == "" {
		return errors.New("requester_id must be provided")
	}
	return nil
}

// PlayerDistributionDTO - оценка распределения одного игрока.
type PlayerDistributionDTO struct {
	// PlayerID - идентификатор игрока.
	PlayerID string `json:"player_id"`

	// PlayerName - отображаемое имя.
	PlayerName string `json:"player_name"`

	// Distribution - параметры оценённого распределения.
	Distribution DistributionDTO `json:"distribution"`
}

// GetDistributionsResult содержит результат запроса распределений.
type GetDistributionsResult struct {
	// GameID - игра, по которой считались распределения.
	GameID string `json:"game_id"`

	// GameName - название игры (для заголовка графика).
	GameName string `json:"game_name"`

	// Players - распределения игроков в порядке появления в истории игры.
	// Игрок без достаточной выборки в список не попадает.
	Players []PlayerDistributionDTO `json:"players"`

	// SkippedPlayers - сколько игроков пропущено из-за недостатка данных.
	SkippedPlayers int `json:"skipped_players"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetDistributionsHandler обрабатывает запросы распределений всей игры.
type GetDistributionsHandler struct {
	gameRepo    game.GameRepository
	matchSource scoreboard.MatchDataSource
	membership  scoreboard.MembershipSource
	features    *config.FeatureFlags
}

// NewGetDistributionsHandler создаёт новый обработчик.
// features может быть nil - тогда поверхность всегда включена.
func NewGetDistributionsHandler(
	gameRepo game.GameRepository,
	matchSource scoreboard.MatchDataSource,
	membership scoreboard.MembershipSource,
	features *config.FeatureFlags,
) *GetDistributionsHandler {
	return &GetDistributionsHandler{
		gameRepo:    gameRepo,
		matchSource: matchSource,
		membership:  membership,
		features:    features,
	}
}

// Handle выполняет запрос распределений для всех игроков игры.
func (h *GetDistributionsHandler) Handle(ctx context.Context, query GetDistributionsQuery) (*GetDistributionsResult, error) {
	// Валидация
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetDistributions", shared.ErrValidation, err.Error(), err)
	}
	if !featureOn(h.features, config.FeatureStatsDistributions, query.RequesterID) {
		return nil, shared.ErrFeatureDisabled
	}

	gameID, err := shared.ParseGameID(query.GameID)
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

	ok, err := h.membership.AreMembers(ctx, g.GroupID, []shared.PlayerID{requesterID})
	if err != nil {
		return nil, shared.WrapError("query", "GetDistributions", shared.ErrExternalService, "failed to check membership", err)
	}
	if !ok {
		return nil, shared.ErrMemberNotFound
	}

	rows, err := h.matchSource.FetchAllMatches(ctx, gameID)
	if err != nil {
		return nil, shared.WrapError("query", "GetDistributions", shared.ErrExternalService, "failed to fetch match rows", err)
	}

	// Агрегация даёт список игроков в порядке первого появления -
	// порядок результата детерминирован при любом порядке строк.
	players := make([]PlayerDistributionDTO, 0, 8)
	skipped := 0
	for _, entry := range scoreboard.Aggregate(rows) {
		est, err := scoreboard.FitPlayerDistribution(rows, entry.PlayerID, scoreboard.MinSamplesForDistribution)
		if err != nil {
			if shared.IsInsufficientData(err) || errors.Is(err, shared.ErrDegenerateInput) {
				skipped++
				continue
			}
			return nil, err
		}

		players = append(players, PlayerDistributionDTO{
			PlayerID:     entry.PlayerID.String(),
			PlayerName:   string(entry.PlayerName),
			Distribution: *toDistributionDTO(est),
		})
	}

	return &GetDistributionsResult{
		GameID:         gameID.String(),
		GameName:       g.Name,
		Players:        players,
		SkippedPlayers: skipped,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}
