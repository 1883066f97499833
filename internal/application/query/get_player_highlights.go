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
// GET PLAYER HIGHLIGHTS QUERY
// Получает персональную статистику игрока в одной игре: сводку за всю
// историю и оценку распределения счёта, когда матчей достаточно.
// Это запрос страницы "мой профиль в игре".
// ══════════════════════════════════════════════════════════════════════════════

// GetPlayerHighlightsQuery содержит параметры запроса статистики игрока.
type GetPlayerHighlightsQuery struct {
	// GameID - идентификатор игры (обязателен).
	GameID string

	// PlayerID - игрок, чья статистика запрашивается (обязателен).
	PlayerID string

	// RequesterID - идентификатор запрашивающего. Запрос доступен только
	// членам группы игры; игрок может смотреть статистику соседей по группе.
	RequesterID string
}

// Validate проверяет корректность параметров запроса.
func (q *GetPlayerHighlightsQuery) Validate() error {
	if q.GameID == "" {
		return errors.New("game_id must be provided")
	}
	if q.PlayerID == "" {
		return errors.New("player_id must be provided")
	}
	if q.RequesterID == "" {
		return errors.New("requester_id must be provided")
	}
	return nil
}

// LifetimeStatsDTO - DTO сводной статистики игрока за всю историю игры.
type LifetimeStatsDTO struct {
	// Rank - позиция в табло по метрике игры (1 = первое место).
	Rank int `json:"rank"`

	// TotalGames - всего сыграно матчей.
	TotalGames int `json:"total_games"`

	// WinRate - доля побед.
	WinRate float64 `json:"win_rate"`

	// AverageScore - средний счёт.
	AverageScore float64 `json:"average_score"`

	// BestScore - лучший счёт за один матч.
	BestScore int `json:"best_score"`
}

// DistributionDTO - DTO оценки гамма-распределения счёта.
type DistributionDTO struct {
	// Shape - параметр формы α.
	Shape float64 `json:"shape"`

	// Rate - параметр интенсивности λ.
	Rate float64 `json:"rate"`

	// Mean - математическое ожидание (α/λ).
	Mean float64 `json:"mean"`

	// MinScore - наименьший наблюдённый счёт (для осей графика).
	MinScore int `json:"min_score"`

	// MaxScore - наибольший наблюдённый счёт.
	MaxScore int `json:"max_score"`
}

// GetPlayerHighlightsResult содержит результат запроса статистики игрока.
type GetPlayerHighlightsResult struct {
	// PlayerID - игрок, чья статистика возвращена.
	PlayerID string `json:"player_id"`

	// GameID - игра, по которой считалась статистика.
	GameID string `json:"game_id"`

	// Lifetime - сводка за всю историю.
	Lifetime LifetimeStatsDTO `json:"lifetime"`

	// Distribution - оценка распределения счёта. nil, когда матчей меньше
	// порога или все счёта игрока одинаковы.
	Distribution *DistributionDTO `json:"distribution,omitempty"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetPlayerHighlightsHandler обрабатывает запросы персональной статистики.
type GetPlayerHighlightsHandler struct {
	gameRepo    game.GameRepository
	matchSource scoreboard.MatchDataSource
	membership  scoreboard.MembershipSource
	features    *config.FeatureFlags
}

// NewGetPlayerHighlightsHandler создаёт новый обработчик.
// features может быть nil - тогда поверхность всегда включена.
func NewGetPlayerHighlightsHandler(
	gameRepo game.GameRepository,
	matchSource scoreboard.MatchDataSource,
	membership scoreboard.MembershipSource,
	features *config.FeatureFlags,
) *GetPlayerHighlightsHandler {
	return &GetPlayerHighlightsHandler{
		gameRepo:    gameRepo,
		matchSource: matchSource,
		membership:  membership,
		features:    features,
	}
}

// Handle выполняет запрос персональной статистики игрока.
func (h *GetPlayerHighlightsHandler) Handle(ctx context.Context, query GetPlayerHighlightsQuery) (*GetPlayerHighlightsResult, error) {
	// Валидация
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetPlayerHighlights", shared.ErrValidation, err.Error(), err)
	}
	if !featureOn(h.features, config.FeatureScoreboardHighlights, query.RequesterID) {
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

	// Запрашивающий и целевой игрок оба должны состоять в группе игры.
	members := []shared.PlayerID{requesterID}
	if playerID != requesterID {
		members = append(members, playerID)
	}
	ok, err := h.membership.AreMembers(ctx, g.GroupID, members)
	if err != nil {
		return nil, shared.WrapError("query", "GetPlayerHighlights", shared.ErrExternalService, "failed to check membership", err)
	}
	if !ok {
		return nil, shared.ErrMemberNotFound
	}

	rows, err := h.matchSource.FetchAllMatches(ctx, gameID)
	if err != nil {
		return nil, shared.WrapError("query", "GetPlayerHighlights", shared.ErrExternalService, "failed to fetch match rows", err)
	}

	highlights, err := scoreboard.ComputePlayerHighlights(g.Info(), rows, playerID)
	if err != nil {
		return nil, err
	}

	result := &GetPlayerHighlightsResult{
		PlayerID: playerID.String(),
		GameID:   gameID.String(),
		Lifetime: LifetimeStatsDTO{
			Rank:         int(highlights.Lifetime.Rank),
			TotalGames:   highlights.Lifetime.TotalGames,
			WinRate:      highlights.Lifetime.WinRate,
			AverageScore: highlights.Lifetime.AverageScore,
			BestScore:    int(highlights.Lifetime.BestScore),
		},
		GeneratedAt: time.Now().UTC(),
	}

	// Недостаток данных или вырожденная выборка - не ошибка запроса:
	// профиль просто отдаётся без графика распределения. Выключенный
	// флаг распределений действует так же.
	if featureOn(h.features, config.FeatureStatsDistributions, query.RequesterID) {
		est, err := scoreboard.FitPlayerDistribution(rows, playerID, scoreboard.MinSamplesForDistribution)
		if err == nil {
			result.Distribution = toDistributionDTO(est)
		} else if !shared.IsInsufficientData(err) && !errors.Is(err, shared.ErrDegenerateInput) {
			return nil, err
		}
	}

	return result, nil
}

// toDistributionDTO конвертирует оценку распределения в DTO.
func toDistributionDTO(est scoreboard.DistributionEstimate) *DistributionDTO {
	return &DistributionDTO{
		Shape:    est.Shape,
		Rate:     est.Rate,
		Mean:     est.Mean(),
		MinScore: int(est.MinScore),
		MaxScore: int(est.MaxScore),
	}
}
