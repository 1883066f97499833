package query

import (
	"context"
	"time"

	"github.com/tally-hub/tally-score-hub/config"
	"github.com/tally-hub/tally-score-hub/internal/domain/scoreboard"
	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
	"github.com/tally-hub/tally-score-hub/internal/infrastructure/charts"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DISTRIBUTION CHART QUERY
// Рисует кривые распределения всех игроков игры на одном PNG. Обёртка над
// GetDistributions: данные считает тот же обработчик, здесь только рендер.
// ══════════════════════════════════════════════════════════════════════════════

// GetDistributionChartQuery содержит параметры запроса графика.
type GetDistributionChartQuery struct {
	// GameID - идентификатор игры (обязателен).
	GameID string

	// RequesterID - идентификатор запрашивающего (член группы игры).
	RequesterID string
}

// GetDistributionChartResult содержит отрендеренный график.
type GetDistributionChartResult struct {
	// PNG - готовое изображение. Никогда не пустое: при отсутствии
	// данных рендерится заглушка.
	PNG []byte `json:"png"`

	// Players - сколько кривых попало на график.
	Players int `json:"players"`

	// SkippedPlayers - сколько игроков пропущено из-за недостатка данных.
	SkippedPlayers int `json:"skipped_players"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetDistributionChartHandler обрабатывает запросы графика распределений.
type GetDistributionChartHandler struct {
	distributions *GetDistributionsHandler
	features      *config.FeatureFlags
}

// NewGetDistributionChartHandler создаёт новый обработчик.
// features может быть nil - тогда поверхность всегда включена.
func NewGetDistributionChartHandler(distributions *GetDistributionsHandler, features *config.FeatureFlags) *GetDistributionChartHandler {
	return &GetDistributionChartHandler{distributions: distributions, features: features}
}

// Handle считает распределения игры и рендерит их в один PNG.
func (h *GetDistributionChartHandler) Handle(ctx context.Context, query GetDistributionChartQuery) (*GetDistributionChartResult, error) {
	if !featureOn(h.features, config.FeatureStatsCharts, query.RequesterID) {
		return nil, shared.ErrFeatureDisabled
	}

	result, err := h.distributions.Handle(ctx, GetDistributionsQuery{
		GameID:      query.GameID,
		RequesterID: query.RequesterID,
	})
	if err != nil {
		return nil, err
	}

	curves := make([]charts.PlayerCurve, len(result.Players))
	for i, p := range result.Players {
		curves[i] = charts.PlayerCurve{
			PlayerName: p.PlayerName,
			Estimate: scoreboard.DistributionEstimate{
				Shape:    p.Distribution.Shape,
				Rate:     p.Distribution.Rate,
				MinScore: shared.Score(p.Distribution.MinScore),
				MaxScore: shared.Score(p.Distribution.MaxScore),
			},
		}
	}

	png, err := charts.RenderDistributionChart(result.GameName, curves)
	if err != nil {
		return nil, shared.WrapError("query", "GetDistributionChart", shared.ErrExternalService, "failed to render chart", err)
	}

	return &GetDistributionChartResult{
		PNG:            png,
		Players:        len(curves),
		SkippedPlayers: result.SkippedPlayers,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}
