// Package query contains read operations (CQRS - Queries).
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
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
// GET SCOREBOARD QUERY
// Собирает табло игры: ранжированный список с трендами, пьедестал и
// суперлативы. Ключевой запрос всего сервиса - "покажи, кто здесь лучший".
// ══════════════════════════════════════════════════════════════════════════════

// GetScoreboardQuery содержит параметры запроса табло.
type GetScoreboardQuery struct {
	// GameID - идентификатор игры (обязателен).
	GameID string

	// RequesterID - идентификатор игрока, запрашивающего табло.
	// Запрос доступен только членам группы, которой принадлежит игра.
	RequesterID string

	// Metric - метрика сортировки списка, если нужен порядок, отличный
	// от настроенного у игры (пустая = метрика игры). Пьедестал и ранги
	// не пересчитываются.
	Metric string

	// Direction - направление списка: "ascending" или "descending"
	// (пустая = по убыванию).
	Direction string
}

// Validate проверяет корректность параметров запроса.
func (q *GetScoreboardQuery) Validate() error {
	if q.GameID == "" {
		return errors.New("game_id must be provided")
	}
	if q.RequesterID == "" {
		return errors.New("requester_id must be provided")
	}
	if q.Metric != "" && !scoreboard.RankingMetric(q.Metric).IsValid() {
		return errors.New("unknown ranking metric")
	}
	if q.Direction != "" && !scoreboard.OrderDirection(q.Direction).IsValid() {
		return errors.New("unknown order direction")
	}
	return nil
}

// ScoreboardEntryDTO - DTO одной записи табло (Data Transfer Object).
type ScoreboardEntryDTO struct {
	// Rank - позиция по метрике игры (начиная с 1).
	Rank int `json:"rank"`

	// PlayerID - идентификатор игрока.
	PlayerID string `json:"player_id"`

	// PlayerName - отображаемое имя.
	PlayerName string `json:"player_name"`

	// Avatar - аватар игрока.
	Avatar string `json:"avatar,omitempty"`

	// AvatarColour - цвет аватара.
	AvatarColour string `json:"avatar_colour,omitempty"`

	// MatchesPlayed - сыграно матчей.
	MatchesPlayed int `json:"matches_played"`

	// Wins - количество побед.
	Wins int `json:"wins"`

	// WinRate - доля побед (0.0 - 1.0).
	WinRate float64 `json:"win_rate"`

	// AverageScore - средний счёт.
	AverageScore float64 `json:"average_score"`

	// BestScore - лучший счёт за один матч.
	BestScore int `json:"best_score"`

	// RankChange - изменение позиции (+ вверх, - вниз, 0 стабильно).
	RankChange int `json:"rank_change"`

	// RankDirection - направление изменения: "up", "down", "stable".
	RankDirection string `json:"rank_direction"`

	// AverageScoreDiff - изменение среднего счёта после последнего матча.
	AverageScoreDiff float64 `json:"average_score_diff"`

	// WinRateDiff - изменение доли побед после последнего матча.
	WinRateDiff float64 `json:"win_rate_diff"`
}

// HighlightDTO - DTO одного суперлатива игры.
type HighlightDTO struct {
	// PlayerID - идентификатор игрока-рекордсмена (пустой = рекорда нет).
	PlayerID string `json:"player_id,omitempty"`

	// PlayerName - имя рекордсмена.
	PlayerName string `json:"player_name,omitempty"`

	// Value - значение рекорда.
	Value float64 `json:"value"`
}

// HighlightsDTO - DTO всех суперлативов игры.
type HighlightsDTO struct {
	// HighestWinRate - лучшая доля побед.
	HighestWinRate HighlightDTO `json:"highest_win_rate"`

	// HighestAverageScore - лучший средний счёт.
	HighestAverageScore HighlightDTO `json:"highest_average_score"`

	// HighestSingleScore - лучший счёт за один матч.
	HighestSingleScore HighlightDTO `json:"highest_single_score"`

	// MostGamesPlayed - наибольшее число сыгранных матчей.
	MostGamesPlayed HighlightDTO `json:"most_games_played"`
}

// GameDTO - DTO метаданных игры.
type GameDTO struct {
	// ID - идентификатор игры.
	ID string `json:"id"`

	// GroupID - группа, которой принадлежит игра.
	GroupID string `json:"group_id"`

	// Name - название игры.
	Name string `json:"name"`

	// Metric - настроенная метрика ранжирования.
	Metric string `json:"metric"`

	// PlayersPerMatch - участников в одном матче.
	PlayersPerMatch int `json:"players_per_match"`
}

// GetScoreboardResult содержит результат запроса табло.
type GetScoreboardResult struct {
	// Game - метаданные игры.
	Game GameDTO `json:"game"`

	// Entries - записи табло в запрошенном порядке.
	Entries []ScoreboardEntryDTO `json:"entries"`

	// Podium - топ-3 по метрике игры, всегда по убыванию.
	Podium []ScoreboardEntryDTO `json:"podium"`

	// Highlights - суперлативы игры.
	Highlights HighlightsDTO `json:"highlights"`

	// LastMatchID - самый свежий матч, от которого считались тренды
	// (пустой, если матчей ещё не было).
	LastMatchID string `json:"last_match_id,omitempty"`

	// FromCache - табло взято из снапшот-кеша, а не пересчитано.
	FromCache bool `json:"from_cache"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetScoreboardHandler обрабатывает запросы на сборку табло.
type GetScoreboardHandler struct {
	gameRepo      game.GameRepository
	matchSource   scoreboard.MatchDataSource
	membership    scoreboard.MembershipSource
	snapshotCache scoreboard.SnapshotCache
	features      *config.FeatureFlags
}

// NewGetScoreboardHandler создаёт новый обработчик запроса табло.
// snapshotCache может быть nil - тогда табло считается заново на каждый
// запрос. features может быть nil - тогда все поверхности включены.
func NewGetScoreboardHandler(
	gameRepo game.GameRepository,
	matchSource scoreboard.MatchDataSource,
	membership scoreboard.MembershipSource,
	snapshotCache scoreboard.SnapshotCache,
	features *config.FeatureFlags,
) *GetScoreboardHandler {
	return &GetScoreboardHandler{
		gameRepo:      gameRepo,
		matchSource:   matchSource,
		membership:    membership,
		snapshotCache: snapshotCache,
		features:      features,
	}
}

// Handle выполняет запрос на сборку табло.
func (h *GetScoreboardHandler) Handle(ctx context.Context, query GetScoreboardQuery) (*GetScoreboardResult, error) {
	// Валидация входных данных
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetScoreboard", shared.ErrValidation, err.Error(), err)
	}

	gameID, err := shared.ParseGameID(query.GameID)
	if err != nil {
		return nil, err
	}
	requesterID, err := shared.ParsePlayerID(query.RequesterID)
	if err != nil {
		return nil, err
	}

	// Получаем игру и проверяем членство запрашивающего
	g, err := h.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := h.checkMembership(ctx, g.GroupID, requesterID); err != nil {
		return nil, err
	}

	// Все вычисления идут от одного синхронного фетча строк матчей
	rows, err := h.matchSource.FetchAllMatches(ctx, gameID)
	if err != nil {
		return nil, shared.WrapError("query", "GetScoreboard", shared.ErrExternalService, "failed to fetch match rows", err)
	}

	opts := scoreboard.AssembleOptions{
		Metric:    scoreboard.RankingMetric(query.Metric),
		Direction: scoreboard.OrderDirection(query.Direction),
	}

	// Пересортировка по нестандартной метрике - опциональная поверхность.
	if !h.isCanonical(g, opts) && !featureOn(h.features, config.FeatureScoreboardResort, query.RequesterID) {
		return nil, shared.ErrFeatureDisabled
	}

	view := resultView{
		trends:     featureOn(h.features, config.FeatureScoreboardTrends, query.RequesterID),
		highlights: featureOn(h.features, config.FeatureScoreboardHighlights, query.RequesterID),
	}

	// Кеш хранит каноническое табло (метрика игры, по убыванию).
	// Запросы с нестандартным порядком всегда собираются заново.
	if h.isCanonical(g, opts) {
		if board, ok := h.tryGetFromCache(ctx, rows, gameID); ok {
			return h.buildResult(board, true, view), nil
		}
	}

	board := scoreboard.Assemble(g.Info(), rows, opts)

	if h.isCanonical(g, opts) && h.snapshotCache != nil && !board.LastMatchID.IsNil() {
		// Промах кеша не критичен, ошибка записи - тем более.
		_ = h.snapshotCache.PutSnapshot(ctx, board)
	}

	return h.buildResult(board, false, view), nil
}

// resultView описывает, какие опциональные блоки попадают в ответ.
// Кеш всегда хранит полное табло; урезание происходит на уровне DTO.
type resultView struct {
	trends     bool
	highlights bool
}

// checkMembership проверяет, что запрашивающий состоит в группе игры.
func (h *GetScoreboardHandler) checkMembership(ctx context.Context, groupID shared.GroupID, requesterID shared.PlayerID) error {
	ok, err := h.membership.AreMembers(ctx, groupID, []shared.PlayerID{requesterID})
	if err != nil {
		return shared.WrapError("query", "GetScoreboard", shared.ErrExternalService, "failed to check membership", err)
	}
	if !ok {
		return shared.ErrMemberNotFound
	}
	return nil
}

// isCanonical возвращает true, если запрошены порядок и метрика по умолчанию.
func (h *GetScoreboardHandler) isCanonical(g *game.Game, opts scoreboard.AssembleOptions) bool {
	if opts.Direction == scoreboard.OrderAscending {
		return false
	}
	return !opts.Metric.IsValid() || opts.Metric == g.Metric
}

// tryGetFromCache пытается найти снапшот для текущего свежего матча.
// Новый матч меняет ключ, поэтому устаревший снапшот не находится.
func (h *GetScoreboardHandler) tryGetFromCache(ctx context.Context, rows []scoreboard.MatchRow, gameID shared.GameID) (*scoreboard.Scoreboard, bool) {
	if h.snapshotCache == nil {
		return nil, false
	}
	lastMatchID, hasMatches := scoreboard.LatestMatchID(rows)
	if !hasMatches {
		return nil, false
	}

	board, err := h.snapshotCache.GetSnapshot(ctx, gameID, lastMatchID)
	if err != nil || board == nil {
		return nil, false
	}
	return board, true
}

// buildResult формирует итоговый результат из собранного табло.
func (h *GetScoreboardHandler) buildResult(board *scoreboard.Scoreboard, fromCache bool, view resultView) *GetScoreboardResult {
	entries := make([]ScoreboardEntryDTO, len(board.Entries))
	for i, e := range board.Entries {
		entries[i] = toEntryDTO(e, view.trends)
	}

	podium := make([]ScoreboardEntryDTO, len(board.Podium))
	for i, e := range board.Podium {
		podium[i] = toEntryDTO(e, view.trends)
	}

	lastMatchID := ""
	if !board.LastMatchID.IsNil() {
		lastMatchID = board.LastMatchID.String()
	}

	highlights := HighlightsDTO{}
	if view.highlights {
		highlights = toHighlightsDTO(board.Highlights)
	}

	return &GetScoreboardResult{
		Game: GameDTO{
			ID:              board.Game.ID.String(),
			GroupID:         board.Game.GroupID.String(),
			Name:            board.Game.Name,
			Metric:          string(board.Game.Metric),
			PlayersPerMatch: board.Game.PlayersPerMatch,
		},
		Entries:     entries,
		Podium:      podium,
		Highlights:  highlights,
		LastMatchID: lastMatchID,
		FromCache:   fromCache,
		GeneratedAt: time.Now().UTC(),
	}
}

// toEntryDTO конвертирует доменную запись табло в DTO. При выключенных
// трендах дельты обнуляются, позиция показывается как стабильная.
func toEntryDTO(e *scoreboard.ScoreboardEntry, withTrends bool) ScoreboardEntryDTO {
	dto := ScoreboardEntryDTO{
		Rank:          int(e.Rank),
		PlayerID:      e.PlayerID.String(),
		PlayerName:    string(e.PlayerName),
		Avatar:        string(e.Avatar),
		AvatarColour:  string(e.AvatarColour),
		MatchesPlayed: e.MatchesPlayed,
		Wins:          e.Wins,
		WinRate:       e.WinRate,
		AverageScore:  e.AverageScore,
		BestScore:     int(e.BestScore),
		RankDirection: string(scoreboard.RankDirectionStable),
	}
	if withTrends {
		dto.RankChange = int(e.RankChange)
		dto.RankDirection = string(e.Direction())
		dto.AverageScoreDiff = e.AverageScoreDiff
		dto.WinRateDiff = e.WinRateDiff
	}
	return dto
}

// toHighlightsDTO конвертирует суперлативы в DTO.
func toHighlightsDTO(h scoreboard.Highlights) HighlightsDTO {
	return HighlightsDTO{
		HighestWinRate:      floatHighlightDTO(h.HighestWinRate),
		HighestAverageScore: floatHighlightDTO(h.HighestAverageScore),
		HighestSingleScore:  intHighlightDTO(h.HighestSingleScore),
		MostGamesPlayed:     intHighlightDTO(h.MostGamesPlayed),
	}
}

func floatHighlightDTO(d scoreboard.HighlightDetail[float64]) HighlightDTO {
	dto := HighlightDTO{Value: d.Value}
	if !d.IsEmpty() {
		dto.PlayerID = d.PlayerID.String()
		dto.PlayerName = string(d.PlayerName)
	}
	return dto
}

func intHighlightDTO(d scoreboard.HighlightDetail[int]) HighlightDTO {
	dto := HighlightDTO{Value: float64(d.Value)}
	if !d.IsEmpty() {
		dto.PlayerID = d.PlayerID.String()
		dto.PlayerName = string(d.PlayerName)
	}
	return dto
}
