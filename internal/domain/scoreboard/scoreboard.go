package scoreboard

import (
	"time"

	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// PodiumSize - размер пьедестала табло.
const PodiumSize = 3

// ══════════════════════════════════════════════════════════════════════════════
// SCOREBOARD ASSEMBLER
// ══════════════════════════════════════════════════════════════════════════════

// GameInfo - снимок метаданных игры, прикрепляемый к собранному табло.
// Движок читает его и никогда не изменяет; владелец сущности - домен game.
type GameInfo struct {
	// ID - идентификатор игры.
	ID shared.GameID

	// GroupID - группа, которой принадлежит игра.
	GroupID shared.GroupID

	// Name - название игры.
	Name string

	// Metric - метрика ранжирования, настроенная для игры.
	Metric RankingMetric

	// PlayersPerMatch - число участников одного матча.
	PlayersPerMatch int

	// CreatedAt - время создания игры.
	CreatedAt time.Time
}

// AssembleOptions - необязательные параметры сборки табло.
type AssembleOptions struct {
	// Metric - метрика сортировки списка, если вызывающий хочет порядок,
	// отличный от настроенного у игры. Пьедестал НЕ пересчитывается:
	// трофеи всегда отражают собственную метрику игры.
	Metric RankingMetric

	// Direction - направление итогового списка. По умолчанию по убыванию;
	// при OrderAscending список разворачивается (пьедестал не трогается).
	Direction OrderDirection
}

// Scoreboard - собранный ответ движка: ранжированный список, пьедестал,
// суперлативы и метаданные игры.
type Scoreboard struct {
	// Entries - записи табло в запрошенном порядке.
	Entries []*ScoreboardEntry

	// Podium - топ-3 по собственной метрике игры, всегда по убыванию.
	Podium []*ScoreboardEntry

	// Highlights - суперлативы игры.
	Highlights Highlights

	// Game - метаданные игры.
	Game GameInfo

	// LastMatchID - идентификатор самого свежего матча, из которого
	// считались тренды. Нулевой, если матчей ещё не было.
	LastMatchID shared.MatchID
}

// Assemble собирает табло игры из сырых строк матчей.
//
// Двухтрековое поведение - осознанное продуктовое решение: ранжирование по
// метрике игры авторитетно для пьедестала и полей Rank, а видимый список
// можно пересортировать и развернуть под запрос вызывающего.
func Assemble(game GameInfo, rows []MatchRow, opts AssembleOptions) *Scoreboard {
	entries := RankWithTrends(rows, game.Metric)

	// Пьедестал снимается до любой пересортировки.
	podiumLen := PodiumSize
	if len(entries) < podiumLen {
		podiumLen = len(entries)
	}
	podium := make([]*ScoreboardEntry, podiumLen)
	for i := 0; i < podiumLen; i++ {
		podium[i] = entries[i].Clone()
	}

	// Пересортировка под метрику вызывающего. Поля Rank не пересчитываются:
	// ранг остаётся позицией в порядке метрики игры.
	if opts.Metric.IsValid() && opts.Metric != game.Metric {
		SortEntries(entries, opts.Metric)
	}

	if opts.Direction == OrderAscending {
		reverseEntries(entries)
	}

	lastMatch, _ := LatestMatchID(rows)

	return &Scoreboard{
		Entries:     entries,
		Podium:      podium,
		Highlights:  ExtractHighlights(rows),
		Game:        game,
		LastMatchID: lastMatch,
	}
}

// reverseEntries разворачивает срез записей на месте.
func reverseEntries(entries []*ScoreboardEntry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PLAYER LIFETIME STATS
// ══════════════════════════════════════════════════════════════════════════════

// LifetimeStats - сводная статистика одного игрока за всю историю игры.
type LifetimeStats struct {
	// WinRate - доля побед.
	WinRate float64

	// AverageScore - средний счёт.
	AverageScore float64

	// BestScore - лучший счёт за один матч.
	BestScore shared.Score

	// TotalGames - всего сыграно матчей.
	TotalGames int

	// Rank - позиция в табло по метрике игры (1 = первое место).
	Rank Rank
}

// PlayerHighlights - персональные хайлайты игрока в одной игре.
type PlayerHighlights struct {
	// Lifetime - статистика за всю историю.
	Lifetime LifetimeStats
}

// ComputePlayerHighlights возвращает сводную статистику игрока в игре.
// Возвращает shared.ErrPlayerNotInScoreboard, если игрок не сыграл
// ни одного матча: обычно это значит, что он никогда не участвовал.
func ComputePlayerHighlights(game GameInfo, rows []MatchRow, playerID shared.PlayerID) (*PlayerHighlights, error) {
	entries := RankWithTrends(rows, game.Metric)

	for _, entry := range entries {
		if entry.PlayerID != playerID {
			continue
		}
		return &PlayerHighlights{
			Lifetime: LifetimeStats{
				WinRate:      entry.WinRate,
				AverageScore: entry.AverageScore,
				BestScore:    entry.BestScore,
				TotalGames:   entry.MatchesPlayed,
				Rank:         entry.Rank,
			},
		}, nil
	}

	return nil, shared.ErrPlayerNotInScoreboard
}
