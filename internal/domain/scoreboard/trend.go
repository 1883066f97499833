package scoreboard

import (
	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TREND CALCULATOR
// ══════════════════════════════════════════════════════════════════════════════
// Тренды считаются диффом двух снапшотов: "сейчас" против "до последнего
// матча". Пересчёт с нуля вместо инкрементального состояния - осознанный
// выбор: история матчей группы ограничена, а движок остаётся без состояния.
// Мемоизация предыдущего снапшота - забота внешнего кеша, который обязан
// сохранять идентичный результат.

// previousStanding - позиция игрока в снапшоте "до последнего матча".
type previousStanding struct {
	rank         Rank
	averageScore float64
	winRate      float64
}

// RankWithTrends агрегирует строки, упорядочивает записи по метрике,
// присваивает ранги (1 = первое место) и заполняет дельты относительно
// состояния до самого свежего матча.
//
// Игрок, которого не было в предыдущем снапшоте (его единственный матч -
// самый свежий), сохраняет нулевые дельты: это определённый случай
// "новый игрок", а не ошибка.
func RankWithTrends(rows []MatchRow, metric RankingMetric) []*ScoreboardEntry {
	current := Aggregate(rows)
	SortEntries(current, metric)

	for i, entry := range current {
		entry.Rank = Rank(i + 1)
	}

	latestMatch, ok := LatestMatchID(rows)
	if !ok {
		return current
	}

	previous := buildPreviousLookup(rows, latestMatch, metric)

	for _, entry := range current {
		prev, existed := previous[entry.PlayerID]
		if !existed {
			continue // новый игрок - дельты остаются нулевыми
		}

		// Положительная дельта = игрок поднялся (был 3-м, стал 1-м -> +2).
		entry.RankChange = RankChange(int(prev.rank) - int(entry.Rank))
		entry.AverageScoreDiff = entry.AverageScore - prev.averageScore
		entry.WinRateDiff = entry.WinRate - prev.winRate
	}

	return current
}

// buildPreviousLookup строит снапшот "до последнего матча": агрегирует все
// строки, кроме строк самого свежего матча, и возвращает позиции игроков
// в том же порядке метрики.
func buildPreviousLookup(
	rows []MatchRow,
	latestMatch shared.MatchID,
	metric RankingMetric,
) map[shared.PlayerID]previousStanding {
	withoutLatest := make([]MatchRow, 0, len(rows))
	for _, row := range rows {
		if row.MatchID != latestMatch {
			withoutLatest = append(withoutLatest, row)
		}
	}

	entries := Aggregate(withoutLatest)
	SortEntries(entries, metric)

	lookup := make(map[shared.PlayerID]previousStanding, len(entries))
	for i, entry := range entries {
		lookup[entry.PlayerID] = previousStanding{
			rank:         Rank(i + 1),
			averageScore: entry.AverageScore,
			winRate:      entry.WinRate,
		}
	}

	return lookup
}
