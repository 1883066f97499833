package scoreboard

import (
	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// HIGHLIGHTS EXTRACTOR
// ══════════════════════════════════════════════════════════════════════════════

// HighlightDetail - один суперлатив табло: лучший игрок категории и его
// значение. Нулевое значение типа - валидный ответ для категории без
// участников; оно неотличимо от подлинного лидера с нулём, что приемлемо:
// хайлайты информационные, а не авторитетные.
type HighlightDetail[T int | float64] struct {
	// PlayerID - идентификатор лучшего игрока (NilPlayerID, если данных нет).
	PlayerID shared.PlayerID

	// PlayerName - имя лучшего игрока (пустое, если данных нет).
	PlayerName shared.PlayerName

	// Value - значение суперлатива.
	Value T
}

// IsEmpty возвращает true, если категория осталась без лидера.
func (d HighlightDetail[T]) IsEmpty() bool {
	return d.PlayerID.IsNil()
}

// Highlights - четыре кросс-игровых суперлатива одной игры.
type Highlights struct {
	// HighestWinRate - игрок с наибольшей долей побед.
	HighestWinRate HighlightDetail[float64]

	// HighestAverageScore - игрок с наибольшим средним счётом.
	HighestAverageScore HighlightDetail[float64]

	// HighestSingleScore - наибольший счёт за один матч.
	HighestSingleScore HighlightDetail[int]

	// MostGamesPlayed - игрок с наибольшим числом сыгранных матчей.
	MostGamesPlayed HighlightDetail[int]
}

// ExtractHighlights вычисляет суперлативы по сырым строкам матчей.
// Чистая агрегация на чтение: безопасно считать независимо от табло.
//
// Ничьи разрешаются детерминированно в пользу первого встреченного игрока
// (замена только при строгом превышении). Пустой вход даёт нулевые
// HighlightDetail, а не ошибку.
func ExtractHighlights(rows []MatchRow) Highlights {
	var highlights Highlights

	if len(rows) == 0 {
		return highlights
	}

	// Единственный суперлатив, считающийся прямо по строкам.
	best := rows[0]
	for _, row := range rows[1:] {
		if row.Score > best.Score {
			best = row
		}
	}
	highlights.HighestSingleScore = HighlightDetail[int]{
		PlayerID:   best.PlayerID,
		PlayerName: best.PlayerName,
		Value:      int(best.Score),
	}

	// Остальные - по агрегатам. Aggregate сохраняет порядок первого
	// появления, так что "первый встреченный" здесь тоже детерминирован.
	for _, entry := range Aggregate(rows) {
		if highlights.HighestWinRate.IsEmpty() || entry.WinRate > highlights.HighestWinRate.Value {
			highlights.HighestWinRate = HighlightDetail[float64]{
				PlayerID:   entry.PlayerID,
				PlayerName: entry.PlayerName,
				Value:      entry.WinRate,
			}
		}
		if highlights.HighestAverageScore.IsEmpty() || entry.AverageScore > highlights.HighestAverageScore.Value {
			highlights.HighestAverageScore = HighlightDetail[float64]{
				PlayerID:   entry.PlayerID,
				PlayerName: entry.PlayerName,
				Value:      entry.AverageScore,
			}
		}
		if highlights.MostGamesPlayed.IsEmpty() || entry.MatchesPlayed > highlights.MostGamesPlayed.Value {
			highlights.MostGamesPlayed = HighlightDetail[int]{
				PlayerID:   entry.PlayerID,
				PlayerName: entry.PlayerName,
				Value:      entry.MatchesPlayed,
			}
		}
	}

	return highlights
}
