package scoreboard

import (
	"fmt"

	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCOREBOARD ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// ScoreboardEntry - агрегированная статистика одного игрока по набору матчей.
// Создаётся заново при каждом вычислении и никогда не персистится.
type ScoreboardEntry struct {
	// PlayerID - идентификатор игрока.
	PlayerID shared.PlayerID

	// PlayerName - отображаемое имя.
	PlayerName shared.PlayerName

	// Avatar - аватар игрока.
	Avatar shared.Avatar

	// AvatarColour - цвет аватара.
	AvatarColour shared.AvatarColour

	// MatchesPlayed - количество сыгранных матчей.
	MatchesPlayed int

	// AverageScore - средний счёт (0.0 при нуле матчей).
	AverageScore float64

	// BestScore - лучший счёт за один матч.
	BestScore shared.Score

	// Wins - количество побед (RankInMatch == 1).
	Wins int

	// WinRate - доля побед (0.0 при нуле матчей).
	WinRate float64

	// Rank - позиция в табло после упорядочивания (1 = первое место).
	// Ноль до тех пор, пока ранги не присвоены.
	Rank Rank

	// RankChange - изменение позиции относительно снапшота
	// "до последнего матча". Ноль для новых игроков.
	RankChange RankChange

	// AverageScoreDiff - изменение среднего счёта после последнего матча.
	AverageScoreDiff float64

	// WinRateDiff - изменение доли побед после последнего матча.
	WinRateDiff float64
}

// HasImproved возвращает true, если игрок поднялся в табло.
func (e *ScoreboardEntry) HasImproved() bool {
	return e.RankChange > 0
}

// Direction возвращает направление изменения ранга.
func (e *ScoreboardEntry) Direction() RankDirection {
	return e.RankChange.Direction()
}

// Clone создаёт копию записи.
func (e *ScoreboardEntry) Clone() *ScoreboardEntry {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}

// String возвращает строковое представление для логирования.
func (e *ScoreboardEntry) String() string {
	return fmt.Sprintf(
		"Entry{Rank: %d, Player: %s, Played: %d, WinRate: %.2f, Avg: %.2f}",
		e.Rank, e.PlayerName, e.MatchesPlayed, e.WinRate, e.AverageScore,
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCH AGGREGATOR
// ══════════════════════════════════════════════════════════════════════════════

// Aggregate сворачивает сырые строки матчей в одну запись табло на игрока.
// Ранги и дельты остаются нулевыми - их присваивает RankWithTrends.
//
// Агрегация идемпотентна и не зависит от порядка строк: перестановка входа
// даёт тот же набор записей. Порядок результата - порядок первого появления
// игрока во входных строках (стабильная основа до сортировки).
//
// Игрок без единой строки записи не получает: нулевые записи при
// необходимости синтезирует вызывающая сторона.
func Aggregate(rows []MatchRow) []*ScoreboardEntry {
	if len(rows) == 0 {
		return []*ScoreboardEntry{}
	}

	// Группируем по игроку, сохраняя порядок первого появления.
	byPlayer := make(map[shared.PlayerID]*playerAccumulator, 16)
	order := make([]shared.PlayerID, 0, 16)

	for _, row := range rows {
		acc, ok := byPlayer[row.PlayerID]
		if !ok {
			// Поля отображения константны для игрока - берём из первой строки.
			acc = &playerAccumulator{
				name:         row.PlayerName,
				avatar:       row.Avatar,
				avatarColour: row.AvatarColour,
				bestScore:    row.Score,
			}
			byPlayer[row.PlayerID] = acc
			order = append(order, row.PlayerID)
		}

		acc.played++
		acc.scoreSum += int(row.Score)
		if row.Score > acc.bestScore {
			acc.bestScore = row.Score
		}
		if row.IsWin() {
			acc.wins++
		}
	}

	entries := make([]*ScoreboardEntry, 0, len(order))
	for _, playerID := range order {
		acc := byPlayer[playerID]

		// played всегда > 0 для существующего аккумулятора, но деление
		// защищено на случай будущих изменений группировки.
		averageScore := 0.0
		winRate := 0.0
		if acc.played > 0 {
			averageScore = float64(acc.scoreSum) / float64(acc.played)
			winRate = float64(acc.wins) / float64(acc.played)
		}

		entries = append(entries, &ScoreboardEntry{
			PlayerID:      playerID,
			PlayerName:    acc.name,
			Avatar:        acc.avatar,
			AvatarColour:  acc.avatarColour,
			MatchesPlayed: acc.played,
			AverageScore:  averageScore,
			BestScore:     acc.bestScore,
			Wins:          acc.wins,
			WinRate:       winRate,
		})
	}

	return entries
}

// playerAccumulator накапливает статистику одного игрока при агрегации.
type playerAccumulator struct {
	name         shared.PlayerName
	avatar       shared.Avatar
	avatarColour shared.AvatarColour
	played       int
	scoreSum     int
	bestScore    shared.Score
	wins         int
}
