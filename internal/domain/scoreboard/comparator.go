package scoreboard

import (
	"math"
	"sort"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKING COMPARATOR
// ══════════════════════════════════════════════════════════════════════════════
// Естественный порядок табло - по убыванию основной метрики (лучшие сверху).
// Компараторы написаны сразу в этом порядке, а не через инверсию возрастающей
// цепочки: так тай-брейк по имени остаётся лексикографически возрастающим
// независимо от метрики. Вызывающим, которым нужен возрастающий список,
// следует развернуть итоговый срез, а не цепочку тай-брейков.

// Compare упорядочивает две записи табло по выбранной метрике.
// Возвращает отрицательное число, если a стоит выше b в табло,
// положительное - если ниже, ноль - при полном совпадении всех ключей.
//
// Порядок ключей фиксирован:
//
//	win_rate:      WinRate ↓, MatchesPlayed ↓, AverageScore ↓, PlayerName ↑
//	average_score: AverageScore ↓, MatchesPlayed ↓, WinRate ↓, PlayerName ↑
//
// Неизвестная метрика трактуется как win_rate, чтобы сравнение оставалось
// тотальным для любых входов.
func Compare(metric RankingMetric, a, b *ScoreboardEntry) int {
	switch metric {
	case MetricAverageScore:
		if c := compareFloatDesc(a.AverageScore, b.AverageScore); c != 0 {
			return c
		}
		if c := compareIntDesc(a.MatchesPlayed, b.MatchesPlayed); c != 0 {
			return c
		}
		if c := compareFloatDesc(a.WinRate, b.WinRate); c != 0 {
			return c
		}
	default: // MetricWinRate
		if c := compareFloatDesc(a.WinRate, b.WinRate); c != 0 {
			return c
		}
		if c := compareIntDesc(a.MatchesPlayed, b.MatchesPlayed); c != 0 {
			return c
		}
		if c := compareFloatDesc(a.AverageScore, b.AverageScore); c != 0 {
			return c
		}
	}

	// Последний тай-брейк всегда по имени, по возрастанию.
	switch {
	case a.PlayerName < b.PlayerName:
		return -1
	case a.PlayerName > b.PlayerName:
		return 1
	default:
		return 0
	}
}

// SortEntries сортирует записи на месте в естественном порядке табло
// (по убыванию метрики). Сортировка стабильна: подлинные ничьи по всем
// ключам сохраняют взаимный порядок входа.
func SortEntries(entries []*ScoreboardEntry, metric RankingMetric) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Compare(metric, entries[i], entries[j]) < 0
	})
}

// compareFloatDesc сравнивает два float64 по убыванию с тотальным порядком.
// NaN считается меньше любого числа (агрегатор NaN не производит, но
// компаратор обязан не паниковать на любом входе) - в убывающем порядке
// NaN уходит в конец списка.
func compareFloatDesc(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

// compareIntDesc сравнивает два int по убыванию.
func compareIntDesc(a, b int) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
