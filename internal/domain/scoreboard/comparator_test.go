package scoreboard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

func entryWith(name string, winRate, avg float64, played int) *ScoreboardEntry {
	return &ScoreboardEntry{
		PlayerName:    shared.PlayerName(name),
		WinRate:       winRate,
		AverageScore:  avg,
		MatchesPlayed: played,
	}
}

func TestCompare_WinRatePrimary(t *testing.T) {
	higher := entryWith("Bob", 0.8, 1.0, 5)
	lower := entryWith("Alice", 0.5, 99.0, 50)

	// Большая доля побед стоит выше, что бы ни было в остальных ключах.
	assert.Negative(t, Compare(MetricWinRate, higher, lower))
	assert.Positive(t, Compare(MetricWinRate, lower, higher))
}

func TestCompare_WinRateTieBreaks(t *testing.T) {
	// Равный win rate -> больше сыгранных матчей выше.
	morePlayed := entryWith("Bob", 0.5, 3.0, 10)
	lessPlayed := entryWith("Alice", 0.5, 9.0, 4)
	assert.Negative(t, Compare(MetricWinRate, morePlayed, lessPlayed))

	// Равные win rate и матчи -> больший средний счёт выше.
	higherAvg := entryWith("Bob", 0.5, 9.0, 10)
	lowerAvg := entryWith("Alice", 0.5, 3.0, 10)
	assert.Negative(t, Compare(MetricWinRate, higherAvg, lowerAvg))
}

func TestCompare_AverageScorePrimary(t *testing.T) {
	higher := entryWith("Bob", 0.0, 12.0, 2)
	lower := entryWith("Alice", 1.0, 7.0, 20)

	assert.Negative(t, Compare(MetricAverageScore, higher, lower))
	assert.Positive(t, Compare(MetricAverageScore, lower, higher))
}

// Финальный тай-брейк по имени всегда по возрастанию, независимо от метрики.
func TestCompare_NameTieBreakAscending(t *testing.T) {
	a := entryWith("Alice", 0.5, 5.0, 3)
	b := entryWith("Bob", 0.5, 5.0, 3)

	assert.Negative(t, Compare(MetricWinRate, a, b))
	assert.Negative(t, Compare(MetricAverageScore, a, b))
	assert.Positive(t, Compare(MetricWinRate, b, a))
}

func TestCompare_FullTie(t *testing.T) {
	a := entryWith("Alice", 0.5, 5.0, 3)
	b := entryWith("Alice", 0.5, 5.0, 3)
	assert.Zero(t, Compare(MetricWinRate, a, b))
	assert.Zero(t, Compare(MetricAverageScore, a, b))
}

// NaN не должен ронять компаратор и всегда считается "хуже" числа,
// то есть уходит в конец убывающего списка.
func TestCompare_NaNIsLast(t *testing.T) {
	nan := entryWith("Nan", math.NaN(), math.NaN(), 1)
	num := entryWith("Bob", 0.0, 0.0, 1)

	assert.Positive(t, Compare(MetricWinRate, nan, num))
	assert.Negative(t, Compare(MetricWinRate, num, nan))
	assert.Zero(t, compareFloatDesc(math.NaN(), math.NaN()))
}

// Свойство из постановки: в отсортированном по win_rate списке каждая
// соседняя пара невозрастающая по цепочке ключей.
func TestSortEntries_AdjacentPairsProperty(t *testing.T) {
	entries := []*ScoreboardEntry{
		entryWith("Dave", 0.25, 4.0, 8),
		entryWith("Alice", 1.0, 2.0, 1),
		entryWith("Cara", 0.25, 6.0, 8),
		entryWith("Bob", 0.5, 9.0, 4),
		entryWith("Erin", 0.5, 9.0, 6),
	}

	SortEntries(entries, MetricWinRate)

	for i := 0; i < len(entries)-1; i++ {
		a, b := entries[i], entries[i+1]
		require.GreaterOrEqual(t, a.WinRate, b.WinRate)
		if a.WinRate == b.WinRate {
			require.GreaterOrEqual(t, a.MatchesPlayed, b.MatchesPlayed)
			if a.MatchesPlayed == b.MatchesPlayed {
				require.GreaterOrEqual(t, a.AverageScore, b.AverageScore)
			}
		}
	}
}

func TestSortEntries_StableOnGenuineTies(t *testing.T) {
	first := entryWith("Same", 0.5, 5.0, 3)
	second := entryWith("Same", 0.5, 5.0, 3)
	entries := []*ScoreboardEntry{first, second}

	SortEntries(entries, MetricWinRate)

	assert.Same(t, first, entries[0])
	assert.Same(t, second, entries[1])
}
