package scoreboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// Сценарий из постановки: существует только матч M1 - предыдущий снапшот
// пуст, оба игрока считаются новыми и получают нулевые дельты.
func TestRankWithTrends_SingleMatchNewPlayers(t *testing.T) {
	rows := []MatchRow{
		mkRow(testP1, "Alice", testM1, 10, testBase, 1),
		mkRow(testP2, "Bob", testM1, 5, testBase, 2),
	}

	entries := RankWithTrends(rows, MetricWinRate)
	require.Len(t, entries, 2)

	// win_rate по убыванию: p1 (1.0) выше p2 (0.0).
	assert.Equal(t, testP1, entries[0].PlayerID)
	assert.Equal(t, Rank(1), entries[0].Rank)
	assert.Equal(t, testP2, entries[1].PlayerID)
	assert.Equal(t, Rank(2), entries[1].Rank)

	for _, e := range entries {
		assert.Equal(t, RankChange(0), e.RankChange)
		assert.Equal(t, 0.0, e.AverageScoreDiff)
		assert.Equal(t, 0.0, e.WinRateDiff)
	}
}

// Сценарий из постановки: в M2 p2 обыгрывает p1. Текущее табло против
// снапшота "только M1": p1 падает с 1-го на 2-е (дельта -1), p2 поднимается
// со 2-го на 1-е (дельта +1).
func TestRankWithTrends_SecondMatchFlipsRanks(t *testing.T) {
	rows := []MatchRow{
		mkRow(testP1, "Alice", testM1, 10, testBase, 1),
		mkRow(testP2, "Bob", testM1, 5, testBase, 2),
		mkRow(testP2, "Bob", testM2, 9, testBase.Add(time.Hour), 1),
		mkRow(testP1, "Alice", testM2, 3, testBase.Add(time.Hour), 2),
	}

	entries := RankWithTrends(rows, MetricWinRate)
	require.Len(t, entries, 2)

	// Оба 1/2 побед; тай-брейк по матчам равный; средний счёт:
	// Bob 7.0 против Alice 6.5 - Bob выше.
	p2 := findEntry(t, entries, testP2)
	assert.Equal(t, Rank(1), p2.Rank)
	assert.Equal(t, RankChange(1), p2.RankChange)
	assert.InDelta(t, 7.0-5.0, p2.AverageScoreDiff, 1e-9)
	assert.InDelta(t, 0.5-0.0, p2.WinRateDiff, 1e-9)

	p1 := findEntry(t, entries, testP1)
	assert.Equal(t, Rank(2), p1.Rank)
	assert.Equal(t, RankChange(-1), p1.RankChange)
	assert.InDelta(t, 6.5-10.0, p1.AverageScoreDiff, 1e-9)
	assert.InDelta(t, 0.5-1.0, p1.WinRateDiff, 1e-9)
}

// Игрок, чей единственный матч - самый свежий, отсутствует в предыдущем
// снапшоте и сохраняет нулевые дельты.
func TestRankWithTrends_DebutInLatestMatch(t *testing.T) {
	rows := []MatchRow{
		mkRow(testP1, "Alice", testM1, 10, testBase, 1),
		mkRow(testP2, "Bob", testM1, 5, testBase, 2),
		mkRow(testP1, "Alice", testM2, 8, testBase.Add(time.Hour), 1),
		mkRow(testP3, "Cara", testM2, 2, testBase.Add(time.Hour), 2),
	}

	entries := RankWithTrends(rows, MetricWinRate)
	require.Len(t, entries, 3)

	debut := findEntry(t, entries, testP3)
	assert.Equal(t, RankChange(0), debut.RankChange)
	assert.Equal(t, 0.0, debut.AverageScoreDiff)
	assert.Equal(t, 0.0, debut.WinRateDiff)

	// Ветераны дельты получают.
	p1 := findEntry(t, entries, testP1)
	assert.Equal(t, Rank(1), p1.Rank)
	assert.InDelta(t, 9.0-10.0, p1.AverageScoreDiff, 1e-9)
}

// Свежий матч определяется по PlayedAt, а не по порядку строк.
func TestRankWithTrends_LatestMatchByTimestamp(t *testing.T) {
	// M2 новее, но стоит в начале входа.
	rows := []MatchRow{
		mkRow(testP2, "Bob", testM2, 9, testBase.Add(time.Hour), 1),
		mkRow(testP1, "Alice", testM2, 3, testBase.Add(time.Hour), 2),
		mkRow(testP1, "Alice", testM1, 10, testBase, 1),
		mkRow(testP2, "Bob", testM1, 5, testBase, 2),
	}

	latest, ok := LatestMatchID(rows)
	require.True(t, ok)
	assert.Equal(t, testM2, latest)

	entries := RankWithTrends(rows, MetricWinRate)
	p2 := findEntry(t, entries, testP2)
	assert.Equal(t, RankChange(1), p2.RankChange)
}

func TestLatestMatchID_Empty(t *testing.T) {
	latest, ok := LatestMatchID(nil)
	assert.False(t, ok)
	assert.Equal(t, shared.NilMatchID, latest)
}

// При равных временах выбор матча детерминирован (побайтово больший ID).
func TestLatestMatchID_TimestampTie(t *testing.T) {
	rows := []MatchRow{
		mkRow(testP1, "Alice", testM1, 1, testBase, 1),
		mkRow(testP1, "Alice", testM2, 2, testBase, 1),
	}
	first, ok := LatestMatchID(rows)
	require.True(t, ok)

	reversed := []MatchRow{rows[1], rows[0]}
	second, ok := LatestMatchID(reversed)
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Equal(t, testM2, first) // testM2 побайтово больше testM1
}

func TestRankWithTrends_EmptyInput(t *testing.T) {
	entries := RankWithTrends(nil, MetricWinRate)
	assert.Empty(t, entries)
}
