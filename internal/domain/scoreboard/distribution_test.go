package scoreboard

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

func scoresOf(values ...int) []shared.Score {
	scores := make([]shared.Score, len(values))
	for i, v := range values {
		scores[i] = shared.Score(v)
	}
	return scores
}

// Метод моментов на синтетической выборке: mean=3, variance=2.5
// (с поправкой Бесселя), откуда λ = 1.2 и α = 3.6 точно.
func TestFitScores_MethodOfMoments(t *testing.T) {
	est, err := FitScores(scoresOf(1, 2, 3, 4, 5), MinSamplesForDistribution)
	require.NoError(t, err)

	assert.InDelta(t, 1.2, est.Rate, 1e-9)  // mean/variance
	assert.InDelta(t, 3.6, est.Shape, 1e-9) // mean²/variance
	assert.Equal(t, shared.Score(1), est.MinScore)
	assert.Equal(t, shared.Score(5), est.MaxScore)
	assert.InDelta(t, 3.0, est.Mean(), 1e-9)
}

func TestFitScores_NotEnoughData(t *testing.T) {
	_, err := FitScores(scoresOf(1, 2, 3, 4), MinSamplesForDistribution)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotEnoughData)
	assert.True(t, shared.IsInsufficientData(err))
}

// Даже при пониженном пороге выборка из одного элемента не должна
// приводить к делению на ноль в поправке Бесселя.
func TestFitScores_SingleSampleGuard(t *testing.T) {
	_, err := FitScores(scoresOf(7), 1)
	assert.ErrorIs(t, err, shared.ErrNotEnoughData)
}

// Нулевая дисперсия - явная ошибка, а не бесконечные параметры.
func TestFitScores_DegenerateVariance(t *testing.T) {
	_, err := FitScores(scoresOf(4, 4, 4, 4, 4), MinSamplesForDistribution)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrDegenerateScores)
	assert.ErrorIs(t, err, shared.ErrDegenerateInput)
}

func TestFitPlayerDistribution_FiltersByPlayer(t *testing.T) {
	m4 := shared.MatchID(uuid.MustParse("dddddddd-dddd-dddd-dddd-dddddddddddd"))
	m5 := shared.MatchID(uuid.MustParse("eeeeeeee-eeee-eeee-eeee-eeeeeeeeeeee"))

	rows := []MatchRow{
		mkRow(testP1, "Alice", testM1, 1, testBase, 2),
		mkRow(testP1, "Alice", testM2, 2, testBase, 2),
		mkRow(testP1, "Alice", testM3, 3, testBase, 1),
		mkRow(testP1, "Alice", m4, 4, testBase, 1),
		mkRow(testP1, "Alice", m5, 5, testBase, 1),
		mkRow(testP2, "Bob", testM1, 100, testBase, 1),
		mkRow(testP2, "Bob", testM2, 200, testBase, 1),
	}

	est, err := FitPlayerDistribution(rows, testP1, MinSamplesForDistribution)
	require.NoError(t, err)

	// Счёта Боба не должны попадать в выборку Алисы.
	assert.Equal(t, shared.Score(1), est.MinScore)
	assert.Equal(t, shared.Score(5), est.MaxScore)
	assert.InDelta(t, 1.2, est.Rate, 1e-9)

	// У Боба всего два матча - данных недостаточно.
	_, err = FitPlayerDistribution(rows, testP2, MinSamplesForDistribution)
	assert.ErrorIs(t, err, shared.ErrNotEnoughData)
}

func TestDensity_BasicProperties(t *testing.T) {
	est := DistributionEstimate{Shape: 3.6, Rate: 1.2}

	// Вне носителя плотность нулевая.
	assert.Equal(t, 0.0, est.Density(0))
	assert.Equal(t, 0.0, est.Density(-1))

	// Внутри носителя положительная и конечная.
	d := est.Density(3.0)
	assert.Greater(t, d, 0.0)
	assert.Less(t, d, 1.0)

	// Плотность у моды выше, чем далеко в хвосте.
	mode := (est.Shape - 1) / est.Rate
	assert.Greater(t, est.Density(mode), est.Density(mode*10))
}
