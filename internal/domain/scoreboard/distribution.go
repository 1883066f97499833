package scoreboard

import (
	"math"

	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISTRIBUTION ESTIMATOR
// ══════════════════════════════════════════════════════════════════════════════
// Счёт игрока моделируется гамма-распределением, параметры которого
// оцениваются методом моментов: теоретические среднее и дисперсия
// приравниваются к выборочным, и параметры выражаются в замкнутой форме:
//
//	rate  λ = mean / variance
//	shape α = mean² / variance
//
// Никакого итеративного подбора - это единственная "статистика" движка.

// MinSamplesForDistribution - минимальное число матчей, после которого
// оценка распределения считается осмысленной.
const MinSamplesForDistribution = 5

// DistributionEstimate - оценка гамма-распределения счёта одного игрока.
// Производное значение: никогда не персистится.
type DistributionEstimate struct {
	// Shape - параметр формы α.
	Shape float64

	// Rate - параметр интенсивности λ.
	Rate float64

	// MinScore - наименьший наблюдённый счёт. Для масштабирования осей
	// графика, в самой оценке не участвует.
	MinScore shared.Score

	// MaxScore - наибольший наблюдённый счёт.
	MaxScore shared.Score
}

// Mean возвращает математическое ожидание распределения (α/λ).
func (d DistributionEstimate) Mean() float64 {
	if d.Rate == 0 {
		return 0
	}
	return d.Shape / d.Rate
}

// Density возвращает плотность гамма-распределения в точке x.
// Считается в лог-пространстве, чтобы большие α не переполнялись.
func (d DistributionEstimate) Density(x float64) float64 {
	if x <= 0 || d.Shape <= 0 || d.Rate <= 0 {
		return 0
	}
	lgamma, _ := math.Lgamma(d.Shape)
	logDensity := d.Shape*math.Log(d.Rate) + (d.Shape-1)*math.Log(x) - d.Rate*x - lgamma
	return math.Exp(logDensity)
}

// FitScores оценивает гамма-распределение по выборке счётов методом моментов.
//
// Ошибки:
//   - shared.ErrNotEnoughData, если выборка меньше minSamples (или меньше
//     двух элементов - выборочная дисперсия с поправкой Бесселя требует n > 1,
//     даже если порог когда-нибудь опустят);
//   - shared.ErrDegenerateScores при нулевой дисперсии (все счёта равны):
//     параметры ушли бы в бесконечность, вместо этого ошибка явная.
func FitScores(scores []shared.Score, minSamples int) (DistributionEstimate, error) {
	n := len(scores)
	if n < minSamples || n < 2 {
		return DistributionEstimate{}, shared.ErrNotEnoughData
	}

	sum := 0
	minScore, maxScore := scores[0], scores[0]
	for _, s := range scores {
		sum += int(s)
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}
	mean := float64(sum) / float64(n)

	// Выборочная дисперсия с поправкой Бесселя (n-1).
	var sumSquares float64
	for _, s := range scores {
		diff := float64(s) - mean
		sumSquares += diff * diff
	}
	variance := sumSquares / float64(n-1)

	if variance == 0 {
		return DistributionEstimate{}, shared.ErrDegenerateScores
	}

	return DistributionEstimate{
		Shape:    mean * mean / variance,
		Rate:     mean / variance,
		MinScore: minScore,
		MaxScore: maxScore,
	}, nil
}

// FitPlayerDistribution оценивает распределение счёта одного игрока по
// строкам матчей игры. Строки других игроков игнорируются.
func FitPlayerDistribution(rows []MatchRow, playerID shared.PlayerID, minSamples int) (DistributionEstimate, error) {
	scores := make([]shared.Score, 0, len(rows))
	for _, row := range rows {
		if row.PlayerID == playerID {
			scores = append(scores, row.Score)
		}
	}
	return FitScores(scores, minSamples)
}
