// Package query contains read operations (CQRS - Queries).
package query

import "github.com/tally-hub/tally-score-hub/config"

// featureOn проверяет флаг для запрашивающего игрока. Обработчик без
// флагов (nil) отдаёт все поверхности: гейтинг - забота той сборки,
// которая его сконфигурировала.
func featureOn(ff *config.FeatureFlags, name, requesterID string) bool {
	if ff == nil {
		return true
	}
	return ff.IsEnabled(name, &config.FeatureContext{PlayerID: requesterID})
}
