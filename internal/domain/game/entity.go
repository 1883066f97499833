// Package game содержит доменную модель игры Tally Hub.
// Игра принадлежит группе и определяет правила ранжирования её табло.
// Движок табло читает игру и никогда её не изменяет.
package game

import (
	"strings"
	"time"

	"github.com/tally-hub/tally-score-hub/internal/domain/scoreboard"
	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

const (
	// MinNameLen - минимальная длина названия игры.
	MinNameLen = 3
	// MaxNameLen - максимальная длина названия игры.
	MaxNameLen = 50

	// MinPlayersPerMatch - минимальное число участников матча.
	MinPlayersPerMatch = 2
	// MaxPlayersPerMatch - максимальное число участников матча.
	MaxPlayersPerMatch = 50
)

// Game - игра, определённая внутри группы. Несёт настроенную метрику
// ранжирования, по которой считается авторитетный порядок табло.
type Game struct {
	// ID - идентификатор игры.
	ID shared.GameID

	// GroupID - группа, которой принадлежит игра.
	GroupID shared.GroupID

	// Name - название игры.
	Name string

	// Metric - метрика ранжирования табло.
	Metric scoreboard.RankingMetric

	// PlayersPerMatch - сколько игроков участвует в одном матче.
	PlayersPerMatch int

	// CreatedAt - время создания игры.
	CreatedAt time.Time
}

// Validate проверяет инварианты игры.
func (g *Game) Validate() error {
	name := strings.TrimSpace(g.Name)
	if len(name) < MinNameLen || len(name) > MaxNameLen {
		return shared.ErrInvalidGameName
	}
	if !g.Metric.IsValid() {
		return shared.ErrInvalidMetric
	}
	if g.PlayersPerMatch < MinPlayersPerMatch || g.PlayersPerMatch > MaxPlayersPerMatch {
		return shared.NewDomainError("game", "Validate", shared.ErrValueOutOfRange,
			"players per match must be between 2 and 50")
	}
	return nil
}

// Info возвращает снимок метаданных для прикрепления к табло.
func (g *Game) Info() scoreboard.GameInfo {
	return scoreboard.GameInfo{
		ID:              g.ID,
		GroupID:         g.GroupID,
		Name:            g.Name,
		Metric:          g.Metric,
		PlayersPerMatch: g.PlayersPerMatch,
		CreatedAt:       g.CreatedAt,
	}
}
