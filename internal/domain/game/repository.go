// Package game содержит доменную модель игры Tally Hub.
package game

import (
	"context"

	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// GameRepository определяет контракт чтения игр.
// Реализация находится в infrastructure слое (PostgreSQL).
// CRUD игр принадлежит внешнему модулю управления группами;
// движку статистики нужны только операции чтения.
type GameRepository interface {
	// GetByID возвращает игру по идентификатору.
	// Возвращает shared.ErrGameNotFound, если игры нет.
	GetByID(ctx context.Context, id shared.GameID) (*Game, error)

	// ListByGroup возвращает все игры группы.
	ListByGroup(ctx context.Context, groupID shared.GroupID) ([]*Game, error)

	// ListAll возвращает все игры. Используется фоновым прогревом кеша.
	ListAll(ctx context.Context) ([]*Game, error)
}
