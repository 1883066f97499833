// Package scoreboard содержит доменную модель табло и статистики Tally Hub.
package scoreboard

import (
	"context"

	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DATA SOURCE INTERFACES
// ══════════════════════════════════════════════════════════════════════════════
// Единственный I/O всего движка живёт за этими контрактами. Реализации -
// в infrastructure слое (PostgreSQL, Redis). Движок трактует каждый вызов
// как один синхронный фетч на запрос: ни стриминга, ни инкрементального
// чтения не требуется.

// MatchDataSource отдаёт сырые строки матчей для вычислений табло.
type MatchDataSource interface {
	// FetchAllMatches возвращает все исторические строки игры (либо окно
	// последних N матчей на игрока, если источник настроен с лимитом).
	// Порядок строк не гарантируется: движок сам находит свежий матч
	// по PlayedAt.
	FetchAllMatches(ctx context.Context, gameID shared.GameID) ([]MatchRow, error)

	// FetchPlayerHistory возвращает историю матчей одного игрока,
	// от свежих к старым, не более limit записей (0 = без лимита).
	FetchPlayerHistory(ctx context.Context, gameID shared.GameID, playerID shared.PlayerID, limit int) ([]PlayerMatch, error)
}

// MembershipSource проверяет членство игроков в группе. Вызывается
// слоем запросов ДО запуска движка: движок предполагает, что ему дают
// только строки, которые вызывающий имел право видеть.
type MembershipSource interface {
	// AreMembers возвращает true, если все перечисленные игроки
	// состоят в группе.
	AreMembers(ctx context.Context, groupID shared.GroupID, playerIDs []shared.PlayerID) (bool, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT CACHE INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotCache - необязательный мемоизирующий коллаборатор. Ключ кеша -
// пара (игра, последний матч): любой новый матч меняет ключ, поэтому
// устаревший снапшот просто не находится и табло пересчитывается заново
// с идентичным результатом. Инвалидация - забота того, кто записывает матчи.
type SnapshotCache interface {
	// GetSnapshot возвращает закешированное табло для пары
	// (игра, последний матч). (nil, nil) при промахе.
	GetSnapshot(ctx context.Context, gameID shared.GameID, lastMatchID shared.MatchID) (*Scoreboard, error)

	// PutSnapshot сохраняет собранное табло под ключом
	// (игра, последний матч).
	PutSnapshot(ctx context.Context, board *Scoreboard) error

	// InvalidateGame удаляет все снапшоты игры. Вызывается при записи
	// нового матча.
	InvalidateGame(ctx context.Context, gameID shared.GameID) error
}
