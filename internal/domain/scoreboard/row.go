// Package scoreboard содержит доменную модель табло и статистики Tally Hub.
// Табло - это не просто таблица очков, а история соперничества группы:
// мы показываем не только текущие места, но и динамику после каждого матча.
// Вся логика пакета чисто функциональная: никакого I/O и разделяемого состояния.
package scoreboard

import (
	"fmt"
	"time"

	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Rank представляет позицию игрока в табло.
// Rank начинается с 1 (первое место). Ноль означает "не ранжирован".
type Rank int

// IsValid проверяет, что ранг положительный.
func (r Rank) IsValid() bool {
	return r > 0
}

// IsPodium возвращает true, если игрок на пьедестале (топ-3).
func (r Rank) IsPodium() bool {
	return r >= 1 && r <= PodiumSize
}

// String возвращает строковое представление ранга.
func (r Rank) String() string {
	return fmt.Sprintf("#%d", r)
}

// RankChange представляет изменение позиции после последнего матча.
// Положительное значение = подъём, отрицательное = падение.
type RankChange int

// Direction возвращает направление изменения.
func (rc RankChange) Direction() RankDirection {
	switch {
	case rc > 0:
		return RankDirectionUp
	case rc < 0:
		return RankDirectionDown
	default:
		return RankDirectionStable
	}
}

// Abs возвращает абсолютное значение изменения.
func (rc RankChange) Abs() int {
	if rc < 0 {
		return int(-rc)
	}
	return int(rc)
}

// String возвращает строковое представление изменения.
func (rc RankChange) String() string {
	switch {
	case rc > 0:
		return fmt.Sprintf("+%d", rc)
	case rc < 0:
		return fmt.Sprintf("%d", rc)
	default:
		return "±0"
	}
}

// RankDirection определяет направление изменения ранга.
type RankDirection string

const (
	// RankDirectionUp - игрок поднялся в табло.
	RankDirectionUp RankDirection = "up"
	// RankDirectionDown - игрок опустился в табло.
	RankDirectionDown RankDirection = "down"
	// RankDirectionStable - позиция не изменилась.
	RankDirectionStable RankDirection = "stable"
)

// RankingMetric определяет метрику, по которой упорядочивается табло.
// Закрытое перечисление: компаратор диспетчеризуется явным switch,
// чтобы весь порядок сравнения был виден в одном месте.
type RankingMetric string

const (
	// MetricWinRate - сортировка по доле побед.
	MetricWinRate RankingMetric = "win_rate"
	// MetricAverageScore - сортировка по среднему счёту.
	MetricAverageScore RankingMetric = "average_score"
)

// IsValid проверяет, что метрика известна.
func (m RankingMetric) IsValid() bool {
	return m == MetricWinRate || m == MetricAverageScore
}

// String возвращает строковое представление метрики.
func (m RankingMetric) String() string {
	return string(m)
}

// ParseRankingMetric разбирает метрику из строковой формы.
func ParseRankingMetric(s string) (RankingMetric, error) {
	m := RankingMetric(s)
	if !m.IsValid() {
		return "", shared.ErrInvalidMetric
	}
	return m, nil
}

// OrderDirection определяет направление сортировки списка табло.
type OrderDirection string

const (
	// OrderAscending - по возрастанию (худшие сверху).
	OrderAscending OrderDirection = "ascending"
	// OrderDescending - по убыванию (лучшие сверху). Направление по умолчанию.
	OrderDescending OrderDirection = "descending"
)

// IsValid проверяет, что направление известно.
func (d OrderDirection) IsValid() bool {
	return d == OrderAscending || d == OrderDescending
}

// Inverse возвращает противоположное направление.
func (d OrderDirection) Inverse() OrderDirection {
	if d == OrderAscending {
		return OrderDescending
	}
	return OrderAscending
}

// String возвращает строковое представление направления.
func (d OrderDirection) String() string {
	return string(d)
}

// ══════════════════════════════════════════════════════════════════════════════
// RAW MATCH ROW
// ══════════════════════════════════════════════════════════════════════════════

// MatchRow - результат одного игрока в одном матче, как его отдаёт источник
// данных. Строки иммутабельны: движок их только читает. Один MatchID
// встречается по строке на каждого участника матча, один PlayerID -
// по строке на каждый сыгранный матч.
type MatchRow struct {
	// PlayerID - идентификатор игрока.
	PlayerID shared.PlayerID

	// PlayerName - отображаемое имя игрока (константно для всех строк игрока).
	PlayerName shared.PlayerName

	// Avatar - аватар игрока.
	Avatar shared.Avatar

	// AvatarColour - цвет аватара.
	AvatarColour shared.AvatarColour

	// MatchID - идентификатор матча.
	MatchID shared.MatchID

	// Score - счёт игрока в этом матче.
	Score shared.Score

	// PlayedAt - время, когда матч был сыгран.
	PlayedAt time.Time

	// RankInMatch - место игрока внутри матча (1 = лучший счёт).
	// Инвариант: 1 + количество строк этого же матча со строго большим счётом.
	RankInMatch int
}

// IsWin возвращает true, если игрок выиграл матч.
func (r MatchRow) IsWin() bool {
	return r.RankInMatch == 1
}

// PlayerMatch - одна запись истории матчей конкретного игрока.
// Урезанная проекция MatchRow без полей игрока.
type PlayerMatch struct {
	// MatchID - идентификатор матча.
	MatchID shared.MatchID

	// Score - счёт игрока.
	Score shared.Score

	// PlayedAt - время матча.
	PlayedAt time.Time

	// RankInMatch - место внутри матча (1 = лучший).
	RankInMatch int
}

// ══════════════════════════════════════════════════════════════════════════════
// LATEST MATCH
// ══════════════════════════════════════════════════════════════════════════════

// LatestMatchID возвращает идентификатор самого свежего матча в наборе строк.
// Движок не полагается на порядок строк от источника данных: берётся матч
// с максимальным PlayedAt, при равных временах - с большим MatchID (побайтово),
// так что выбор детерминирован при любом порядке входа.
// Для пустого набора возвращает (NilMatchID, false).
func LatestMatchID(rows []MatchRow) (shared.MatchID, bool) {
	if len(rows) == 0 {
		return shared.NilMatchID, false
	}

	latest := rows[0]
	for _, row := range rows[1:] {
		if row.PlayedAt.After(latest.PlayedAt) {
			latest = row
			continue
		}
		if row.PlayedAt.Equal(latest.PlayedAt) && latest.MatchID.Less(row.MatchID) {
			latest = row
		}
	}

	return latest.MatchID, true
}
