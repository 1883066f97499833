// Package shared contains common domain types, errors, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// PlayerID uniquely identifies a player (group member) across the system.
type PlayerID uuid.UUID

// NilPlayerID is the zero-valued player identity. Used by highlight defaults.
var NilPlayerID = PlayerID(uuid.Nil)

// IsNil reports whether the player ID is the zero UUID.
func (p PlayerID) IsNil() bool {
	return uuid.UUID(p) == uuid.Nil
}

// UUID returns the underlying UUID.
func (p PlayerID) UUID() uuid.UUID {
	return uuid.UUID(p)
}

// String returns the canonical string representation.
func (p PlayerID) String() string {
	return uuid.UUID(p).String()
}

// ParsePlayerID parses a player ID from its string form.
func ParsePlayerID(s string) (PlayerID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return NilPlayerID, WrapError("shared", "ParsePlayerID", ErrInvalidID, "invalid player ID format", err)
	}
	return PlayerID(id), nil
}

// MatchID uniquely identifies one played match. Every score row of the same
// match carries the same MatchID.
type MatchID uuid.UUID

// NilMatchID is the zero-valued match identity.
var NilMatchID = MatchID(uuid.Nil)

// IsNil reports whether the match ID is the zero UUID.
func (m MatchID) IsNil() bool {
	return uuid.UUID(m) == uuid.Nil
}

// UUID returns the underlying UUID.
func (m MatchID) UUID() uuid.UUID {
	return uuid.UUID(m)
}

// String returns the canonical string representation.
func (m MatchID) String() string {
	return uuid.UUID(m).String()
}

// ParseMatchID parses a match ID from its string form.
func ParseMatchID(s string) (MatchID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return NilMatchID, WrapError("shared", "ParseMatchID", ErrInvalidID, "invalid match ID format", err)
	}
	return MatchID(id), nil
}

// Less compares two match IDs bytewise. Used only as a deterministic
// tie-break when two matches share a timestamp.
func (m MatchID) Less(other MatchID) bool {
	a, b := uuid.UUID(m), uuid.UUID(other)
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// GameID uniquely identifies a game defined within a group.
type GameID uuid.UUID

// UUID returns the underlying UUID.
func (g GameID) UUID() uuid.UUID {
	return uuid.UUID(g)
}

// String returns the canonical string representation.
func (g GameID) String() string {
	return uuid.UUID(g).String()
}

// ParseGameID parses a game ID from its string form.
func ParseGameID(s string) (GameID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return GameID(uuid.Nil), WrapError("shared", "ParseGameID", ErrInvalidID, "invalid game ID format", err)
	}
	return GameID(id), nil
}

// GroupID uniquely identifies a group of players.
type GroupID uuid.UUID

// UUID returns the underlying UUID.
func (g GroupID) UUID() uuid.UUID {
	return uuid.UUID(g)
}

// String returns the canonical string representation.
func (g GroupID) String() string {
	return uuid.UUID(g).String()
}

// ParseGroupID parses a group ID from its string form.
func ParseGroupID(s string) (GroupID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return GroupID(uuid.Nil), WrapError("shared", "ParseGroupID", ErrInvalidID, "invalid group ID format", err)
	}
	return GroupID(id), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Display Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Avatar is the identifier of a player's chosen avatar image.
// The set of valid avatars is owned by the client; the backend treats it
// as an opaque short string.
type Avatar string

// IsValid checks the avatar identifier length.
func (a Avatar) IsValid() bool {
	return len(a) <= 50
}

// String returns the string representation.
func (a Avatar) String() string {
	return string(a)
}

// AvatarColour is the display colour associated with a player's avatar.
type AvatarColour string

// IsValid checks the colour identifier length.
func (c AvatarColour) IsValid() bool {
	return len(c) <= 30
}

// String returns the string representation.
func (c AvatarColour) String() string {
	return string(c)
}

// PlayerName is a player's display name.
type PlayerName string

const (
	// MinPlayerNameLen is the minimum display name length.
	MinPlayerNameLen = 1
	// MaxPlayerNameLen is the maximum display name length.
	MaxPlayerNameLen = 50
)

// IsValid checks the display name length.
func (n PlayerName) IsValid() bool {
	return len(n) >= MinPlayerNameLen && len(n) <= MaxPlayerNameLen
}

// String returns the string representation.
func (n PlayerName) String() string {
	return string(n)
}

// ═══════════════════════════════════════════════════════════════════════════
// Score Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Score is the integer score a player achieved in one match.
// Scores may be negative for games that count penalties.
type Score int

// Int returns the underlying int value.
func (s Score) Int() int {
	return int(s)
}

// Float64 returns the score as a float64 for statistics.
func (s Score) Float64() float64 {
	return float64(s)
}

// String returns the string representation.
func (s Score) String() string {
	return fmt.Sprintf("%d", int(s))
}
