// Package postgres implements the PostgreSQL persistence layer for Tally Hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tally-hub/tally-score-hub/internal/domain/scoreboard"
	"github.com/tally-hub/tally-score-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GROUP REPOSITORY (MembershipSource implementation)
// ══════════════════════════════════════════════════════════════════════════════

// GroupRepository answers membership questions for the query layer.
// Group CRUD and invites belong to the account module; the stats engine
// only ever asks "are these players in this group".
type GroupRepository struct {
	conn *Connection
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(conn *Connection) *GroupRepository {
	return &GroupRepository{conn: conn}
}

// AreMembers reports whether every listed player belongs to the group.
func (r *GroupRepository) AreMembers(ctx context.Context, groupID shared.GroupID, playerIDs []shared.PlayerID) (bool, error) {
	if len(playerIDs) == 0 {
		return true, nil
	}

	// Deduplicate before counting, the same player may appear twice
	// (requester asking about themselves).
	seen := make(map[shared.PlayerID]struct{}, len(playerIDs))
	ids := make([]uuid.UUID, 0, len(playerIDs))
	for _, id := range playerIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id.UUID())
	}

	var count int
	err := r.conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM group_members
		WHERE group_id = $1 AND player_id = ANY($2)
	`, groupID.UUID(), ids).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check group membership: %w", err)
	}

	return count == len(ids), nil
}

// GroupExists reports whether a group exists.
func (r *GroupRepository) GroupExists(ctx context.Context, groupID shared.GroupID) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM groups WHERE id = $1)
	`, groupID.UUID()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check group existence: %w", err)
	}
	return exists, nil
}

// Ensure interface is implemented
var _ scoreboard.MembershipSource = (*GroupRepository)(nil)
