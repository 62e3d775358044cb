// Package access holds the authorization decisions every other operation
// consults. The only I/O is the membership lookup in Authorize; everything
// else is a pure function of roles and ids.
package access

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/apperr"
	"github.com/lalith-99/teamchat/internal/models"
)

type Action string

const (
	ActionRead          Action = "read"
	ActionPost          Action = "post"
	ActionReact         Action = "react"
	ActionDirectMessage Action = "direct_message"
	ActionManage        Action = "manage"
)

// MemberLookup is the slice of repository.MemberRepository Authorize needs.
type MemberLookup interface {
	GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*models.Member, error)
}

// Authorize resolves the caller's Member row in a workspace.
//
// uuid.Nil means no session user and yields Unauthenticated. A user with no
// Member row in the workspace yields Unauthorized.
func Authorize(ctx context.Context, members MemberLookup, userID, workspaceID uuid.UUID) (*models.Member, error) {
	if userID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	m, err := members.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}
	if m == nil {
		return nil, apperr.ErrUnauthorized
	}
	return m, nil
}

// RequireRole fails with Unauthorized unless member holds exactly role.
func RequireRole(member *models.Member, role models.Role) error {
	if member == nil || member.Role != role {
		return apperr.ErrUnauthorized
	}
	return nil
}

// Can reports whether role may perform action.
func Can(role models.Role, action Action) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleMember:
		return action != ActionManage
	case models.RoleGuest:
		return action == ActionRead || action == ActionPost || action == ActionReact
	default:
		return false
	}
}

// Require is Can as an error.
func Require(member *models.Member, action Action) error {
	if member == nil || !Can(member.Role, action) {
		return apperr.ErrUnauthorized
	}
	return nil
}

// CheckRemoval decides whether actor may remove target. Both must already
// be known to belong to the same workspace; a caller from another
// workspace is rejected earlier by Authorize.
//
// The checks run in a fixed order:
//  1. an admin target is never removable,
//  2. an admin removing itself is rejected,
//  3. otherwise the actor must be an admin or be removing itself.
func CheckRemoval(actor, target *models.Member) error {
	if actor == nil || target == nil || actor.WorkspaceID != target.WorkspaceID {
		return apperr.ErrUnauthorized
	}
	if target.Role == models.RoleAdmin {
		return apperr.ErrAdminCannotBeRemoved
	}
	self := actor.ID == target.ID
	if self && actor.Role == models.RoleAdmin {
		return apperr.ErrSelfRemovalAsAdmin
	}
	if self || actor.Role == models.RoleAdmin {
		return nil
	}
	return apperr.ErrUnauthorized
}

// IsAuthor reports whether member wrote msg.
func IsAuthor(member *models.Member, msg *models.Message) bool {
	return member != nil && msg != nil && member.ID == msg.MemberID
}
