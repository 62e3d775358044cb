package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/access"
	"github.com/lalith-99/teamchat/internal/apperr"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

type MemberService struct {
	store   repository.Store
	cascade *CascadeEngine
	logger  *zap.Logger
}

func NewMemberService(store repository.Store, cascade *CascadeEngine, logger *zap.Logger) *MemberService {
	return &MemberService{store: store, cascade: cascade, logger: logger}
}

// Current returns the caller's own membership in a workspace.
func (s *MemberService) Current(ctx context.Context, workspaceID, callerID uuid.UUID) (*models.Member, error) {
	return access.Authorize(ctx, s.store.Members(), callerID, workspaceID)
}

// Get returns a member to anyone in the same workspace.
func (s *MemberService) Get(ctx context.Context, memberID, callerID uuid.UUID) (*models.Member, error) {
	if callerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	m, err := s.store.Members().GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFound("member")
	}
	if _, err := access.Authorize(ctx, s.store.Members(), callerID, m.WorkspaceID); err != nil {
		return nil, err
	}
	return m, nil
}

// MemberPage is one page of a workspace's members. NextCursor is uuid.Nil
// on the last page.
type MemberPage struct {
	Items      []models.Member `json:"items"`
	NextCursor uuid.UUID       `json:"next_cursor"`
}

func (s *MemberService) List(ctx context.Context, workspaceID, callerID, after uuid.UUID, limit int) (*MemberPage, error) {
	if _, err := access.Authorize(ctx, s.store.Members(), callerID, workspaceID); err != nil {
		return nil, err
	}
	limit = clampLimit(limit)
	members, err := s.store.Members().ListByWorkspace(ctx, workspaceID, after, limit)
	if err != nil {
		return nil, err
	}
	page := &MemberPage{Items: members}
	if len(members) == limit {
		page.NextCursor = members[len(members)-1].ID
	}
	return page, nil
}

// UpdateRole changes a member's role. Only an admin of the member's
// workspace may do it, and the last admin cannot be demoted.
func (s *MemberService) UpdateRole(ctx context.Context, memberID uuid.UUID, role models.Role, callerID uuid.UUID) (*models.Member, error) {
	if !role.Valid() {
		return nil, apperr.Newf(apperr.KindInvalid, "unknown role %q", role)
	}
	if callerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}

	var updated *models.Member
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		target, err := tx.Members().GetByID(ctx, memberID)
		if err != nil {
			return err
		}
		if target == nil {
			return apperr.NotFound("member")
		}
		me, err := access.Authorize(ctx, tx.Members(), callerID, target.WorkspaceID)
		if err != nil {
			return err
		}
		if err := access.RequireRole(me, models.RoleAdmin); err != nil {
			return err
		}
		if target.Role == models.RoleAdmin && role != models.RoleAdmin {
			others, err := hasOtherAdmin(ctx, tx, target)
			if err != nil {
				return err
			}
			if !others {
				return apperr.ErrLastAdmin
			}
		}
		if err := tx.Members().UpdateRole(ctx, memberID, role); err != nil {
			return err
		}
		target.Role = role
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func hasOtherAdmin(ctx context.Context, tx repository.Store, admin *models.Member) (bool, error) {
	after := uuid.Nil
	for {
		page, err := tx.Members().ListByWorkspace(ctx, admin.WorkspaceID, after, batchSize)
		if err != nil {
			return false, err
		}
		for _, m := range page {
			if m.Role == models.RoleAdmin && m.ID != admin.ID {
				return true, nil
			}
		}
		if len(page) < batchSize {
			return false, nil
		}
		after = page[len(page)-1].ID
	}
}

// Remove deletes a member and, through the cascade engine, their messages,
// reactions and conversations.
func (s *MemberService) Remove(ctx context.Context, memberID, callerID uuid.UUID) (CascadeStats, error) {
	if callerID == uuid.Nil {
		return CascadeStats{}, apperr.ErrUnauthenticated
	}

	var stats CascadeStats
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		target, err := tx.Members().GetByID(ctx, memberID)
		if err != nil {
			return err
		}
		if target == nil {
			return apperr.NotFound("member")
		}
		me, err := access.Authorize(ctx, tx.Members(), callerID, target.WorkspaceID)
		if err != nil {
			return err
		}
		if err := access.CheckRemoval(me, target); err != nil {
			return err
		}
		stats, err = s.cascade.Member(ctx, tx, memberID)
		return err
	})
	if err != nil {
		return CascadeStats{}, err
	}

	s.logger.Info("member removed",
		zap.String("member_id", memberID.String()),
		zap.String("removed_by", callerID.String()),
		zap.Int("messages", stats.Messages),
	)
	return stats, nil
}
