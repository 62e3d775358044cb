package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/access"
	"github.com/lalith-99/teamchat/internal/apperr"
	"github.com/lalith-99/teamchat/internal/joincode"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultChannelName = "general"
	minNameLength      = 3
	maxNameLength      = 80
)

// WorkspaceService owns the workspace lifecycle: create, rename, join-code
// rotation, join, and delete.
type WorkspaceService struct {
	store   repository.Store
	cascade *CascadeEngine
	logger  *zap.Logger

	// generateCode is joincode.Generate; tests swap it for a fixed code.
	generateCode func() (string, error)
}

func NewWorkspaceService(store repository.Store, cascade *CascadeEngine, logger *zap.Logger) *WorkspaceService {
	return &WorkspaceService{
		store:        store,
		cascade:      cascade,
		logger:       logger,
		generateCode: joincode.Generate,
	}
}

func validateName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < minNameLength || n > maxNameLength {
		return "", apperr.Newf(apperr.KindInvalid, "%s name must be between %d and %d characters", kind, minNameLength, maxNameLength)
	}
	return name, nil
}

// Create inserts the workspace, the caller's admin membership, and the
// default "general" channel as one transaction.
func (s *WorkspaceService) Create(ctx context.Context, name string, callerID uuid.UUID) (*models.Workspace, error) {
	if callerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	name, err := validateName("workspace", name)
	if err != nil {
		return nil, err
	}
	code, err := s.generateCode()
	if err != nil {
		return nil, err
	}

	var ws *models.Workspace
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		created, err := tx.Workspaces().Create(ctx, name, callerID, code)
		if err != nil {
			return err
		}
		if _, err := tx.Members().Create(ctx, callerID, created.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("create admin member: %w", err)
		}
		if _, err := tx.Channels().Create(ctx, created.ID, defaultChannelName); err != nil {
			return fmt.Errorf("create default channel: %w", err)
		}
		ws = created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	s.logger.Info("workspace created",
		zap.String("workspace_id", ws.ID.String()),
		zap.String("user_id", callerID.String()),
	)
	return ws, nil
}

// List returns every workspace the caller is a member of.
func (s *WorkspaceService) List(ctx context.Context, callerID uuid.UUID) ([]models.Workspace, error) {
	if callerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	members, err := s.store.Members().ListByUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.WorkspaceID)
	}
	return s.store.Workspaces().ListByIDs(ctx, ids)
}

// Get returns a workspace to one of its members.
func (s *WorkspaceService) Get(ctx context.Context, id, callerID uuid.UUID) (*models.Workspace, error) {
	if _, err := access.Authorize(ctx, s.store.Members(), callerID, id); err != nil {
		return nil, err
	}
	ws, err := s.store.Workspaces().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, apperr.NotFound("workspace")
	}
	return ws, nil
}

// Info is the join-page view: any signed-in user may see the name and
// whether they already belong.
func (s *WorkspaceService) Info(ctx context.Context, id, callerID uuid.UUID) (*models.WorkspaceInfo, error) {
	if callerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	ws, err := s.store.Workspaces().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, apperr.NotFound("workspace")
	}
	m, err := s.store.Members().GetByWorkspaceAndUser(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	return &models.WorkspaceInfo{Name: ws.Name, IsMember: m != nil}, nil
}

func (s *WorkspaceService) requireAdmin(ctx context.Context, members repository.MemberRepository, id, callerID uuid.UUID) (*models.Member, error) {
	me, err := access.Authorize(ctx, members, callerID, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireRole(me, models.RoleAdmin); err != nil {
		return nil, err
	}
	return me, nil
}

func (s *WorkspaceService) Rename(ctx context.Context, id uuid.UUID, name string, callerID uuid.UUID) (*models.Workspace, error) {
	if _, err := s.requireAdmin(ctx, s.store.Members(), id, callerID); err != nil {
		return nil, err
	}
	name, err := validateName("workspace", name)
	if err != nil {
		return nil, err
	}
	if err := s.store.Workspaces().UpdateName(ctx, id, name); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, callerID)
}

// RegenerateJoinCode replaces the join code. The old code stops working as
// soon as the update commits.
func (s *WorkspaceService) RegenerateJoinCode(ctx context.Context, id, callerID uuid.UUID) (*models.Workspace, error) {
	if _, err := s.requireAdmin(ctx, s.store.Members(), id, callerID); err != nil {
		return nil, err
	}
	ws, err := s.store.Workspaces().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, apperr.NotFound("workspace")
	}

	code := ws.JoinCode
	for code == ws.JoinCode {
		if code, err = s.generateCode(); err != nil {
			return nil, err
		}
	}
	if err := s.store.Workspaces().UpdateJoinCode(ctx, id, code); err != nil {
		return nil, err
	}
	ws.JoinCode = code
	return ws, nil
}

// Join adds the caller as a member when code matches the workspace's
// current join code, compared case-insensitively.
func (s *WorkspaceService) Join(ctx context.Context, id uuid.UUID, code string, callerID uuid.UUID) (*models.Member, error) {
	if callerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	ws, err := s.store.Workspaces().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, apperr.NotFound("workspace")
	}
	if !joincode.Match(ws.JoinCode, code) {
		return nil, apperr.ErrInvalidJoinCode
	}

	existing, err := s.store.Members().GetByWorkspaceAndUser(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.ErrAlreadyMember
	}

	m, err := s.store.Members().Create(ctx, callerID, id, models.RoleMember)
	if errors.Is(err, repository.ErrConflict) {
		// Lost a race with a concurrent join by the same user.
		return nil, apperr.ErrAlreadyMember
	}
	if err != nil {
		return nil, fmt.Errorf("join workspace: %w", err)
	}

	s.logger.Info("member joined workspace",
		zap.String("workspace_id", id.String()),
		zap.String("member_id", m.ID.String()),
	)
	return m, nil
}

// Delete removes the workspace and everything scoped to it. The admin check
// and the whole sweep share one transaction.
func (s *WorkspaceService) Delete(ctx context.Context, id, callerID uuid.UUID) (CascadeStats, error) {
	var stats CascadeStats
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := s.requireAdmin(ctx, tx.Members(), id, callerID); err != nil {
			return err
		}
		var err error
		stats, err = s.cascade.Workspace(ctx, tx, id)
		return err
	})
	if err != nil {
		return CascadeStats{}, err
	}
	return stats, nil
}
