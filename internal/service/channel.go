package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/access"
	"github.com/lalith-99/teamchat/internal/apperr"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository"
	"go.uber.org/zap"
)

type ChannelService struct {
	store   repository.Store
	cascade *CascadeEngine
	logger  *zap.Logger
}

func NewChannelService(store repository.Store, cascade *CascadeEngine, logger *zap.Logger) *ChannelService {
	return &ChannelService{store: store, cascade: cascade, logger: logger}
}

// NormalizeChannelName lower-cases a channel name and joins words with "-",
// so "Q3 Planning" becomes "q3-planning".
func NormalizeChannelName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

func (s *ChannelService) Create(ctx context.Context, workspaceID uuid.UUID, name string, callerID uuid.UUID) (*models.Channel, error) {
	me, err := access.Authorize(ctx, s.store.Members(), callerID, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(me, access.ActionManage); err != nil {
		return nil, err
	}
	name, err = validateName("channel", NormalizeChannelName(name))
	if err != nil {
		return nil, err
	}
	return s.store.Channels().Create(ctx, workspaceID, name)
}

func (s *ChannelService) List(ctx context.Context, workspaceID, callerID uuid.UUID) ([]models.Channel, error) {
	me, err := access.Authorize(ctx, s.store.Members(), callerID, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(me, access.ActionRead); err != nil {
		return nil, err
	}
	return s.store.Channels().ListByWorkspace(ctx, workspaceID, 0)
}

// Get looks the channel up first so the membership check can use its
// workspace. A channel the caller cannot see is reported as Unauthorized,
// a channel that does not exist as NotFound.
func (s *ChannelService) Get(ctx context.Context, id, callerID uuid.UUID) (*models.Channel, error) {
	ch, _, err := s.load(ctx, s.store, id, callerID)
	return ch, err
}

func (s *ChannelService) load(ctx context.Context, store repository.Store, id, callerID uuid.UUID) (*models.Channel, *models.Member, error) {
	if callerID == uuid.Nil {
		return nil, nil, apperr.ErrUnauthenticated
	}
	ch, err := store.Channels().GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if ch == nil {
		return nil, nil, apperr.NotFound("channel")
	}
	me, err := access.Authorize(ctx, store.Members(), callerID, ch.WorkspaceID)
	if err != nil {
		return nil, nil, err
	}
	return ch, me, nil
}

func (s *ChannelService) Rename(ctx context.Context, id uuid.UUID, name string, callerID uuid.UUID) (*models.Channel, error) {
	ch, me, err := s.load(ctx, s.store, id, callerID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(me, access.ActionManage); err != nil {
		return nil, err
	}
	name, err = validateName("channel", NormalizeChannelName(name))
	if err != nil {
		return nil, err
	}
	if err := s.store.Channels().UpdateName(ctx, id, name); err != nil {
		return nil, err
	}
	ch.Name = name
	return ch, nil
}

// Remove deletes the channel with all of its messages, replies and
// reactions.
func (s *ChannelService) Remove(ctx context.Context, id, callerID uuid.UUID) (CascadeStats, error) {
	var stats CascadeStats
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		_, me, err := s.load(ctx, tx, id, callerID)
		if err != nil {
			return err
		}
		if err := access.Require(me, access.ActionManage); err != nil {
			return err
		}
		stats, err = s.cascade.Channel(ctx, tx, id)
		return err
	})
	if err != nil {
		return CascadeStats{}, err
	}
	s.logger.Info("channel removed",
		zap.String("channel_id", id.String()),
		zap.Int("messages", stats.Messages),
	)
	return stats, nil
}
