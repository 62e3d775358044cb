package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/access"
	"github.com/lalith-99/teamchat/internal/apperr"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository"
)

type ConversationService struct {
	store repository.Store
}

func NewConversationService(store repository.Store) *ConversationService {
	return &ConversationService{store: store}
}

// CreateOrGet returns the 1:1 conversation between the caller and another
// member of the same workspace, creating it on first use. A member may open
// a conversation with themselves.
func (s *ConversationService) CreateOrGet(ctx context.Context, workspaceID, otherMemberID, callerID uuid.UUID) (*models.Conversation, error) {
	me, err := access.Authorize(ctx, s.store.Members(), callerID, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(me, access.ActionDirectMessage); err != nil {
		return nil, err
	}

	other, err := s.store.Members().GetByID(ctx, otherMemberID)
	if err != nil {
		return nil, err
	}
	if other == nil || other.WorkspaceID != workspaceID {
		return nil, apperr.NotFound("member")
	}

	return s.store.Conversations().GetOrCreate(ctx, workspaceID, me.ID, other.ID)
}

// Get returns a conversation to one of its two participants.
func (s *ConversationService) Get(ctx context.Context, id, callerID uuid.UUID) (*models.Conversation, error) {
	conv, _, err := loadConversation(ctx, s.store, id, callerID)
	return conv, err
}

// loadConversation resolves a conversation and the caller's member row,
// failing unless the caller is a participant.
func loadConversation(ctx context.Context, store repository.Store, id, callerID uuid.UUID) (*models.Conversation, *models.Member, error) {
	if callerID == uuid.Nil {
		return nil, nil, apperr.ErrUnauthenticated
	}
	conv, err := store.Conversations().GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if conv == nil {
		return nil, nil, apperr.NotFound("conversation")
	}
	me, err := access.Authorize(ctx, store.Members(), callerID, conv.WorkspaceID)
	if err != nil {
		return nil, nil, err
	}
	if !conv.HasParticipant(me.ID) {
		return nil, nil, apperr.ErrUnauthorized
	}
	return conv, me, nil
}

// requireParticipant fails unless msg is a channel message or me takes part
// in its conversation.
func requireParticipant(ctx context.Context, store repository.Store, me *models.Member, msg *models.Message) error {
	if msg.ConversationID == nil {
		return nil
	}
	conv, err := store.Conversations().GetByID(ctx, *msg.ConversationID)
	if err != nil {
		return err
	}
	if conv == nil || !conv.HasParticipant(me.ID) {
		return apperr.ErrUnauthorized
	}
	return nil
}
