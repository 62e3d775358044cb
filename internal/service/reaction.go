package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/access"
	"github.com/lalith-99/teamchat/internal/apperr"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository"
)

const maxReactionLength = 32

type ReactionService struct {
	store repository.Store
}

func NewReactionService(store repository.Store) *ReactionService {
	return &ReactionService{store: store}
}

// Toggle adds the caller's reaction to a message, or removes it if it is
// already there. It returns the new reaction id, or nil when the reaction
// was removed.
func (s *ReactionService) Toggle(ctx context.Context, messageID int64, value string, callerID uuid.UUID) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" || utf8.RuneCountInString(value) > maxReactionLength {
		return nil, apperr.Invalid("reaction value must be 1 to 32 characters")
	}
	if callerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}

	id, err := s.toggle(ctx, messageID, value, callerID)
	if errors.Is(err, repository.ErrConflict) {
		// A concurrent toggle inserted the same reaction between our find
		// and insert. Run again against the committed state.
		id, err = s.toggle(ctx, messageID, value, callerID)
	}
	return id, err
}

func (s *ReactionService) toggle(ctx context.Context, messageID int64, value string, callerID uuid.UUID) (*uuid.UUID, error) {
	var result *uuid.UUID
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		msg, err := tx.Messages().GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if msg == nil {
			return apperr.NotFound("message")
		}
		me, err := access.Authorize(ctx, tx.Members(), callerID, msg.WorkspaceID)
		if err != nil {
			return err
		}
		if err := access.Require(me, access.ActionReact); err != nil {
			return err
		}
		if err := requireParticipant(ctx, tx, me, msg); err != nil {
			return err
		}

		existing, err := tx.Reactions().Find(ctx, messageID, me.ID, value)
		if err != nil {
			return err
		}
		if existing != nil {
			return tx.Reactions().Delete(ctx, existing.ID)
		}
		created, err := tx.Reactions().Create(ctx, msg.WorkspaceID, messageID, me.ID, value)
		if err != nil {
			return err
		}
		result = &created.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListForMessage returns a message's reactions grouped by value.
func (s *ReactionService) ListForMessage(ctx context.Context, messageID int64, callerID uuid.UUID) ([]models.ReactionGroup, error) {
	msg, err := s.store.Messages().GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, apperr.NotFound("message")
	}
	me, err := access.Authorize(ctx, s.store.Members(), callerID, msg.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(me, access.ActionRead); err != nil {
		return nil, err
	}
	if err := requireParticipant(ctx, s.store, me, msg); err != nil {
		return nil, err
	}
	reactions, err := s.store.Reactions().ListByMessages(ctx, []int64{messageID})
	if err != nil {
		return nil, err
	}
	return models.GroupReactions(reactions), nil
}
