package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/access"
	"github.com/lalith-99/teamchat/internal/apperr"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type MessageService struct {
	store   repository.Store
	cascade *CascadeEngine
	logger  *zap.Logger
	now     func() time.Time
}

func NewMessageService(store repository.Store, cascade *CascadeEngine, logger *zap.Logger) *MessageService {
	return &MessageService{
		store:   store,
		cascade: cascade,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// PostInput is what a client sends to post a message. A reply may carry
// only ParentMessageID; it is placed in the parent's channel or
// conversation.
type PostInput struct {
	Body            string     `json:"body"`
	Image           *string    `json:"image,omitempty"`
	WorkspaceID     uuid.UUID  `json:"workspace_id" binding:"required"`
	ChannelID       *uuid.UUID `json:"channel_id,omitempty"`
	ConversationID  *uuid.UUID `json:"conversation_id,omitempty"`
	ParentMessageID *int64     `json:"parent_message_id,omitempty"`
}

func hasContent(body string, image *string) bool {
	return strings.TrimSpace(body) != "" || (image != nil && *image != "")
}

func (s *MessageService) Post(ctx context.Context, in PostInput, callerID uuid.UUID) (*models.Message, error) {
	me, err := access.Authorize(ctx, s.store.Members(), callerID, in.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(me, access.ActionPost); err != nil {
		return nil, err
	}
	if !hasContent(in.Body, in.Image) {
		return nil, apperr.Invalid("message needs a body or an image")
	}

	if in.ParentMessageID != nil {
		parent, err := s.store.Messages().GetByID(ctx, *in.ParentMessageID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.WorkspaceID != in.WorkspaceID {
			return nil, apperr.NotFound("parent message")
		}
		if parent.IsReply() {
			return nil, apperr.Invalid("replies cannot be threaded further")
		}
		if in.ChannelID == nil && in.ConversationID == nil {
			in.ChannelID = parent.ChannelID
			in.ConversationID = parent.ConversationID
		}
		if !sameScope(parent.ChannelID, in.ChannelID) || !sameScope(parent.ConversationID, in.ConversationID) {
			return nil, apperr.Invalid("reply must be posted where its parent lives")
		}
	}

	switch {
	case in.ChannelID != nil && in.ConversationID != nil:
		return nil, apperr.Invalid("message cannot target both a channel and a conversation")
	case in.ChannelID != nil:
		ch, err := s.store.Channels().GetByID(ctx, *in.ChannelID)
		if err != nil {
			return nil, err
		}
		if ch == nil || ch.WorkspaceID != in.WorkspaceID {
			return nil, apperr.NotFound("channel")
		}
	case in.ConversationID != nil:
		conv, err := s.store.Conversations().GetByID(ctx, *in.ConversationID)
		if err != nil {
			return nil, err
		}
		if conv == nil || conv.WorkspaceID != in.WorkspaceID {
			return nil, apperr.NotFound("conversation")
		}
		if !conv.HasParticipant(me.ID) {
			return nil, apperr.ErrUnauthorized
		}
	default:
		return nil, apperr.Invalid("message needs a channel or a conversation")
	}

	msg, err := s.store.Messages().Create(ctx, repository.NewMessage{
		Body:            in.Body,
		Image:           in.Image,
		MemberID:        me.ID,
		WorkspaceID:     in.WorkspaceID,
		ChannelID:       in.ChannelID,
		ParentMessageID: in.ParentMessageID,
		ConversationID:  in.ConversationID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("message posted",
		zap.Int64("message_id", msg.ID),
		zap.String("workspace_id", msg.WorkspaceID.String()),
	)
	return msg, nil
}

func sameScope(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// canRead reports whether me may see messages in a scope. Channel
// messages are visible to the workspace, conversation messages only to the
// two participants.
func (s *MessageService) canRead(ctx context.Context, me *models.Member, conversationID *uuid.UUID) error {
	if err := access.Require(me, access.ActionRead); err != nil {
		return err
	}
	if conversationID == nil {
		return nil
	}
	conv, err := s.store.Conversations().GetByID(ctx, *conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return apperr.NotFound("conversation")
	}
	if !conv.HasParticipant(me.ID) {
		return apperr.ErrUnauthorized
	}
	return nil
}

func (s *MessageService) Get(ctx context.Context, id int64, callerID uuid.UUID) (*MessageView, error) {
	if callerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	msg, err := s.store.Messages().GetByID(ctx, id)
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
	if err := s.canRead(ctx, me, msg.ConversationID); err != nil {
		return nil, err
	}
	views, err := s.hydrate(ctx, []models.Message{*msg})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// MessageView is a message with its grouped reactions and, for top-level
// messages that have replies, a thread summary.
type MessageView struct {
	models.Message
	Reactions []models.ReactionGroup `json:"reactions"`
	Thread    *models.ThreadSummary  `json:"thread,omitempty"`
}

// MessagePage is one page of messages, newest first. Pass NextCursor back as
// Before to continue; it is zero on the last page.
type MessagePage struct {
	Items      []MessageView `json:"items"`
	NextCursor int64         `json:"next_cursor,omitempty"`
}

// ListInput selects the scope to list. Exactly one of the three ids must be
// set.
type ListInput struct {
	ChannelID       *uuid.UUID
	ConversationID  *uuid.UUID
	ParentMessageID *int64
	Before          int64
	Limit           int
}

func (in ListInput) scopes() int {
	n := 0
	if in.ChannelID != nil {
		n++
	}
	if in.ConversationID != nil {
		n++
	}
	if in.ParentMessageID != nil {
		n++
	}
	return n
}

func (s *MessageService) List(ctx context.Context, in ListInput, callerID uuid.UUID) (*MessagePage, error) {
	if callerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	if in.scopes() != 1 {
		return nil, apperr.Invalid("exactly one of channel_id, conversation_id or parent_message_id is required")
	}

	var (
		workspaceID    uuid.UUID
		conversationID *uuid.UUID
	)
	switch {
	case in.ChannelID != nil:
		ch, err := s.store.Channels().GetByID(ctx, *in.ChannelID)
		if err != nil {
			return nil, err
		}
		if ch == nil {
			return nil, apperr.NotFound("channel")
		}
		workspaceID = ch.WorkspaceID
	case in.ConversationID != nil:
		conv, err := s.store.Conversations().GetByID(ctx, *in.ConversationID)
		if err != nil {
			return nil, err
		}
		if conv == nil {
			return nil, apperr.NotFound("conversation")
		}
		workspaceID = conv.WorkspaceID
		conversationID = in.ConversationID
	default:
		parent, err := s.store.Messages().GetByID(ctx, *in.ParentMessageID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperr.NotFound("message")
		}
		workspaceID = parent.WorkspaceID
		conversationID = parent.ConversationID
	}

	me, err := access.Authorize(ctx, s.store.Members(), callerID, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.canRead(ctx, me, conversationID); err != nil {
		return nil, err
	}

	limit := clampLimit(in.Limit)
	msgs, err := s.store.Messages().List(ctx, repository.MessageQuery{
		ChannelID:       in.ChannelID,
		ConversationID:  in.ConversationID,
		ParentMessageID: in.ParentMessageID,
		Before:          in.Before,
		Limit:           limit,
	})
	if err != nil {
		return nil, err
	}

	views, err := s.hydrate(ctx, msgs)
	if err != nil {
		return nil, err
	}
	page := &MessagePage{Items: views}
	if len(msgs) == limit {
		page.NextCursor = msgs[len(msgs)-1].ID
	}
	return page, nil
}

// hydrate attaches reactions and thread summaries. The two lookups are
// independent and run concurrently.
func (s *MessageService) hydrate(ctx context.Context, msgs []models.Message) ([]MessageView, error) {
	views := make([]MessageView, len(msgs))
	if len(msgs) == 0 {
		return views, nil
	}

	ids := make([]int64, 0, len(msgs))
	parents := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
		if !m.IsReply() {
			parents = append(parents, m.ID)
		}
	}

	var (
		reactions []models.Reaction
		summaries map[int64]models.ThreadSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reactions, err = s.store.Reactions().ListByMessages(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		summaries, err = s.store.Messages().ThreadSummaries(gctx, parents)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byMessage := make(map[int64][]models.Reaction, len(msgs))
	for _, r := range reactions {
		byMessage[r.MessageID] = append(byMessage[r.MessageID], r)
	}
	for i, m := range msgs {
		views[i] = MessageView{Message: m, Reactions: models.GroupReactions(byMessage[m.ID])}
		if ts, ok := summaries[m.ID]; ok {
			views[i].Thread = &ts
		}
	}
	return views, nil
}

// Edit replaces the body of a message. Only its author may edit it.
func (s *MessageService) Edit(ctx context.Context, id int64, body string, callerID uuid.UUID) (*models.Message, error) {
	if callerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	msg, err := s.store.Messages().GetByID(ctx, id)
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
	if !access.IsAuthor(me, msg) {
		return nil, apperr.ErrUnauthorized
	}
	if !hasContent(body, msg.Image) {
		return nil, apperr.Invalid("message needs a body or an image")
	}

	now := s.now()
	if err := s.store.Messages().UpdateBody(ctx, id, body, now); err != nil {
		return nil, err
	}
	msg.Body = body
	msg.UpdatedAt = &now
	return msg, nil
}

// Remove deletes a message with its replies and every reaction on them.
// Only the author may remove a message.
func (s *MessageService) Remove(ctx context.Context, id int64, callerID uuid.UUID) (CascadeStats, error) {
	if callerID == uuid.Nil {
		return CascadeStats{}, apperr.ErrUnauthenticated
	}
	var stats CascadeStats
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		msg, err := tx.Messages().GetByID(ctx, id)
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
		if !access.IsAuthor(me, msg) {
			return apperr.ErrUnauthorized
		}
		stats, err = s.cascade.Message(ctx, tx, id)
		return err
	})
	if err != nil {
		return CascadeStats{}, err
	}
	return stats, nil
}
