package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/repository"
	"go.uber.org/zap"
)

// batchSize bounds every index lookup the cascade makes. Each loop deletes
// what it read and asks again until a short page comes back.
const batchSize = 100

// CascadeStats counts the rows a cascade removed.
type CascadeStats struct {
	Members       int `json:"members"`
	Channels      int `json:"channels"`
	Conversations int `json:"conversations"`
	Messages      int `json:"messages"`
	Reactions     int `json:"reactions"`
}

// CascadeEngine is the single place that deletes dependent rows. Every
// delete path (message, member, channel, workspace) goes through it, always
// with a transaction-bound store so a failure leaves nothing half-deleted.
//
// Policy for thread replies: deleting a message deletes its replies and
// the reactions on both. Replies are never left pointing at a missing parent.
type CascadeEngine struct {
	logger *zap.Logger
}

func NewCascadeEngine(logger *zap.Logger) *CascadeEngine {
	return &CascadeEngine{logger: logger}
}

type sweep struct {
	tx    repository.Store
	stats CascadeStats
}

// Message deletes a message, its thread replies, and every reaction on them.
func (e *CascadeEngine) Message(ctx context.Context, tx repository.Store, id int64) (CascadeStats, error) {
	sw := &sweep{tx: tx}
	err := sw.message(ctx, id)
	return sw.stats, err
}

// Member deletes everything the member authored or participates in, then
// the member row itself.
func (e *CascadeEngine) Member(ctx context.Context, tx repository.Store, memberID uuid.UUID) (CascadeStats, error) {
	sw := &sweep{tx: tx}
	if err := sw.member(ctx, memberID); err != nil {
		return sw.stats, err
	}
	e.logger.Debug("member cascade complete",
		zap.String("member_id", memberID.String()),
		zap.Int("messages", sw.stats.Messages),
		zap.Int("reactions", sw.stats.Reactions),
		zap.Int("conversations", sw.stats.Conversations),
	)
	return sw.stats, nil
}

// Channel deletes every message in the channel, then the channel.
func (e *CascadeEngine) Channel(ctx context.Context, tx repository.Store, channelID uuid.UUID) (CascadeStats, error) {
	sw := &sweep{tx: tx}
	err := sw.channel(ctx, channelID)
	return sw.stats, err
}

// Workspace removes members in batches (each with its own cascade), then
// sweeps any rows still scoped to the workspace id, then the workspace.
func (e *CascadeEngine) Workspace(ctx context.Context, tx repository.Store, workspaceID uuid.UUID) (CascadeStats, error) {
	sw := &sweep{tx: tx}
	if err := sw.workspace(ctx, workspaceID); err != nil {
		e.logger.Error("workspace cascade failed",
			zap.String("workspace_id", workspaceID.String()),
			zap.Int("members_deleted", sw.stats.Members),
			zap.Error(err),
		)
		return sw.stats, err
	}
	e.logger.Info("workspace cascade complete",
		zap.String("workspace_id", workspaceID.String()),
		zap.Int("members", sw.stats.Members),
		zap.Int("channels", sw.stats.Channels),
		zap.Int("conversations", sw.stats.Conversations),
		zap.Int("messages", sw.stats.Messages),
		zap.Int("reactions", sw.stats.Reactions),
	)
	return sw.stats, nil
}

func (sw *sweep) message(ctx context.Context, id int64) error {
	msg, err := sw.tx.Messages().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if msg == nil {
		// Already removed earlier in this sweep (e.g. a reply whose parent
		// went first).
		return nil
	}

	for {
		replies, err := sw.tx.Messages().List(ctx, repository.MessageQuery{ParentMessageID: &id, Limit: batchSize})
		if err != nil {
			return fmt.Errorf("list replies: %w", err)
		}
		for _, r := range replies {
			if err := sw.messageReactions(ctx, r.ID); err != nil {
				return err
			}
			if err := sw.tx.Messages().Delete(ctx, r.ID); err != nil {
				return err
			}
			sw.stats.Messages++
		}
		if len(replies) < batchSize {
			break
		}
	}

	if err := sw.messageReactions(ctx, id); err != nil {
		return err
	}
	if err := sw.tx.Messages().Delete(ctx, id); err != nil {
		return err
	}
	sw.stats.Messages++
	return nil
}

func (sw *sweep) messageReactions(ctx context.Context, messageID int64) error {
	reactions, err := sw.tx.Reactions().ListByMessages(ctx, []int64{messageID})
	if err != nil {
		return fmt.Errorf("list message reactions: %w", err)
	}
	for _, r := range reactions {
		if err := sw.tx.Reactions().Delete(ctx, r.ID); err != nil {
			return err
		}
		sw.stats.Reactions++
	}
	return nil
}

func (sw *sweep) member(ctx context.Context, memberID uuid.UUID) error {
	for {
		msgs, err := sw.tx.Messages().ListByMember(ctx, memberID, batchSize)
		if err != nil {
			return fmt.Errorf("list member messages: %w", err)
		}
		for _, m := range msgs {
			if err := sw.message(ctx, m.ID); err != nil {
				return err
			}
		}
		if len(msgs) < batchSize {
			break
		}
	}

	for {
		reactions, err := sw.tx.Reactions().ListByMember(ctx, memberID, batchSize)
		if err != nil {
			return fmt.Errorf("list member reactions: %w", err)
		}
		for _, r := range reactions {
			if err := sw.tx.Reactions().Delete(ctx, r.ID); err != nil {
				return err
			}
			sw.stats.Reactions++
		}
		if len(reactions) < batchSize {
			break
		}
	}

	for {
		convs, err := sw.tx.Conversations().ListByMember(ctx, memberID, batchSize)
		if err != nil {
			return fmt.Errorf("list member conversations: %w", err)
		}
		for _, c := range convs {
			if err := sw.conversation(ctx, c.ID); err != nil {
				return err
			}
		}
		if len(convs) < batchSize {
			break
		}
	}

	if err := sw.tx.Members().Delete(ctx, memberID); err != nil {
		return err
	}
	sw.stats.Members++
	return nil
}

func (sw *sweep) conversation(ctx context.Context, conversationID uuid.UUID) error {
	for {
		msgs, err := sw.tx.Messages().List(ctx, repository.MessageQuery{ConversationID: &conversationID, Limit: batchSize})
		if err != nil {
			return fmt.Errorf("list conversation messages: %w", err)
		}
		for _, m := range msgs {
			if err := sw.message(ctx, m.ID); err != nil {
				return err
			}
		}
		if len(msgs) < batchSize {
			break
		}
	}
	if err := sw.tx.Conversations().Delete(ctx, conversationID); err != nil {
		return err
	}
	sw.stats.Conversations++
	return nil
}

func (sw *sweep) channel(ctx context.Context, channelID uuid.UUID) error {
	for {
		msgs, err := sw.tx.Messages().List(ctx, repository.MessageQuery{ChannelID: &channelID, Limit: batchSize})
		if err != nil {
			return fmt.Errorf("list channel messages: %w", err)
		}
		for _, m := range msgs {
			if err := sw.message(ctx, m.ID); err != nil {
				return err
			}
		}
		if len(msgs) < batchSize {
			break
		}
	}
	if err := sw.tx.Channels().Delete(ctx, channelID); err != nil {
		return err
	}
	sw.stats.Channels++
	return nil
}

func (sw *sweep) workspace(ctx context.Context, workspaceID uuid.UUID) error {
	for {
		members, err := sw.tx.Members().ListByWorkspace(ctx, workspaceID, uuid.Nil, batchSize)
		if err != nil {
			return fmt.Errorf("list workspace members: %w", err)
		}
		for _, m := range members {
			if err := sw.member(ctx, m.ID); err != nil {
				return err
			}
		}
		if len(members) < batchSize {
			break
		}
	}

	// With every member gone their messages, reactions and conversations
	// are gone too. The by-workspace passes below catch anything that was
	// orphaned before this sweep ran.
	for {
		reactions, err := sw.tx.Reactions().ListByWorkspace(ctx, workspaceID, batchSize)
		if err != nil {
			return fmt.Errorf("list workspace reactions: %w", err)
		}
		for _, r := range reactions {
			if err := sw.tx.Reactions().Delete(ctx, r.ID); err != nil {
				return err
			}
			sw.stats.Reactions++
		}
		if len(reactions) < batchSize {
			break
		}
	}

	for {
		msgs, err := sw.tx.Messages().ListByWorkspace(ctx, workspaceID, batchSize)
		if err != nil {
			return fmt.Errorf("list workspace messages: %w", err)
		}
		for _, m := range msgs {
			if err := sw.message(ctx, m.ID); err != nil {
				return err
			}
		}
		if len(msgs) < batchSize {
			break
		}
	}

	for {
		convs, err := sw.tx.Conversations().ListByWorkspace(ctx, workspaceID, batchSize)
		if err != nil {
			return fmt.Errorf("list workspace conversations: %w", err)
		}
		for _, c := range convs {
			if err := sw.conversation(ctx, c.ID); err != nil {
				return err
			}
		}
		if len(convs) < batchSize {
			break
		}
	}

	for {
		channels, err := sw.tx.Channels().ListByWorkspace(ctx, workspaceID, batchSize)
		if err != nil {
			return fmt.Errorf("list workspace channels: %w", err)
		}
		for _, ch := range channels {
			if err := sw.channel(ctx, ch.ID); err != nil {
				return err
			}
		}
		if len(channels) < batchSize {
			break
		}
	}

	return sw.tx.Workspaces().Delete(ctx, workspaceID)
}
