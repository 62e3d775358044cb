package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository"
)

type messageRepo struct{ s *Store }

func (r *messageRepo) Create(_ context.Context, msg repository.NewMessage) (*models.Message, error) {
	var out models.Message
	err := r.s.write(func(st *state) error {
		st.lastMsg++
		out = models.Message{
			ID:              st.lastMsg,
			Body:            msg.Body,
			Image:           msg.Image,
			MemberID:        msg.MemberID,
			WorkspaceID:     msg.WorkspaceID,
			ChannelID:       msg.ChannelID,
			ParentMessageID: msg.ParentMessageID,
			ConversationID:  msg.ConversationID,
			CreatedAt:       r.s.now(),
		}
		st.messages[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *messageRepo) GetByID(_ context.Context, id int64) (*models.Message, error) {
	var out *models.Message
	r.s.read(func(st *state) {
		if m, ok := st.messages[id]; ok {
			out = &m
		}
	})
	return out, nil
}

func (r *messageRepo) UpdateBody(_ context.Context, id int64, body string, updatedAt time.Time) error {
	return r.s.write(func(st *state) error {
		if m, ok := st.messages[id]; ok {
			m.Body = body
			m.UpdatedAt = &updatedAt
			st.messages[id] = m
		}
		return nil
	})
}

func (r *messageRepo) Delete(_ context.Context, id int64) error {
	return r.s.write(func(st *state) error {
		delete(st.messages, id)
		return nil
	})
}

func sameUUID(p *uuid.UUID, v uuid.UUID) bool {
	return p != nil && *p == v
}

func (r *messageRepo) List(_ context.Context, q repository.MessageQuery) ([]models.Message, error) {
	keep := func(m models.Message) bool {
		if q.ChannelID != nil && !sameUUID(m.ChannelID, *q.ChannelID) {
			return false
		}
		if q.ConversationID != nil && !sameUUID(m.ConversationID, *q.ConversationID) {
			return false
		}
		if q.ParentMessageID != nil {
			if m.ParentMessageID == nil || *m.ParentMessageID != *q.ParentMessageID {
				return false
			}
		} else if m.ParentMessageID != nil {
			return false
		}
		if q.Before > 0 && m.ID >= q.Before {
			return false
		}
		return true
	}
	return r.list(q.Limit, true, keep), nil
}

func (r *messageRepo) ListByMember(_ context.Context, memberID uuid.UUID, limit int) ([]models.Message, error) {
	return r.list(limit, false, func(m models.Message) bool { return m.MemberID == memberID }), nil
}

func (r *messageRepo) ListByWorkspace(_ context.Context, workspaceID uuid.UUID, limit int) ([]models.Message, error) {
	return r.list(limit, false, func(m models.Message) bool { return m.WorkspaceID == workspaceID }), nil
}

func (r *messageRepo) list(limit int, newestFirst bool, keep func(models.Message) bool) []models.Message {
	out := make([]models.Message, 0)
	r.s.read(func(st *state) {
		for _, m := range st.messages {
			if keep(m) {
				out = append(out, m)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return truncate(out, limit)
}

func (r *messageRepo) ThreadSummaries(_ context.Context, parentIDs []int64) (map[int64]models.ThreadSummary, error) {
	out := make(map[int64]models.ThreadSummary, len(parentIDs))
	wanted := make(map[int64]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		wanted[id] = struct{}{}
	}
	r.s.read(func(st *state) {
		for _, m := range st.messages {
			if m.ParentMessageID == nil {
				continue
			}
			pid := *m.ParentMessageID
			if _, ok := wanted[pid]; !ok {
				continue
			}
			ts := out[pid]
			ts.ParentMessageID = pid
			ts.ReplyCount++
			if m.CreatedAt.After(ts.LastReplyAt) {
				ts.LastReplyAt = m.CreatedAt
			}
			out[pid] = ts
		}
	})
	return out, nil
}

type reactionRepo struct{ s *Store }

func (r *reactionRepo) Create(_ context.Context, workspaceID uuid.UUID, messageID int64, memberID uuid.UUID, value string) (*models.Reaction, error) {
	var out models.Reaction
	err := r.s.write(func(st *state) error {
		for _, existing := range st.reactions {
			if existing.MessageID == messageID && existing.MemberID == memberID && existing.Value == value {
				return repository.ErrConflict
			}
		}
		out = models.Reaction{
			ID:          st.newID(),
			WorkspaceID: workspaceID,
			MessageID:   messageID,
			MemberID:    memberID,
			Value:       value,
			CreatedAt:   r.s.now(),
		}
		st.reactions[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reactionRepo) Find(_ context.Context, messageID int64, memberID uuid.UUID, value string) (*models.Reaction, error) {
	var out *models.Reaction
	r.s.read(func(st *state) {
		for _, existing := range st.reactions {
			if existing.MessageID == messageID && existing.MemberID == memberID && existing.Value == value {
				out = &existing
				return
			}
		}
	})
	return out, nil
}

func (r *reactionRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.write(func(st *state) error {
		delete(st.reactions, id)
		return nil
	})
}

func (r *reactionRepo) ListByMessages(_ context.Context, messageIDs []int64) ([]models.Reaction, error) {
	wanted := make(map[int64]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		wanted[id] = struct{}{}
	}
	return r.list(0, func(x models.Reaction) bool {
		_, ok := wanted[x.MessageID]
		return ok
	}), nil
}

func (r *reactionRepo) ListByMember(_ context.Context, memberID uuid.UUID, limit int) ([]models.Reaction, error) {
	return r.list(limit, func(x models.Reaction) bool { return x.MemberID == memberID }), nil
}

func (r *reactionRepo) ListByWorkspace(_ context.Context, workspaceID uuid.UUID, limit int) ([]models.Reaction, error) {
	return r.list(limit, func(x models.Reaction) bool { return x.WorkspaceID == workspaceID }), nil
}

func (r *reactionRepo) list(limit int, keep func(models.Reaction) bool) []models.Reaction {
	out := make([]models.Reaction, 0)
	r.s.read(func(st *state) {
		for _, x := range st.reactions {
			if keep(x) {
				out = append(out, x)
			}
		}
		sortByOrder(st, out, func(x models.Reaction) uuid.UUID { return x.ID })
	})
	return truncate(out, limit)
}
