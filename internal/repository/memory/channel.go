package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/models"
)

type channelRepo struct{ s *Store }

func (r *channelRepo) Create(_ context.Context, workspaceID uuid.UUID, name string) (*models.Channel, error) {
	var out models.Channel
	err := r.s.write(func(st *state) error {
		out = models.Channel{
			ID:          st.newID(),
			WorkspaceID: workspaceID,
			Name:        name,
			CreatedAt:   r.s.now(),
		}
		st.channels[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *channelRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Channel, error) {
	var out *models.Channel
	r.s.read(func(st *state) {
		if ch, ok := st.channels[id]; ok {
			out = &ch
		}
	})
	return out, nil
}

func (r *channelRepo) ListByWorkspace(_ context.Context, workspaceID uuid.UUID, limit int) ([]models.Channel, error) {
	out := make([]models.Channel, 0)
	r.s.read(func(st *state) {
		for _, ch := range st.channels {
			if ch.WorkspaceID == workspaceID {
				out = append(out, ch)
			}
		}
		sortByOrder(st, out, func(ch models.Channel) uuid.UUID { return ch.ID })
	})
	return truncate(out, limit), nil
}

func (r *channelRepo) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	return r.s.write(func(st *state) error {
		if ch, ok := st.channels[id]; ok {
			ch.Name = name
			st.channels[id] = ch
		}
		return nil
	})
}

func (r *channelRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.write(func(st *state) error {
		delete(st.channels, id)
		return nil
	})
}

type conversationRepo struct{ s *Store }

func samePair(c models.Conversation, a, b uuid.UUID) bool {
	return (c.MemberOneID == a && c.MemberTwoID == b) || (c.MemberOneID == b && c.MemberTwoID == a)
}

// GetOrCreate holds the write lock across lookup and insert, which is the
// in-process equivalent of the unique pair index.
func (r *conversationRepo) GetOrCreate(_ context.Context, workspaceID, memberA, memberB uuid.UUID) (*models.Conversation, error) {
	var out models.Conversation
	err := r.s.write(func(st *state) error {
		for _, c := range st.conversations {
			if c.WorkspaceID == workspaceID && samePair(c, memberA, memberB) {
				out = c
				return nil
			}
		}
		out = models.Conversation{
			ID:          st.newID(),
			WorkspaceID: workspaceID,
			MemberOneID: memberA,
			MemberTwoID: memberB,
			CreatedAt:   r.s.now(),
		}
		st.conversations[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *conversationRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	var out *models.Conversation
	r.s.read(func(st *state) {
		if c, ok := st.conversations[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r *conversationRepo) ListByMember(_ context.Context, memberID uuid.UUID, limit int) ([]models.Conversation, error) {
	return r.list(limit, func(c models.Conversation) bool { return c.HasParticipant(memberID) }), nil
}

func (r *conversationRepo) ListByWorkspace(_ context.Context, workspaceID uuid.UUID, limit int) ([]models.Conversation, error) {
	return r.list(limit, func(c models.Conversation) bool { return c.WorkspaceID == workspaceID }), nil
}

func (r *conversationRepo) list(limit int, keep func(models.Conversation) bool) []models.Conversation {
	out := make([]models.Conversation, 0)
	r.s.read(func(st *state) {
		for _, c := range st.conversations {
			if keep(c) {
				out = append(out, c)
			}
		}
		sortByOrder(st, out, func(c models.Conversation) uuid.UUID { return c.ID })
	})
	return truncate(out, limit)
}

func (r *conversationRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.write(func(st *state) error {
		delete(st.conversations, id)
		return nil
	})
}
