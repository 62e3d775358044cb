package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository"
)

type memberRepo struct{ s *Store }

func (r *memberRepo) Create(_ context.Context, userID, workspaceID uuid.UUID, role models.Role) (*models.Member, error) {
	var out models.Member
	err := r.s.write(func(st *state) error {
		for _, m := range st.members {
			if m.WorkspaceID == workspaceID && m.UserID == userID {
				return repository.ErrConflict
			}
		}
		out = models.Member{
			ID:          st.newID(),
			UserID:      userID,
			WorkspaceID: workspaceID,
			Role:        role,
			CreatedAt:   r.s.now(),
		}
		st.members[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memberRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Member, error) {
	var out *models.Member
	r.s.read(func(st *state) {
		if m, ok := st.members[id]; ok {
			out = &m
		}
	})
	return out, nil
}

func (r *memberRepo) GetByWorkspaceAndUser(_ context.Context, workspaceID, userID uuid.UUID) (*models.Member, error) {
	var out *models.Member
	r.s.read(func(st *state) {
		for _, m := range st.members {
			if m.WorkspaceID == workspaceID && m.UserID == userID {
				out = &m
				return
			}
		}
	})
	return out, nil
}

func (r *memberRepo) ListByWorkspace(_ context.Context, workspaceID uuid.UUID, after uuid.UUID, limit int) ([]models.Member, error) {
	out := make([]models.Member, 0)
	r.s.read(func(st *state) {
		for _, m := range st.members {
			if m.WorkspaceID == workspaceID && uuidLess(after, m.ID) {
				out = append(out, m)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return uuidLess(out[i].ID, out[j].ID) })
	return truncate(out, limit), nil
}

func (r *memberRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Member, error) {
	out := make([]models.Member, 0)
	r.s.read(func(st *state) {
		for _, m := range st.members {
			if m.UserID == userID {
				out = append(out, m)
			}
		}
		sortByOrder(st, out, func(m models.Member) uuid.UUID { return m.ID })
	})
	return out, nil
}

func (r *memberRepo) UpdateRole(_ context.Context, id uuid.UUID, role models.Role) error {
	return r.s.write(func(st *state) error {
		if m, ok := st.members[id]; ok {
			m.Role = role
			st.members[id] = m
		}
		return nil
	})
}

func (r *memberRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.write(func(st *state) error {
		delete(st.members, id)
		return nil
	})
}
