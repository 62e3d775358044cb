package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, email, name, passwordHash string) (*models.User, error) {
	var out models.User
	err := r.s.write(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				return repository.ErrConflict
			}
		}
		out = models.User{
			ID:           st.newID(),
			Email:        email,
			Name:         name,
			PasswordHash: passwordHash,
			CreatedAt:    r.s.now(),
		}
		st.users[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	var out *models.User
	r.s.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	var out *models.User
	r.s.read(func(st *state) {
		for _, u := range st.users {
			if u.Email == email {
				out = &u
				return
			}
		}
	})
	return out, nil
}

type workspaceRepo struct{ s *Store }

func (r *workspaceRepo) Create(_ context.Context, name string, ownerID uuid.UUID, joinCode string) (*models.Workspace, error) {
	var out models.Workspace
	err := r.s.write(func(st *state) error {
		out = models.Workspace{
			ID:        st.newID(),
			Name:      name,
			UserID:    ownerID,
			JoinCode:  joinCode,
			CreatedAt: r.s.now(),
		}
		st.workspaces[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *workspaceRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Workspace, error) {
	var out *models.Workspace
	r.s.read(func(st *state) {
		if w, ok := st.workspaces[id]; ok {
			out = &w
		}
	})
	return out, nil
}

func (r *workspaceRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]models.Workspace, error) {
	out := make([]models.Workspace, 0, len(ids))
	r.s.read(func(st *state) {
		seen := make(map[uuid.UUID]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if w, ok := st.workspaces[id]; ok {
				out = append(out, w)
			}
		}
		sortByOrder(st, out, func(w models.Workspace) uuid.UUID { return w.ID })
	})
	return out, nil
}

func (r *workspaceRepo) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	return r.s.write(func(st *state) error {
		if w, ok := st.workspaces[id]; ok {
			w.Name = name
			st.workspaces[id] = w
		}
		return nil
	})
}

func (r *workspaceRepo) UpdateJoinCode(_ context.Context, id uuid.UUID, joinCode string) error {
	return r.s.write(func(st *state) error {
		if w, ok := st.workspaces[id]; ok {
			w.JoinCode = joinCode
			st.workspaces[id] = w
		}
		return nil
	})
}

func (r *workspaceRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.write(func(st *state) error {
		delete(st.workspaces, id)
		return nil
	})
}
