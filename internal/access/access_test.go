package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/apperr"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupFunc func(ctx context.Context, workspaceID, userID uuid.UUID) (*models.Member, error)

func (f lookupFunc) GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*models.Member, error) {
	return f(ctx, workspaceID, userID)
}

func TestAuthorize(t *testing.T) {
	ws, user := uuid.New(), uuid.New()
	member := &models.Member{ID: uuid.New(), UserID: user, WorkspaceID: ws, Role: models.RoleMember}

	lookup := lookupFunc(func(_ context.Context, workspaceID, userID uuid.UUID) (*models.Member, error) {
		if workspaceID == ws && userID == user {
			return member, nil
		}
		return nil, nil
	})

	t.Run("member", func(t *testing.T) {
		got, err := Authorize(context.Background(), lookup, user, ws)
		require.NoError(t, err)
		assert.Equal(t, member.ID, got.ID)
	})

	t.Run("no session", func(t *testing.T) {
		_, err := Authorize(context.Background(), lookup, uuid.Nil, ws)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("not a member", func(t *testing.T) {
		_, err := Authorize(context.Background(), lookup, uuid.New(), ws)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("other workspace", func(t *testing.T) {
		_, err := Authorize(context.Background(), lookup, user, uuid.New())
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("store failure is not a policy rejection", func(t *testing.T) {
		failing := lookupFunc(func(context.Context, uuid.UUID, uuid.UUID) (*models.Member, error) {
			return nil, errors.New("connection refused")
		})
		_, err := Authorize(context.Background(), failing, user, ws)
		require.Error(t, err)
		assert.Equal(t, apperr.Kind(""), apperr.KindOf(err))
	})
}

func TestRequireRole(t *testing.T) {
	admin := &models.Member{Role: models.RoleAdmin}
	member := &models.Member{Role: models.RoleMember}

	assert.NoError(t, RequireRole(admin, models.RoleAdmin))
	assert.ErrorIs(t, RequireRole(member, models.RoleAdmin), apperr.ErrUnauthorized)
	assert.ErrorIs(t, RequireRole(admin, models.RoleMember), apperr.ErrUnauthorized, "exact match, not a hierarchy")
	assert.ErrorIs(t, RequireRole(nil, models.RoleAdmin), apperr.ErrUnauthorized)
}

func TestCan(t *testing.T) {
	cases := []struct {
		role   models.Role
		action Action
		allow  bool
	}{
		{models.RoleAdmin, ActionManage, true},
		{models.RoleAdmin, ActionDirectMessage, true},
		{models.RoleMember, ActionPost, true},
		{models.RoleMember, ActionDirectMessage, true},
		{models.RoleMember, ActionManage, false},
		{models.RoleGuest, ActionRead, true},
		{models.RoleGuest, ActionPost, true},
		{models.RoleGuest, ActionReact, true},
		{models.RoleGuest, ActionDirectMessage, false},
		{models.RoleGuest, ActionManage, false},
		{models.Role("owner"), ActionRead, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.role)+" "+string(tc.action), func(t *testing.T) {
			if got := Can(tc.role, tc.action); got != tc.allow {
				t.Fatalf("Can(%q, %q) = %v, want %v", tc.role, tc.action, got, tc.allow)
			}
		})
	}
}

func TestCheckRemoval(t *testing.T) {
	ws := uuid.New()
	newMember := func(role models.Role) *models.Member {
		return &models.Member{ID: uuid.New(), WorkspaceID: ws, Role: role}
	}
	admin := newMember(models.RoleAdmin)
	otherAdmin := newMember(models.RoleAdmin)
	member := newMember(models.RoleMember)
	otherMember := newMember(models.RoleMember)
	guest := newMember(models.RoleGuest)

	cases := []struct {
		name   string
		actor  *models.Member
		target *models.Member
		want   error
	}{
		{"admin removes member", admin, member, nil},
		{"admin removes guest", admin, guest, nil},
		{"member leaves", member, member, nil},
		{"guest leaves", guest, guest, nil},
		{"admin removes admin", admin, otherAdmin, apperr.ErrAdminCannotBeRemoved},
		{"admin removes self", admin, admin, apperr.ErrAdminCannotBeRemoved},
		{"member removes admin", member, admin, apperr.ErrAdminCannotBeRemoved},
		{"member removes member", member, otherMember, apperr.ErrUnauthorized},
		{"guest removes member", guest, member, apperr.ErrUnauthorized},
		{"actor from another workspace", &models.Member{ID: uuid.New(), WorkspaceID: uuid.New(), Role: models.RoleAdmin}, member, apperr.ErrUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckRemoval(tc.actor, tc.target)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestIsAuthor(t *testing.T) {
	m := &models.Member{ID: uuid.New()}
	assert.True(t, IsAuthor(m, &models.Message{MemberID: m.ID}))
	assert.False(t, IsAuthor(m, &models.Message{MemberID: uuid.New()}))
	assert.False(t, IsAuthor(nil, &models.Message{MemberID: m.ID}))
}
