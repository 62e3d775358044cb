package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberUniquePerWorkspaceAndUser(t *testing.T) {
	ctx := context.Background()
	s := New()
	ws, user := uuid.New(), uuid.New()

	_, err := s.Members().Create(ctx, user, ws, models.RoleMember)
	require.NoError(t, err)

	_, err = s.Members().Create(ctx, user, ws, models.RoleAdmin)
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = s.Members().Create(ctx, user, uuid.New(), models.RoleMember)
	assert.NoError(t, err, "same user may join another workspace")
}

func TestMemberListByWorkspacePaging(t *testing.T) {
	ctx := context.Background()
	s := New()
	ws := uuid.New()

	for i := 0; i < 5; i++ {
		_, err := s.Members().Create(ctx, uuid.New(), ws, models.RoleMember)
		require.NoError(t, err)
	}

	first, err := s.Members().ListByWorkspace(ctx, ws, uuid.Nil, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)

	rest, err := s.Members().ListByWorkspace(ctx, ws, first[2].ID, 3)
	require.NoError(t, err)
	require.Len(t, rest, 2)

	seen := map[uuid.UUID]bool{}
	for _, m := range append(first, rest...) {
		assert.False(t, seen[m.ID])
		seen[m.ID] = true
	}
}

func TestConversationGetOrCreateIsOrderInsensitive(t *testing.T) {
	ctx := context.Background()
	s := New()
	ws, a, b := uuid.New(), uuid.New(), uuid.New()

	c1, err := s.Conversations().GetOrCreate(ctx, ws, a, b)
	require.NoError(t, err)
	c2, err := s.Conversations().GetOrCreate(ctx, ws, b, a)
	require.NoError(t, err)

	assert.Equal(t, c1.ID, c2.ID)
}

func TestConversationGetOrCreateConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New()
	ws, a, b := uuid.New(), uuid.New(), uuid.New()

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 20)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x, y := a, b
			if i%2 == 0 {
				x, y = b, a
			}
			c, err := s.Conversations().GetOrCreate(ctx, ws, x, y)
			if err == nil {
				ids[i] = c.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	all, err := s.Conversations().ListByWorkspace(ctx, ws, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx repository.Store) error {
		w, err := tx.Workspaces().Create(ctx, "Acme", uuid.New(), "abc123")
		require.NoError(t, err)
		_, err = tx.Channels().Create(ctx, w.ID, "general")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	s.read(func(st *state) {
		assert.Empty(t, st.workspaces)
		assert.Empty(t, st.channels)
	})
}

func TestInTxCommits(t *testing.T) {
	ctx := context.Background()
	s := New()

	var id uuid.UUID
	err := s.InTx(ctx, func(tx repository.Store) error {
		w, err := tx.Workspaces().Create(ctx, "Acme", uuid.New(), "abc123")
		if err != nil {
			return err
		}
		id = w.ID
		// Reads inside the transaction see its own writes.
		got, err := tx.Workspaces().GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got)
		return nil
	})
	require.NoError(t, err)

	got, err := s.Workspaces().GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.Name)
}

func TestMessageListScopes(t *testing.T) {
	ctx := context.Background()
	s := New()
	ws, member, channel := uuid.New(), uuid.New(), uuid.New()

	var top []int64
	for i := 0; i < 3; i++ {
		m, err := s.Messages().Create(ctx, repository.NewMessage{Body: "hi", MemberID: member, WorkspaceID: ws, ChannelID: &channel})
		require.NoError(t, err)
		top = append(top, m.ID)
	}
	parent := top[0]
	_, err := s.Messages().Create(ctx, repository.NewMessage{Body: "reply", MemberID: member, WorkspaceID: ws, ChannelID: &channel, ParentMessageID: &parent})
	require.NoError(t, err)

	page, err := s.Messages().List(ctx, repository.MessageQuery{ChannelID: &channel, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, top[2], page[0].ID, "newest first")
	assert.Equal(t, top[1], page[1].ID)

	next, err := s.Messages().List(ctx, repository.MessageQuery{ChannelID: &channel, Before: page[1].ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, top[0], next[0].ID, "replies are excluded from the top-level listing")

	replies, err := s.Messages().List(ctx, repository.MessageQuery{ParentMessageID: &parent})
	require.NoError(t, err)
	require.Len(t, replies, 1)

	summaries, err := s.Messages().ThreadSummaries(ctx, top)
	require.NoError(t, err)
	assert.Equal(t, 1, summaries[parent].ReplyCount)
	_, ok := summaries[top[1]]
	assert.False(t, ok)
}

func TestReactionUniqueTriple(t *testing.T) {
	ctx := context.Background()
	s := New()
	ws, member := uuid.New(), uuid.New()

	_, err := s.Reactions().Create(ctx, ws, 1, member, "👍")
	require.NoError(t, err)
	_, err = s.Reactions().Create(ctx, ws, 1, member, "👍")
	assert.ErrorIs(t, err, repository.ErrConflict)
	_, err = s.Reactions().Create(ctx, ws, 1, member, "🎉")
	assert.NoError(t, err)
}

func TestWithClockStampsRows(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	s := New().WithClock(func() time.Time { return at })

	ws, err := s.Workspaces().Create(ctx, "Acme", uuid.New(), "ab12cd")
	require.NoError(t, err)
	assert.True(t, ws.CreatedAt.Equal(at))
	assert.Equal(t, time.UTC, ws.CreatedAt.Location())

	msg, err := s.Messages().Create(ctx, repository.NewMessage{Body: "hi", WorkspaceID: ws.ID, MemberID: uuid.New()})
	require.NoError(t, err)
	assert.True(t, msg.CreatedAt.Equal(at))
}
