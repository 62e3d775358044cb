package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleTwiceRestoresLedger(t *testing.T) {
	f := newFixture(t)
	u1, u2 := uuid.New(), uuid.New()
	ws := f.createWorkspace(t, "Acme", u1)
	m2 := f.join(t, ws, u2)
	msg := f.postToChannel(t, ws, f.general(t, ws, u1).ID, u1, "ship it")

	id, err := f.reactions.Toggle(f.ctx, msg.ID, "👍", u2)
	require.NoError(t, err)
	require.NotNil(t, id)

	groups, err := f.reactions.ListForMessage(f.ctx, msg.ID, u1)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "👍", groups[0].Value)
	assert.Equal(t, 1, groups[0].Count)
	assert.Equal(t, []uuid.UUID{m2.ID}, groups[0].MemberIDs)

	id, err = f.reactions.Toggle(f.ctx, msg.ID, "👍", u2)
	require.NoError(t, err)
	assert.Nil(t, id)

	groups, err = f.reactions.ListForMessage(f.ctx, msg.ID, u1)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestReactionsGroupAcrossMembers(t *testing.T) {
	f := newFixture(t)
	u1, u2 := uuid.New(), uuid.New()
	ws := f.createWorkspace(t, "Acme", u1)
	f.join(t, ws, u2)
	msg := f.postToChannel(t, ws, f.general(t, ws, u1).ID, u1, "lunch?")

	for _, r := range []struct {
		user  uuid.UUID
		value string
	}{{u1, "🍕"}, {u2, "🍣"}, {u2, "🍕"}} {
		_, err := f.reactions.Toggle(f.ctx, msg.ID, r.value, r.user)
		require.NoError(t, err)
	}

	view, err := f.messages.Get(f.ctx, msg.ID, u1)
	require.NoError(t, err)
	require.Len(t, view.Reactions, 2)
	assert.Equal(t, "🍕", view.Reactions[0].Value)
	assert.Equal(t, 2, view.Reactions[0].Count)
	assert.Equal(t, "🍣", view.Reactions[1].Value)
}

func TestToggleErrors(t *testing.T) {
	f := newFixture(t)
	u1 := uuid.New()
	ws := f.createWorkspace(t, "Acme", u1)
	msg := f.postToChannel(t, ws, f.general(t, ws, u1).ID, u1, "hi")

	_, err := f.reactions.Toggle(f.ctx, 424242, "👍", u1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.reactions.Toggle(f.ctx, msg.ID, "👍", uuid.New())
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = f.reactions.Toggle(f.ctx, msg.ID, "  ", u1)
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = f.reactions.Toggle(f.ctx, msg.ID, "👍", uuid.Nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestConcurrentTogglesStayConsistent(t *testing.T) {
	f := newFixture(t)
	u1 := uuid.New()
	ws := f.createWorkspace(t, "Acme", u1)
	msg := f.postToChannel(t, ws, f.general(t, ws, u1).ID, u1, "race")

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.reactions.Toggle(f.ctx, msg.ID, "🔥", u1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// An even number of toggles lands back on "no reaction".
	left, err := f.store.Reactions().ListByMessages(f.ctx, []int64{msg.ID})
	require.NoError(t, err)
	assert.Empty(t, left)
}
