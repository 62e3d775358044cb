package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeChannelName(t *testing.T) {
	tests := map[string]string{
		"Q3 Planning":     "q3-planning",
		"  random  ":      "random",
		"Eng   Ops  Team": "eng-ops-team",
		"already-dashed":  "already-dashed",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeChannelName(in), in)
	}
}

func TestChannelLifecycle(t *testing.T) {
	f := newFixture(t)
	u1, u2 := uuid.New(), uuid.New()
	ws := f.createWorkspace(t, "Acme", u1)
	f.join(t, ws, u2)

	_, err := f.channels.Create(f.ctx, ws.ID, "Random", u2)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = f.channels.Create(f.ctx, ws.ID, "ab", u1)
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	ch, err := f.channels.Create(f.ctx, ws.ID, "Q3 Planning", u1)
	require.NoError(t, err)
	assert.Equal(t, "q3-planning", ch.Name)

	got, err := f.channels.Get(f.ctx, ch.ID, u2)
	require.NoError(t, err)
	assert.Equal(t, ch.ID, got.ID)

	_, err = f.channels.Get(f.ctx, ch.ID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	renamed, err := f.channels.Rename(f.ctx, ch.ID, "Q4 Planning", u1)
	require.NoError(t, err)
	assert.Equal(t, "q4-planning", renamed.Name)

	root := f.postToChannel(t, ws, ch.ID, u2, "agenda")
	f.reply(t, ws, root.ID, u1, "added")

	_, err = f.channels.Remove(f.ctx, ch.ID, u2)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	stats, err := f.channels.Remove(f.ctx, ch.ID, u1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Channels)
	assert.Equal(t, 2, stats.Messages)

	_, err = f.channels.Get(f.ctx, ch.ID, u1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	chs, err := f.channels.List(f.ctx, ws.ID, u1)
	require.NoError(t, err)
	require.Len(t, chs, 1)
	assert.Equal(t, "general", chs[0].Name)
}
