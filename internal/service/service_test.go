package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	ctx   context.Context
	store *memory.Store

	workspaces    *WorkspaceService
	members       *MemberService
	channels      *ChannelService
	conversations *ConversationService
	messages      *MessageService
	reactions     *ReactionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	logger := zap.NewNop()
	cascade := NewCascadeEngine(logger)
	return &fixture{
		ctx:           context.Background(),
		store:         store,
		workspaces:    NewWorkspaceService(store, cascade, logger),
		members:       NewMemberService(store, cascade, logger),
		channels:      NewChannelService(store, cascade, logger),
		conversations: NewConversationService(store),
		messages:      NewMessageService(store, cascade, logger),
		reactions:     NewReactionService(store),
	}
}

// fixedCodes makes the workspace service hand out codes in order, repeating
// the last one when the list runs out.
func (f *fixture) fixedCodes(codes ...string) {
	i := 0
	f.workspaces.generateCode = func() (string, error) {
		c := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return c, nil
	}
}

func (f *fixture) createWorkspace(t *testing.T, name string, owner uuid.UUID) *models.Workspace {
	t.Helper()
	ws, err := f.workspaces.Create(f.ctx, name, owner)
	require.NoError(t, err)
	return ws
}

func (f *fixture) join(t *testing.T, ws *models.Workspace, user uuid.UUID) *models.Member {
	t.Helper()
	m, err := f.workspaces.Join(f.ctx, ws.ID, ws.JoinCode, user)
	require.NoError(t, err)
	return m
}

func (f *fixture) memberOf(t *testing.T, ws *models.Workspace, user uuid.UUID) *models.Member {
	t.Helper()
	m, err := f.members.Current(f.ctx, ws.ID, user)
	require.NoError(t, err)
	return m
}

func (f *fixture) general(t *testing.T, ws *models.Workspace, user uuid.UUID) models.Channel {
	t.Helper()
	chs, err := f.channels.List(f.ctx, ws.ID, user)
	require.NoError(t, err)
	require.NotEmpty(t, chs)
	return chs[0]
}

func (f *fixture) postToChannel(t *testing.T, ws *models.Workspace, ch uuid.UUID, user uuid.UUID, body string) *models.Message {
	t.Helper()
	msg, err := f.messages.Post(f.ctx, PostInput{Body: body, WorkspaceID: ws.ID, ChannelID: &ch}, user)
	require.NoError(t, err)
	return msg
}

func (f *fixture) reply(t *testing.T, ws *models.Workspace, parent int64, user uuid.UUID, body string) *models.Message {
	t.Helper()
	msg, err := f.messages.Post(f.ctx, PostInput{Body: body, WorkspaceID: ws.ID, ParentMessageID: &parent}, user)
	require.NoError(t, err)
	return msg
}
