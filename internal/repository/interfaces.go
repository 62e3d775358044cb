package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/models"
)

// Every method takes context.Context first: it carries the request deadline
// down to the driver, so a disconnected client cancels its queries.
//
// Conventions shared by every implementation:
//   - Single-row lookups return nil, nil when the row does not exist.
//   - List methods return an empty slice, never nil.
//   - Delete methods are idempotent: deleting a missing row is not an error.
//   - Inserts that hit a unique index return ErrConflict.
//   - A limit <= 0 on a List method means "no limit".

// ErrConflict is returned when an insert violates a unique index.
var ErrConflict = errors.New("unique constraint violated")

// Store groups every repository and knows how to run a unit of work.
type Store interface {
	Users() UserRepository
	Workspaces() WorkspaceRepository
	Members() MemberRepository
	Channels() ChannelRepository
	Conversations() ConversationRepository
	Messages() MessageRepository
	Reactions() ReactionRepository

	// InTx runs fn against a Store bound to a single transaction. If fn
	// returns an error every write it made is rolled back.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// UserRepository handles identities produced by signup.
type UserRepository interface {
	Create(ctx context.Context, email, name, passwordHash string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type WorkspaceRepository interface {
	Create(ctx context.Context, name string, ownerID uuid.UUID, joinCode string) (*models.Workspace, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error)

	// ListByIDs returns the workspaces among ids that exist, oldest first.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Workspace, error)

	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdateJoinCode(ctx context.Context, id uuid.UUID, joinCode string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemberRepository is the authorization root: who belongs to which
// workspace, and with what role.
type MemberRepository interface {
	Create(ctx context.Context, userID, workspaceID uuid.UUID, role models.Role) (*models.Member, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error)

	// GetByWorkspaceAndUser is the unique (workspace_id, user_id) lookup.
	// Hot path: every authorization check goes through it.
	GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*models.Member, error)

	// ListByWorkspace pages members ordered by id. after=uuid.Nil starts
	// from the beginning.
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, after uuid.UUID, limit int) ([]models.Member, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Member, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ChannelRepository interface {
	Create(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Channel, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Channel, error)

	// ListByWorkspace returns channels oldest first.
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]models.Channel, error)

	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ConversationRepository interface {
	// GetOrCreate returns the conversation for the unordered pair, inserting
	// it if absent. Concurrent callers converge on the same row.
	GetOrCreate(ctx context.Context, workspaceID, memberA, memberB uuid.UUID) (*models.Conversation, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)

	// ListByMember returns conversations where memberID is either participant.
	ListByMember(ctx context.Context, memberID uuid.UUID, limit int) ([]models.Conversation, error)

	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]models.Conversation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NewMessage is the insert shape for a message. The repository fills in
// ID and CreatedAt.
type NewMessage struct {
	Body            string
	Image           *string
	MemberID        uuid.UUID
	WorkspaceID     uuid.UUID
	ChannelID       *uuid.UUID
	ParentMessageID *int64
	ConversationID  *uuid.UUID
}

// MessageQuery selects a page of messages in one scope.
//
// Exactly one of ChannelID, ConversationID or ParentMessageID is expected.
// With ChannelID or ConversationID alone only top-level messages are
// returned; with ParentMessageID the thread replies are returned.
//
// Results are newest first. Before=0 starts from the latest message,
// Before=n returns messages with id < n.
type MessageQuery struct {
	ChannelID       *uuid.UUID
	ConversationID  *uuid.UUID
	ParentMessageID *int64
	Before          int64
	Limit           int
}

type MessageRepository interface {
	Create(ctx context.Context, msg NewMessage) (*models.Message, error)
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	UpdateBody(ctx context.Context, id int64, body string, updatedAt time.Time) error
	Delete(ctx context.Context, id int64) error

	List(ctx context.Context, q MessageQuery) ([]models.Message, error)
	ListByMember(ctx context.Context, memberID uuid.UUID, limit int) ([]models.Message, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]models.Message, error)

	// ThreadSummaries returns reply counts for the given top-level messages,
	// keyed by parent id. Parents without replies are absent from the map.
	ThreadSummaries(ctx context.Context, parentIDs []int64) (map[int64]models.ThreadSummary, error)
}

type ReactionRepository interface {
	Create(ctx context.Context, workspaceID uuid.UUID, messageID int64, memberID uuid.UUID, value string) (*models.Reaction, error)

	// Find is the (message_id, member_id, value) lookup the toggle relies on.
	Find(ctx context.Context, messageID int64, memberID uuid.UUID, value string) (*models.Reaction, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// ListByMessages returns reactions for all the given messages, oldest first.
	ListByMessages(ctx context.Context, messageIDs []int64) ([]models.Reaction, error)

	ListByMember(ctx context.Context, memberID uuid.UUID, limit int) ([]models.Reaction, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]models.Reaction, error)
}
