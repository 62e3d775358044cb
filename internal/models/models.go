package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity a request authenticates as. Members, not users,
// carry permissions; a user is just the stable id the token resolves to.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Workspace is the top-level tenant. UserID is the user who created it.
//
// JoinCode is a 6-character lowercase base36 token. Anyone holding it can
// join as a member until an admin regenerates it.
type Workspace struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	UserID    uuid.UUID `json:"user_id"`
	JoinCode  string    `json:"join_code"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkspaceInfo is what a non-member may see about a workspace before
// joining it.
type WorkspaceInfo struct {
	Name     string `json:"name"`
	IsMember bool   `json:"is_member"`
}

// Member is a user's role-scoped identity inside one workspace.
// There is at most one Member per (WorkspaceID, UserID).
type Member struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// Channel is a named message stream inside a workspace (#general, ...).
type Channel struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Conversation is a 1:1 direct-message pairing between two members of the
// same workspace. The pair is unordered.
type Conversation struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	MemberOneID uuid.UUID `json:"member_one_id"`
	MemberTwoID uuid.UUID `json:"member_two_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasParticipant reports whether memberID is one side of the pairing.
func (c *Conversation) HasParticipant(memberID uuid.UUID) bool {
	return c.MemberOneID == memberID || c.MemberTwoID == memberID
}

// Message is a single chat message.
//
// A top-level message lives in exactly one of ChannelID or ConversationID.
// A thread reply additionally has ParentMessageID pointing at a top-level
// message in the same channel or conversation.
//
// IDs are bigserial: monotonically increasing, so they double as the
// pagination cursor.
type Message struct {
	ID              int64      `json:"id"`
	Body            string     `json:"body"`
	Image           *string    `json:"image,omitempty"`
	MemberID        uuid.UUID  `json:"member_id"`
	WorkspaceID     uuid.UUID  `json:"workspace_id"`
	ChannelID       *uuid.UUID `json:"channel_id,omitempty"`
	ParentMessageID *int64     `json:"parent_message_id,omitempty"`
	ConversationID  *uuid.UUID `json:"conversation_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// IsReply reports whether the message belongs to a thread.
func (m *Message) IsReply() bool {
	return m.ParentMessageID != nil
}

// Reaction is one member's emoji on one message. At most one row exists
// per (MessageID, MemberID, Value).
type Reaction struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	MessageID   int64     `json:"message_id"`
	MemberID    uuid.UUID `json:"member_id"`
	Value       string    `json:"value"`
	CreatedAt   time.Time `json:"created_at"`
}

// ThreadSummary describes the replies under a top-level message.
type ThreadSummary struct {
	ParentMessageID int64     `json:"-"`
	ReplyCount      int       `json:"reply_count"`
	LastReplyAt     time.Time `json:"last_reply_at"`
}
