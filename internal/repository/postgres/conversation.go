package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lalith-99/teamchat/internal/models"
)

type ConversationStore struct {
	db DBTX
}

func NewConversationStore(db DBTX) *ConversationStore {
	return &ConversationStore{db: db}
}

const conversationColumns = `id, workspace_id, member_one_id, member_two_id, created_at`

func scanConversation(row pgx.Row, c *models.Conversation) error {
	return row.Scan(&c.ID, &c.WorkspaceID, &c.MemberOneID, &c.MemberTwoID, &c.CreatedAt)
}

// GetOrCreate is a compare-and-insert. The unique index
// conversations_pair_idx covers (workspace_id, LEAST, GREATEST), so a
// concurrent insert of the same pair either waits and hits DO NOTHING or
// wins; the follow-up SELECT then reads whichever row was committed.
func (s *ConversationStore) GetOrCreate(ctx context.Context, workspaceID, memberA, memberB uuid.UUID) (*models.Conversation, error) {
	insert := `
		INSERT INTO conversations (workspace_id, member_one_id, member_two_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`

	if _, err := s.db.Exec(ctx, insert, workspaceID, memberA, memberB); err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}

	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE workspace_id = $1
		  AND LEAST(member_one_id, member_two_id) = LEAST($2::uuid, $3::uuid)
		  AND GREATEST(member_one_id, member_two_id) = GREATEST($2::uuid, $3::uuid)`

	var c models.Conversation
	if err := scanConversation(s.db.QueryRow(ctx, query, workspaceID, memberA, memberB), &c); err != nil {
		return nil, fmt.Errorf("get conversation pair: %w", err)
	}
	return &c, nil
}

func (s *ConversationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`

	var c models.Conversation
	if err := scanConversation(s.db.QueryRow(ctx, query, id), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &c, nil
}

func (s *ConversationStore) ListByMember(ctx context.Context, memberID uuid.UUID, limit int) ([]models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE member_one_id = $1 OR member_two_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2`

	return s.list(ctx, query, memberID, limitArg(limit))
}

func (s *ConversationStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE workspace_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2`

	return s.list(ctx, query, workspaceID, limitArg(limit))
}

func (s *ConversationStore) list(ctx context.Context, query string, args ...any) ([]models.Conversation, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]models.Conversation, 0)
	for rows.Next() {
		var c models.Conversation
		if err := scanConversation(rows, &c); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return conversations, nil
}

func (s *ConversationStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}
