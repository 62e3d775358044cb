package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository"
)

type MessageStore struct {
	db DBTX
}

func NewMessageStore(db DBTX) *MessageStore {
	return &MessageStore{db: db}
}

const messageColumns = `id, body, image, member_id, workspace_id, channel_id,
	parent_message_id, conversation_id, created_at, updated_at`

func scanMessage(row pgx.Row, m *models.Message) error {
	return row.Scan(
		&m.ID,
		&m.Body,
		&m.Image,
		&m.MemberID,
		&m.WorkspaceID,
		&m.ChannelID,
		&m.ParentMessageID,
		&m.ConversationID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

func (s *MessageStore) Create(ctx context.Context, msg repository.NewMessage) (*models.Message, error) {
	// Messages use bigserial, so we don't pass an ID. RETURNING gives it back.
	query := `
		INSERT INTO messages (body, image, member_id, workspace_id, channel_id, parent_message_id, conversation_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + messageColumns

	var m models.Message
	err := scanMessage(s.db.QueryRow(ctx, query,
		msg.Body,
		msg.Image,
		msg.MemberID,
		msg.WorkspaceID,
		msg.ChannelID,
		msg.ParentMessageID,
		msg.ConversationID,
	), &m)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &m, nil
}

func (s *MessageStore) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	var m models.Message
	if err := scanMessage(s.db.QueryRow(ctx, query, id), &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &m, nil
}

func (s *MessageStore) UpdateBody(ctx context.Context, id int64, body string, updatedAt time.Time) error {
	query := `UPDATE messages SET body = $2, updated_at = $3 WHERE id = $1`
	if _, err := s.db.Exec(ctx, query, id, body, updatedAt); err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	return nil
}

func (s *MessageStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// List builds the WHERE clause from whichever scope fields are set. The
// (channel_id, parent_message_id, conversation_id) index serves all three
// shapes; ORDER BY id DESC walks it backwards from the cursor.
func (s *MessageStore) List(ctx context.Context, q repository.MessageQuery) ([]models.Message, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.ChannelID != nil {
		conds = append(conds, "channel_id = "+arg(*q.ChannelID))
	}
	if q.ConversationID != nil {
		conds = append(conds, "conversation_id = "+arg(*q.ConversationID))
	}
	if q.ParentMessageID != nil {
		conds = append(conds, "parent_message_id = "+arg(*q.ParentMessageID))
	} else {
		conds = append(conds, "parent_message_id IS NULL")
	}
	if q.Before > 0 {
		conds = append(conds, "id < "+arg(q.Before))
	}

	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY id DESC
		LIMIT ` + arg(limitArg(q.Limit))

	return s.list(ctx, query, args...)
}

func (s *MessageStore) ListByMember(ctx context.Context, memberID uuid.UUID, limit int) ([]models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE member_id = $1
		ORDER BY id ASC
		LIMIT $2`

	return s.list(ctx, query, memberID, limitArg(limit))
}

func (s *MessageStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE workspace_id = $1
		ORDER BY id ASC
		LIMIT $2`

	return s.list(ctx, query, workspaceID, limitArg(limit))
}

func (s *MessageStore) list(ctx context.Context, query string, args ...any) ([]models.Message, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := scanMessage(rows, &m); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func (s *MessageStore) ThreadSummaries(ctx context.Context, parentIDs []int64) (map[int64]models.ThreadSummary, error) {
	summaries := make(map[int64]models.ThreadSummary, len(parentIDs))
	if len(parentIDs) == 0 {
		return summaries, nil
	}

	query := `
		SELECT parent_message_id, COUNT(*)::int, MAX(created_at)
		FROM messages
		WHERE parent_message_id = ANY($1)
		GROUP BY parent_message_id`

	rows, err := s.db.Query(ctx, query, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("thread summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ts models.ThreadSummary
		if err := rows.Scan(&ts.ParentMessageID, &ts.ReplyCount, &ts.LastReplyAt); err != nil {
			return nil, fmt.Errorf("scan thread summary: %w", err)
		}
		summaries[ts.ParentMessageID] = ts
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate thread summaries: %w", err)
	}
	return summaries, nil
}
