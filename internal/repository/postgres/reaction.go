package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository"
)

type ReactionStore struct {
	db DBTX
}

func NewReactionStore(db DBTX) *ReactionStore {
	return &ReactionStore{db: db}
}

const reactionColumns = `id, workspace_id, message_id, member_id, value, created_at`

func scanReaction(row pgx.Row, r *models.Reaction) error {
	return row.Scan(&r.ID, &r.WorkspaceID, &r.MessageID, &r.MemberID, &r.Value, &r.CreatedAt)
}

func (s *ReactionStore) Create(ctx context.Context, workspaceID uuid.UUID, messageID int64, memberID uuid.UUID, value string) (*models.Reaction, error) {
	query := `
		INSERT INTO reactions (workspace_id, message_id, member_id, value)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + reactionColumns

	var r models.Reaction
	if err := scanReaction(s.db.QueryRow(ctx, query, workspaceID, messageID, memberID, value), &r); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("insert reaction: %w", err)
	}
	return &r, nil
}

func (s *ReactionStore) Find(ctx context.Context, messageID int64, memberID uuid.UUID, value string) (*models.Reaction, error) {
	query := `
		SELECT ` + reactionColumns + `
		FROM reactions
		WHERE message_id = $1 AND member_id = $2 AND value = $3`

	var r models.Reaction
	if err := scanReaction(s.db.QueryRow(ctx, query, messageID, memberID, value), &r); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find reaction: %w", err)
	}
	return &r, nil
}

func (s *ReactionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM reactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete reaction: %w", err)
	}
	return nil
}

func (s *ReactionStore) ListByMessages(ctx context.Context, messageIDs []int64) ([]models.Reaction, error) {
	if len(messageIDs) == 0 {
		return make([]models.Reaction, 0), nil
	}
	query := `
		SELECT ` + reactionColumns + `
		FROM reactions
		WHERE message_id = ANY($1)
		ORDER BY created_at ASC, id ASC`

	return s.list(ctx, query, messageIDs)
}

func (s *ReactionStore) ListByMember(ctx context.Context, memberID uuid.UUID, limit int) ([]models.Reaction, error) {
	query := `
		SELECT ` + reactionColumns + `
		FROM reactions
		WHERE member_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2`

	return s.list(ctx, query, memberID, limitArg(limit))
}

func (s *ReactionStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]models.Reaction, error) {
	query := `
		SELECT ` + reactionColumns + `
		FROM reactions
		WHERE workspace_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2`

	return s.list(ctx, query, workspaceID, limitArg(limit))
}

func (s *ReactionStore) list(ctx context.Context, query string, args ...any) ([]models.Reaction, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	defer rows.Close()

	reactions := make([]models.Reaction, 0)
	for rows.Next() {
		var r models.Reaction
		if err := scanReaction(rows, &r); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		reactions = append(reactions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reactions: %w", err)
	}
	return reactions, nil
}
