package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lalith-99/teamchat/internal/models"
)

type ChannelStore struct {
	db DBTX
}

func NewChannelStore(db DBTX) *ChannelStore {
	return &ChannelStore{db: db}
}

func (s *ChannelStore) Create(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Channel, error) {
	query := `
		INSERT INTO channels (workspace_id, name)
		VALUES ($1, $2)
		RETURNING id, workspace_id, name, created_at`

	var ch models.Channel
	err := s.db.QueryRow(ctx, query, workspaceID, name).Scan(
		&ch.ID,
		&ch.WorkspaceID,
		&ch.Name,
		&ch.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert channel: %w", err)
	}
	return &ch, nil
}

func (s *ChannelStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	query := `
		SELECT id, workspace_id, name, created_at
		FROM channels
		WHERE id = $1`

	var ch models.Channel
	err := s.db.QueryRow(ctx, query, id).Scan(
		&ch.ID,
		&ch.WorkspaceID,
		&ch.Name,
		&ch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return &ch, nil
}

func (s *ChannelStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]models.Channel, error) {
	query := `
		SELECT id, workspace_id, name, created_at
		FROM channels
		WHERE workspace_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2`

	rows, err := s.db.Query(ctx, query, workspaceID, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	channels := make([]models.Channel, 0)
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(
			&ch.ID,
			&ch.WorkspaceID,
			&ch.Name,
			&ch.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channels: %w", err)
	}

	return channels, nil
}

func (s *ChannelStore) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	if _, err := s.db.Exec(ctx, `UPDATE channels SET name = $2 WHERE id = $1`, id, name); err != nil {
		return fmt.Errorf("update channel name: %w", err)
	}
	return nil
}

func (s *ChannelStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM channels WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}
