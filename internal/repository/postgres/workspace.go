package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lalith-99/teamchat/internal/models"
)

type WorkspaceStore struct {
	db DBTX
}

func NewWorkspaceStore(db DBTX) *WorkspaceStore {
	return &WorkspaceStore{db: db}
}

const workspaceColumns = `id, name, user_id, join_code, created_at`

func scanWorkspace(row pgx.Row, w *models.Workspace) error {
	return row.Scan(&w.ID, &w.Name, &w.UserID, &w.JoinCode, &w.CreatedAt)
}

func (s *WorkspaceStore) Create(ctx context.Context, name string, ownerID uuid.UUID, joinCode string) (*models.Workspace, error) {
	query := `
		INSERT INTO workspaces (name, user_id, join_code)
		VALUES ($1, $2, $3)
		RETURNING ` + workspaceColumns

	var w models.Workspace
	if err := scanWorkspace(s.db.QueryRow(ctx, query, name, ownerID, joinCode), &w); err != nil {
		return nil, fmt.Errorf("insert workspace: %w", err)
	}
	return &w, nil
}

func (s *WorkspaceStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE id = $1`

	var w models.Workspace
	if err := scanWorkspace(s.db.QueryRow(ctx, query, id), &w); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}
	return &w, nil
}

func (s *WorkspaceStore) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Workspace, error) {
	workspaces := make([]models.Workspace, 0, len(ids))
	if len(ids) == 0 {
		return workspaces, nil
	}

	query := `
		SELECT ` + workspaceColumns + `
		FROM workspaces
		WHERE id = ANY($1)
		ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w models.Workspace
		if err := scanWorkspace(rows, &w); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}
	return workspaces, nil
}

func (s *WorkspaceStore) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	if _, err := s.db.Exec(ctx, `UPDATE workspaces SET name = $2 WHERE id = $1`, id, name); err != nil {
		return fmt.Errorf("update workspace name: %w", err)
	}
	return nil
}

func (s *WorkspaceStore) UpdateJoinCode(ctx context.Context, id uuid.UUID, joinCode string) error {
	if _, err := s.db.Exec(ctx, `UPDATE workspaces SET join_code = $2 WHERE id = $1`, id, joinCode); err != nil {
		return fmt.Errorf("update join code: %w", err)
	}
	return nil
}

func (s *WorkspaceStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	return nil
}
