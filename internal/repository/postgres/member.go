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

type MemberStore struct {
	db DBTX
}

func NewMemberStore(db DBTX) *MemberStore {
	return &MemberStore{db: db}
}

const memberColumns = `id, user_id, workspace_id, role, created_at`

func scanMember(row pgx.Row, m *models.Member) error {
	var role string
	if err := row.Scan(&m.ID, &m.UserID, &m.WorkspaceID, &role, &m.CreatedAt); err != nil {
		return err
	}
	parsed, err := models.ParseRole(role)
	if err != nil {
		return err
	}
	m.Role = parsed
	return nil
}

// Create inserts a member. The unique index on (workspace_id, user_id)
// turns a concurrent double-join into ErrConflict instead of a second row.
func (s *MemberStore) Create(ctx context.Context, userID, workspaceID uuid.UUID, role models.Role) (*models.Member, error) {
	query := `
		INSERT INTO members (user_id, workspace_id, role)
		VALUES ($1, $2, $3)
		RETURNING ` + memberColumns

	var m models.Member
	if err := scanMember(s.db.QueryRow(ctx, query, userID, workspaceID, string(role)), &m); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("insert member: %w", err)
	}
	return &m, nil
}

func (s *MemberStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return s.getOne(ctx, query, id)
}

func (s *MemberStore) GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*models.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE workspace_id = $1 AND user_id = $2`
	return s.getOne(ctx, query, workspaceID, userID)
}

func (s *MemberStore) getOne(ctx context.Context, query string, args ...any) (*models.Member, error) {
	var m models.Member
	if err := scanMember(s.db.QueryRow(ctx, query, args...), &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &m, nil
}

func (s *MemberStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, after uuid.UUID, limit int) ([]models.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE workspace_id = $1 AND id > $2
		ORDER BY id ASC
		LIMIT $3`

	return s.list(ctx, query, workspaceID, after, limitArg(limit))
}

func (s *MemberStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE user_id = $1
		ORDER BY created_at ASC`

	return s.list(ctx, query, userID)
}

func (s *MemberStore) list(ctx context.Context, query string, args ...any) ([]models.Member, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := make([]models.Member, 0)
	for rows.Next() {
		var m models.Member
		if err := scanMember(rows, &m); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

func (s *MemberStore) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	if _, err := s.db.Exec(ctx, `UPDATE members SET role = $2 WHERE id = $1`, id, string(role)); err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	return nil
}

// Delete removes one member row. It does not touch the member's messages,
// reactions or conversations; the cascade engine deletes those first.
func (s *MemberStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM members WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}
