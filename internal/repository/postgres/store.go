package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/teamchat/internal/repository"
)

// DBTX is the subset of pgx shared by *pgxpool.Pool and pgx.Tx. Every
// XxxStore runs its SQL through it, so the same store code works inside
// and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// uniqueViolation is the Postgres SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

// Store implements repository.Store on a pgx pool.
type Store struct {
	pool *pgxpool.Pool // nil once bound to a transaction
	db   DBTX
}

var _ repository.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

func (s *Store) Users() repository.UserRepository { return NewUserStore(s.db) }

func (s *Store) Workspaces() repository.WorkspaceRepository { return NewWorkspaceStore(s.db) }

func (s *Store) Members() repository.MemberRepository { return NewMemberStore(s.db) }

func (s *Store) Channels() repository.ChannelRepository { return NewChannelStore(s.db) }

func (s *Store) Conversations() repository.ConversationRepository {
	return NewConversationStore(s.db)
}

func (s *Store) Messages() repository.MessageRepository { return NewMessageStore(s.db) }

func (s *Store) Reactions() repository.ReactionRepository { return NewReactionStore(s.db) }

// InTx runs fn inside a single Postgres transaction. pgx.BeginFunc commits
// when fn returns nil and rolls back otherwise. Calling InTx on a store
// that is already transaction-bound reuses the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&Store{db: tx})
	})
	if err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// limitArg turns a non-positive limit into NULL, which Postgres reads as
// LIMIT ALL.
func limitArg(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
