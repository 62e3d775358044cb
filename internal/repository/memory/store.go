// Package memory is an in-process implementation of repository.Store.
//
// It backs the service and handler tests and the STORAGE=memory dev mode.
// It enforces the same unique indexes as the Postgres schema, and InTx gives
// real rollback: the transaction works on a copy of the state that only
// replaces the live state when fn succeeds.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository"
)

type state struct {
	users         map[uuid.UUID]models.User
	workspaces    map[uuid.UUID]models.Workspace
	members       map[uuid.UUID]models.Member
	channels      map[uuid.UUID]models.Channel
	conversations map[uuid.UUID]models.Conversation
	messages      map[int64]models.Message
	reactions     map[uuid.UUID]models.Reaction

	// order records insertion sequence for uuid-keyed rows so "oldest
	// first" listings are stable even when timestamps tie.
	order   map[uuid.UUID]int64
	seq     int64
	lastMsg int64
}

func newState() *state {
	return &state{
		users:         make(map[uuid.UUID]models.User),
		workspaces:    make(map[uuid.UUID]models.Workspace),
		members:       make(map[uuid.UUID]models.Member),
		channels:      make(map[uuid.UUID]models.Channel),
		conversations: make(map[uuid.UUID]models.Conversation),
		messages:      make(map[int64]models.Message),
		reactions:     make(map[uuid.UUID]models.Reaction),
		order:         make(map[uuid.UUID]int64),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		users:         cloneMap(s.users),
		workspaces:    cloneMap(s.workspaces),
		members:       cloneMap(s.members),
		channels:      cloneMap(s.channels),
		conversations: cloneMap(s.conversations),
		messages:      cloneMap(s.messages),
		reactions:     cloneMap(s.reactions),
		order:         cloneMap(s.order),
		seq:           s.seq,
		lastMsg:       s.lastMsg,
	}
}

func (s *state) newID() uuid.UUID {
	id := uuid.New()
	s.seq++
	s.order[id] = s.seq
	return id
}

// sortByOrder sorts rows oldest first by insertion sequence.
func sortByOrder[T any](st *state, rows []T, id func(T) uuid.UUID) {
	sort.Slice(rows, func(i, j int) bool {
		return st.order[id(rows[i])] < st.order[id(rows[j])]
	})
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

type database struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

// Store implements repository.Store. The zero value is not usable; call New.
type Store struct {
	db *database
	tx *state // non-nil when bound to a transaction; the db lock is already held
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{db: &database{st: newState(), now: time.Now}}
}

// WithClock replaces the clock used for CreatedAt. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.db.now = now
	return s
}

func (s *Store) read(fn func(st *state)) {
	if s.tx != nil {
		fn(s.tx)
		return
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	fn(s.db.st)
}

func (s *Store) write(fn func(st *state) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return fn(s.db.st)
}

func (s *Store) now() time.Time {
	return s.db.now().UTC()
}

func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	working := s.db.st.clone()
	if err := fn(&Store{db: s.db, tx: working}); err != nil {
		return err
	}
	s.db.st = working
	return nil
}

func (s *Store) Users() repository.UserRepository                 { return &userRepo{s} }
func (s *Store) Workspaces() repository.WorkspaceRepository       { return &workspaceRepo{s} }
func (s *Store) Members() repository.MemberRepository             { return &memberRepo{s} }
func (s *Store) Channels() repository.ChannelRepository           { return &channelRepo{s} }
func (s *Store) Conversations() repository.ConversationRepository { return &conversationRepo{s} }
func (s *Store) Messages() repository.MessageRepository           { return &messageRepo{s} }
func (s *Store) Reactions() repository.ReactionRepository         { return &reactionRepo{s} }

func uuidLess(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
