package engine

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"habitquest/internal/storage"
)

// Clock supplies the current time. Tests inject a fixed clock.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// DefaultLeaderboardSize is used when callers pass a non-positive limit.
const DefaultLeaderboardSize = 10

type Service struct {
	db    *sql.DB
	repos *storage.Repos

	clock          Clock
	loc            *time.Location
	emitter        Emitter
	logger         *slog.Logger
	penaltyPercent int

	locks keyedMutex
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLocation sets the time zone that defines day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithEmitter(e Emitter) Option {
	return func(s *Service) { s.emitter = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPenaltyPercent sets the share of maxHP lost on a failed quest.
func WithPenaltyPercent(pct int) Option {
	return func(s *Service) {
		if pct >= 0 && pct <= 100 {
			s.penaltyPercent = pct
		}
	}
}

// NewService wires the engine to an open database. The caller keeps
// ownership of db and closes it after the service is done.
func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:             db,
		repos:          storage.NewRepos(db),
		clock:          realClock{},
		loc:            time.UTC,
		emitter:        NopEmitter{},
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		penaltyPercent: DefaultHPPenaltyPercent,
		locks:          keyedMutex{locks: make(map[int64]*lockEntry)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Repos() *storage.Repos { return s.repos }

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// Today returns the scheduling period containing the current time.
func (s *Service) Today() Period {
	return DayPeriod(s.clock.Now(), s.loc)
}

// EnsurePlayer creates the player with default stats when it does not exist
// yet and returns the stored record.
func (s *Service) EnsurePlayer(ctx context.Context, id int64, name string) (*storage.Player, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.repos.Players.Create(ctx, id, strings.TrimSpace(name), s.now()); err != nil {
		return nil, storageErr("ensure player", err)
	}
	return s.Player(ctx, id)
}

func (s *Service) Player(ctx context.Context, id int64) (*storage.Player, error) {
	p, err := s.repos.Players.Get(ctx, id)
	if err != nil {
		return nil, storageErr("get player", err)
	}
	if p == nil {
		return nil, NotFoundError{Kind: "player", ID: id}
	}
	return p, nil
}

// Leaderboard returns the top players by level, then xp.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]storage.Player, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	players, err := s.repos.Players.Leaderboard(ctx, limit)
	if err != nil {
		return nil, storageErr("leaderboard", err)
	}
	return players, nil
}

func loadPlayer(ctx context.Context, r *storage.Repos, id int64) (*storage.Player, error) {
	p, err := r.Players.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NotFoundError{Kind: "player", ID: id}
	}
	return p, nil
}

// loadQuest returns the quest only when it belongs to userID.
func loadQuest(ctx context.Context, r *storage.Repos, userID, questID int64) (*storage.Quest, error) {
	q, err := r.Quests.Get(ctx, questID)
	if err != nil {
		return nil, err
	}
	if q == nil || q.UserID != userID {
		return nil, NotFoundError{Kind: "quest", ID: questID}
	}
	return q, nil
}

// keyedMutex serializes read-modify-write sequences per player.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key int64) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
