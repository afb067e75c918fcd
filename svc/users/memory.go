package users

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/useradmin/pkg/logger"
)

// MemoryService keeps users in an ordered slice guarded by a mutex.
// Listing is immediate; every other call waits for the configured latency
// first, so the loading phases of the workflows are observable.
type MemoryService struct {
	mu      sync.RWMutex
	users   []User
	latency time.Duration
	newID   func() string
	logger  *slog.Logger
}

// MemoryOption configures a MemoryService.
type MemoryOption func(*MemoryService)

// WithLatency delays Get, Create, Update and Delete by d.
func WithLatency(d time.Duration) MemoryOption {
	return func(s *MemoryService) {
		s.latency = d
	}
}

// WithSeed replaces the default fixtures.
func WithSeed(users ...User) MemoryOption {
	return func(s *MemoryService) {
		s.users = slices.Clone(users)
	}
}

// WithIDGenerator overrides UUID generation.
func WithIDGenerator(fn func() string) MemoryOption {
	return func(s *MemoryService) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithMemoryLogger sets the logger used for mutations.
func WithMemoryLogger(l *slog.Logger) MemoryOption {
	return func(s *MemoryService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewMemoryService returns a service seeded with Fixtures unless WithSeed is given.
func NewMemoryService(opts ...MemoryOption) *MemoryService {
	s := &MemoryService{
		users:  Fixtures(),
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("users.memory"))
	return s
}

func (s *MemoryService) List(ctx context.Context) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Summary())
	}
	return out, nil
}

func (s *MemoryService) Get(ctx context.Context, id string) (User, error) {
	if err := s.wait(ctx); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(id)
	if i < 0 {
		return User{}, ErrNotFound
	}
	return s.users[i], nil
}

func (s *MemoryService) Create(ctx context.Context, d Draft) (string, error) {
	d, err := prepare(d)
	if err != nil {
		return "", err
	}
	if err := s.wait(ctx); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	s.users = append(s.users, User{ID: id, Draft: d})
	s.logger.DebugContext(ctx, "user created", logger.UserID(id))
	return id, nil
}

func (s *MemoryService) Update(ctx context.Context, u User) error {
	d, err := prepare(u.Draft)
	if err != nil {
		return err
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(u.ID)
	if i < 0 {
		return ErrNotFound
	}
	s.users[i] = User{ID: u.ID, Draft: d}
	s.logger.DebugContext(ctx, "user updated", logger.UserID(u.ID))
	return nil
}

func (s *MemoryService) Delete(ctx context.Context, id string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.users = slices.Delete(s.users, i, i+1)
	s.logger.DebugContext(ctx, "user deleted", logger.UserID(id))
	return nil
}

// index must be called with the lock held.
func (s *MemoryService) index(id string) int {
	return slices.IndexFunc(s.users, func(u User) bool { return u.ID == id })
}

func (s *MemoryService) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
