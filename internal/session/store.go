package session

import (
	"context"
	"time"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
	"github.com/boddenberg/givecalc-bfa-go/internal/infra/cache"
	"github.com/boddenberg/givecalc-bfa-go/internal/infra/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store keeps live sessions in memory. A session expires after ttl without
// access; it is never persisted.
type Store struct {
	sessions *cache.InMemory[*Session]
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewStore creates a session store.
func NewStore(ttl time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Store {
	s := &Store{metrics: metrics, logger: logger, now: time.Now}
	s.sessions = cache.New[*Session](ttl, s.evicted)
	return s
}

func (s *Store) evicted(id string, sess *Session) {
	s.metrics.SessionEnded()
	s.logger.Debug("session ended",
		zap.String("session_id", id),
		zap.Duration("age", s.now().Sub(sess.CreatedAt)),
	)
}

// Create starts a new session with a random id.
func (s *Store) Create() *Session {
	sess := New(uuid.NewString(), s.now().UTC())
	s.sessions.Set(sess.ID, sess)
	s.metrics.SessionStarted()
	s.logger.Debug("session started", zap.String("session_id", sess.ID))
	return sess
}

// Get returns the session with id and refreshes its expiry.
func (s *Store) Get(id string) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "session", ID: id}
	}
	return sess, nil
}

// Delete ends the session with id.
func (s *Store) Delete(id string) error {
	if _, ok := s.sessions.Get(id); !ok {
		return &domain.ErrNotFound{Resource: "session", ID: id}
	}
	s.sessions.Delete(id)
	return nil
}

// Len returns the number of held sessions.
func (s *Store) Len() int {
	return s.sessions.Len()
}

// Run expires idle sessions until ctx is cancelled.
func (s *Store) Run(ctx context.Context) error {
	return s.sessions.Run(ctx)
}
