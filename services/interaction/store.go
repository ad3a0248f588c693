package interaction

import (
	"context"
	"sync"
	"time"

	"fieldbot/models"
	"fieldbot/utils"

	"go.uber.org/zap"
)

// Store holds at most one pending interaction per conversation. Registering
// replaces any previous entry (last write wins); Consume is an atomic
// read-and-delete so two concurrent button clicks cannot both succeed.
type Store interface {
	Set(ctx context.Context, conversationID string, pi models.PendingInteraction) error
	// Consume returns (nil, nil) when nothing is pending or the entry expired.
	Consume(ctx context.Context, conversationID string) (*models.PendingInteraction, error)
}

// MemoryStore is the in-process implementation: a mutex-guarded map with
// lazy expiry on read plus a periodic sweep. Correct only for a single
// process; deployments behind multiple instances use RedisStore.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]models.PendingInteraction
	ttl     time.Duration
	now     func() time.Time
	stop    chan struct{}
	logger  *zap.Logger
}

func NewMemoryStore(ttl time.Duration, logger *zap.Logger) *MemoryStore {
	if ttl <= 0 {
		ttl = utils.PendingInteractionTTL
	}
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &MemoryStore{
		entries: make(map[string]models.PendingInteraction),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
		logger:  logger,
	}
}

func (s *MemoryStore) Set(_ context.Context, conversationID string, pi models.PendingInteraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pi.ConversationID = conversationID
	pi.ExpiresAt = s.now().Add(s.ttl)
	s.entries[conversationID] = pi
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, conversationID string) (*models.PendingInteraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pi, ok := s.entries[conversationID]
	if !ok {
		return nil, nil
	}
	delete(s.entries, conversationID)
	if pi.Expired(s.now()) {
		return nil, nil
	}
	return &pi, nil
}

// StartSweeper evicts expired entries in the background until Stop is called.
func (s *MemoryStore) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = utils.InteractionSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *MemoryStore) Stop() {
	close(s.stop)
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, pi := range s.entries {
		if pi.Expired(now) {
			delete(s.entries, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("swept expired pending interactions", zap.Int("removed", removed))
	}
}
