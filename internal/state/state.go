package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// SeenSet records identifiers that have been processed during a crawl.
// Add is an atomic check-then-insert: it reports true only for the first
// caller that presents a given id.
type SeenSet interface {
	Add(ctx context.Context, id string) (bool, error)
	Contains(ctx context.Context, id string) (bool, error)
	Len(ctx context.Context) (int64, error)
}

type memorySeenSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewMemorySeenSet() SeenSet {
	return &memorySeenSet{ids: make(map[string]struct{})}
}

func (s *memorySeenSet) Add(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		return false, nil
	}
	s.ids[id] = struct{}{}
	return true, nil
}

func (s *memorySeenSet) Contains(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.ids[id]
	return ok, nil
}

func (s *memorySeenSet) Len(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.ids)), nil
}

type redisSeenSet struct {
	redisClient *redis.Client
	key         string
}

// NewRedisSeenSet keeps the set in a Redis SET so several crawler
// processes can share one session
func NewRedisSeenSet(redisClient *redis.Client, keyPrefix, name string) SeenSet {
	return &redisSeenSet{
		redisClient: redisClient,
		key:         keyPrefix + "seen:" + name,
	}
}

func (s *redisSeenSet) Add(ctx context.Context, id string) (bool, error) {
	added, err := s.redisClient.SAdd(ctx, s.key, id).Result()
	if err != nil {
		return false, fmt.Errorf("failed to add %s to %s: %w", id, s.key, err)
	}
	return added == 1, nil
}

func (s *redisSeenSet) Contains(ctx context.Context, id string) (bool, error) {
	ok, err := s.redisClient.SIsMember(ctx, s.key, id).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check %s in %s: %w", id, s.key, err)
	}
	return ok, nil
}

func (s *redisSeenSet) Len(ctx context.Context) (int64, error) {
	n, err := s.redisClient.SCard(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.key, err)
	}
	return n, nil
}
