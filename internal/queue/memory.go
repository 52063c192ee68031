package queue

import (
	"context"
	"strconv"
	"sync"
	"time"

	"puma/crawler/internal/domain"
)

type MemoryQueue struct {
	mu      sync.Mutex
	items   []*domain.Request
	nextID  uint64
	notify  chan struct{}
	pollFor time.Duration
}

// NewMemoryQueue returns a FIFO queue living in the crawler process
func NewMemoryQueue(pollFor time.Duration) *MemoryQueue {
	return &MemoryQueue{
		notify:  make(chan struct{}, 1),
		pollFor: pollFor,
	}
}

func (q *MemoryQueue) Push(_ context.Context, req *domain.Request) error {
	q.mu.Lock()
	q.items = append(q.items, req)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

func (q *MemoryQueue) Pop(ctx context.Context, _ string) (*Delivery, error) {
	if d := q.take(); d != nil {
		return d, nil
	}

	timer := time.NewTimer(q.pollFor)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	case <-q.notify:
	}

	return q.take(), nil
}

func (q *MemoryQueue) Ack(context.Context, *Delivery) error {
	return nil
}

// Len reports the number of requests waiting
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *MemoryQueue) take() *Delivery {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}

	req := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	q.nextID++

	return &Delivery{ID: strconv.FormatUint(q.nextID, 10), Request: req}
}
