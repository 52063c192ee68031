package queue

import (
	"context"

	"puma/crawler/internal/domain"
)

// Delivery is a request handed to one consumer; it must be acked once handled
type Delivery struct {
	ID      string
	Request *domain.Request
}

type Queue interface {
	Push(ctx context.Context, req *domain.Request) error
	// Pop waits briefly for the next request and returns nil when none arrived
	Pop(ctx context.Context, consumer string) (*Delivery, error)
	Ack(ctx context.Context, delivery *Delivery) error
}
