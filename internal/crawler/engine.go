// Package crawler drives the walker and normalizer: it drains the work queue,
// dispatches each request, routes the response to its handler and feeds the
// resulting requests back into the queue and the records into the sink.
package crawler

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"

	"puma/crawler/internal/client"
	"puma/crawler/internal/domain"
	"puma/crawler/internal/normalizer"
	"puma/crawler/internal/queue"
	"puma/crawler/internal/state"
	"puma/crawler/internal/walker"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Sink receives normalized records
type Sink interface {
	Write(ctx context.Context, product *domain.Product) error
}

// Stats summarizes a crawl
type Stats struct {
	Requests int64
	Failed   int64
	Filtered int64
	Products int64
}

type Engine struct {
	queue        queue.Queue
	client       client.Client
	walker       *walker.Walker
	normalizer   *normalizer.Normalizer
	sink         Sink
	fingerprints state.SeenSet
	workers      int

	// pending counts requests pushed but not yet fully processed
	pending  atomic.Int64
	requests atomic.Int64
	failed   atomic.Int64
	filtered atomic.Int64
	products atomic.Int64
}

// NewEngine wires a crawl. A nil fingerprints set disables duplicate request filtering.
func NewEngine(
	queue queue.Queue,
	client client.Client,
	walker *walker.Walker,
	normalizer *normalizer.Normalizer,
	sink Sink,
	fingerprints state.SeenSet,
	workers int,
) *Engine {
	return &Engine{
		queue:        queue,
		client:       client,
		walker:       walker,
		normalizer:   normalizer,
		sink:         sink,
		fingerprints: fingerprints,
		workers:      max(1, workers),
	}
}

// Run seeds the queue and processes requests until the queue stays empty
// while no worker is busy
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Schedule(ctx, e.walker.SeedRequest()); err != nil {
		return fmt.Errorf("failed to schedule seed request: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.workers; i++ {
		consumer := fmt.Sprintf("worker-%d", i+1)
		g.Go(func() error {
			return e.work(ctx, consumer)
		})
	}

	err := g.Wait()

	stats := e.Stats()
	log.Infof("✅ Crawl finished: %d requests, %d failed, %d filtered, %d products",
		stats.Requests, stats.Failed, stats.Filtered, stats.Products)

	return err
}

func (e *Engine) Stats() Stats {
	return Stats{
		Requests: e.requests.Load(),
		Failed:   e.failed.Load(),
		Filtered: e.filtered.Load(),
		Products: e.products.Load(),
	}
}

// Schedule enqueues a request unless an identical one was already scheduled
func (e *Engine) Schedule(ctx context.Context, req *domain.Request) error {
	if e.fingerprints != nil && !req.DontFilter {
		added, err := e.fingerprints.Add(ctx, Fingerprint(req))
		if err != nil {
			return err
		}
		if !added {
			e.filtered.Add(1)
			log.Debugf("Filtered duplicate request %s %s", req.Method, req.URL)
			return nil
		}
	}

	e.pending.Add(1)
	if err := e.queue.Push(ctx, req); err != nil {
		e.pending.Add(-1)
		return err
	}
	return nil
}

// Handle routes a response to the handler its request designated
func (e *Engine) Handle(ctx context.Context, resp *domain.Response) ([]domain.Output, error) {
	if resp.Request == nil {
		return nil, errors.New("response carries no originating request")
	}

	switch resp.Request.Callback {
	case domain.CallbackSeed:
		return e.walker.HandleSeed(resp), nil
	case domain.CallbackListing:
		return e.walker.HandleListingResponse(resp), nil
	case domain.CallbackProduct:
		product, err := e.normalizer.Parse(ctx, resp)
		if err != nil || product == nil {
			return nil, err
		}
		return []domain.Output{{Product: product}}, nil
	default:
		return nil, fmt.Errorf("unknown callback: %s", resp.Request.Callback)
	}
}

func (e *Engine) work(ctx context.Context, consumer string) error {
	log.Debugf("🚀 Starting %s", consumer)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		delivery, err := e.queue.Pop(ctx, consumer)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Errorf("❌ Failed to get request for %s: %v", consumer, err)
			continue
		}

		// The queue is drained once a poll comes back empty and every pushed
		// request has been processed, children included. Requests left in a
		// Redis stream by an earlier run can drive pending below zero.
		if delivery == nil {
			if e.pending.Load() <= 0 {
				log.Debugf("🛑 %s stopping, queue drained", consumer)
				return nil
			}
			continue
		}

		e.process(ctx, delivery)
		e.pending.Add(-1)
	}
}

func (e *Engine) process(ctx context.Context, delivery *queue.Delivery) {
	req := delivery.Request
	e.requests.Add(1)

	if err := e.dispatch(ctx, req); err != nil {
		e.failed.Add(1)
		log.Errorf("❌ Failed to process %s request %s: %v", req.Callback, req.URL, err)
	}

	if err := e.queue.Ack(ctx, delivery); err != nil {
		log.Errorf("❌ Failed to ack %s: %v", delivery.ID, err)
	}
}

func (e *Engine) dispatch(ctx context.Context, req *domain.Request) error {
	resp, err := e.client.Fetch(ctx, req)
	if err != nil {
		return err
	}

	outputs, err := e.Handle(ctx, resp)
	if err != nil {
		return err
	}

	for _, out := range outputs {
		switch {
		case out.Request != nil:
			if err := e.Schedule(ctx, out.Request); err != nil {
				log.Errorf("❌ Failed to schedule %s: %v", out.Request.URL, err)
			}
		case out.Product != nil:
			if err := e.sink.Write(ctx, out.Product); err != nil {
				return err
			}
			if n := e.products.Add(1); n%100 == 0 {
				log.Infof("📦 %d products extracted", n)
			}
		}
	}

	return nil
}

// Fingerprint identifies a request by method, URL and body
func Fingerprint(req *domain.Request) string {
	h := sha1.New()
	h.Write([]byte(req.Method))
	h.Write([]byte{'\n'})
	h.Write([]byte(req.URL))
	h.Write([]byte{'\n'})
	h.Write(req.Body)
	return hex.EncodeToString(h.Sum(nil))
}
