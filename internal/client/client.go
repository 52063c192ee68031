package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"puma/crawler/internal/config"
	"puma/crawler/internal/domain"
	"puma/crawler/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// Client dispatches request descriptors over HTTP
type Client interface {
	Fetch(ctx context.Context, req *domain.Request) (*domain.Response, error)
}

type httpClient struct {
	rl            ratelimit.Limiter
	restyClient   *resty.Client
	timeout       time.Duration
	proxySupplier proxy.Supplier

	proxyMutex   sync.Mutex
	currentProxy string
}

func NewClient(cfg config.ClientConfig, proxySupplier proxy.Supplier) Client {
	timeout := time.Duration(cfg.Timeout) * time.Second

	retryWait := time.Duration(cfg.RetryWaitMs) * time.Millisecond

	// Listing and detail calls are POSTs, which resty only retries when told to.
	restyClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(cfg.MaxRetries).
		SetAllowNonIdempotentRetry(true).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(5*retryWait).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json, text/plain, */*").
		SetHeader("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.5").
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})

	c := &httpClient{
		rl:            newLimiter(cfg.DownloadDelayMs),
		restyClient:   restyClient,
		timeout:       timeout,
		proxySupplier: proxySupplier,
	}

	c.rotateProxy()
	return c
}

// newLimiter spaces requests by the polite download delay
func newLimiter(delayMs int) ratelimit.Limiter {
	if delayMs <= 0 {
		return ratelimit.NewUnlimited()
	}
	return ratelimit.New(1, ratelimit.Per(time.Duration(delayMs)*time.Millisecond))
}

func (c *httpClient) Fetch(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	c.rl.Take()

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, 3*c.timeout)
		defer cancel()
	}

	r := c.restyClient.R().
		SetContext(reqCtx).
		SetHeaders(req.Headers)
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		c.dropProxy()
		return nil, fmt.Errorf("failed to %s %s: %w", req.Method, req.URL, err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	log.Debugf("%s %s -> %d", req.Method, req.URL, resp.StatusCode())

	return &domain.Response{
		StatusCode: resp.StatusCode(),
		URL:        req.URL,
		Body:       []byte(resp.String()),
		Request:    req,
	}, nil
}

func (c *httpClient) rotateProxy() {
	if c.proxySupplier == nil {
		return
	}

	c.proxyMutex.Lock()
	defer c.proxyMutex.Unlock()

	next := c.proxySupplier.Get()
	if next == "" || next == c.currentProxy {
		return
	}

	c.restyClient.SetProxy(next)
	c.currentProxy = next
	log.Infof("🔗 Using proxy: %s", next)
}

// dropProxy discards the proxy in use after a transport failure and switches to the next one
func (c *httpClient) dropProxy() {
	if c.proxySupplier == nil {
		return
	}

	c.proxyMutex.Lock()
	failed := c.currentProxy
	c.proxyMutex.Unlock()

	if failed == "" {
		return
	}

	c.proxySupplier.Discard(failed)
	if c.proxySupplier.Len() == 0 {
		c.proxyMutex.Lock()
		c.restyClient.RemoveProxy()
		c.currentProxy = ""
		c.proxyMutex.Unlock()
		log.Warn("⚠️ No working proxies left, connecting directly")
		return
	}
	c.rotateProxy()
}
