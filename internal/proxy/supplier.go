package proxy

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// Supplier hands out proxies in round-robin order
type Supplier interface {
	Get() string
	// Discard drops a proxy that stopped working
	Discard(proxyURL string)
	Len() int
}

type supplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// Validator reports whether a proxy can reach the storefront
type Validator func(ctx context.Context, proxyURL string) bool

// NewSupplier keeps the proxies that pass validation. Proxies are checked in
// parallel, at most 50 at a time; the original order is preserved.
func NewSupplier(ctx context.Context, proxies []string, validate Validator) Supplier {
	if len(proxies) == 0 {
		return &supplier{}
	}

	log.Infof("🔄 Testing %d proxies in parallel...", len(proxies))

	ok := make([]bool, len(proxies))
	semaphore := make(chan struct{}, 50)
	var wg sync.WaitGroup

	for i, proxyURL := range proxies {
		wg.Add(1)
		go func() {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			ok[i] = validate(ctx, proxyURL)
			if ok[i] {
				log.Infof("✅ Proxy %s is working", proxyURL)
			} else {
				log.Infof("❌ Proxy %s is not working, skipping", proxyURL)
			}
		}()
	}
	wg.Wait()

	valid := make([]string, 0, len(proxies))
	for i, proxyURL := range proxies {
		if ok[i] {
			valid = append(valid, proxyURL)
		}
	}

	log.Infof("✅ Proxy supplier initialized with %d working proxies out of %d tested", len(valid), len(proxies))
	return &supplier{proxies: valid}
}

func (p *supplier) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxyURL := p.proxies[p.current%len(p.proxies)]
	p.current = (p.current + 1) % len(p.proxies)
	return proxyURL
}

func (p *supplier) Discard(proxyURL string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for i, candidate := range p.proxies {
		if candidate != proxyURL {
			continue
		}
		p.proxies = append(p.proxies[:i], p.proxies[i+1:]...)
		if p.current > i {
			p.current--
		}
		if len(p.proxies) > 0 {
			p.current %= len(p.proxies)
		} else {
			p.current = 0
		}
		log.Warnf("🗑️ Discarded proxy %s, %d left", proxyURL, len(p.proxies))
		return
	}
}

func (p *supplier) Len() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.proxies)
}

// HTTPValidator checks a proxy by fetching testURL through it
func HTTPValidator(testURL, userAgent string) Validator {
	return func(ctx context.Context, proxyURL string) bool {
		client := resty.New().
			SetTimeout(5*time.Second).
			SetRetryCount(0).
			SetProxy(proxyURL).
			SetHeader("User-Agent", userAgent).
			SetTLSClientConfig(&tls.Config{
				InsecureSkipVerify: true,
			})

		resp, err := client.R().
			SetContext(ctx).
			Get(testURL)
		if err != nil {
			log.Debugf("Proxy test failed for %s: %v", proxyURL, err)
			return false
		}

		if resp.IsError() {
			log.Debugf("Proxy test failed for %s with status: %s", proxyURL, resp.Status())
			return false
		}

		return true
	}
}
