// Package clientutil composes http.RoundTripper middleware for outbound API clients.
package clientutil

import (
	"net/http"
	"sync"
	"time"

	"github.com/gregjones/httpcache"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Middleware func(http.RoundTripper) http.RoundTripper

func Chain(middlewares ...Middleware) Middleware {
	if len(middlewares) == 1 {
		return middlewares[0]
	}
	return func(final http.RoundTripper) http.RoundTripper {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// WithCache serves repeat GETs from cache, so a cascade retrying the same
// names doesn't go back to the network.
func WithCache(cache httpcache.Cache) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		transport := httpcache.NewTransport(cache)
		transport.Transport = next
		return transport
	}
}

func WithRateLimit(interval time.Duration) Middleware {
	if interval == 0 {
		return Passthrough
	}
	return func(next http.RoundTripper) http.RoundTripper {
		limiter := rate.NewLimiter(rate.Every(interval), 1)
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			if err := limiter.Wait(r.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(r)
		})
	}
}

func WithLogging() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			if err != nil {
				return nil, err
			}
			log.WithFields(log.Fields{
				"module": "clientutil",
				"status": resp.StatusCode,
				"took":   time.Since(start).Truncate(time.Millisecond),
			}).Tracef("resp for %s", r.URL)
			return resp, nil
		})
	}
}

func WithUserAgent(userAgent string) Middleware {
	if userAgent == "" {
		return Passthrough
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())
			r.Header.Set("User-Agent", userAgent)
			return next.RoundTrip(r)
		})
	}
}

func Passthrough(next http.RoundTripper) http.RoundTripper {
	return next
}

type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Wrap installs mw on c's transport, creating a client if c is nil.
func Wrap(c *http.Client, mw Middleware) *http.Client {
	if c == nil {
		c = &http.Client{}
	}
	if c.Transport == nil {
		c.Transport = http.DefaultTransport
	}
	c.Transport = mw(c.Transport)
	return c
}

// MemoryCache is an httpcache.Cache that forgets everything every flush
// interval until Close is called.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string][]byte

	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func NewMemoryCache(flush time.Duration) *MemoryCache {
	cache := &MemoryCache{
		items:   map[string][]byte{},
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go cache.flushEvery(flush)
	return cache
}

func (c *MemoryCache) flushEvery(flush time.Duration) {
	defer close(c.stopped)
	t := time.NewTicker(flush)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			c.mu.Lock()
			clear(c.items)
			c.mu.Unlock()
		}
	}
}

// Close stops the flush goroutine and waits for it to exit. Entries stay
// readable afterwards.
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	<-c.stopped
	return nil
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	resp, ok := c.items[key]
	return resp, ok
}

func (c *MemoryCache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
}

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}
