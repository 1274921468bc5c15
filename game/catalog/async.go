package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/jpillora/backoff"
)

// LoadFunc produces a catalog, typically from disk or a remote store.
type LoadFunc func(ctx context.Context) (*Catalog, error)

// AsyncProvider loads a catalog in the background and serves it once ready.
// Until then FetchAll and Lookup return ErrUnavailable.
type AsyncProvider struct {
	load LoadFunc

	mu       sync.RWMutex
	catalog  *Catalog
	lastErr  error
	attempts int

	// OnError is called after every failed load attempt.
	OnError func(attempt int, err error)

	backoff *backoff.Backoff
}

// NewAsyncProvider creates a provider around load. Call Start to begin loading.
func NewAsyncProvider(load LoadFunc) *AsyncProvider {
	return &AsyncProvider{
		load: load,
		backoff: &backoff.Backoff{
			Min:    200 * time.Millisecond,
			Max:    30 * time.Second,
			Factor: 2,
			Jitter: true,
		},
	}
}

// WithBackoff overrides the retry schedule.
func (p *AsyncProvider) WithBackoff(min, max time.Duration) *AsyncProvider {
	p.backoff = &backoff.Backoff{Min: min, Max: max, Factor: 2}
	return p
}

// Start loads the catalog in a goroutine, retrying until it succeeds or ctx
// is cancelled. The returned channel is closed when loading stops.
func (p *AsyncProvider) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			cat, err := p.load(ctx)
			if err == nil && cat != nil {
				p.Set(cat)
				return
			}

			p.mu.Lock()
			p.attempts++
			p.lastErr = err
			attempt := p.attempts
			p.mu.Unlock()

			if p.OnError != nil {
				p.OnError(attempt, err)
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(p.backoff.Duration()):
			}
		}
	}()
	return done
}

// Set swaps in a loaded catalog.
func (p *AsyncProvider) Set(cat *Catalog) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catalog = cat
	p.lastErr = nil
	p.backoff.Reset()
}

// Ready reports whether a catalog has been loaded.
func (p *AsyncProvider) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.catalog != nil
}

// LastError returns the error of the most recent failed attempt.
func (p *AsyncProvider) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// FetchAll implements Provider.
func (p *AsyncProvider) FetchAll(ctx context.Context) ([]Term, error) {
	p.mu.RLock()
	cat := p.catalog
	p.mu.RUnlock()
	if cat == nil {
		return nil, ErrUnavailable
	}
	return cat.FetchAll(ctx)
}

// Lookup implements Provider.
func (p *AsyncProvider) Lookup(letters string) (Term, error) {
	p.mu.RLock()
	cat := p.catalog
	p.mu.RUnlock()
	if cat == nil {
		return Term{}, ErrUnavailable
	}
	return cat.Lookup(letters)
}
