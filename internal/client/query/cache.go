package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/mediahub/internal/client/api"
	"github.com/dmitrijs2005/mediahub/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Fetcher performs the network call behind a query. It must honor ctx.
type Fetcher func(ctx context.Context) (api.Envelope, error)

var errEvicted = errors.New("cache entry evicted")

type entry struct {
	key    Key
	fetch  Fetcher
	ctx    context.Context
	cancel context.CancelFunc

	// flight is the singleflight key. It is unique per entry so that a
	// replacement entry never joins a fetch of the evicted one.
	flight string

	// gen counts invalidations. A fetch result only satisfies callers that
	// started waiting at or before the generation it was issued under.
	gen uint64

	// settledGen is the generation of the last completed fetch.
	settled    bool
	settledGen uint64

	state State
	subs  map[*Subscription]struct{}
}

type result struct {
	state   State
	gen     uint64
	evicted bool
}

type Cache struct {
	mu       sync.Mutex
	entries  map[Key]*entry
	group    singleflight.Group
	registry *Registry
	metrics  *Metrics
	logger   logging.Logger
	now      func() time.Time
	seq      uint64
}

type Option func(*Cache)

func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

func WithRegistry(r *Registry) Option {
	return func(c *Cache) { c.registry = r }
}

func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries:  make(map[Key]*entry),
		registry: NewRegistry(),
		logger:   logging.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}
	return c
}

func (c *Cache) Registry() *Registry { return c.registry }

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Peek returns the cached state for key without fetching.
func (c *Cache) Peek(key Key) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return State{}, false
	}
	return e.state, true
}

// Query returns fresh cached data for key or waits for a fetch. Concurrent
// calls for one key share a single fetch. A transport failure is returned
// as the error and recorded in the entry; it is not retried in the
// background. The next Query after a transport failure or a non-2xx
// response fetches again. fetch must not be nil.
func (c *Cache) Query(ctx context.Context, key Key, fetch Fetcher) (State, error) {
	for {
		c.mu.Lock()
		e := c.entryLocked(key, fetch)
		if e.state.fresh() {
			st := e.state
			c.mu.Unlock()
			c.metrics.Hits.Inc()
			return st, nil
		}
		if !e.state.IsLoading && (e.state.IsError || e.state.rejected()) {
			// an explicit query after a failure is a retry
			e.gen++
		}
		c.mu.Unlock()

		c.metrics.Misses.Inc()
		st, err := c.load(ctx, e)
		if errors.Is(err, errEvicted) {
			continue
		}
		if err != nil {
			return State{}, err
		}
		if st.IsError {
			return st, st.Err
		}
		return st, nil
	}
}

// Subscribe opens a subscription to key that lives until Close is called or
// ctx ends. The first subscription to an entry without fresh data starts a
// fetch in the background. fetch must not be nil.
func (c *Cache) Subscribe(ctx context.Context, key Key, fetch Fetcher) *Subscription {
	c.mu.Lock()
	e := c.entryLocked(key, fetch)
	s := &Subscription{cache: c, entry: e, ch: make(chan State, 1)}
	e.subs[s] = struct{}{}
	s.ch <- e.state
	needsFetch := len(e.subs) == 1 && !e.state.fresh()
	s.stop = context.AfterFunc(ctx, s.Close)
	c.mu.Unlock()

	if needsFetch {
		go c.refresh(e)
	}
	return s
}

// Invalidate marks key stale. Subscribed entries are re-fetched at once.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.invalidateLocked(e)
	}
}

// InvalidateEndpoint marks every entry of endpoint stale.
func (c *Cache) InvalidateEndpoint(endpoint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if k.Endpoint == endpoint {
			c.invalidateLocked(e)
		}
	}
}

// Reset evicts every entry, aborting their in-flight fetches and closing
// their subscriptions.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		for s := range e.subs {
			s.closeLocked()
		}
		delete(c.entries, k)
		e.cancel()
	}
}

// Mutation is a write against the backend.
type Mutation struct {
	// Name must be registered in the cache's Registry.
	Name string
	Do   func(ctx context.Context) (api.Envelope, error)
	// Invalidates lists individual keys made stale in addition to the
	// registered endpoints.
	Invalidates []Key
}

// Mutate runs m immediately. After a 2xx result the endpoints registered for
// m.Name and m.Invalidates are invalidated.
func (c *Cache) Mutate(ctx context.Context, m Mutation) (api.Envelope, error) {
	endpoints, ok := c.registry.Targets(m.Name)
	if !ok {
		return api.Envelope{}, fmt.Errorf("%w: %s", ErrUnknownMutation, m.Name)
	}

	env, err := m.Do(ctx)
	if err != nil {
		return env, err
	}
	if env.StatusCode < 200 || env.StatusCode > 299 {
		return env, nil
	}

	c.logger.Debug(ctx, "mutation succeeded, invalidating", "mutation", m.Name, "endpoints", endpoints)
	for _, ep := range endpoints {
		c.InvalidateEndpoint(ep)
	}
	for _, k := range m.Invalidates {
		c.Invalidate(k)
	}
	return env, nil
}

func (c *Cache) entryLocked(key Key, fetch Fetcher) *entry {
	e, ok := c.entries[key]
	if !ok {
		c.seq++
		ctx, cancel := context.WithCancel(context.Background())
		e = &entry{
			key:    key,
			flight: fmt.Sprintf("%s/%d", key, c.seq),
			ctx:    ctx,
			cancel: cancel,
			subs:   make(map[*Subscription]struct{}),
		}
		c.entries[key] = e
	}
	if fetch != nil {
		e.fetch = fetch
	}
	return e
}

func (c *Cache) invalidateLocked(e *entry) {
	e.gen++
	e.state.Stale = true
	c.metrics.Invalidations.Inc()
	c.notifyLocked(e)
	if len(e.subs) > 0 {
		go c.refresh(e)
	}
}

func (c *Cache) notifyLocked(e *entry) {
	for s := range e.subs {
		s.push(e.state)
	}
}

func (c *Cache) refresh(e *entry) {
	if _, err := c.load(e.ctx, e); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, errEvicted) {
		c.logger.Debug(e.ctx, "background refresh failed", "key", e.key.String(), "error", err)
	}
}

// load waits for a fetch whose result is at least as new as the entry
// generation at call time, joining the in-flight one when possible. It
// returns without fetching when such a result has already settled.
func (c *Cache) load(ctx context.Context, e *entry) (State, error) {
	c.mu.Lock()
	want := e.gen
	c.mu.Unlock()

	for {
		c.mu.Lock()
		if c.entries[e.key] != e {
			c.mu.Unlock()
			return State{}, errEvicted
		}
		if e.settled && e.settledGen >= want {
			st := e.state
			c.mu.Unlock()
			return st, nil
		}
		c.mu.Unlock()

		ch := c.group.DoChan(e.flight, func() (any, error) {
			return c.run(e), nil
		})

		select {
		case <-ctx.Done():
			return State{}, ctx.Err()
		case res := <-ch:
			if res.Shared {
				c.metrics.Shared.Inc()
			}
			r := res.Val.(result)
			if r.evicted {
				return r.state, errEvicted
			}
			if r.gen >= want {
				return r.state, nil
			}
		}
	}
}

func (c *Cache) run(e *entry) result {
	c.mu.Lock()
	if c.entries[e.key] != e {
		c.mu.Unlock()
		return result{evicted: true}
	}
	gen := e.gen
	fetch := e.fetch
	e.state.IsLoading = true
	c.notifyLocked(e)
	c.mu.Unlock()

	c.metrics.Requests.Inc()
	env, err := fetch(e.ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries[e.key] != e {
		return result{evicted: true}
	}

	st := e.state
	st.IsLoading = false
	if err != nil {
		c.metrics.Errors.Inc()
		st.IsError = true
		st.Err = err
	} else {
		st = State{Envelope: env, HasData: true, UpdatedAt: c.now()}
	}
	st.Stale = e.gen != gen
	e.state = st
	e.settled = true
	e.settledGen = gen
	c.notifyLocked(e)

	if st.Stale && len(e.subs) > 0 {
		go c.refresh(e)
	}
	return result{state: st, gen: gen}
}
