package pager

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/sourcegraph/conc"
)

const (
	DefaultInitialPages = 2
	DefaultProximity    = 500
)

// Source is a list that loads one page at a time into shared state.
type Source interface {
	// Fetch loads page and returns how many items it received.
	Fetch(ctx context.Context, page int) (int, error)
	// Cursor returns the highest loaded page and the upstream page count.
	Cursor() (page, totalPages int)
}

type Options struct {
	// InitialPages are loaded sequentially by Start.
	InitialPages int
	// Proximity is the largest boundary distance that triggers a load.
	Proximity int
	// IgnoreEmptyPages keeps loading after a page with no items.
	IgnoreEmptyPages bool
}

// Controller drives incremental loading for one view. At most one page fetch
// is in flight at any time and nothing is fetched past the last page.
type Controller struct {
	opts Options

	mu          sync.Mutex
	src         Source
	gen         uint64
	inFlight    bool
	initialized bool
	exhausted   bool
	closed      bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

func New(src Source, opts Options) *Controller {
	if opts.InitialPages <= 0 {
		opts.InitialPages = DefaultInitialPages
	}
	if opts.Proximity <= 0 {
		opts.Proximity = DefaultProximity
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{opts: opts, src: src, ctx: ctx, cancel: cancel}
}

// Start loads the initial pages. Pages the shared source already holds are
// reused rather than refetched, so a second view on the same list picks up
// where the first one is. Boundary observations are ignored until it returns.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("pager closed")
	}
	src, gen := c.src, c.gen
	c.initialized = false
	c.exhausted = false
	c.inFlight = true
	c.mu.Unlock()

	var (
		loadErr   error
		exhausted bool
	)
	for page := 1; page <= c.opts.InitialPages; page++ {
		cur, total := src.Cursor()
		if total > 0 && page <= cur {
			continue
		}
		if page > 1 && cur >= total {
			break
		}
		n, err := src.Fetch(ctx, page)
		if err != nil {
			log.Printf("[pager] %s initial page %d failed: %v", sourceName(src), page, err)
			loadErr = err
			break
		}
		if n == 0 && !c.opts.IgnoreEmptyPages {
			exhausted = true
			break
		}
	}

	c.mu.Lock()
	if c.gen == gen {
		c.inFlight = false
		c.initialized = true
		c.exhausted = exhausted
	}
	c.mu.Unlock()
	return loadErr
}

// Switch starts a new session on src. A fetch still running for the previous
// source completes without touching the new session.
func (c *Controller) Switch(ctx context.Context, src Source) error {
	c.mu.Lock()
	c.src = src
	c.gen++
	c.inFlight = false
	c.initialized = false
	c.exhausted = false
	c.mu.Unlock()
	return c.Start(ctx)
}

// Observe reports a boundary and starts loading the next page when the
// sentinel is close enough while scrolling forward. It returns whether a
// fetch was started.
func (c *Controller) Observe(b Boundary) bool {
	if b.Direction != Forward || b.Distance > c.opts.Proximity {
		return false
	}

	c.mu.Lock()
	if c.closed || !c.initialized || c.inFlight || c.exhausted {
		c.mu.Unlock()
		return false
	}
	page, total := c.src.Cursor()
	if page >= total {
		c.mu.Unlock()
		return false
	}
	c.inFlight = true
	src, gen, next := c.src, c.gen, page+1
	c.mu.Unlock()

	c.wg.Go(func() {
		c.load(src, gen, next)
	})
	return true
}

func (c *Controller) load(src Source, gen uint64, page int) {
	n, err := src.Fetch(c.ctx, page)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.inFlight = false
	if err != nil {
		log.Printf("[pager] %s page %d failed: %v", sourceName(src), page, err)
		return
	}
	if n == 0 && !c.opts.IgnoreEmptyPages {
		c.exhausted = true
	}
}

// HasMore reports whether another page can still be loaded.
func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exhausted {
		return false
	}
	page, total := c.src.Cursor()
	return page < total
}

func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *Controller) Source() Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.src
}

// Wait blocks until every started fetch has returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels outstanding fetches and waits for them.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

func sourceName(src Source) string {
	if k, ok := src.(interface{ Key() string }); ok {
		return k.Key()
	}
	return fmt.Sprintf("%T", src)
}
