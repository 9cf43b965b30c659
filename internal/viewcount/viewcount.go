// Package viewcount records post views in the background. Reads hand the
// post id to a Counter and return at once; a small pool of workers applies
// the increments against the store.
package viewcount

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Incrementer is the store operation the workers call.
type Incrementer interface {
	IncrementPostViews(ctx context.Context, id string) error
}

// Config sizes the worker pool.
type Config struct {
	Workers   int
	QueueSize int
	// Timeout bounds each increment. It is independent of the request that
	// produced the view.
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

// Counter queues view increments for a fixed set of workers.
type Counter struct {
	cfg   Config
	posts Incrementer
	queue chan string

	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	started bool
}

// New creates a Counter. Zero config values fall back to two workers, a
// queue of 256 and a five second timeout.
func New(posts Incrementer, cfg Config) *Counter {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Counter{
		cfg:   cfg,
		posts: posts,
		queue: make(chan string, cfg.QueueSize),
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (c *Counter) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		return
	}
	c.started = true

	for i := 0; i < c.cfg.Workers; i++ {
		c.wg.Add(1)
		go c.work()
	}
	c.cfg.Logger.WithField("workers", c.cfg.Workers).Info("view counter started")
}

// Enqueue schedules one view of post id. It never blocks: when the queue is
// full or the counter is shut down the view is dropped and false returned.
func (c *Counter) Enqueue(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}

	select {
	case c.queue <- id:
		return true
	default:
		c.cfg.Logger.WithField("post", id).Debug("view counter queue full, dropping view")
		return false
	}
}

// Shutdown stops accepting views and waits until the workers have drained
// the queue or ctx is done.
func (c *Counter) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.queue)
	started := c.started
	c.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.cfg.Logger.Info("view counter stopped")
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("view counter: shutdown before queue drained"), ctx.Err())
	}
}

func (c *Counter) work() {
	defer c.wg.Done()
	for id := range c.queue {
		c.increment(id)
	}
}

// increment applies one view. Failures are logged and otherwise ignored.
func (c *Counter) increment(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	defer cancel()

	if err := c.posts.IncrementPostViews(ctx, id); err != nil {
		c.cfg.Logger.WithError(err).WithField("post", id).Warn("view count increment failed")
	}
}
