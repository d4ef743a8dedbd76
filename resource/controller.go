package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a single reservation is larger
// than the configured memory limit and can never be satisfied.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for artifacts held in memory at once.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentLoads is the maximum number of artifacts loaded at once.
	// If 0, defaults to 1.
	MaxConcurrentLoads int64

	// IOLimitBytesPerSec is the maximum read/write throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages shared resources (memory, concurrency, IO).
// A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	loadSem *semaphore.Weighted

	ioLimiter *rate.Limiter
	ioBurst   int
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentLoads <= 0 {
		cfg.MaxConcurrentLoads = 1
	}

	c := &Controller{
		cfg:     cfg,
		loadSem: semaphore.NewWeighted(cfg.MaxConcurrentLoads),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioBurst = int(cfg.IOLimitBytesPerSec)
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), c.ioBurst)
	}

	return c
}

// Config returns the effective limits.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireMemory reserves bytes. With a hard limit configured it blocks
// until enough memory is released or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			return fmt.Errorf("%w: %d bytes requested, limit %d", ErrMemoryLimitExceeded, bytes, c.cfg.MemoryLimitBytes)
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return false
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireLoad reserves a load slot. Blocks if all slots are busy.
func (c *Controller) AcquireLoad(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.loadSem.Acquire(ctx, 1)
}

// TryAcquireLoad attempts to reserve a load slot without blocking.
func (c *Controller) TryAcquireLoad() bool {
	if c == nil {
		return true
	}
	return c.loadSem.TryAcquire(1)
}

// ReleaseLoad releases a load slot.
func (c *Controller) ReleaseLoad() {
	if c == nil {
		return
	}
	c.loadSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than one second of throughput are split.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	for bytes > 0 {
		n := min(bytes, c.ioBurst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
