package resource

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})
	ctx := t.Context()

	require.NoError(t, c.AcquireMemory(ctx, 50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(ctx, 40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// TryAcquire 20 (should fail)
	assert.False(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Acquire 20 (should block until timeout)
	tctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireMemory(tctx, 20), context.DeadlineExceeded)

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(ctx, 20))
	assert.Equal(t, int64(60), c.MemoryUsage())

	// never satisfiable
	assert.ErrorIs(t, c.AcquireMemory(ctx, 101), ErrMemoryLimitExceeded)
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(t.Context(), 1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Loads(t *testing.T) {
	c := NewController(Config{MaxConcurrentLoads: 2})

	require.NoError(t, c.AcquireLoad(t.Context()))
	require.NoError(t, c.AcquireLoad(t.Context()))

	assert.False(t, c.TryAcquireLoad())

	c.ReleaseLoad()
	assert.True(t, c.TryAcquireLoad())
	assert.Equal(t, int64(2), c.Config().MaxConcurrentLoads)
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireLoad(t.Context()))
	c.ReleaseLoad()
	assert.True(t, c.TryAcquireLoad())
	require.NoError(t, c.AcquireMemory(t.Context(), 10))
	assert.True(t, c.TryAcquireMemory(10))
	c.ReleaseMemory(10)
	assert.Zero(t, c.MemoryUsage())
	require.NoError(t, c.AcquireIO(t.Context(), 1<<20))
	assert.Equal(t, Config{}, c.Config())
}

func TestRateLimitedIO(t *testing.T) {
	// burst covers the whole payload, so nothing waits
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	payload := strings.Repeat("x", 4096)

	var buf bytes.Buffer
	w := NewRateLimitedWriter(t.Context(), &buf, c)
	n, err := w.Write([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)

	r := NewRateLimitedReader(t.Context(), &buf, c)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestRateLimitedIO_Canceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 10})
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	r := NewRateLimitedReader(ctx, strings.NewReader("abc"), c)
	_, err := r.Read(make([]byte, 3))
	assert.ErrorIs(t, err, context.Canceled)

	// larger than the burst; split into chunks and still canceled
	assert.Error(t, c.AcquireIO(ctx, 100))
}
