// Package resource implements the Controller for shared limits.
//
// The Controller manages three resource types:
//
//   - Memory: bytes of artifacts held in memory at once
//   - Concurrency: number of artifacts loaded in parallel
//   - IO: read/write throughput of artifact streams
//
// # Loads
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentLoads: 4,
//	    MemoryLimitBytes:   512 << 20,
//	})
//
//	if err := rc.AcquireLoad(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseLoad()
//
// # IO Rate Limiting
//
// Token bucket rate limiter wrapped around artifact streams:
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 50 << 20, // 50MB/s
//	})
//	reader := resource.NewRateLimitedReader(ctx, blob, rc)
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
