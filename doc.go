// Package mnemo provides concurrency-safe memoization caches, a per-key
// lock registry and lock-free object pools for programs that recompute the
// same derived values from many goroutines, such as compilers, analyzers
// and build tools.
//
// # Overview
//
// Mnemo is designed around one guarantee: for a given key, the fill
// function runs at most once at a time. Concurrent callers asking for the
// same key wait for the running fill and share its result. A fill may call
// back into the cache it is filling without deadlocking.
//
// The package offers four cache shapes:
//   - GenerationalCache: two generations with configurable rotation
//   - TimedCache: a GenerationalCache that rotates once per period
//   - WeakCache: entries keyed by pointer identity that vanish with their key
//   - PathCache: fixed capacity with approximate LRU cleanup, for file-backed values
//
// # Generations
//
// A GenerationalCache stores new entries in the recent generation. When the
// rotation policy fires, the recent generation becomes the old one and the
// previous old generation is discarded. Reading an entry from the old
// generation promotes it back into the recent one, so entries in active use
// survive indefinitely while unused ones disappear after two rotations.
//
// Two policies are provided:
//
//	// Rotate when the period has elapsed since the last rotation
//	timed := mnemo.NewTimedCache[string, *Type, struct{}](mnemo.Config{
//		RotationPeriod: 30 * time.Second,
//	}, mnemo.Hooks[string, *Type, struct{}]{})
//
//	// Rotate when the recent generation holds RotationThreshold entries
//	counted := mnemo.NewCountGatedCache[string, *Type, struct{}](mnemo.Config{
//		RotationThreshold: 5_000,
//	}, mnemo.Hooks[string, *Type, struct{}]{})
//
// Hooks attach a tag to every stored entry and validate it when the entry
// is read back from the old generation. A failed validation drops the entry
// and the next GetOrAdd refills it:
//
//	hooks := mnemo.Hooks[string, *Type, uint64]{
//		Tag:      func(key string, t *Type) uint64 { return currentEpoch() },
//		Validate: func(key string, t *Type, epoch uint64) bool { return epoch == currentEpoch() },
//	}
//
// # Fill Coordination
//
// All caches share the same protocol. The first caller of GetOrAdd for a
// missing key acquires the key in a LockRegistry and runs the fill. Other
// callers wait on the key lock and then read the stored value. When the
// fill fails, its error is returned to the winner only, nothing is cached
// and waiters retry:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//
//	sym, err := cache.GetOrAdd(ctx, "pkg.Func", func(ctx context.Context, name string) (*Symbol, error) {
//		return resolve(ctx, name)
//	})
//	if mnemo.IsCancelled(err) {
//		// the wait was abandoned, the fill keeps running for other callers
//	}
//
// A fill that panics is reported as MNEMO_PANIC_RECOVERED and releases its key.
//
// # Reentrancy
//
// The context passed to a fill carries a marker for the key being filled.
// A nested GetOrAdd on the same cache and key runs the inner fill instead
// of waiting on itself; goroutines started by one fill share a single nested
// fill per key. Other keys are filled at most once as usual. The first value
// stored wins and is returned to every caller. FillDepth reports how many
// fills are on the current context chain.
//
// # Pools
//
// Pool hands out pre-allocated instances without locks and falls back to
// allocation when every slot is taken. A Lease returns its instance exactly
// once, no matter how many times Release is called:
//
//	pool := mnemo.NewPool(32, func() *bytes.Buffer { return new(bytes.Buffer) })
//	lease := pool.Lease()
//	defer lease.Release()
//	buf := lease.Value()
//
// RecyclingPool calls the Recyclable hooks of its type when an instance is
// handed out and when it comes back.
//
// # Configuration
//
// Config is shared by every constructor. Zero values fall back to the
// Default* constants. HotConfig watches a configuration file through Argus
// and pushes the keys the file sets to registered caches:
//
//	hc, err := mnemo.NewHotConfig(mnemo.HotConfigOptions{
//		ConfigPath: "mnemo.yaml",
//		Targets:    []mnemo.Tunable{timed, paths},
//	})
//
// # Observability
//
// Caches report through the Logger and MetricsCollector interfaces. The
// zaplog and logruslog packages adapt zap and logrus loggers, and the otel
// package exports metrics through OpenTelemetry.
//
// # Error Handling
//
// Errors are built with github.com/agilira/go-errors and carry a MNEMO_*
// code. Helpers such as IsFillError, IsCancelled and IsConfigError classify
// them, and GetErrorContext exposes the attached fields.
//
// # Packages
//
//   - github.com/agilira/mnemo: caches, pools, lock registry, configuration
//   - github.com/agilira/mnemo/otel: OpenTelemetry metrics collector
//   - github.com/agilira/mnemo/zaplog: zap logger adapter
//   - github.com/agilira/mnemo/logruslog: logrus logger adapter
//
// # License
//
// Mnemo is licensed under the Mozilla Public License 2.0.
package mnemo
