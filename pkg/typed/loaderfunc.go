package typed

import "context"

// LoaderFunc is invoked by Cache.GetOrLoad when a key is absent.
// Implementations should return the value to store or an error. The same
// LoaderFunc instance may be invoked concurrently for different keys; it
// must therefore be thread-safe. GetOrLoad releases the cache's lock before
// invoking it (only singleflight serializes concurrent callers on the same
// key), so a loader is free to call back into the same Cache without
// deadlocking — except through a nested GetOrLoad for its own key, which
// waits on the very singleflight call that is running the loader.
type LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)
