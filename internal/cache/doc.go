// Package cache provides a small generic LRU cache.
//
// It backs per-process caches that are filled rarely and read often, such
// as compiled shader modules keyed by their source:
//
//	c := cache.New[string, []uint32](8)
//	words, err := c.GetOrCreate(src, func() ([]uint32, error) { return compile(src) })
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
