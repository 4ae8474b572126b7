// Package cache provides the in-memory hot layer in front of persisted font
// artifacts.
//
// It provides a Cache interface with a size-bounded LRU memory
// implementation, hashed keys for long composite code point keys, TTL
// policies and a read-through helper that never caches load errors.
package cache
