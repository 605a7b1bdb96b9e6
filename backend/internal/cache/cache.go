package cache

import (
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent at every level.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the caching contract the task service decorates itself with.
// Values round-trip through JSON, so dest must be a pointer.
type Cache interface {
	Set(key string, value interface{}, ttl time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	DeletePattern(pattern string) error
	Exists(key string) (bool, error)
	Stats() map[string]interface{}
	Health() error
	Close() error
}
