package cache

import "time"

// Cache - TTL key-value кеш для результатов вычислений.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Stop()
}
