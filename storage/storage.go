package storage

import (
	"fmt"

	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/storage/redis"
)

// Backend enumerates the supported storage backends. The set is closed;
// mapping a backend to a concrete store happens in an explicit factory
// switch so that adding a case is a compile-checked change.
type Backend string

const (
	// BackendInMemory stores conversations in process-local maps.
	BackendInMemory Backend = "memory"
	// BackendRedis stores conversations in Redis.
	BackendRedis Backend = "redis"
)

// Options configure backend construction.
type Options struct {
	// RedisAddr is the host:port of the Redis server (BackendRedis only).
	RedisAddr string
	// RedisPassword authenticates against the Redis server.
	RedisPassword string
	// RedisDB selects the Redis logical database.
	RedisDB int
}

// New constructs a ConversationStore for the given backend. Unknown backend
// values fail, never silently default.
func New(backend Backend, optFns ...func(o *Options)) (core.ConversationStore, error) {
	opts := Options{RedisAddr: "localhost:6379"}
	for _, fn := range optFns {
		fn(&opts)
	}

	switch backend {
	case BackendInMemory:
		return NewInMemoryStore(), nil
	case BackendRedis:
		return redis.NewStore(func(o *redis.Options) {
			o.Addr = opts.RedisAddr
			o.Password = opts.RedisPassword
			o.DB = opts.RedisDB
		}), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}
