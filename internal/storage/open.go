package storage

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend    string
	SQLitePath string
	KeyPrefix  string
	TTL        time.Duration
	Redis      *redis.Client
	Pool       *pgxpool.Pool
}

// Open returns the KeyValue for opts.Backend. Redis and Postgres backends
// need an already connected client or pool.
func Open(opts Options) (KeyValue, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(opts.SQLitePath)
	case "redis":
		if opts.Redis == nil {
			return nil, fmt.Errorf("storage: redis backend requires a client")
		}
		return NewRedis(opts.Redis, opts.KeyPrefix, opts.TTL), nil
	case "postgres":
		if opts.Pool == nil {
			return nil, fmt.Errorf("storage: postgres backend requires a pool")
		}
		return NewPostgres(opts.Pool), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
}
