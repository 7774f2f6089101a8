// Package cli implements popxctl, the admin command line for inspecting and
// resetting persisted client records.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/popx/account-portal/internal/config"
	"github.com/popx/account-portal/internal/storage"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Backend   string
	DSN       string
	KeyPrefix string
}

// ValidBackends lists the backends popxctl can open. The memory backend lives
// inside the server process and is not reachable from here.
var ValidBackends = []string{config.BackendSQLite, config.BackendRedis, config.BackendPostgres}

// NewRootCommand creates the root command for popxctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "popxctl",
		Short: "Administer PopX client records",
		Long:  "Inspect and clear the user records the account portal persists per browser client.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidBackend(opts.Backend) {
				return fmt.Errorf("invalid backend %q: must be one of %v", opts.Backend, ValidBackends)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", config.BackendSQLite, "storage backend (sqlite|redis|postgres)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "popx.db", "sqlite path, redis address or URL, or postgres DSN")
	cmd.PersistentFlags().StringVar(&opts.KeyPrefix, "key-prefix", "popx", "redis key prefix")

	cmd.AddCommand(NewRecordCommand(opts))
	cmd.AddCommand(NewClientCommand(opts))

	return cmd
}

func isValidBackend(backend string) bool {
	for _, b := range ValidBackends {
		if b == backend {
			return true
		}
	}
	return false
}

// openStore connects to the configured backend. The returned func releases it.
func openStore(ctx context.Context, opts *RootOptions) (storage.KeyValue, func(), error) {
	switch opts.Backend {
	case config.BackendSQLite:
		kv, err := storage.OpenSQLite(opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { _ = kv.Close() }, nil

	case config.BackendRedis:
		var redisOpts *redis.Options
		if strings.Contains(opts.DSN, "://") {
			parsed, err := redis.ParseURL(opts.DSN)
			if err != nil {
				return nil, nil, fmt.Errorf("parse redis url: %w", err)
			}
			redisOpts = parsed
		} else {
			redisOpts = &redis.Options{Addr: opts.DSN}
		}
		client := redis.NewClient(redisOpts)
		kv, err := storage.Open(storage.Options{Backend: config.BackendRedis, KeyPrefix: opts.KeyPrefix, Redis: client})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return kv, func() { _ = client.Close() }, nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, opts.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		kv, err := storage.Open(storage.Options{Backend: config.BackendPostgres, Pool: pool})
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return kv, pool.Close, nil
	}
	return nil, nil, errors.New("unsupported backend")
}
