// Package storage provides the key-value media that stand in for browser
// local storage, one namespace per client, and the user record kept in them.
package storage

import (
	"context"
	"fmt"

	"github.com/popx/account-portal/internal/session"
)

// ErrCorruptRecord is returned when a stored value cannot be decoded. It wraps
// session.ErrUnreadableRecord so a restoring Store discards the record.
var ErrCorruptRecord = fmt.Errorf("storage: corrupt record: %w", session.ErrUnreadableRecord)

// KeyValue is a string key-value store partitioned by namespace.
// Writes overwrite unconditionally; the last writer wins.
type KeyValue interface {
	GetItem(ctx context.Context, namespace, key string) (string, bool, error)
	SetItem(ctx context.Context, namespace, key, value string) error
	RemoveItem(ctx context.Context, namespace, key string) error
	Ping(ctx context.Context) error
	Close() error
}
