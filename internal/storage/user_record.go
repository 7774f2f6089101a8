package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/popx/account-portal/internal/domain"
	"github.com/popx/account-portal/internal/session"
)

var _ session.Persistence = (*UserRecord)(nil)

// UserKey is the fixed key the user record is stored under.
const UserKey = "user"

// UserRecord keeps one client's JSON-serialized user in a KeyValue namespace.
type UserRecord struct {
	kv        KeyValue
	namespace string
}

// NewUserRecord binds the record to the namespace of one client.
func NewUserRecord(kv KeyValue, namespace string) *UserRecord {
	return &UserRecord{kv: kv, namespace: namespace}
}

// Load returns the stored user, or nil when no record exists.
func (r *UserRecord) Load(ctx context.Context) (*domain.User, error) {
	raw, ok, err := r.kv.GetItem(ctx, r.namespace, UserKey)
	if err != nil || !ok {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return &user, nil
}

// Save overwrites the stored user.
func (r *UserRecord) Save(ctx context.Context, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return r.kv.SetItem(ctx, r.namespace, UserKey, string(raw))
}

// Clear removes the stored user.
func (r *UserRecord) Clear(ctx context.Context) error {
	return r.kv.RemoveItem(ctx, r.namespace, UserKey)
}
