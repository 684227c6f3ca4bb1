package redisinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Namespace is a family of ephemeral keys. Every key is rendered through
// Namespace.Key, so no two families can address the same entry.
type Namespace int

const (
	NamespacePendingRegistration Namespace = iota + 1
	NamespaceConfirmationCode
	NamespaceLoginCode
	NamespaceRevokedToken
)

// Key renders the storage key for id. The pending and code layouts match the
// keys existing clients and operators already inspect: "{email}",
// "{email}_confirmation_code" and "{email}_login_code".
func (n Namespace) Key(id string) string {
	switch n {
	case NamespacePendingRegistration:
		return id
	case NamespaceConfirmationCode:
		return id + "_confirmation_code"
	case NamespaceLoginCode:
		return id + "_login_code"
	case NamespaceRevokedToken:
		return "revoked_token:" + id
	}
	panic(fmt.Sprintf("redisinfra: unknown namespace %d", int(n)))
}

func (n Namespace) String() string {
	switch n {
	case NamespacePendingRegistration:
		return "pending_registration"
	case NamespaceConfirmationCode:
		return "confirmation_code"
	case NamespaceLoginCode:
		return "login_code"
	case NamespaceRevokedToken:
		return "revoked_token"
	}
	return fmt.Sprintf("namespace(%d)", int(n))
}

// Codec converts values to and from their stored string form.
type Codec[T any] interface {
	Encode(v T) (string, error)
	Decode(s string) (T, error)
}

// JSONCodec stores values as JSON documents.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(v T) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (JSONCodec[T]) Decode(s string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}

// StringCodec stores strings as-is.
type StringCodec struct{}

func (StringCodec) Encode(v string) (string, error) { return v, nil }
func (StringCodec) Decode(s string) (string, error) { return s, nil }

// Map is a typed view over one namespace of the shared Redis keyspace. Every
// entry is written with a positive TTL and disappears when it lapses.
type Map[T any] struct {
	client redis.Cmdable
	ns     Namespace
	codec  Codec[T]
}

func NewMap[T any](client redis.Cmdable, ns Namespace, codec Codec[T]) *Map[T] {
	return &Map[T]{client: client, ns: ns, codec: codec}
}

// NewJSONMap is NewMap with a JSONCodec.
func NewJSONMap[T any](client redis.Cmdable, ns Namespace) *Map[T] {
	return NewMap[T](client, ns, JSONCodec[T]{})
}

// NewStringMap is NewMap with a StringCodec.
func NewStringMap(client redis.Cmdable, ns Namespace) *Map[string] {
	return NewMap[string](client, ns, StringCodec{})
}

// Set stores v under id, replacing any previous value and resetting its TTL.
func (m *Map[T]) Set(ctx context.Context, id string, v T, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%s: ttl must be positive, got %s", m.ns, ttl)
	}
	enc, err := m.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", m.ns, err)
	}
	if err := m.client.Set(ctx, m.ns.Key(id), enc, ttl).Err(); err != nil {
		return fmt.Errorf("%s: set: %w", m.ns, err)
	}
	return nil
}

// SetNX stores v under id only if no live entry exists. It reports whether
// the value was written.
func (m *Map[T]) SetNX(ctx context.Context, id string, v T, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, fmt.Errorf("%s: ttl must be positive, got %s", m.ns, ttl)
	}
	enc, err := m.codec.Encode(v)
	if err != nil {
		return false, fmt.Errorf("%s: encode: %w", m.ns, err)
	}
	ok, err := m.client.SetNX(ctx, m.ns.Key(id), enc, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: setnx: %w", m.ns, err)
	}
	return ok, nil
}

// Get returns the live value under id. found is false when the entry is
// absent or has expired.
func (m *Map[T]) Get(ctx context.Context, id string) (v T, found bool, err error) {
	raw, err := m.client.Get(ctx, m.ns.Key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return v, false, nil
	}
	if err != nil {
		return v, false, fmt.Errorf("%s: get: %w", m.ns, err)
	}
	v, err = m.codec.Decode(raw)
	if err != nil {
		return v, false, fmt.Errorf("%s: decode: %w", m.ns, err)
	}
	return v, true, nil
}

// Delete removes the entry under id. Deleting a missing entry is not an error.
func (m *Map[T]) Delete(ctx context.Context, id string) error {
	if err := m.client.Del(ctx, m.ns.Key(id)).Err(); err != nil {
		return fmt.Errorf("%s: delete: %w", m.ns, err)
	}
	return nil
}

// Take removes the entry under id and reports whether this call removed it.
// Of several concurrent callers at most one sees true.
func (m *Map[T]) Take(ctx context.Context, id string) (bool, error) {
	n, err := m.client.Del(ctx, m.ns.Key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: take: %w", m.ns, err)
	}
	return n == 1, nil
}

// Swap stores v under id and returns the value it replaced in one step, so
// every replaced value is handed to exactly one writer. A previous value
// that cannot be decoded is reported as not found.
func (m *Map[T]) Swap(ctx context.Context, id string, v T, ttl time.Duration) (prev T, found bool, err error) {
	if ttl <= 0 {
		return prev, false, fmt.Errorf("%s: ttl must be positive, got %s", m.ns, ttl)
	}
	enc, err := m.codec.Encode(v)
	if err != nil {
		return prev, false, fmt.Errorf("%s: encode: %w", m.ns, err)
	}
	raw, err := m.client.SetArgs(ctx, m.ns.Key(id), enc, redis.SetArgs{TTL: ttl, Get: true}).Result()
	if errors.Is(err, redis.Nil) {
		return prev, false, nil
	}
	if err != nil {
		return prev, false, fmt.Errorf("%s: swap: %w", m.ns, err)
	}
	if prev, err = m.codec.Decode(raw); err != nil {
		return prev, false, nil
	}
	return prev, true, nil
}
