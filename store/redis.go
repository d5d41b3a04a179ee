package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// maxUpdateAttempts bounds optimistic retries when a watched key keeps changing.
const maxUpdateAttempts = 100

// Redis stores values as plain strings. Keys are namespaced with prefix so several
// deployments can share one database.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis wraps an existing client. Callers own the client's lifecycle.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, Wrap("get", key, err)
	}
	return b, nil
}

func (r *Redis) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	if len(keys) == 0 {
		return [][]byte{}, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}

	vals, err := r.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, Wrap("mget", "", err)
	}

	out := make([][]byte, len(keys))
	for i, v := range vals {
		switch s := v.(type) {
		case nil:
		case string:
			out[i] = []byte(s)
		default:
			return nil, Wrap("mget", keys[i], fmt.Errorf("unexpected reply type %T", v))
		}
	}
	return out, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return Wrap("set", key, r.client.Set(ctx, r.key(key), value, 0).Err())
}

// Update runs fn inside WATCH/MULTI and retries when another client wrote the
// key in between.
func (r *Redis) Update(ctx context.Context, key string, fn UpdateFunc) error {
	k := r.key(key)

	var fnErr error
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		next, err := fn(cur)
		if err != nil {
			fnErr = err
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		fnErr = nil
		err := r.client.Watch(ctx, txf, k)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case fnErr != nil, errors.Is(err, ErrNotFound):
			return err
		default:
			return Wrap("update", key, err)
		}
	}
	return Wrap("update", key, fmt.Errorf("key kept changing after %d attempts", maxUpdateAttempts))
}

func (r *Redis) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Del(ctx, r.key(key)).Result()
	if err != nil {
		return false, Wrap("delete", key, err)
	}
	return n > 0, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return Wrap("ping", "", r.client.Ping(ctx).Err())
}
