// Package storetest holds a behavioral suite every store.Store backend must pass.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrlink/store"
)

// Run exercises s. newStore must return an empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("get missing key", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "link:nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "link:a", []byte(`{"id":"a"}`)))
		got, err := s.Get(ctx, "link:a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"a"}`, string(got))
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "link_ids", []byte(`["a"]`)))
		require.NoError(t, s.Set(ctx, "link_ids", []byte(`["b","a"]`)))
		got, err := s.Get(ctx, "link_ids")
		require.NoError(t, err)
		assert.JSONEq(t, `["b","a"]`, string(got))
	})

	t.Run("mget keeps order and marks missing keys nil", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "link:a", []byte(`{"id":"a"}`)))
		require.NoError(t, s.Set(ctx, "link:c", []byte(`{"id":"c"}`)))

		got, err := s.MGet(ctx, "link:c", "link:b", "link:a")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.JSONEq(t, `{"id":"c"}`, string(got[0]))
		assert.Nil(t, got[1])
		assert.JSONEq(t, `{"id":"a"}`, string(got[2]))
	})

	t.Run("mget with no keys", func(t *testing.T) {
		s := newStore(t)
		got, err := s.MGet(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("delete reports existence", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "link:a", []byte(`{}`)))

		existed, err := s.Delete(ctx, "link:a")
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = s.Delete(ctx, "link:a")
		require.NoError(t, err)
		assert.False(t, existed)

		_, err = s.Get(ctx, "link:a")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update missing key", func(t *testing.T) {
		s := newStore(t)
		called := false
		err := s.Update(context.Background(), "link:nope", func(cur []byte) ([]byte, error) {
			called = true
			return cur, nil
		})
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.False(t, called)
	})

	t.Run("update replaces value", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "link:a", []byte(`{"n":1}`)))
		err := s.Update(ctx, "link:a", func(cur []byte) ([]byte, error) {
			assert.JSONEq(t, `{"n":1}`, string(cur))
			return []byte(`{"n":2}`), nil
		})
		require.NoError(t, err)

		got, err := s.Get(ctx, "link:a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":2}`, string(got))
	})

	t.Run("update passes fn error through without writing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		errRejected := errors.New("rejected")

		require.NoError(t, s.Set(ctx, "link:a", []byte(`{"n":1}`)))
		err := s.Update(ctx, "link:a", func([]byte) ([]byte, error) {
			return nil, errRejected
		})
		assert.Equal(t, errRejected, err)
		assert.False(t, store.IsBackendError(err))

		got, err := s.Get(ctx, "link:a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":1}`, string(got))
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "link:a", []byte(`{"n":0}`)))

		const writers = 20
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.Update(ctx, "link:a", func(cur []byte) ([]byte, error) {
					var v struct{ N int }
					if err := json.Unmarshal(cur, &v); err != nil {
						return nil, err
					}
					return []byte(fmt.Sprintf(`{"n":%d}`, v.N+1)), nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := s.Get(ctx, "link:a")
		require.NoError(t, err)
		assert.JSONEq(t, fmt.Sprintf(`{"n":%d}`, writers), string(got))
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(context.Background()))
	})

	t.Run("concurrent writers to distinct keys", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("link:%d", i)
				assert.NoError(t, s.Set(ctx, key, []byte(fmt.Sprintf(`{"n":%d}`, i))))
			}(i)
		}
		wg.Wait()

		for i := 0; i < 10; i++ {
			got, err := s.Get(ctx, fmt.Sprintf("link:%d", i))
			require.NoError(t, err)
			assert.JSONEq(t, fmt.Sprintf(`{"n":%d}`, i), string(got))
		}
	})
}
