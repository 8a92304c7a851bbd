package redis

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/nearby/internal/store"
)

func newMiniredisStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func TestStoreSetGetRemove(t *testing.T) {
	s, mr := newMiniredisStore(t)
	ctx := context.Background()

	raw, ok, err := s.Get(ctx, store.KeyFavorites)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, raw)

	require.NoError(t, s.Set(ctx, store.KeyFavorites, []string{"a", "b"}))

	stored, err := mr.Get(store.KeyFavorites)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, stored)
	assert.Equal(t, 0, int(mr.TTL(store.KeyFavorites)), "documents must not expire")

	raw, ok, err = s.Get(ctx, store.KeyFavorites)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `["a","b"]`, string(raw))

	require.NoError(t, s.Remove(ctx, store.KeyFavorites))
	assert.False(t, mr.Exists(store.KeyFavorites))
	require.NoError(t, s.Remove(ctx, store.KeyFavorites), "removing twice is fine")
}

func TestStoreKeys(t *testing.T) {
	s, _ := newMiniredisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, store.ReviewsKey("http://a"), []int{1}))
	require.NoError(t, s.Set(ctx, store.ReviewsKey("http://b"), []int{2}))
	require.NoError(t, s.Set(ctx, store.KeyReports, []int{3}))

	keys, err := s.Keys(ctx, store.KeyPrefixReviews)
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{store.ReviewsKey("http://a"), store.ReviewsKey("http://b")}, keys)
}

func TestStoreBackendErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewStore(client)
	ctx := context.Background()

	mock.ExpectGet(store.KeyMerchants).SetErr(errors.New("connection reset"))
	_, ok, err := s.Get(ctx, store.KeyMerchants)
	assert.False(t, ok)
	assert.ErrorIs(t, err, store.ErrUnavailable)

	mock.ExpectGet(store.KeyTheme).RedisNil()
	_, ok, err = s.Get(ctx, store.KeyTheme)
	assert.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectSet(store.KeyTheme, []byte(`"dark"`), 0).SetErr(errors.New("READONLY"))
	err = s.Set(ctx, store.KeyTheme, "dark")
	assert.ErrorIs(t, err, store.ErrUnavailable)

	mock.ExpectPing().SetErr(errors.New("down"))
	assert.ErrorIs(t, s.Ping(ctx), store.ErrUnavailable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSetRejectsUnencodable(t *testing.T) {
	s, _ := newMiniredisStore(t)
	err := s.Set(context.Background(), store.KeyInsights, make(chan int))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrUnavailable)
}
