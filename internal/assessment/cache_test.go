package assessment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readiness-workers/internal/readiness"
)

func TestRedisCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewRedisCache(client)
	ctx := context.Background()

	got, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got, "miss returns nil")

	in := &Result{
		ScheduleVersion: "2015.1",
		InputHash:       "abc",
		Scores:          readiness.Scores{readiness.Legal: 1},
		Failures: map[readiness.Category]*readiness.Failure{
			readiness.Impact: {Kind: readiness.KindMissingField, Field: readiness.FieldImpSelfAssessment, Message: "missing"},
		},
		AssessedAt: time.Date(2015, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, cache.Set(ctx, "abc", in, time.Minute))

	assert.True(t, mr.Exists(cacheKeyPrefix+"abc"))
	assert.Equal(t, time.Minute, mr.TTL(cacheKeyPrefix+"abc"))

	got, err = cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	require.NoError(t, mr.Set(cacheKeyPrefix+"bad", "{not json"))

	_, err := NewRedisCache(client).Get(context.Background(), "bad")
	assert.ErrorContains(t, err, "cache decode")
}

func TestRedisCache_Errors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCache(db)
	ctx := context.Background()

	mock.ExpectGet(cacheKeyPrefix + "k").SetErr(errors.New("connection refused"))
	_, err := cache.Get(ctx, "k")
	assert.ErrorContains(t, err, "cache get")

	mock.ExpectGet(cacheKeyPrefix + "k").RedisNil()
	got, err := cache.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}
