package repository

import (
	"context"
	"testing"
	"time"

	"Lumen_Blog/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (CommentCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCommentCache(rdb), mr
}

func TestCommentCache_RoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	_, hit, err := cache.GetSubject(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)

	parent := uint64(1)
	rows := []model.Comment{
		{SubjectID: 1, AuthorName: "a", Body: "root", Published: true},
		{SubjectID: 1, ParentID: &parent, AuthorName: "b", Body: "reply"},
	}
	rows[0].ID, rows[1].ID = 1, 2
	rows[0].CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	stored, err := cache.SetSubject(ctx, 1, 0, rows)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.True(t, mr.Exists("post:comments:1"))
	ttl := mr.TTL("post:comments:1")
	assert.True(t, ttl >= 5*time.Minute && ttl < 6*time.Minute, "ttl %v", ttl)

	got, hit, err := cache.GetSubject(ctx, 1)
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, got, 2)
	assert.Equal(t, "reply", got[1].Body)
	require.NotNil(t, got[1].ParentID)
	assert.Equal(t, uint64(1), *got[1].ParentID)
	assert.True(t, got[0].CreatedAt.Equal(rows[0].CreatedAt))

	require.NoError(t, cache.Invalidate(ctx, 1))
	_, hit, err = cache.GetSubject(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCommentCache_EmptySubjectIsAHit(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	stored, err := cache.SetSubject(ctx, 9, 0, nil)
	require.NoError(t, err)
	require.True(t, stored)
	got, hit, err := cache.GetSubject(ctx, 9)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, got)
}

func TestCommentCache_SetSkippedAfterInvalidate(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	rows := []model.Comment{{SubjectID: 1, AuthorName: "a", Body: "stale"}}

	// 回源开始前记下的代数
	gen, err := cache.Generation(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	// 回源期间有一次修改
	require.NoError(t, cache.Invalidate(ctx, 1))

	stored, err := cache.SetSubject(ctx, 1, gen, rows)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists("post:comments:1"))

	gen, err = cache.Generation(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	assert.True(t, mr.TTL("post:comments:gen:1") > 0)

	stored, err = cache.SetSubject(ctx, 1, gen, rows)
	require.NoError(t, err)
	assert.True(t, stored)
	_, hit, err := cache.GetSubject(ctx, 1)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestCommentCache_RedisDown(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	_, hit, err := cache.GetSubject(context.Background(), 1)
	assert.Error(t, err)
	assert.False(t, hit)
}
