package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"Lumen_Blog/internal/model"

	"github.com/go-redis/redis/v8"
)

// CommentCache 按文章缓存FindBySubject的结果（全部评论行，闸门在进程内做）。
// 每次Invalidate都会让文章的代数加一；回源前记下代数，写回时代数变了就放弃，
// 这样和回源并发的修改不会被旧数据盖掉
type CommentCache interface {
	// 第二个返回值表示是否命中
	GetSubject(ctx context.Context, subjectID uint64) ([]model.Comment, bool, error)
	// Generation 没有被失效过的文章是0
	Generation(ctx context.Context, subjectID uint64) (int64, error)
	// SetSubject 只有代数仍然等于gen时才写入，返回是否写入
	SetSubject(ctx context.Context, subjectID uint64, gen int64, comments []model.Comment) (bool, error)
	Invalidate(ctx context.Context, subjectID uint64) error
}

type redisCommentCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	genTTL time.Duration
}

func NewCommentCache(rdb *redis.Client) CommentCache {
	return &redisCommentCache{rdb: rdb, ttl: 5 * time.Minute, genTTL: 24 * time.Hour}
}

// 返回 post:comments:{subjectID}
func (c *redisCommentCache) key(subjectID uint64) string {
	return fmt.Sprintf("post:comments:%d", subjectID)
}

// 返回 post:comments:gen:{subjectID}
func (c *redisCommentCache) genKey(subjectID uint64) string {
	return fmt.Sprintf("post:comments:gen:%d", subjectID)
}

// GetSubject 1、拼key 2、GET拿JSON 3、反序列化
func (c *redisCommentCache) GetSubject(ctx context.Context, subjectID uint64) ([]model.Comment, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(subjectID)).Result()
	if err == redis.Nil {
		return nil, false, nil // 缓存不存在，但是Redis正常工作
	} else if err != nil {
		return nil, false, err // Redis本身出错了
	}
	var comments []model.Comment
	if err := json.Unmarshal([]byte(raw), &comments); err != nil {
		return nil, false, err
	}
	return comments, true, nil
}

func (c *redisCommentCache) Generation(ctx context.Context, subjectID uint64) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey(subjectID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// SetSubject 1、WATCH代数key 2、代数没变才在事务里SET，过期时间加上随机量，防止缓存雪崩 3、EXEC期间代数被改则整个事务作废
func (c *redisCommentCache) SetSubject(ctx context.Context, subjectID uint64, gen int64, comments []model.Comment) (bool, error) {
	if comments == nil {
		comments = []model.Comment{}
	}
	raw, err := json.Marshal(comments)
	if err != nil {
		return false, err
	}
	expiration := c.ttl + time.Duration(rand.Intn(60))*time.Second

	stored := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, c.genKey(subjectID)).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(subjectID), raw, expiration)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, c.genKey(subjectID))
	if err == redis.TxFailedErr {
		return false, nil
	}
	return stored, err
}

// Invalidate 代数加一并删掉缓存，放在一个事务里
func (c *redisCommentCache) Invalidate(ctx context.Context, subjectID uint64) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(subjectID))
		pipe.Expire(ctx, c.genKey(subjectID), c.genTTL)
		pipe.Del(ctx, c.key(subjectID))
		return nil
	})
	return err
}
