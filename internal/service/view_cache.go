package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"classroom/backend/pkg/redis"
)

// viewCache 仪表盘视图缓存
//
// 每次成功的变更操作之后先失效旧快照，再由对应的 Reload 重新执行加载器并整体覆盖缓存，
// 从不做增量修补。重新加载失败时键保持缺失，下一次读取直达网关。
// rdb 为 nil（Redis 不可用）时所有方法降级为空操作。
type viewCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func newViewCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *viewCache {
	return &viewCache{rdb: rdb, ttl: ttl, logger: logger}
}

func subjectsViewKey(ownerID string) string { return "subjects:" + ownerID }
func classesViewKey(ownerID string) string  { return "classes:" + ownerID }

// load 读取缓存，命中返回 true
func (c *viewCache) load(ctx context.Context, key string, dst interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	if err := c.rdb.GetJSON(ctx, key, dst); err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			c.logger.Warn("读取视图缓存失败", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

// replace 整体覆盖缓存
func (c *viewCache) replace(ctx context.Context, key string, v interface{}) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.SetJSON(ctx, key, v, c.ttl); err != nil {
		c.logger.Warn("写入视图缓存失败", zap.String("key", key), zap.Error(err))
	}
}

// invalidate 删除快照
func (c *viewCache) invalidate(ctx context.Context, key string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Delete(ctx, key); err != nil {
		c.logger.Warn("失效视图缓存失败", zap.String("key", key), zap.Error(err))
	}
}
