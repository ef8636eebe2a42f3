package utils

import (
	"sync"
	"time"
)

// cacheItem 内部结构，包含值和过期时间
type cacheItem struct {
	value      interface{}
	expiration int64
}

// TTLCache 进程内 TTL 缓存
// 使用 sync.Map 保证并发安全，用于分类元数据这类低频变化的数据
type TTLCache struct {
	store sync.Map
}

// NewTTLCache 创建缓存
func NewTTLCache() *TTLCache {
	return &TTLCache{}
}

// Set 写入缓存
func (c *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
	c.store.Store(key, cacheItem{
		value:      value,
		expiration: time.Now().Add(ttl).UnixNano(),
	})
}

// Get 读取缓存并验证是否过期
func (c *TTLCache) Get(key string) (interface{}, bool) {
	val, ok := c.store.Load(key)
	if !ok {
		return nil, false
	}

	item := val.(cacheItem)

	// 懒删除
	if time.Now().UnixNano() > item.expiration {
		c.store.Delete(key)
		return nil, false
	}

	return item.value, true
}

// Delete 删除缓存
func (c *TTLCache) Delete(key string) {
	c.store.Delete(key)
}
