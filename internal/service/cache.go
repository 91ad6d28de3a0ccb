// Package service 包含了应用的业务逻辑层。
package service

import (
	"sync"

	"qu-assist-go/internal/model"
)

// ResponseCache 定义了回答缓存的能力：按键读写与整体清空。
// 缓存实例由编排器持有，不依赖进程级全局状态。
type ResponseCache interface {
	Get(key string) (*model.ChatResult, bool)
	Put(key string, result *model.ChatResult)
	Clear()
}

// memoryCache 是进程内的回答缓存。条目创建后只读、不过期，
// 无界增长是已知限制。互斥锁只为内存安全，不改变 last-writer-wins 语义。
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*model.ChatResult
}

// NewMemoryCache 创建一个空的进程内回答缓存。
func NewMemoryCache() ResponseCache {
	return &memoryCache{entries: make(map[string]*model.ChatResult)}
}

func (c *memoryCache) Get(key string) (*model.ChatResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[key]
	return result, ok
}

func (c *memoryCache) Put(key string, result *model.ChatResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = result
}

func (c *memoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*model.ChatResult)
}
