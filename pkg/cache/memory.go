package cache

import (
	"context"
	"sync"
	"time"
)

// Stats 缓存统计信息
type Stats struct {
	// 当前缓存大小
	Size int

	// 内存使用量(字节)
	MemoryUsage int64

	// 命中率
	HitRate float64

	// 过期条目数量
	ExpiredEntries int

	Hits   int
	Misses int
}

// Entry 缓存条目
type Entry struct {
	Value       []byte
	Expiry      time.Time
	LastAccess  time.Time
	AccessCount int
}

// MemoryCache 进程内TTL缓存，容量满时淘汰最久未访问的条目
type MemoryCache struct {
	data             map[string]Entry
	maxEntries       int
	ttl              time.Duration
	mu               sync.Mutex
	evictionCallback func(string, Entry)
	now              func() time.Time

	hits   int
	misses int

	stop chan struct{}
	once sync.Once
}

// NewMemoryCache 创建内存缓存并启动过期清理
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	c := &MemoryCache{
		data:       make(map[string]Entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		stop:       make(chan struct{}),
	}

	go c.cleanupExpired()

	return c
}

// Close 停止后台清理
func (c *MemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

// cleanupExpired 定期清理过期条目
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(c.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.data {
		if now.After(entry.Expiry) {
			if c.evictionCallback != nil {
				c.evictionCallback(key, entry)
			}
			delete(c.data, key)
		}
	}
}

// SetEvictionCallback 设置条目淘汰回调
func (c *MemoryCache) SetEvictionCallback(callback func(string, Entry)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictionCallback = callback
}

// Get 获取缓存条目，过期条目视为未命中
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry, ok := c.data[key]
	if !ok || now.After(entry.Expiry) {
		c.misses++
		return nil, false, nil
	}

	c.hits++
	entry.AccessCount++
	entry.LastAccess = now
	c.data[key] = entry
	return entry.Value, true, nil
}

// Set 设置缓存条目，ttl<=0时使用默认TTL
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		ttl = c.ttl
	}

	if _, exists := c.data[key]; !exists && len(c.data) >= c.maxEntries {
		c.evictOldest()
	}

	now := c.now()
	c.data[key] = Entry{
		Value:      value,
		Expiry:     now.Add(ttl),
		LastAccess: now,
	}
	return nil
}

// evictOldest 淘汰最久未访问的条目
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	first := true

	for key, entry := range c.data {
		if first || entry.LastAccess.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.LastAccess
			first = false
		}
	}

	if !first {
		if c.evictionCallback != nil {
			c.evictionCallback(oldestKey, c.data[oldestKey])
		}
		delete(c.data, oldestKey)
	}
}

// Stats 获取缓存统计信息
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Size:   len(c.data),
		Hits:   c.hits,
		Misses: c.misses,
	}

	now := c.now()
	for _, entry := range c.data {
		stats.MemoryUsage += int64(len(entry.Value))
		if now.After(entry.Expiry) {
			stats.ExpiredEntries++
		}
	}

	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// Clear 清空缓存
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]Entry)
	c.hits = 0
	c.misses = 0
}
