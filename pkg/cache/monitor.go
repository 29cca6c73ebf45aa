package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/BinLe1988/mood-tracker/pkg/logger"
)

// MonitorConfig 监控配置
type MonitorConfig struct {
	// 监控间隔
	Interval time.Duration

	// 阈值告警配置
	Thresholds map[string]float64

	// 告警回调
	AlertCallback func(alert string)
}

// DefaultThresholds 默认阈值配置
var DefaultThresholds = map[string]float64{
	"hit_rate_min":      0.5,   // 最低命中率
	"memory_usage_max":  50e6,  // 最大内存使用(字节)
	"expired_ratio_max": 0.2,   // 最大过期比例
	"min_lookups":       20,    // 查询次数过少时不检查命中率
}

// Monitor 定期记录缓存统计并在超过阈值时告警
type Monitor struct {
	cache  *MemoryCache
	config MonitorConfig
	log    *logger.Logger

	stop chan struct{}
	once sync.Once
}

// NewMonitor 创建缓存监控
func NewMonitor(c *MemoryCache, config MonitorConfig, log *logger.Logger) *Monitor {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	if config.Thresholds == nil {
		config.Thresholds = DefaultThresholds
	}
	if log == nil {
		log = logger.NewNop()
	}

	m := &Monitor{
		cache:  c,
		config: config,
		log:    log.With("component", "cache_monitor"),
		stop:   make(chan struct{}),
	}

	c.SetEvictionCallback(m.handleEviction)
	return m
}

// Start 启动监控
func (m *Monitor) Start() {
	go m.loop()
}

// Stop 停止监控
func (m *Monitor) Stop() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check()
		case <-m.stop:
			return
		}
	}
}

// Check 收集一次统计信息并检查阈值，返回触发的告警
func (m *Monitor) Check() []string {
	stats := m.cache.Stats()
	m.log.Info("cache stats",
		"size", stats.Size,
		"memory_bytes", stats.MemoryUsage,
		"hit_rate", stats.HitRate,
		"hits", stats.Hits,
		"misses", stats.Misses,
		"expired", stats.ExpiredEntries,
	)

	var alerts []string
	th := m.config.Thresholds

	if float64(stats.MemoryUsage) > th["memory_usage_max"] && th["memory_usage_max"] > 0 {
		alerts = append(alerts, fmt.Sprintf("high memory usage: %d bytes (threshold: %.0f bytes)",
			stats.MemoryUsage, th["memory_usage_max"]))
	}

	lookups := stats.Hits + stats.Misses
	if float64(lookups) >= th["min_lookups"] && stats.HitRate < th["hit_rate_min"] {
		alerts = append(alerts, fmt.Sprintf("low hit rate: %.2f%% (threshold: %.2f%%)",
			stats.HitRate*100, th["hit_rate_min"]*100))
	}

	if stats.Size > 0 {
		expiredRatio := float64(stats.ExpiredEntries) / float64(stats.Size)
		if expiredRatio > th["expired_ratio_max"] {
			alerts = append(alerts, fmt.Sprintf("high expired entries ratio: %.2f%% (threshold: %.2f%%)",
				expiredRatio*100, th["expired_ratio_max"]*100))
		}
	}

	for _, alert := range alerts {
		m.alert(alert)
	}
	return alerts
}

func (m *Monitor) handleEviction(key string, entry Entry) {
	m.log.Debug("cache entry evicted",
		"key", key,
		"accesses", entry.AccessCount,
		"size", len(entry.Value),
	)
}

func (m *Monitor) alert(message string) {
	m.log.Warn("cache alert", "alert", message)

	if m.config.AlertCallback != nil {
		m.config.AlertCallback(message)
	}
}
