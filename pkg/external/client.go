package external

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/BinLe1988/mood-tracker/pkg/cache"
	"github.com/BinLe1988/mood-tracker/pkg/logger"
	"github.com/BinLe1988/mood-tracker/pkg/metrics"
)

var (
	// ErrNotConfigured 未配置第三方服务的密钥
	ErrNotConfigured = errors.New("provider not configured")
	// ErrUpstream 第三方服务调用失败
	ErrUpstream = errors.New("upstream request failed")
)

const maxBodySize = 2 << 20

// Options 客户端公共选项
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Cache      cache.Cache
	CacheTTL   time.Duration
	Logger     *logger.Logger
	BaseURL    string

	// 连续失败多少次后熔断
	FailureThreshold uint32
	// 熔断后多久进入半开状态
	OpenTimeout time.Duration
}

// base 第三方客户端公共部分：缓存 -> 熔断 -> HTTP请求
type base struct {
	name       string
	httpClient *http.Client
	cache      cache.Cache
	cacheTTL   time.Duration
	breaker    *gobreaker.CircuitBreaker[[]byte]
	log        *logger.Logger
}

func newBase(name string, opts Options) base {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.HTTPClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		opts.HTTPClient = &http.Client{Timeout: timeout}
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	log := opts.Logger.With("provider", name)
	threshold := opts.FailureThreshold

	return base{
		name:       name,
		httpClient: opts.HTTPClient,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		log:        log,
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     opts.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
			},
		}),
	}
}

// BreakerState 返回熔断器状态
func (b *base) BreakerState() string {
	return b.breaker.State().String()
}

// fetch 发起请求并返回响应体。cacheKey为空时不使用缓存。
func (b *base) fetch(ctx context.Context, cacheKey string, ttl time.Duration, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	if b.cache != nil && cacheKey != "" {
		body, ok, err := b.cache.Get(ctx, b.name+":"+cacheKey)
		if err != nil {
			b.log.Warn("cache lookup failed", "key", cacheKey, "error", err)
		}
		metrics.RecordCacheLookup(ok)
		if ok {
			metrics.RecordExternal(b.name, "cached")
			return body, nil
		}
	}

	body, err := b.breaker.Execute(func() ([]byte, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		return b.do(req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordExternal(b.name, "open")
			return nil, fmt.Errorf("%w: %s circuit open", ErrUpstream, b.name)
		}
		metrics.RecordExternal(b.name, "error")
		b.log.Error("request failed", "error", err)
		return nil, err
	}
	metrics.RecordExternal(b.name, "ok")

	if b.cache != nil && cacheKey != "" {
		if ttl <= 0 {
			ttl = b.cacheTTL
		}
		if err := b.cache.Set(ctx, b.name+":"+cacheKey, body, ttl); err != nil {
			b.log.Warn("cache store failed", "key", cacheKey, "error", err)
		}
	}
	return body, nil
}

func (b *base) do(req *http.Request) ([]byte, error) {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, b.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", ErrUpstream, b.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUpstream, b.name, resp.StatusCode)
	}
	return body, nil
}
