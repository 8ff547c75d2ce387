package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// writeLimiter 按 IP 的滑动窗口计数。过期数据在请求路径上按窗口周期清理，不起后台 goroutine。
type writeLimiter struct {
	mu        sync.Mutex
	limit     int
	period    time.Duration
	store     map[string][]time.Time
	lastSweep time.Time
}

func newWriteLimiter(limit int, period time.Duration) *writeLimiter {
	return &writeLimiter{limit: limit, period: period, store: make(map[string][]time.Time)}
}

// prune 移除 cutoff 之前的记录
func prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	kept := timestamps[:0]
	for _, t := range timestamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// sweep 清理所有窗口已空的 IP，调用方持有锁
func (l *writeLimiter) sweep(now time.Time) {
	cutoff := now.Add(-l.period)
	for ip, ts := range l.store {
		if ts = prune(ts, cutoff); len(ts) == 0 {
			delete(l.store, ip)
		} else {
			l.store[ip] = ts
		}
	}
	l.lastSweep = now
}

// allow 记录一次写请求，超过上限返回 false
func (l *writeLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.lastSweep) >= l.period {
		l.sweep(now)
	}
	ts := prune(l.store[ip], now.Add(-l.period))
	if len(ts) >= l.limit {
		l.store[ip] = ts
		return false
	}
	l.store[ip] = append(ts, now)
	return true
}

func (l *writeLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.store)
}

// WriteRateLimit 写请求限流中间件
// 每 IP 在 period 内最多 limit 次 POST/PUT/PATCH/DELETE，超过则返回 429；GET 不计数。
// limit <= 0 时不限流。
func WriteRateLimit(limit int, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	l := newWriteLimiter(limit, period)
	return func(c *gin.Context) {
		if !isWrite(c.Request.Method) {
			c.Next()
			return
		}
		if !l.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "写操作过于频繁，请稍后再试",
			})
			return
		}
		c.Next()
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
