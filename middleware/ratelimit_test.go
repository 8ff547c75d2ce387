package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestWriteRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 短窗口 200ms，最多 2 次
	router := gin.New()
	router.Use(WriteRateLimit(2, 200*time.Millisecond))
	router.POST("/payments", func(c *gin.Context) {
		c.String(200, "ok")
	})
	router.GET("/payments", func(c *gin.Context) {
		c.String(200, "ok")
	})

	doReq := func(method, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/payments", nil)
		req.Header.Set("X-Real-IP", ip)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// 同一 IP 连续 3 次写，第 3 次应返回 429
	w1 := doReq("POST", "192.168.1.1")
	w2 := doReq("POST", "192.168.1.1")
	w3 := doReq("POST", "192.168.1.1")
	assert.Equal(t, 200, w1.Code)
	assert.Equal(t, 200, w2.Code)
	assert.Equal(t, http.StatusTooManyRequests, w3.Code)
	assert.Contains(t, w3.Body.String(), "频繁")

	// 读请求不受限
	assert.Equal(t, 200, doReq("GET", "192.168.1.1").Code)

	// 不同 IP 互不影响
	assert.Equal(t, 200, doReq("POST", "192.168.1.2").Code)

	// 窗口过后恢复
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, 200, doReq("POST", "192.168.1.1").Code)
}

func TestWriteRateLimit_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(WriteRateLimit(0, time.Minute))
	router.DELETE("/x", func(c *gin.Context) { c.Status(204) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("DELETE", "/x", nil))
		assert.Equal(t, 204, w.Code)
	}
}

func TestWriteLimiter_SweepsIdleClients(t *testing.T) {
	l := newWriteLimiter(2, time.Minute)
	start := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	assert.True(t, l.allow("10.0.0.1", start))
	assert.True(t, l.allow("10.0.0.2", start))
	assert.True(t, l.allow("10.0.0.1", start.Add(time.Second)))
	assert.False(t, l.allow("10.0.0.1", start.Add(2*time.Second)))
	assert.Equal(t, 2, l.size())

	// 一个窗口之后的请求触发清理，空闲 IP 被移除
	assert.True(t, l.allow("10.0.0.3", start.Add(2*time.Minute)))
	assert.Equal(t, 1, l.size())
	assert.True(t, l.allow("10.0.0.1", start.Add(2*time.Minute)))
}
