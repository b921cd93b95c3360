package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(`{"email":" Test@Example.com "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("email")(c)
	if key != "test@example.com|1.2.3.4" {
		t.Fatalf("key want test@example.com|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Test@Example.com") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestRateLimitMiddlewareDisabledRulePassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status want 200 got %d", i, w.Code)
		}
	}
}

func TestRateLimitMiddlewareLocalFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rule := RateLimitRule{Prefix: "test:click", WindowSeconds: 60, MaxRequests: 2, BlockSeconds: 30}
	r := gin.New()
	r.GET("/track-click/:referralCode", RateLimitMiddleware(nil, rule, KeyByIPAndParam("referralCode")), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	send := func(code string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/track-click/"+code, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := send("ABCD1234"); w.Code != http.StatusOK {
			t.Fatalf("request %d status want 200 got %d", i, w.Code)
		}
	}
	w := send("ABCD1234")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status want 429 got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "30" {
		t.Fatalf("retry-after want 30 got %s", w.Header().Get("Retry-After"))
	}
	if !strings.Contains(w.Body.String(), "30") {
		t.Fatalf("message should mention wait seconds, got %s", w.Body.String())
	}

	// 不同推荐码独立计数
	if w := send("FFFF0000"); w.Code != http.StatusOK {
		t.Fatalf("other code status want 200 got %d", w.Code)
	}
}

func TestLocalLimiterBlockExpires(t *testing.T) {
	limiter := newLocalLimiter(RateLimitRule{WindowSeconds: 10, MaxRequests: 1, BlockSeconds: 5})
	now := time.Unix(1_700_000_000, 0)

	if _, limited := limiter.take("k", now); limited {
		t.Fatalf("first request should pass")
	}
	wait, limited := limiter.take("k", now)
	if !limited || wait != 5 {
		t.Fatalf("second request want blocked 5s got limited=%v wait=%d", limited, wait)
	}
	wait, limited = limiter.take("k", now.Add(2*time.Second))
	if !limited || wait != 3 {
		t.Fatalf("blocked request want 3s remaining got limited=%v wait=%d", limited, wait)
	}
	if _, limited := limiter.take("k", now.Add(11*time.Second)); limited {
		t.Fatalf("request after block and refill should pass")
	}
}

func TestResolveWaitSeconds(t *testing.T) {
	rule := RateLimitRule{WindowSeconds: 60, BlockSeconds: 0}
	if got := resolveWaitSeconds(12, rule); got != 12 {
		t.Fatalf("ttl should win, got %d", got)
	}
	if got := resolveWaitSeconds(-1, rule); got != 60 {
		t.Fatalf("window fallback want 60 got %d", got)
	}
	if got := resolveWaitSeconds(0, RateLimitRule{}); got != 1 {
		t.Fatalf("minimum wait want 1 got %d", got)
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(10), want: 10, ok: true},
		{name: "int", input: int(11), want: 11, ok: true},
		{name: "uint8", input: uint8(12), want: 12, ok: true},
		{name: "float64", input: float64(13.9), want: 13, ok: true},
		{name: "string", input: "bad", want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("value want %d got %d", tc.want, got)
			}
		})
	}
}
