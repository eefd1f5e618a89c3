package middleware

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repoprep/internal/llm"
	"repoprep/internal/ratelimit"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func TestClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"xff single", map[string]string{"X-Forwarded-For": "1.1.1.1"}, "1.1.1.1"},
		{"xff list", map[string]string{"X-Forwarded-For": " 2.2.2.2 , 10.0.0.1"}, "2.2.2.2"},
		{"xff wins", map[string]string{"X-Forwarded-For": "3.3.3.3", "X-Real-IP": "4.4.4.4"}, "3.3.3.3"},
		{"real ip", map[string]string{"X-Real-IP": "4.4.4.4"}, "4.4.4.4"},
		{"none", nil, "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ClientIP(r))
		})
	}
}

func TestRateLimit_HeadersAnd429(t *testing.T) {
	clk := &stepClock{now: time.Unix(1_700_000_000, 0)}
	h := RateLimit(ratelimit.NewFixedWindow(20, time.Minute, ratelimit.WithClock(clk)))(okHandler)

	do := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		r.Header.Set("X-Forwarded-For", "9.9.9.9")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	for i := 1; i <= 20; i++ {
		rec := do()
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		assert.Equal(t, "20", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(20-i), rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Reset"))
	}

	clk.now = clk.now.Add(15500 * time.Millisecond)
	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "45", rec.Header().Get("X-RateLimit-Reset"))

	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TooManyRequestsMessage, body.Error)
	assert.Equal(t, 45, body.RetryAfter)

	clk.now = clk.now.Add(time.Minute)
	rec = do()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "19", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestCORS(t *testing.T) {
	h := CORS(okHandler)

	r := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-RateLimit-Remaining")
	assert.Empty(t, rec.Body.String())

	r = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRecovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestRequestIDAndLogging(t *testing.T) {
	var buf bytes.Buffer
	var seen, caller string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = llm.RequestIDFrom(r.Context())
		caller = llm.CallerFrom(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	h := Chain(RequestID, Logging(log.New(&buf, "", 0)))(inner)

	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.Header.Set("X-Real-IP", "5.5.5.5")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "5.5.5.5", caller)
	assert.Contains(t, buf.String(), "GET /x 418")
	assert.Contains(t, buf.String(), "req="+seen)

	r = httptest.NewRequest(http.MethodGet, "/x", nil)
	r.Header.Set(RequestIDHeader, "given-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, "given-id", seen)
}

func TestStatusWriter_Flushes(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}
	_, _ = sw.Write([]byte("data"))
	sw.Flush()
	assert.True(t, rec.Flushed)
	assert.Equal(t, http.StatusOK, sw.status)
}

func TestChain_Order(t *testing.T) {
	var trail []string
	mw := func(tag string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trail = append(trail, tag)
				next.ServeHTTP(w, r)
			})
		}
	}
	Chain(mw("A"), mw("B"))(okHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"A", "B"}, trail)
}

func TestAllowMethods_RejectsBeforeRateLimit(t *testing.T) {
	limiter := ratelimit.NewFixedWindow(1, time.Minute)
	h := Chain(AllowMethods(http.MethodPost), RateLimit(limiter))(okHandler)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
		assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}
