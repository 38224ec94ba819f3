package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosnap/ecosnap/internal/ctxkeys"
	"github.com/ecosnap/ecosnap/internal/httpx"
	"github.com/ecosnap/ecosnap/internal/model"
	"github.com/ecosnap/ecosnap/internal/service"
)

type stubAuth map[string]*model.User

var errDatabaseDown = errors.New("database is locked")

func (s stubAuth) Authenticate(token string) (*model.User, error) {
	if token == "broken" {
		return nil, fmt.Errorf("failed to get user: %w", errDatabaseDown)
	}
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: signature is invalid", service.ErrInvalidToken)
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	if user == nil {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(user.ID))
}

func TestAuthMiddleware(t *testing.T) {
	auth := stubAuth{
		"good":  {ID: "u1"},
		"admin": {ID: "u2", IsAdmin: true},
	}
	h := AuthMiddleware(auth)(http.HandlerFunc(whoAmI))

	tests := []struct {
		header string
		want   string
	}{
		{"", "anonymous"},
		{"Bearer good", "u1"},
		{"bearer good", "u1"},
		{"Bearer bad", "anonymous"},
		{"Basic good", "anonymous"},
		{"Bearer ", "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, r)

			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestAuthMiddleware_LookupFailure(t *testing.T) {
	reached := false
	h := AuthMiddleware(stubAuth{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	r.Header.Set("Authorization", "Bearer broken")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.False(t, reached)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestRequireAuthAndAdmin(t *testing.T) {
	auth := stubAuth{
		"good":  {ID: "u1"},
		"admin": {ID: "u2", IsAdmin: true},
	}

	serve := func(h http.HandlerFunc, token string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		AuthMiddleware(auth)(h).ServeHTTP(rec, r)
		return rec
	}

	rec := serve(RequireAuth(whoAmI), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String())

	rec = serve(RequireAuth(whoAmI), "good")
	assert.Equal(t, "u1", rec.Body.String())

	rec = serve(RequireAdmin(whoAmI), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(RequireAdmin(whoAmI), "good")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Admin access required"}`, rec.Body.String())

	rec = serve(RequireAdmin(whoAmI), "admin")
	assert.Equal(t, "u2", rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(2, 15*time.Minute, make(chan struct{}))
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	h := RateLimit(limiter, nil)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	call := func(ip string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h(rec, r)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1").Code)

	rec := call("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Too many requests")

	assert.Equal(t, http.StatusNoContent, call("10.0.0.2").Code, "limits are per IP")

	forged := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	forged.RemoteAddr = "10.0.0.1:5555"
	forged.Header.Set("X-Forwarded-For", "203.0.113.50")
	rec = httptest.NewRecorder()
	h(rec, forged)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "untrusted forwarding headers are ignored")

	now = now.Add(16 * time.Minute)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1").Code, "window slides")

	limiter.cleanup()
	limiter.mu.Lock()
	assert.Len(t, limiter.requests, 1)
	limiter.mu.Unlock()
}

func TestClientIP(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.1 ", ""})
	require.NoError(t, err)

	tests := []struct {
		name    string
		proxies TrustedProxies
		remote  string
		xff     []string
		realIP  string
		want    string
	}{
		{"direct peer", proxies, "198.51.100.7:1234", nil, "", "198.51.100.7"},
		{"untrusted peer ignores xff", proxies, "198.51.100.7:1234", []string{"203.0.113.9"}, "", "198.51.100.7"},
		{"untrusted peer ignores x-real-ip", proxies, "198.51.100.7:1234", nil, "203.0.113.9", "198.51.100.7"},
		{"no proxies configured", nil, "10.1.1.1:1234", []string{"203.0.113.9"}, "", "10.1.1.1"},
		{"trusted peer uses xff", proxies, "10.1.1.1:1234", []string{"203.0.113.9"}, "", "203.0.113.9"},
		{"right-most untrusted hop wins", proxies, "10.1.1.1:1234", []string{"6.6.6.6, 203.0.113.9, 10.2.2.2"}, "", "203.0.113.9"},
		{"repeated headers are joined", proxies, "192.0.2.1:1234", []string{"6.6.6.6", "203.0.113.9"}, "", "203.0.113.9"},
		{"all hops trusted", proxies, "10.1.1.1:1234", []string{"10.3.3.3, 10.2.2.2"}, "", "10.3.3.3"},
		{"trusted peer uses x-real-ip", proxies, "10.1.1.1:1234", nil, "203.0.113.9", "203.0.113.9"},
		{"malformed x-real-ip", proxies, "10.1.1.1:1234", nil, "nonsense", "10.1.1.1"},
		{"ipv4-mapped peer", proxies, "[::ffff:10.1.1.1]:1234", []string{"203.0.113.9"}, "", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for _, v := range tt.xff {
				r.Header.Add("X-Forwarded-For", v)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}

			assert.Equal(t, tt.want, tt.proxies.ClientIP(r))
		})
	}
}

func TestParseTrustedProxies_Invalid(t *testing.T) {
	_, err := ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.ErrorContains(t, err, "invalid trusted proxy")

	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.ErrorContains(t, err, "invalid trusted proxy")
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("wildcard preflight", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodOptions, "/api/classify", nil)
		r.Header.Set("Origin", "https://app.example")
		r.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()

		CORS([]string{"*"})(next).ServeHTTP(rec, r)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	})

	t.Run("listed origin", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/history", nil)
		r.Header.Set("Origin", "https://app.example")
		rec := httptest.NewRecorder()

		CORS([]string{"https://app.example"})(next).ServeHTTP(rec, r)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/history", nil)
		r.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()

		CORS([]string{"https://app.example"})(next).ServeHTTP(rec, r)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestMaxBodyBytes(t *testing.T) {
	h := MaxBodyBytes(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var v map[string]any
		err := httpx.DecodeJSON(r, &v)
		if errors.Is(err, httpx.ErrBodyTooLarge) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"0123456789"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), mark("a"), mark("b"), mark("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRequestLogging_CapturesStatus(t *testing.T) {
	h := RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}
